// Package sqlite provides a SQLite-backed implementation of the storage
// ports, selected with the storage.backend = "sqlite" setting.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation
// that requires no CGO, enabling easy cross-compilation. It implements
// both store interfaces through a single database connection:
//
//   - KnowledgeStore: chunk rows plus a single index metadata row
//   - IngestStateStore: freshness metadata of the last ingestion run
//
// # Schema
//
// The database schema is managed through versioned migrations stored in
// the migrations/ directory. Embedding vectors are stored as
// little-endian float32 blobs.
//
// # Data Location
//
// By default, the database is stored at ~/.sitechat/knowledge.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking
// provided by SQLite in WAL mode.
package sqlite
