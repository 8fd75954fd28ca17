// Package domain defines the core business entities for sitechat.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Source: A configured website the assistant ingests
//   - Document: A unit of indexable content (crawled page or curated file)
//   - Chunk: The atomic retrievable unit within the knowledge index
//   - KnowledgeIndex: The persisted aggregate of all chunks
//   - IngestState: Freshness metadata for the last ingestion run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
