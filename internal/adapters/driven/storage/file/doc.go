// Package file provides file-backed implementations of the storage ports.
// State lives as JSON documents in the sitechat data directory.
//
// Adapters:
//   - KnowledgeStore: the knowledge index as a single JSON document
//   - IngestStateStore: freshness metadata of the last ingestion run
package file
