// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - SourceStore: Crawl source directory
//   - KnowledgeStore: Chunk index persistence
//   - IngestStateStore: Freshness metadata persistence
//   - PageFetcher: Crawl/search provider
//   - EmbeddingService: Vector embeddings (ingestion and retrieval both need it)
//   - RunLock: Single-writer guard around ingestion runs
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - CompletionService: LLM answers. Without it, only raw retrieval works.
//   - PromptStore: Prompt overrides. Without it, built-in prompts are used.
//   - ExtractorRegistry: File ingestion. Without it, only crawling works.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
