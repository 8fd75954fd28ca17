// Package extractors provides implementations of the Extractor
// interface for the file formats operators can ingest directly. Each
// extractor knows how to pull a title and raw text out of one format.
//
// Extractors are registered with the Registry at startup; the registry
// routes files by extension.
package extractors
