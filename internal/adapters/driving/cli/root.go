// Package cli implements the sitechat command line interface. Commands
// are thin: they parse flags, call the driving ports and render the
// result. Services are injected once at startup via SetServices; every
// command nil-checks the service it needs so a partially configured
// installation degrades with guidance instead of panics.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/sitechat-io/sitechat-cli/internal/core/ports/driven"
	"github.com/sitechat-io/sitechat-cli/internal/core/ports/driving"
	"github.com/sitechat-io/sitechat-cli/internal/core/services"
	"github.com/sitechat-io/sitechat-cli/internal/logger"
)

// version is the build version, overridden at link time.
var version = "dev"

// Injected services. Nil means the provider behind the service is not
// configured; commands translate that into setup guidance.
var (
	chatService      driving.ChatService
	ingestService    driving.IngestService
	retrievalService driving.RetrievalService
	sourceService    driving.SourceService

	knowledgeStore driven.KnowledgeStore
	freshnessGate  *services.FreshnessGate

	embeddingService  driven.EmbeddingService
	completionService driven.CompletionService

	statusInfo StatusInfo
)

// verbose is the global --verbose flag.
var verbose bool

var rootCmd = &cobra.Command{
	Use:   "sitechat",
	Short: "Chat with your websites",
	Long: `SiteChat ingests configured websites into a local knowledge base and
answers questions about them, grounded in the indexed content.

Typical workflow:
  sitechat sources add example.com     Register a site
  sitechat ingest                      Crawl and index it
  sitechat ask "what does it do?"      Ask a one-shot question
  sitechat chat                        Open the interactive session`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output on stderr")
}

// Services bundles everything the commands need. Fields may be nil when
// the corresponding provider is not configured.
type Services struct {
	Chat      driving.ChatService
	Ingest    driving.IngestService
	Retrieval driving.RetrievalService
	Source    driving.SourceService

	// Knowledge and Freshness back the status command.
	Knowledge driven.KnowledgeStore
	Freshness *services.FreshnessGate

	// Embedding and Completion are the raw provider clients, used for
	// reachability checks.
	Embedding  driven.EmbeddingService
	Completion driven.CompletionService

	Status StatusInfo
}

// StatusInfo describes the wiring outcome for display purposes.
type StatusInfo struct {
	// Backend is the knowledge store backend name ("file", "sqlite").
	Backend string

	// StorePath is where the knowledge store lives on disk.
	StorePath string

	// EmbeddingModel and CompletionModel are the configured model names,
	// empty when the provider is not configured.
	EmbeddingModel  string
	CompletionModel string

	// CrawlConfigured reports whether the crawl provider has both an
	// endpoint and an API key.
	CrawlConfigured bool
}

// SetServices injects the wired services into the command tree.
func SetServices(s *Services) {
	if s == nil {
		return
	}
	chatService = s.Chat
	ingestService = s.Ingest
	retrievalService = s.Retrieval
	sourceService = s.Source
	knowledgeStore = s.Knowledge
	freshnessGate = s.Freshness
	embeddingService = s.Embedding
	completionService = s.Completion
	statusInfo = s.Status
}

// SetVersion overrides the reported build version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
