package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/sitechat-io/sitechat-cli/internal/core/domain"
	"github.com/sitechat-io/sitechat-cli/internal/core/services"
)

var statusPing bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show knowledge base and provider status",
	Long: `Shows the state of the knowledge base, the last ingestion run, the
source directory and the configured providers. Sections the current
configuration cannot answer print setup guidance instead of failing.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusPing, "ping", false, "send a test request to each configured provider")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cmd.Printf("sitechat %s\n", version)
	printKnowledgeStatus(ctx, cmd)
	printIngestStatus(ctx, cmd)
	printSourceStatus(ctx, cmd)
	printProviderStatus(cmd)

	if statusPing {
		return pingProviders(ctx, cmd)
	}
	return nil
}

func printKnowledgeStatus(ctx context.Context, cmd *cobra.Command) {
	cmd.Println()
	cmd.Println("[Knowledge Base]")
	if statusInfo.Backend != "" {
		cmd.Printf("  Backend:   %s\n", statusInfo.Backend)
	}
	if statusInfo.StorePath != "" {
		cmd.Printf("  Path:      %s\n", statusInfo.StorePath)
	}

	if knowledgeStore == nil {
		cmd.Println("  No knowledge store configured.")
		return
	}
	index, err := knowledgeStore.Load(ctx)
	if err != nil {
		cmd.Printf("  Load failed: %v\n", err)
		return
	}

	cmd.Printf("  Chunks:    %d (%d crawled, %d curated)\n",
		len(index.Chunks), index.CrawledCount(), index.CuratedCount())
	if index.EmbeddingModel != "" {
		cmd.Printf("  Model:     %s\n", index.EmbeddingModel)
	}
	if index.GeneratedAt.Unix() > 0 {
		cmd.Printf("  Generated: %s\n", index.GeneratedAt.Local().Format(time.RFC1123))
	} else {
		cmd.Println("  Generated: never")
	}
}

func printIngestStatus(ctx context.Context, cmd *cobra.Command) {
	cmd.Println()
	cmd.Println("[Last Ingestion]")
	if freshnessGate == nil {
		cmd.Println("  No ingest state store configured.")
		return
	}

	state, err := freshnessGate.Last(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			cmd.Println("  No ingestion run recorded.")
			cmd.Println("  Run 'sitechat ingest' to build the knowledge base.")
		} else {
			cmd.Printf("  Load failed: %v\n", err)
		}
		return
	}

	age := time.Since(state.LastRunAt)
	cmd.Printf("  Completed: %s (%s ago)\n",
		state.LastRunAt.Local().Format(time.RFC1123), age.Round(time.Second))
	cmd.Printf("  Chunks:    %d\n", state.ChunksAdded)
	if age < services.IngestTTL {
		cmd.Printf("  Freshness: fresh (window %s)\n", services.IngestTTL)
	} else {
		cmd.Println("  Freshness: stale, the next ingest run will re-crawl")
	}
}

func printSourceStatus(ctx context.Context, cmd *cobra.Command) {
	cmd.Println()
	cmd.Println("[Sources]")
	if sourceService == nil {
		cmd.Println("  Source directory not configured.")
		return
	}

	sources, err := sourceService.List(ctx)
	if err != nil {
		cmd.Printf("  Load failed: %v\n", err)
		return
	}

	active := 0
	for i := range sources {
		if sources[i].Active {
			active++
		}
	}
	cmd.Printf("  Configured: %d (%d active)\n", len(sources), active)
}

func printProviderStatus(cmd *cobra.Command) {
	cmd.Println()
	cmd.Println("[Providers]")
	if embeddingService != nil {
		cmd.Printf("  Embedding:  %s\n", statusInfo.EmbeddingModel)
	} else {
		cmd.Printf("  Embedding:  not configured (set %s)\n", envOpenAIKey)
	}
	if completionService != nil {
		cmd.Printf("  Completion: %s\n", statusInfo.CompletionModel)
	} else {
		cmd.Printf("  Completion: not configured (set %s)\n", envOpenAIKey)
	}
	if statusInfo.CrawlConfigured {
		cmd.Println("  Crawl:      configured")
	} else {
		cmd.Printf("  Crawl:      not configured (set crawl.endpoint in config.toml and %s)\n", envCrawlKey)
	}
}

// pingProviders sends one lightweight request per configured provider.
// All configured providers are tried even when an earlier one fails.
func pingProviders(ctx context.Context, cmd *cobra.Command) error {
	cmd.Println()
	cmd.Println("[Ping]")
	if embeddingService == nil && completionService == nil {
		cmd.Println("  No providers configured.")
		return nil
	}

	failed := false
	if embeddingService != nil {
		if err := embeddingService.Ping(ctx); err != nil {
			cmd.Printf("  Embedding:  FAIL (%v)\n", err)
			failed = true
		} else {
			cmd.Println("  Embedding:  ok")
		}
	}
	if completionService != nil {
		if err := completionService.Ping(ctx); err != nil {
			cmd.Printf("  Completion: FAIL (%v)\n", err)
			failed = true
		} else {
			cmd.Println("  Completion: ok")
		}
	}

	if failed {
		return errors.New("provider ping failed")
	}
	return nil
}
