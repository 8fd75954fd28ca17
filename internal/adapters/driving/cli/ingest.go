package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sitechat-io/sitechat-cli/internal/core/domain"
)

var ingestForce bool

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Crawl sources and rebuild the knowledge base",
	Long: `Crawls every active source, splits the pages into passages, embeds
them and stores the result. A run against an unchanged source set inside
the freshness window is skipped; use --force to re-ingest anyway.

Curated documents added with 'sitechat docs add' are never touched.`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestForce, "force", "f", false, "ignore the freshness window and re-ingest")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured: set " + envOpenAIKey)
	}
	if !statusInfo.CrawlConfigured {
		return errors.New("crawl provider not configured: set crawl.endpoint in config.toml and " + envCrawlKey)
	}

	cmd.Println("Ingesting sources...")

	report, err := ingestService.Ingest(context.Background(), ingestForce)
	if err != nil {
		if errors.Is(err, domain.ErrIngestInProgress) {
			return errors.New("another ingestion run is already in progress")
		}
		return fmt.Errorf("ingest failed: %w", err)
	}

	renderIngestReport(cmd, report)
	return nil
}

// renderIngestReport prints the outcome and, for a full run, the
// per-source table.
func renderIngestReport(cmd *cobra.Command, report *domain.IngestReport) {
	switch report.Outcome {
	case domain.OutcomeNoSources:
		cmd.Println("No active sources configured.")
		cmd.Println("Add one with 'sitechat sources add <url>'.")
		return

	case domain.OutcomeCacheHit:
		cmd.Printf("Knowledge base is fresh (%d chunks from the last run). Nothing to do.\n",
			report.TotalChunksAdded)
		cmd.Println("Use --force to re-ingest anyway.")
		return

	case domain.OutcomeIngested:
		// Per-source detail below.
	}

	cmd.Println()
	for i := range report.Sources {
		src := &report.Sources[i]
		if src.Success {
			cmd.Printf("  ok    %-30s %3d pages %4d chunks\n",
				truncate(src.SourceName, 30), src.PagesFetched, src.ChunksAdded)
		} else {
			cmd.Printf("  FAIL  %-30s %s\n", truncate(src.SourceName, 30), src.Error)
		}
	}

	cmd.Println()
	cmd.Printf("Ingested %d chunks from %d sources in %s.\n",
		report.TotalChunksAdded, len(report.Sources), report.Duration.Round(time.Millisecond))
	switch {
	case report.AllFailed():
		cmd.Println("Every source failed; nothing was indexed. Check the crawl provider settings and retry.")
	case report.FailedSources() > 0:
		cmd.Printf("%d source(s) failed; see above. Re-run with --verbose for detail.\n",
			report.FailedSources())
	}
}

// truncate shortens s to max runes for column alignment.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
