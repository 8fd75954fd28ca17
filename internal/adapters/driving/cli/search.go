package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sitechat-io/sitechat-cli/internal/core/domain"
)

var (
	searchTopK        int
	searchCrawledOnly bool
	searchJSON        bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Inspect raw retrieval results",
	Long: `Ranks the stored passages against the query and prints them with
their scores, without generating an answer. Useful for checking what
the assistant would ground a response in.

Crawled passages always rank ahead of curated ones. With --crawled-only
the ranking switches to the chat pipeline's mode: keyword overlap
first, similarity second, crawled content only.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchTopK, "topk", "k", 0, "maximum number of results (0 = default)")
	searchCmd.Flags().BoolVar(&searchCrawledOnly, "crawled-only", false, "restrict candidates to crawled content")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if retrievalService == nil {
		return errors.New("retrieval service not configured: set " + envOpenAIKey)
	}

	ctx := context.Background()

	var (
		results []domain.RetrievedChunk
		err     error
	)
	if searchCrawledOnly {
		results, err = retrievalService.RetrieveCrawled(ctx, query, searchTopK)
	} else {
		results, err = retrievalService.Retrieve(ctx, query, searchTopK)
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchTable(cmd, results)
}

// searchResult is the JSON shape of one retrieval hit.
type searchResult struct {
	ID          string  `json:"id"`
	Title       string  `json:"title,omitempty"`
	Slug        string  `json:"slug,omitempty"`
	Origin      string  `json:"origin"`
	Score       float64 `json:"score"`
	KeywordHits int     `json:"keywordHits"`
	Content     string  `json:"content"`
}

func outputSearchJSON(cmd *cobra.Command, results []domain.RetrievedChunk) error {
	out := make([]searchResult, 0, len(results))
	for i := range results {
		c := &results[i]
		out = append(out, searchResult{
			ID:          c.Chunk.ID,
			Title:       c.Chunk.DocumentTitle,
			Slug:        c.Chunk.Slug,
			Origin:      c.Chunk.Origin.String(),
			Score:       c.Score,
			KeywordHits: c.KeywordHits,
			Content:     c.Chunk.Content,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.RetrievedChunk) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		cmd.Println("If the knowledge base is empty, run 'sitechat ingest' first.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		c := &results[i]

		title := c.Chunk.DocumentTitle
		if title == "" {
			title = c.Chunk.ID
		}

		cmd.Printf("  [%d] %s (score %.3f, %d keyword hits, %s)\n",
			i+1, title, c.Score, c.KeywordHits, c.Chunk.Origin)
		cmd.Printf("      %s\n", snippet(c.Chunk.Content, 120))
		cmd.Println()
	}

	return nil
}

// snippet collapses whitespace and truncates content to a preview line.
func snippet(content string, max int) string {
	collapsed := strings.Join(strings.Fields(content), " ")
	return truncate(collapsed, max)
}
