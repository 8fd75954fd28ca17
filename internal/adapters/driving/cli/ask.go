package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sitechat-io/sitechat-cli/internal/core/domain"
)

var (
	askJSON        bool
	askShowContext bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a one-shot question about your sites",
	Long: `Retrieves the most relevant indexed passages for the question and
generates an answer grounded in them. The answer streams to stdout as
the model produces it.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer and its context as JSON")
	askCmd.Flags().BoolVar(&askShowContext, "context", false, "list the grounding passages after the answer (disables streaming)")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := args[0]

	if chatService == nil {
		return errors.New("chat service not configured: set " + envOpenAIKey)
	}

	ctx := context.Background()

	if askJSON || askShowContext {
		return askBuffered(ctx, cmd, question)
	}
	return askStreamed(ctx, cmd, question)
}

// askStreamed prints response deltas as they arrive.
func askStreamed(ctx context.Context, cmd *cobra.Command, question string) error {
	deltas, errs := chatService.AnswerStream(ctx, question, nil)

	wrote := false
	for delta := range deltas {
		cmd.Print(delta)
		wrote = true
	}
	if wrote {
		cmd.Println()
	}

	if err := <-errs; err != nil {
		return fmt.Errorf("answer failed: %w", err)
	}
	return nil
}

// askBuffered waits for the complete answer, which makes the grounding
// context available for display.
func askBuffered(ctx context.Context, cmd *cobra.Command, question string) error {
	answer, err := chatService.Answer(ctx, question, nil)
	if err != nil {
		return fmt.Errorf("answer failed: %w", err)
	}

	if askJSON {
		return outputAnswerJSON(cmd, answer)
	}

	cmd.Println(answer.Text)
	if len(answer.Context) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for i := range answer.Context {
			cmd.Printf("  [%d] %s\n", i+1, contextLabel(&answer.Context[i]))
		}
	}
	return nil
}

// contextRef is the JSON shape of one grounding passage. The embedding
// vector stays out of operator-facing output.
type contextRef struct {
	Title       string  `json:"title,omitempty"`
	Slug        string  `json:"slug,omitempty"`
	Origin      string  `json:"origin"`
	Score       float64 `json:"score"`
	KeywordHits int     `json:"keywordHits"`
}

// answerOutput is the JSON shape of a completed answer.
type answerOutput struct {
	Answer      string       `json:"answer"`
	NeedsIngest bool         `json:"needsIngest,omitempty"`
	Context     []contextRef `json:"context,omitempty"`
}

func outputAnswerJSON(cmd *cobra.Command, answer *domain.Answer) error {
	out := answerOutput{
		Answer:      answer.Text,
		NeedsIngest: answer.NeedsIngest,
		Context:     make([]contextRef, 0, len(answer.Context)),
	}
	for i := range answer.Context {
		c := &answer.Context[i]
		out.Context = append(out.Context, contextRef{
			Title:       c.Chunk.DocumentTitle,
			Slug:        c.Chunk.Slug,
			Origin:      c.Chunk.Origin.String(),
			Score:       c.Score,
			KeywordHits: c.KeywordHits,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// contextLabel renders one grounding passage reference for the footer.
func contextLabel(chunk *domain.RetrievedChunk) string {
	label := chunk.Chunk.DocumentTitle
	if label == "" {
		label = chunk.Chunk.Slug
	}
	if label == "" {
		label = chunk.Chunk.ID
	}
	return fmt.Sprintf("%s (%.2f)", label, chunk.Score)
}
