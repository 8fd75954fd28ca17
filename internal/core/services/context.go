package services

import (
	"fmt"
	"strings"

	"github.com/sitechat-io/sitechat-cli/internal/core/domain"
)

// BuildContext formats retrieved chunks into the numbered context
// block the completion model consumes. Passages are numbered from 1 so
// the model can cite them as [1], [2] in its answer.
func BuildContext(chunks []domain.RetrievedChunk) string {
	if len(chunks) == 0 {
		return ""
	}

	parts := make([]string, len(chunks))
	for i, result := range chunks {
		parts[i] = fmt.Sprintf("[%d] %s", i+1, result.Chunk.Content)
	}
	return strings.Join(parts, "\n\n")
}
