package chat

import (
	"fmt"
	"strings"

	"github.com/adroit-club/assistant/internal/index"
)

// FallbackAnswer is the literal phrase the model is instructed to return
// when the retrieved context cannot answer the question.
const FallbackAnswer = "I cannot answer this based on the provided documents."

// promptTemplate constrains the model to the retrieved context. The prompt
// size is implicitly bounded by the router's result cap, so no further
// truncation happens here.
const promptTemplate = `Answer the question based ONLY on the following context about AdroIT technical club.
If the answer is not in the context, say "%s"

Context:
%s

Question: %s

Answer:`

// BuildPrompt assembles the generation prompt from ranked chunks. Chunk
// texts are joined in their ranked order, separated by a blank line.
func BuildPrompt(query string, results []index.Result) string {
	contents := make([]string, len(results))
	for i, r := range results {
		contents[i] = r.Content
	}
	context := strings.Join(contents, "\n\n")
	return fmt.Sprintf(promptTemplate, FallbackAnswer, context, query)
}
