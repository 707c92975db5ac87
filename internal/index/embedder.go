package index

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	chromem "github.com/philippgille/chromem-go"
)

// NewEmbeddingFunc creates a chromem-go EmbeddingFunc from a Genkit
// ai.Embedder. The returned function embeds query text at search time;
// ingestion embeds chunks in batch and passes vectors in directly.
//
// Note: chromem-go normalizes vectors itself, no manual normalization needed.
func NewEmbeddingFunc(embedder ai.Embedder) chromem.EmbeddingFunc {
	if embedder == nil {
		return func(context.Context, string) ([]float32, error) {
			return nil, fmt.Errorf("embedding capability is not configured")
		}
	}
	return func(ctx context.Context, text string) ([]float32, error) {
		req := &ai.EmbedRequest{
			Input: []*ai.Document{
				ai.DocumentFromText(text, nil),
			},
		}

		resp, err := embedder.Embed(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("embed failed: %w", err)
		}

		if len(resp.Embeddings) == 0 {
			return nil, fmt.Errorf("no embeddings returned")
		}

		return resp.Embeddings[0].Embedding, nil
	}
}
