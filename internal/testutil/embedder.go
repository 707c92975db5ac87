// Package testutil provides shared testing utilities for the assistant.
//
// It contains reusable test infrastructure used across packages, following
// the pattern of standard library helpers like net/http/httptest.
package testutil

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"strings"
	"sync"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/core/api"
	chromem "github.com/philippgille/chromem-go"
)

// HashEmbedder provides deterministic embedding vectors for testing.
//
// By default it derives a unit vector from content using SHA-256, so the
// same text always embeds identically. Explicit mappings can be added for
// precise cosine-similarity control between test inputs.
//
// Thread-safe for concurrent use.
type HashEmbedder struct {
	mu      sync.Mutex
	vectors map[string][]float32
	dim     int

	embedErr  error
	callCount int
}

// NewHashEmbedder creates a deterministic embedder with the given vector
// dimension.
func NewHashEmbedder(dim int) *HashEmbedder {
	return &HashEmbedder{
		vectors: make(map[string][]float32),
		dim:     dim,
	}
}

// SetVector registers an explicit vector for a given content string.
func (e *HashEmbedder) SetVector(content string, vec []float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vectors[content] = vec
}

// FailWith makes every subsequent Embed call return err (nil to restore).
func (e *HashEmbedder) FailWith(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.embedErr = err
}

// CallCount returns the number of Embed calls made so far.
func (e *HashEmbedder) CallCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.callCount
}

// Name implements ai.Embedder.
func (e *HashEmbedder) Name() string {
	return "test/hash-embedder"
}

// Register implements ai.Embedder. No-op for testing.
func (e *HashEmbedder) Register(api.Registry) {}

// Embed implements ai.Embedder.
func (e *HashEmbedder) Embed(_ context.Context, req *ai.EmbedRequest) (*ai.EmbedResponse, error) {
	e.mu.Lock()
	e.callCount++
	err := e.embedErr
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}

	embeddings := make([]*ai.Embedding, len(req.Input))
	for i, doc := range req.Input {
		embeddings[i] = &ai.Embedding{
			Embedding: e.vectorFor(documentText(doc)),
		}
	}
	return &ai.EmbedResponse{Embeddings: embeddings}, nil
}

// EmbeddingFunc returns a chromem-go embedding function backed by the same
// deterministic vectors, so index queries match chunks embedded via Embed.
func (e *HashEmbedder) EmbeddingFunc() chromem.EmbeddingFunc {
	return func(_ context.Context, text string) ([]float32, error) {
		e.mu.Lock()
		err := e.embedErr
		e.mu.Unlock()
		if err != nil {
			return nil, err
		}
		return e.vectorFor(text), nil
	}
}

// vectorFor returns the explicit vector for content if registered, else a
// hash-derived one.
func (e *HashEmbedder) vectorFor(content string) []float32 {
	e.mu.Lock()
	if v, ok := e.vectors[content]; ok {
		e.mu.Unlock()
		return v
	}
	e.mu.Unlock()

	return deterministicVector(content, e.dim)
}

// documentText extracts all text content from a Document's parts.
func documentText(doc *ai.Document) string {
	var sb strings.Builder
	for _, p := range doc.Content {
		if p.Kind == ai.PartText {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

// deterministicVector generates a normalized vector from content using
// SHA-256. The same content always produces the same vector.
func deterministicVector(content string, dim int) []float32 {
	hash := sha256.Sum256([]byte(content))
	vec := make([]float32, dim)

	for i := range vec {
		idx := (i * 4) % len(hash)
		bits := binary.LittleEndian.Uint32([]byte{
			hash[idx%32],
			hash[(idx+1)%32],
			hash[(idx+2)%32],
			hash[(idx+3)%32],
		})
		vec[i] = (float32(bits)/float32(math.MaxUint32))*2 - 1
	}

	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	norm = float32(math.Sqrt(float64(norm)))
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}
