package index_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adroit-club/assistant/internal/index"
	"github.com/adroit-club/assistant/internal/testutil"
)

func TestNewEmbeddingFunc_BridgesEmbedder(t *testing.T) {
	embedder := testutil.NewHashEmbedder(testDim)
	fn := index.NewEmbeddingFunc(embedder)

	vec, err := fn(context.Background(), "some text")
	require.NoError(t, err)
	assert.Len(t, vec, testDim)

	// Deterministic: same text, same vector.
	again, err := fn(context.Background(), "some text")
	require.NoError(t, err)
	assert.Equal(t, vec, again)
}

func TestNewEmbeddingFunc_PropagatesError(t *testing.T) {
	embedder := testutil.NewHashEmbedder(testDim)
	embedder.FailWith(errors.New("quota exceeded"))
	fn := index.NewEmbeddingFunc(embedder)

	_, err := fn(context.Background(), "text")
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestNewEmbeddingFunc_NilEmbedder(t *testing.T) {
	fn := index.NewEmbeddingFunc(nil)

	_, err := fn(context.Background(), "text")
	assert.ErrorContains(t, err, "not configured")
}
