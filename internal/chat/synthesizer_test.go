package chat_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adroit-club/assistant/internal/chat"
	"github.com/adroit-club/assistant/internal/index"
	"github.com/adroit-club/assistant/internal/rag"
	"github.com/adroit-club/assistant/internal/testutil"
)

func chunk(content string) index.Result {
	return index.Result{Chunk: index.Chunk{Content: content}}
}

func TestBuildPrompt(t *testing.T) {
	prompt := chat.BuildPrompt("What is AdroIT?", []index.Result{
		chunk("AdroIT is a technical club."),
		chunk("It runs weekly workshops."),
	})

	assert.Contains(t, prompt,
		"AdroIT is a technical club.\n\nIt runs weekly workshops.")
	assert.Contains(t, prompt, "Question: What is AdroIT?")
	assert.Contains(t, prompt, chat.FallbackAnswer)
}

func TestSynthesize_PrefersUserCredential(t *testing.T) {
	gen := testutil.NewStubGenerator("grounded answer")
	s := chat.NewSynthesizer(gen, "admin-key", testutil.DiscardLogger())

	answer, err := s.Synthesize(context.Background(), "question",
		[]index.Result{chunk("context")},
		rag.Identity{UserID: "alice", Credential: "alice-key"})

	require.NoError(t, err)
	assert.Equal(t, "grounded answer", answer)
	assert.Equal(t, "alice-key", gen.LastCredential())
}

func TestSynthesize_FallsBackToAdminCredential(t *testing.T) {
	gen := testutil.NewStubGenerator("grounded answer")
	s := chat.NewSynthesizer(gen, "admin-key", testutil.DiscardLogger())

	_, err := s.Synthesize(context.Background(), "question",
		[]index.Result{chunk("context")}, rag.Identity{UserID: "bob"})

	require.NoError(t, err)
	assert.Equal(t, "admin-key", gen.LastCredential())
}

func TestSynthesize_NoCredentialAnywhere(t *testing.T) {
	gen := testutil.NewStubGenerator("never used")
	s := chat.NewSynthesizer(gen, "", testutil.DiscardLogger())

	_, err := s.Synthesize(context.Background(), "question", nil, rag.Identity{})

	assert.ErrorIs(t, err, chat.ErrNotInitialized)
	assert.Zero(t, gen.Calls(), "generator must not be called without a credential")
}

func TestSynthesize_ProviderFailure(t *testing.T) {
	boom := errors.New("quota exceeded")
	gen := testutil.NewStubGenerator("")
	gen.FailWith(boom)
	s := chat.NewSynthesizer(gen, "admin-key", testutil.DiscardLogger())

	_, err := s.Synthesize(context.Background(), "question",
		[]index.Result{chunk("context")}, rag.Identity{})

	assert.ErrorIs(t, err, chat.ErrGeneration)
	assert.ErrorIs(t, err, boom)
}
