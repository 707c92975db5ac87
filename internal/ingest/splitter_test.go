package ingest_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adroit-club/assistant/internal/index"
	"github.com/adroit-club/assistant/internal/ingest"
)

func TestSplit_ShortDocumentSingleChunk(t *testing.T) {
	doc := index.Document{
		Content:  "A short note about the weekly meeting.",
		Metadata: map[string]string{"source": "notes/meeting.md"},
	}

	chunks := ingest.Split(doc)

	require.Len(t, chunks, 1)
	assert.Equal(t, doc.Content, chunks[0].Content)
	assert.Equal(t, "notes/meeting.md", chunks[0].Metadata["source"])
	assert.NotEmpty(t, chunks[0].ID)
}

func TestSplit_RespectsChunkSize(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 120; i++ {
		b.WriteString("Paragraph about club workshops, projects and study groups.\n\n")
	}
	doc := index.Document{
		Content:  b.String(),
		Metadata: map[string]string{"source": "handbook.md"},
	}

	chunks := ingest.Split(doc)

	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c.Content)), ingest.ChunkSize,
			"chunk %s exceeds size bound", c.ID)
		assert.NotEmpty(t, strings.TrimSpace(c.Content))
	}
}

func TestSplit_ConsecutiveChunksOverlap(t *testing.T) {
	words := make([]string, 600)
	for i := range words {
		words[i] = "token" + strings.Repeat("x", i%7)
	}
	doc := index.Document{
		Content:  strings.Join(words, " "),
		Metadata: map[string]string{"source": "long.txt"},
	}

	chunks := ingest.Split(doc)
	require.Greater(t, len(chunks), 1)

	// The start of each chunk repeats material from the end of the
	// previous one.
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1].Content
		firstWord := strings.Fields(chunks[i].Content)[0]
		assert.Contains(t, prev, firstWord,
			"chunk %d does not overlap its predecessor", i)
	}
}

func TestSplit_HardCutsUnbrokenText(t *testing.T) {
	doc := index.Document{
		Content:  strings.Repeat("a", 2500),
		Metadata: map[string]string{"source": "blob.txt"},
	}

	chunks := ingest.Split(doc)

	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c.Content)), ingest.ChunkSize)
	}
}

func TestSplit_DeterministicIDs(t *testing.T) {
	doc := index.Document{
		Content:  "First paragraph.\n\nSecond paragraph.",
		Metadata: map[string]string{"source": "stable.md"},
	}

	first := ingest.Split(doc)
	second := ingest.Split(doc)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
}

func TestSplitAll_PreservesDocumentOrder(t *testing.T) {
	docs := []index.Document{
		{Content: "alpha", Metadata: map[string]string{"source": "a.md"}},
		{Content: "beta", Metadata: map[string]string{"source": "b.md"}},
	}

	chunks := ingest.SplitAll(docs)

	require.Len(t, chunks, 2)
	assert.Equal(t, "alpha", chunks[0].Content)
	assert.Equal(t, "beta", chunks[1].Content)
}
