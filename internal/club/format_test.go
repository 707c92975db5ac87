package club_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adroit-club/assistant/internal/club"
)

func TestResourceDocument_FixedLayout(t *testing.T) {
	r := club.Resource{
		ID:          "res-42",
		Title:       "Concurrency in Go",
		Type:        "book",
		Domain:      "backend",
		Difficulty:  "intermediate",
		URL:         "https://example.com/book",
		Tags:        []string{"go", "concurrency"},
		Description: "Patterns for goroutines and channels.",
	}

	doc := r.Document()

	want := "Title: Concurrency in Go\n" +
		"Type: book\n" +
		"Domain: backend\n" +
		"Difficulty: intermediate\n" +
		"URL: https://example.com/book\n" +
		"Tags: go, concurrency\n" +
		"\nDescription:\nPatterns for goroutines and channels."
	assert.Equal(t, want, doc.Content)

	assert.Equal(t, "resource:res-42", doc.Metadata["source"])
	assert.Equal(t, "res-42", doc.Metadata["id"])
	assert.Equal(t, "Concurrency in Go", doc.Metadata["title"])
	assert.Equal(t, "backend", doc.Metadata["domain"])
}

func TestResourceDocument_EmptyFieldsKeepLayout(t *testing.T) {
	doc := club.Resource{ID: "res-1", Title: "Untitled"}.Document()

	assert.Contains(t, doc.Content, "Type: \n")
	assert.Contains(t, doc.Content, "Tags: \n")
	assert.Contains(t, doc.Content, "\nDescription:\n")
}

func TestDocuments_PreservesOrder(t *testing.T) {
	docs := club.Documents([]club.Resource{
		{ID: "a", Title: "Alpha"},
		{ID: "b", Title: "Beta"},
	})

	require.Len(t, docs, 2)
	assert.Equal(t, "a", docs[0].Metadata["id"])
	assert.Equal(t, "b", docs[1].Metadata["id"])
}

func TestDocuments_DistinctSourcesPerRecord(t *testing.T) {
	docs := club.Documents([]club.Resource{
		{ID: "a", Title: "Alpha"},
		{ID: "b", Title: "Beta"},
	})

	require.Len(t, docs, 2)
	assert.NotEqual(t, docs[0].Metadata["source"], docs[1].Metadata["source"])
}
