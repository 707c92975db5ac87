package ingest_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adroit-club/assistant/internal/ingest"
	"github.com/adroit-club/assistant/internal/testutil"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDirectorySource_LoadsSupportedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "guide.md", "# Club guide\n\nHow to join the club.")
	writeFile(t, dir, "nested/faq.txt", "Frequently asked questions.")
	writeFile(t, dir, "photo.png", "not a document")

	source := ingest.NewDirectorySource(dir, testutil.DiscardLogger())
	docs, err := source.Documents(context.Background())

	require.NoError(t, err)
	require.Len(t, docs, 2)

	names := make([]string, 0, len(docs))
	for _, doc := range docs {
		names = append(names, doc.Metadata["name"])
		assert.NotEmpty(t, doc.Content)
		assert.NotEmpty(t, doc.Metadata["source"])
	}
	assert.ElementsMatch(t, []string{"guide.md", "faq.txt"}, names)
}

func TestDirectorySource_MissingDirectory(t *testing.T) {
	source := ingest.NewDirectorySource(
		filepath.Join(t.TempDir(), "absent"), testutil.DiscardLogger())

	docs, err := source.Documents(context.Background())

	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestDirectorySource_SkipsCorruptAndEmptyFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.md", "Readable content.")
	writeFile(t, dir, "empty.txt", "   \n")
	// Not a real PDF, extraction fails and the file is skipped.
	writeFile(t, dir, "broken.pdf", "garbage bytes")

	source := ingest.NewDirectorySource(dir, testutil.DiscardLogger())
	docs, err := source.Documents(context.Background())

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "good.md", docs[0].Metadata["name"])
}
