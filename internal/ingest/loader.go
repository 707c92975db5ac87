package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adroit-club/assistant/internal/index"
	"github.com/adroit-club/assistant/internal/log"
)

// DirectorySource reads documents from every supported file under a
// directory tree. Markdown and plain text are read verbatim, PDFs go
// through text extraction. Unreadable files are skipped with a warning so
// one corrupt upload never blocks a whole partition.
type DirectorySource struct {
	dir    string
	logger log.Logger
}

// NewDirectorySource creates a source over the given directory.
func NewDirectorySource(dir string, logger log.Logger) *DirectorySource {
	if logger == nil {
		logger = log.NewNop()
	}
	return &DirectorySource{dir: dir, logger: logger}
}

// Documents walks the directory and loads every supported file. A missing
// directory yields zero documents, not an error.
func (s *DirectorySource) Documents(ctx context.Context) ([]index.Document, error) {
	if _, err := os.Stat(s.dir); os.IsNotExist(err) {
		return nil, nil
	}

	var docs []index.Document
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !supportedFile(path) {
			return nil
		}

		content, loadErr := loadFile(path)
		if loadErr != nil {
			s.logger.Warn("skipping unreadable document",
				"path", path,
				"error", loadErr)
			return nil
		}
		if strings.TrimSpace(content) == "" {
			s.logger.Warn("skipping empty document", "path", path)
			return nil
		}

		docs = append(docs, index.Document{
			Content: content,
			Metadata: map[string]string{
				"source": path,
				"name":   filepath.Base(path),
			},
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", s.dir, err)
	}
	return docs, nil
}

func supportedFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".txt", ".pdf":
		return true
	default:
		return false
	}
}

func loadFile(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return extractPDF(path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}
	return string(content), nil
}
