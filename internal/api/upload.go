package api

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/adroit-club/assistant/internal/log"
	"github.com/adroit-club/assistant/internal/rag"
)

type uploadHandler struct {
	supervisor *rag.Supervisor
	docsDir    func(userID string) string
	maxBytes   int64
	logger     log.Logger
}

// upload stores one document for a user and rebuilds that user's private
// partition before responding, so the next question already sees it.
func (h *uploadHandler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	userID := strings.TrimSpace(r.FormValue("userId"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}
	// User IDs become directory names.
	if userID != filepath.Base(userID) || strings.ContainsAny(userID, "/\\") {
		writeError(w, http.StatusBadRequest, "invalid userId")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".txt", ".pdf":
	default:
		writeError(w, http.StatusUnsupportedMediaType,
			"only .md, .txt and .pdf files are supported")
		return
	}

	if err := h.save(file, h.docsDir(userID), name); err != nil {
		h.logger.Error("upload failed", "user", userID, "file", name, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store file")
		return
	}

	if err := h.supervisor.ReindexUser(r.Context(), userID); err != nil {
		h.logger.Error("user reindex after upload failed",
			"user", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to index file")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": fmt.Sprintf("File '%s' uploaded and indexed.", name),
	})
}

func (h *uploadHandler) save(file io.Reader, dir, name string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating upload directory: %w", err)
	}

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return dst.Close()
}
