// Package api exposes the assistant over HTTP: chat, uploads, reindex
// triggers and health probes.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adroit-club/assistant/internal/chat"
	"github.com/adroit-club/assistant/internal/log"
	"github.com/adroit-club/assistant/internal/rag"
)

// defaultMaxUploadBytes bounds one uploaded document.
const defaultMaxUploadBytes = 20 << 20

// ServerConfig wires the API server.
type ServerConfig struct {
	Logger log.Logger

	// Chat answers questions. Required.
	Chat *chat.Service

	// Supervisor rebuilds partitions. Optional: nil disables uploads and
	// reindex triggers.
	Supervisor *rag.Supervisor

	// UserDocsDir maps a user ID to the directory uploads land in.
	// Required when Supervisor is set.
	UserDocsDir func(userID string) string

	// Pool is reported by /ready. Optional.
	Pool *pgxpool.Pool

	// MaxUploadBytes bounds one uploaded file (0 = 20 MiB).
	MaxUploadBytes int64
}

// Server is the JSON API HTTP server.
type Server struct {
	mux    *http.ServeMux
	logger log.Logger
}

// NewServer creates a server with all routes configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Chat == nil {
		return nil, errors.New("chat service is required")
	}
	if cfg.Supervisor != nil && cfg.UserDocsDir == nil {
		return nil, errors.New("user docs locator is required for uploads")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = defaultMaxUploadBytes
	}

	mux := http.NewServeMux()

	ch := &chatHandler{service: cfg.Chat, logger: logger}
	mux.HandleFunc("POST /api/chat", ch.send)

	if cfg.Supervisor != nil {
		uh := &uploadHandler{
			supervisor: cfg.Supervisor,
			docsDir:    cfg.UserDocsDir,
			maxBytes:   maxUpload,
			logger:     logger,
		}
		mux.HandleFunc("POST /api/upload", uh.upload)

		rh := &reindexHandler{supervisor: cfg.Supervisor, logger: logger}
		mux.HandleFunc("POST /api/reindex", rh.trigger)
	}

	var handler http.Handler = mux
	handler = loggingMiddleware(logger)(handler)
	handler = requestIDMiddleware()(handler)
	handler = recoveryMiddleware(logger)(handler)

	// Health probes stay outside the middleware stack.
	topMux := http.NewServeMux()
	topMux.HandleFunc("GET /health", health)
	topMux.Handle("GET /ready", readiness(cfg.Pool))
	topMux.Handle("/", handler)

	return &Server{mux: topMux, logger: logger}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("http server stopped")
	return nil
}
