// Package app assembles the assistant: configuration, storage, embedding,
// retrieval and chat, with a single Close for teardown.
package app

import (
	"errors"

	"github.com/firebase/genkit/go/ai"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adroit-club/assistant/internal/chat"
	"github.com/adroit-club/assistant/internal/club"
	"github.com/adroit-club/assistant/internal/config"
	"github.com/adroit-club/assistant/internal/log"
	"github.com/adroit-club/assistant/internal/rag"
)

// App holds the assembled application components.
type App struct {
	Config *config.Config
	Logger log.Logger

	Pool     *pgxpool.Pool
	Club     *club.Store
	Embedder ai.Embedder

	Handle     *rag.Handle
	Supervisor *rag.Supervisor
	Chat       *chat.Service

	cleanups []func() error
}

// Close releases resources in reverse initialization order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		if err := a.cleanups[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *App) onClose(fn func() error) {
	a.cleanups = append(a.cleanups, fn)
}
