package rag

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/adroit-club/assistant/internal/ingest"
	"github.com/adroit-club/assistant/internal/log"
)

// Supervisor rebuilds index partitions in the background and swaps the
// active router when the public partitions change. Pipeline failures leave
// that partition's previous index untouched and never block the others.
type Supervisor struct {
	handle       *Handle
	global       *ingest.Pipeline
	resources    *ingest.Pipeline
	userPipeline func(userID string) *ingest.Pipeline
	newRouter    func() (*Router, error)
	logger       log.Logger

	wg sync.WaitGroup
}

// SupervisorConfig wires a Supervisor.
type SupervisorConfig struct {
	// Handle is the process-wide active router reference to swap.
	Handle *Handle

	// Global and Resources rebuild the two public partitions.
	Global    *ingest.Pipeline
	Resources *ingest.Pipeline

	// UserPipeline builds the pipeline for one user's private partition.
	UserPipeline func(userID string) *ingest.Pipeline

	// NewRouter constructs a router over the freshly persisted partitions.
	NewRouter func() (*Router, error)

	Logger log.Logger
}

// NewSupervisor creates a supervisor.
func NewSupervisor(cfg SupervisorConfig) (*Supervisor, error) {
	if cfg.Handle == nil {
		return nil, errors.New("router handle is required")
	}
	if cfg.NewRouter == nil {
		return nil, errors.New("router constructor is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}
	return &Supervisor{
		handle:       cfg.Handle,
		global:       cfg.Global,
		resources:    cfg.Resources,
		userPipeline: cfg.UserPipeline,
		newRouter:    cfg.NewRouter,
		logger:       logger,
	}, nil
}

// ReindexAll rebuilds the global and resources partitions in the
// background and swaps the active router on completion. It returns
// immediately; progress is observable through logs only.
//
// In-flight queries keep the router snapshot they already hold.
func (s *Supervisor) ReindexAll(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.rebuildPublic(ctx)
	}()
}

// ReindexUser rebuilds one user's private partition synchronously. No
// router swap is needed: private partitions are opened per request.
// Concurrent rebuilds for the same user serialize on the partition lock;
// different users rebuild independently.
func (s *Supervisor) ReindexUser(ctx context.Context, userID string) error {
	if s.userPipeline == nil {
		return errors.New("user ingestion is not configured")
	}
	if err := s.userPipeline(userID).Run(ctx); err != nil {
		return fmt.Errorf("rebuilding partition for user %s: %w", userID, err)
	}
	return nil
}

// Wait blocks until all background rebuilds finish. Used during shutdown
// and in tests.
func (s *Supervisor) Wait() {
	s.wg.Wait()
}

// rebuildPublic runs the public pipelines concurrently, then installs a
// router over whatever partitions now exist. Each pipeline failure is
// logged and isolated so the other partition still rebuilds.
func (s *Supervisor) rebuildPublic(ctx context.Context) {
	var g errgroup.Group

	run := func(name string, p *ingest.Pipeline) {
		if p == nil {
			return
		}
		g.Go(func() error {
			if err := p.Run(ctx); err != nil {
				s.logger.Error("partition rebuild failed, previous index kept",
					"partition", name, "error", err)
			}
			return nil
		})
	}
	run("global", s.global)
	run("resources", s.resources)
	_ = g.Wait()

	router, err := s.newRouter()
	if err != nil {
		s.logger.Error("router rebuild failed, keeping previous router", "error", err)
		return
	}
	s.handle.Replace(router)
	s.logger.Info("reindex complete, router swapped")
}
