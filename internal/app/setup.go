package app

import (
	"context"
	"fmt"
	"os"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/time/rate"

	"github.com/adroit-club/assistant/db"
	"github.com/adroit-club/assistant/internal/chat"
	"github.com/adroit-club/assistant/internal/club"
	"github.com/adroit-club/assistant/internal/config"
	"github.com/adroit-club/assistant/internal/index"
	"github.com/adroit-club/assistant/internal/ingest"
	"github.com/adroit-club/assistant/internal/log"
	"github.com/adroit-club/assistant/internal/rag"
)

// embedRate paces embedding batches during ingestion.
const (
	embedRatePerSecond = 2
	embedBurst         = 4
)

// Setup creates and initializes the application. On failure everything
// already initialized is released before returning.
func Setup(ctx context.Context, cfg *config.Config, logger log.Logger) (_ *App, retErr error) {
	if logger == nil {
		logger = log.NewNop()
	}
	a := &App{Config: cfg, Logger: logger}

	defer func() {
		if retErr != nil {
			if err := a.Close(); err != nil {
				logger.Warn("cleanup during setup failure", "error", err)
			}
		}
	}()

	pool, err := providePool(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.Pool = pool
	a.onClose(func() error { pool.Close(); return nil })

	a.Club = club.NewStoreFromPool(pool, logger)

	a.Embedder, err = provideEmbedder(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	if err := a.wireRetrieval(ctx, cfg, logger); err != nil {
		return nil, err
	}

	generator := chat.NewGeminiGenerator(cfg.ModelName, cfg.Temperature, logger)
	synth := chat.NewSynthesizer(generator, os.Getenv("GEMINI_API_KEY"), logger)
	a.Chat = chat.NewService(a.Handle, synth, a.Club, logger)

	return a, nil
}

// providePool connects to PostgreSQL and applies pending migrations.
func providePool(ctx context.Context, cfg *config.Config, logger log.Logger) (*pgxpool.Pool, error) {
	if err := db.Migrate(cfg.PostgresURL(), logger); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	pool, err := pgxpool.New(ctx, cfg.PostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return pool, nil
}

// provideEmbedder initializes the Google AI embedder with the process-wide
// credential. With no credential configured the process still serves: the
// embedder is nil, ingestion reports an embedding failure, and chat answers
// with the fixed not-initialized message.
func provideEmbedder(ctx context.Context, cfg *config.Config, logger log.Logger) (ai.Embedder, error) {
	key := os.Getenv("GEMINI_API_KEY")
	if key == "" {
		logger.Warn("GEMINI_API_KEY missing, embedding and generation are unavailable")
		return nil, nil
	}

	g := genkit.Init(ctx,
		genkit.WithPlugins(&googlegenai.GoogleAI{APIKey: key}),
	)

	embedder := googlegenai.GoogleAIEmbedder(g, cfg.EmbedderModel)
	if embedder == nil {
		return nil, fmt.Errorf("embedder %q not found", cfg.EmbedderModel)
	}
	return embedder, nil
}

// wireRetrieval builds the pipelines, the active router handle and the
// supervisor over the configured data layout.
func (a *App) wireRetrieval(ctx context.Context, cfg *config.Config, logger log.Logger) error {
	limiter := rate.NewLimiter(rate.Limit(embedRatePerSecond), embedBurst)
	embedQuery := index.NewEmbeddingFunc(a.Embedder)

	global := ingest.New(
		ingest.NewDirectorySource(cfg.DocsDir(), logger),
		a.Embedder, cfg.GlobalIndexDir(),
		ingest.WithLimiter(limiter),
		ingest.WithLogger(logger))

	clubStore := a.Club
	resources := ingest.New(
		ingest.SourceFunc(func(runCtx context.Context) ([]index.Document, error) {
			records, err := clubStore.Resources(runCtx)
			if err != nil {
				return nil, err
			}
			return club.Documents(records), nil
		}),
		a.Embedder, cfg.ResourcesIndexDir(),
		ingest.WithLimiter(limiter),
		ingest.WithLogger(logger))

	userPipeline := func(userID string) *ingest.Pipeline {
		return ingest.New(
			ingest.NewDirectorySource(cfg.UserDocsDir(userID), logger),
			a.Embedder, cfg.UserIndexDir(userID),
			ingest.WithLimiter(limiter),
			ingest.WithLogger(logger))
	}

	newRouter := func() (*rag.Router, error) {
		return rag.NewRouter(rag.RouterConfig{
			GlobalLocation:    cfg.GlobalIndexDir(),
			ResourcesLocation: cfg.ResourcesIndexDir(),
			UserIndexLocation: cfg.UserIndexDir,
			EmbedQuery:        embedQuery,
			Logger:            logger,
		})
	}

	router, err := newRouter()
	if err != nil {
		return fmt.Errorf("building initial router: %w", err)
	}
	a.Handle = rag.NewHandle(router)

	a.Supervisor, err = rag.NewSupervisor(rag.SupervisorConfig{
		Handle:       a.Handle,
		Global:       global,
		Resources:    resources,
		UserPipeline: userPipeline,
		NewRouter:    newRouter,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("creating supervisor: %w", err)
	}

	// Background rebuilds must finish before the pool they read from goes
	// away.
	a.onClose(func() error { a.Supervisor.Wait(); return nil })
	return nil
}
