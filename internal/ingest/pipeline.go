// Package ingest turns raw documents into searchable index partitions. A
// pipeline reads documents from a source, splits them into bounded chunks,
// embeds the chunks in rate-limited batches and atomically replaces the
// partition on disk.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/gofrs/flock"
	"golang.org/x/time/rate"

	"github.com/adroit-club/assistant/internal/index"
	"github.com/adroit-club/assistant/internal/log"
)

// Sentinel errors for pipeline outcomes.
var (
	// ErrNoDocuments means the source produced nothing to index. The
	// existing partition, if any, is left untouched.
	ErrNoDocuments = errors.New("no documents to index")

	// ErrEmbedding wraps failures from the embedding model.
	ErrEmbedding = errors.New("embedding failed")
)

// embedBatchSize bounds how many chunks go into one embed request.
const embedBatchSize = 100

// Source produces the documents for one index partition. The context is
// the one the rebuild runs under, not the one the pipeline was built with.
type Source interface {
	Documents(ctx context.Context) ([]index.Document, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) ([]index.Document, error)

func (f SourceFunc) Documents(ctx context.Context) ([]index.Document, error) { return f(ctx) }

// Pipeline rebuilds one index partition from its document source.
type Pipeline struct {
	source   Source
	embedder ai.Embedder
	location string
	limiter  *rate.Limiter
	logger   log.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLimiter sets the rate limiter applied before each embed batch.
func WithLimiter(l *rate.Limiter) Option {
	return func(p *Pipeline) { p.limiter = l }
}

// WithLogger sets the pipeline logger.
func WithLogger(logger log.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// New creates a pipeline that rebuilds the partition at location from the
// given source.
func New(source Source, embedder ai.Embedder, location string, opts ...Option) *Pipeline {
	p := &Pipeline{
		source:   source,
		embedder: embedder,
		location: location,
		limiter:  rate.NewLimiter(rate.Inf, 1),
		logger:   log.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run rebuilds the partition. Concurrent runs against the same location
// serialize on a file lock, so two rebuild requests never interleave their
// directory swaps. Any failure leaves the previous partition in place.
func (p *Pipeline) Run(ctx context.Context) error {
	if p.embedder == nil {
		return fmt.Errorf("%w: embedding capability is not configured", ErrEmbedding)
	}
	if err := os.MkdirAll(filepath.Dir(p.location), 0o755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	lock := flock.New(p.location + ".lock")
	locked, err := lock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return fmt.Errorf("acquiring index lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("index %s is locked by another rebuild", p.location)
	}
	defer lock.Unlock()

	docs, err := p.source.Documents(ctx)
	if err != nil {
		return fmt.Errorf("loading documents: %w", err)
	}
	if len(docs) == 0 {
		return ErrNoDocuments
	}

	chunks := SplitAll(docs)
	if len(chunks) == 0 {
		return ErrNoDocuments
	}

	p.logger.Info("embedding chunks",
		"location", p.location,
		"documents", len(docs),
		"chunks", len(chunks))

	vectors, err := p.embed(ctx, chunks)
	if err != nil {
		return err
	}

	if err := index.Write(ctx, p.location, chunks, vectors); err != nil {
		return fmt.Errorf("writing index: %w", err)
	}

	p.logger.Info("index rebuilt", "location", p.location, "chunks", len(chunks))
	return nil
}

// embed produces one vector per chunk, batching requests and pacing them
// through the limiter.
func (p *Pipeline) embed(ctx context.Context, chunks []index.Chunk) ([][]float32, error) {
	vectors := make([][]float32, 0, len(chunks))

	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		if err := p.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for embed slot: %w", err)
		}

		input := make([]*ai.Document, len(batch))
		for i, c := range batch {
			input[i] = ai.DocumentFromText(c.Content, nil)
		}

		resp, err := p.embedder.Embed(ctx, &ai.EmbedRequest{Input: input})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrEmbedding, err)
		}
		if len(resp.Embeddings) != len(batch) {
			return nil, fmt.Errorf("%w: got %d embeddings for %d chunks",
				ErrEmbedding, len(resp.Embeddings), len(batch))
		}
		for _, e := range resp.Embeddings {
			vectors = append(vectors, e.Embedding)
		}
	}
	return vectors, nil
}
