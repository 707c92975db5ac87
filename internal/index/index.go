// Package index wraps a persisted nearest-neighbor search structure over
// embedded text chunks.
//
// Each partition (global, resources, user:<id>) is one directory on disk
// holding a chromem-go persistent collection. An Index is immutable after
// load and safe for unbounded concurrent readers. Write replaces a
// partition's directory atomically from the reader's perspective: the new
// collection is built in a temporary sibling directory and swapped in with
// renames, so the old index stays loadable until the new one is complete.
package index

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"
)

// collectionName is the single collection stored in every partition.
const collectionName = "chunks"

var (
	// ErrNotFound indicates the partition was never built.
	// Callers treat this as "feature unavailable", not fatal.
	ErrNotFound = errors.New("index not found")

	// ErrEmpty indicates a build was attempted with zero chunks.
	ErrEmpty = errors.New("no chunks to index")
)

// Index is a read-only view of one persisted partition.
// Safe for concurrent use by multiple goroutines.
type Index struct {
	collection *chromem.Collection
	location   string
}

// Load opens the partition persisted at location.
// embedFn is used to embed queries at search time. Returns ErrNotFound if
// the location was never built.
func Load(location string, embedFn chromem.EmbeddingFunc) (*Index, error) {
	info, err := os.Stat(location)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, location)
		}
		return nil, fmt.Errorf("stat index location: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("index location %s is not a directory", location)
	}

	db, err := chromem.NewPersistentDB(location, false)
	if err != nil {
		return nil, fmt.Errorf("opening persistent index at %s: %w", location, err)
	}

	collection := db.GetCollection(collectionName, embedFn)
	if collection == nil {
		return nil, fmt.Errorf("%w: %s has no %q collection", ErrNotFound, location, collectionName)
	}

	return &Index{collection: collection, location: location}, nil
}

// Location returns the directory this index was loaded from.
func (idx *Index) Location() string {
	return idx.location
}

// Len returns the number of chunks in the index.
func (idx *Index) Len() int {
	return idx.collection.Count()
}

// Search returns the k nearest chunks to the query, ordered by similarity.
// Fewer than k results are returned when the index holds fewer chunks.
func (idx *Index) Search(ctx context.Context, query string, k int) ([]Result, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}

	// chromem rejects nResults larger than the collection size.
	if n := idx.collection.Count(); k > n {
		if n == 0 {
			return nil, nil
		}
		k = n
	}

	hits, err := idx.collection.Query(ctx, query, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}

	results := make([]Result, 0, len(hits))
	for _, hit := range hits {
		results = append(results, Result{
			Chunk: Chunk{
				ID:       hit.ID,
				Content:  hit.Content,
				Metadata: hit.Metadata,
			},
			Similarity: hit.Similarity,
		})
	}
	return results, nil
}

// Write builds a new persisted partition at location from (chunk, vector)
// pairs and swaps it in. The previous content, if any, remains loadable
// until the new collection is fully written; only then is it replaced.
//
// Concurrent writers for the same location must be serialized by the caller
// (the ingestion pipeline holds a per-partition lock).
func Write(ctx context.Context, location string, chunks []Chunk, vectors [][]float32) error {
	if len(chunks) == 0 {
		return ErrEmpty
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("got %d vectors for %d chunks", len(vectors), len(chunks))
	}

	parent := filepath.Dir(location)
	if err := os.MkdirAll(parent, 0o750); err != nil {
		return fmt.Errorf("creating index parent directory: %w", err)
	}

	// Build into a temporary sibling so a crash mid-write never corrupts
	// the live partition.
	tmp := filepath.Join(parent, fmt.Sprintf(".%s.tmp-%s", filepath.Base(location), uuid.NewString()))
	defer func() {
		_ = os.RemoveAll(tmp)
	}()

	db, err := chromem.NewPersistentDB(tmp, false)
	if err != nil {
		return fmt.Errorf("creating persistent index: %w", err)
	}

	collection, err := db.CreateCollection(collectionName, nil, nil)
	if err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}

	docs := make([]chromem.Document, 0, len(chunks))
	for i, chunk := range chunks {
		docs = append(docs, chromem.Document{
			ID:        chunk.ID,
			Content:   chunk.Content,
			Metadata:  chunk.Metadata,
			Embedding: vectors[i],
		})
	}

	if err := collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("adding documents to collection: %w", err)
	}

	return swap(tmp, location)
}

// swap atomically replaces location with the freshly built directory.
// The old directory is moved aside before the rename and removed after, so
// there is no window where location is missing a complete index and the old
// content survives any failure before the final rename.
func swap(fresh, location string) error {
	old := location + ".old-" + uuid.NewString()

	replaced := false
	if _, err := os.Stat(location); err == nil {
		if err := os.Rename(location, old); err != nil {
			return fmt.Errorf("moving previous index aside: %w", err)
		}
		replaced = true
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat index location: %w", err)
	}

	if err := os.Rename(fresh, location); err != nil {
		if replaced {
			// Restore the previous index; the failed build is discarded.
			_ = os.Rename(old, location)
		}
		return fmt.Errorf("installing new index: %w", err)
	}

	if replaced {
		_ = os.RemoveAll(old)
	}
	return nil
}
