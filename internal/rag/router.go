// Package rag routes retrieval requests to the knowledge partitions a
// caller is entitled to see and composes the results.
//
// Three partitions exist: global (visible to everyone), resources (approved
// members only) and one private partition per user. A private partition
// always takes precedence over the public ones.
package rag

import (
	"context"
	"errors"
	"fmt"

	chromem "github.com/philippgille/chromem-go"

	"github.com/adroit-club/assistant/internal/index"
	"github.com/adroit-club/assistant/internal/log"
)

// Retrieval parameters.
const (
	// PartitionK is how many chunks each partition contributes.
	PartitionK = 3

	// MergeCap bounds the combined result set across partitions.
	MergeCap = 6
)

// EmptyUserGuidance is shown to a caller in strict private mode who has no
// uploaded documents yet.
const EmptyUserGuidance = "You haven't uploaded any documents yet. " +
	"Upload a PDF, Markdown or text file to build your personal knowledge base, then ask again."

// ErrNoIndexes means no partition was available for the caller to search.
var ErrNoIndexes = errors.New("no indexes available")

// Retrieval is the outcome of routing one query.
type Retrieval struct {
	Results    []index.Result
	Provenance Provenance

	// Guidance carries a fixed user-facing message for terminal branches
	// that do not perform a search.
	Guidance string
}

// RouterConfig wires a Router to its partitions.
type RouterConfig struct {
	// GlobalLocation and ResourcesLocation are the persisted partition
	// directories. A partition that was never built is tolerated.
	GlobalLocation    string
	ResourcesLocation string

	// UserIndexLocation maps a user ID to that user's partition directory.
	UserIndexLocation func(userID string) string

	// EmbedQuery embeds query text at search time.
	EmbedQuery chromem.EmbeddingFunc

	Logger log.Logger
}

// Router selects partitions per request and merges their results. A Router
// holds an immutable snapshot of the public partitions taken at
// construction; private partitions are opened per request so fresh uploads
// are visible without a router swap.
//
// Safe for concurrent use.
type Router struct {
	global     *index.Index
	resources  *index.Index
	userIndex  func(userID string) string
	embedQuery chromem.EmbeddingFunc
	logger     log.Logger

	strategies []strategy
}

// strategy is one named routing rule. Rules are evaluated top-down; the
// first applicable one decides the retrieval.
type strategy struct {
	name string
	run  func(ctx context.Context, query string, id Identity) (*Retrieval, bool, error)
}

// NewRouter loads the public partitions and builds a router. A missing
// partition is logged and skipped, not fatal.
func NewRouter(cfg RouterConfig) (*Router, error) {
	if cfg.EmbedQuery == nil {
		return nil, errors.New("embed function is required")
	}
	if cfg.UserIndexLocation == nil {
		return nil, errors.New("user index locator is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	r := &Router{
		userIndex:  cfg.UserIndexLocation,
		embedQuery: cfg.EmbedQuery,
		logger:     logger,
	}

	var err error
	r.global, err = loadOptional(cfg.GlobalLocation, cfg.EmbedQuery, logger, "global")
	if err != nil {
		return nil, err
	}
	r.resources, err = loadOptional(cfg.ResourcesLocation, cfg.EmbedQuery, logger, "resources")
	if err != nil {
		return nil, err
	}

	r.strategies = []strategy{
		{name: "private", run: r.routePrivate},
		{name: "strict-private", run: r.routeStrictPrivate},
		{name: "public", run: r.routePublic},
	}
	return r, nil
}

func loadOptional(location string, embedFn chromem.EmbeddingFunc, logger log.Logger, name string) (*index.Index, error) {
	if location == "" {
		return nil, nil
	}
	idx, err := index.Load(location, embedFn)
	if errors.Is(err, index.ErrNotFound) {
		logger.Warn("partition not built, continuing without it",
			"partition", name, "location", location)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s partition: %w", name, err)
	}
	logger.Info("partition loaded",
		"partition", name, "chunks", idx.Len())
	return idx, nil
}

// Retrieve routes the query through the ordered strategies and returns the
// first applicable outcome. When no partition is available the retrieval
// carries the error provenance tag alongside ErrNoIndexes.
func (r *Router) Retrieve(ctx context.Context, query string, id Identity) (*Retrieval, error) {
	for _, s := range r.strategies {
		ret, ok, err := s.run(ctx, query, id)
		if err != nil {
			return ret, fmt.Errorf("%s route: %w", s.name, err)
		}
		if ok {
			r.logger.Debug("query routed",
				"strategy", s.name,
				"provenance", ret.Provenance,
				"results", len(ret.Results))
			return ret, nil
		}
	}
	// The public strategy is always applicable, so this is unreachable.
	return nil, errors.New("no routing strategy applied")
}

// routePrivate serves callers whose private partition exists. It wins over
// every public partition regardless of approval.
func (r *Router) routePrivate(ctx context.Context, query string, id Identity) (*Retrieval, bool, error) {
	if id.Guest() {
		return nil, false, nil
	}

	idx, err := index.Load(r.userIndex(id.UserID), r.embedQuery)
	if errors.Is(err, index.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		r.logger.Warn("private partition unreadable, falling back",
			"user", id.UserID, "error", err)
		return nil, false, nil
	}

	results, err := idx.Search(ctx, query, PartitionK)
	if err != nil {
		return &Retrieval{Provenance: ProvenanceError}, true, err
	}
	return &Retrieval{Results: results, Provenance: UserRAG}, true, nil
}

// routeStrictPrivate terminates requests that require private results when
// none exist. No search runs and no generation should follow.
func (r *Router) routeStrictPrivate(_ context.Context, _ string, id Identity) (*Retrieval, bool, error) {
	if id.Guest() || !id.StrictPrivate {
		return nil, false, nil
	}
	return &Retrieval{
		Provenance: EmptyUserRAG,
		Guidance:   EmptyUserGuidance,
	}, true, nil
}

// routePublic searches the public partitions the caller may see: global for
// everyone, resources only for approved members. Multiple partitions are
// merged in global-then-resources precedence.
func (r *Router) routePublic(ctx context.Context, query string, id Identity) (*Retrieval, bool, error) {
	partitions := make([]*index.Index, 0, 2)
	if r.global != nil {
		partitions = append(partitions, r.global)
	}
	if id.Approved && r.resources != nil {
		partitions = append(partitions, r.resources)
	}

	if len(partitions) == 0 {
		return &Retrieval{Provenance: ProvenanceError}, true, ErrNoIndexes
	}

	if len(partitions) == 1 {
		results, err := partitions[0].Search(ctx, query, PartitionK)
		if err != nil {
			return &Retrieval{Provenance: ProvenanceError}, true, err
		}
		return &Retrieval{Results: results, Provenance: GlobalRAG}, true, nil
	}

	lists := make([][]index.Result, 0, len(partitions))
	for _, p := range partitions {
		results, err := p.Search(ctx, query, PartitionK)
		if err != nil {
			return &Retrieval{Provenance: ProvenanceError}, true, err
		}
		lists = append(lists, results)
	}
	return &Retrieval{
		Results:    Merge(lists, MergeCap),
		Provenance: CombinedRAG,
	}, true, nil
}
