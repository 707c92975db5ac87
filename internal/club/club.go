// Package club holds membership and learning-resource records backed by
// PostgreSQL. Membership drives access decisions: an unknown visitor is a
// guest, a known member is either approved or pending approval.
package club

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adroit-club/assistant/internal/log"
)

// ErrMemberNotFound is returned when a member ID is not registered.
var ErrMemberNotFound = errors.New("member not found")

// Member is a registered club member.
type Member struct {
	ID       string
	Name     string
	Approved bool

	// GeminiAPIKey is the member's own model credential, empty when the
	// member has not supplied one.
	GeminiAPIKey string
}

// Resource is one entry of the shared learning-resource catalogue.
type Resource struct {
	ID          string
	Title       string
	Type        string
	Domain      string
	Difficulty  string
	URL         string
	Tags        []string
	Description string
}

// Querier is the subset of pgxpool.Pool the store needs. Defined here so
// tests can substitute a fake without a live database.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store reads members and resources from PostgreSQL.
//
// Store is safe for concurrent use.
type Store struct {
	db     Querier
	logger log.Logger
}

// NewStore creates a store over the given pool.
func NewStore(db Querier, logger log.Logger) *Store {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Store{db: db, logger: logger}
}

// NewStoreFromPool is a convenience constructor for production wiring.
func NewStoreFromPool(pool *pgxpool.Pool, logger log.Logger) *Store {
	return NewStore(pool, logger)
}

// Member fetches one member by ID.
func (s *Store) Member(ctx context.Context, id string) (*Member, error) {
	const query = `
		SELECT id, name, approved, gemini_api_key
		FROM members
		WHERE id = $1`

	var m Member
	err := s.db.QueryRow(ctx, query, id).
		Scan(&m.ID, &m.Name, &m.Approved, &m.GeminiAPIKey)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrMemberNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying member %s: %w", id, err)
	}
	return &m, nil
}

// Approved reports whether the member exists and has been approved. An
// unknown ID is not an error, just not approved.
func (s *Store) Approved(ctx context.Context, id string) (bool, error) {
	m, err := s.Member(ctx, id)
	if errors.Is(err, ErrMemberNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return m.Approved, nil
}

// Credential returns the member's own model credential, or empty when the
// member has none or is unknown.
func (s *Store) Credential(ctx context.Context, id string) (string, error) {
	m, err := s.Member(ctx, id)
	if errors.Is(err, ErrMemberNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return m.GeminiAPIKey, nil
}

// Resources returns the full resource catalogue ordered by title.
func (s *Store) Resources(ctx context.Context) ([]Resource, error) {
	const query = `
		SELECT id, title, type, domain, difficulty, url, tags, description
		FROM resources
		ORDER BY title`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying resources: %w", err)
	}
	defer rows.Close()

	var resources []Resource
	for rows.Next() {
		var r Resource
		if err := rows.Scan(&r.ID, &r.Title, &r.Type, &r.Domain,
			&r.Difficulty, &r.URL, &r.Tags, &r.Description); err != nil {
			return nil, fmt.Errorf("scanning resource: %w", err)
		}
		resources = append(resources, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating resources: %w", err)
	}

	s.logger.Debug("loaded resource catalogue", "count", len(resources))
	return resources, nil
}
