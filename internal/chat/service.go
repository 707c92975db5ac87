package chat

import (
	"context"
	"errors"

	"github.com/adroit-club/assistant/internal/log"
	"github.com/adroit-club/assistant/internal/rag"
)

// Fixed user-visible messages for terminal conditions.
const (
	// UnavailableMessage is returned when no knowledge partition exists.
	UnavailableMessage = "Knowledge base is currently unavailable."

	// NotInitializedMessage is returned when no generation credential is
	// configured anywhere.
	NotInitializedMessage = "System is not fully initialized (missing API Key)."
)

// MemberDirectory resolves a user ID to its approval flag and personal
// credential. Lookups for unknown IDs succeed with zero values.
type MemberDirectory interface {
	Approved(ctx context.Context, userID string) (bool, error)
	Credential(ctx context.Context, userID string) (string, error)
}

// Answer is one completed chat response.
type Answer struct {
	Text       string
	Provenance rag.Provenance
}

// Service answers chat questions: it resolves the caller's identity,
// retrieves passages through the active router and synthesizes a grounded
// answer. Terminal conditions come back as fixed messages with an error or
// guidance provenance, not as Go errors, so the transport layer can render
// them directly.
type Service struct {
	handle  *rag.Handle
	synth   *Synthesizer
	members MemberDirectory
	logger  log.Logger
}

// NewService creates a chat service. members may be nil, in which case
// every caller with a user ID is treated as an unapproved member without a
// personal credential.
func NewService(handle *rag.Handle, synth *Synthesizer, members MemberDirectory, logger log.Logger) *Service {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Service{
		handle:  handle,
		synth:   synth,
		members: members,
		logger:  logger,
	}
}

// Ask answers one question for the given caller. userID is empty for
// guests.
func (s *Service) Ask(ctx context.Context, query, userID string) (*Answer, error) {
	identity, err := s.identity(ctx, userID)
	if err != nil {
		return nil, err
	}

	// The credential check precedes retrieval: with no credential anywhere
	// the fixed not-initialized answer wins over every other outcome.
	if key, _ := s.synth.credential(identity); key == "" {
		return &Answer{Text: NotInitializedMessage, Provenance: rag.ProvenanceError}, nil
	}

	// One snapshot per request: a reindex swap mid-request has no effect.
	router := s.handle.Router()

	retrieval, err := router.Retrieve(ctx, query, identity)
	if errors.Is(err, rag.ErrNoIndexes) {
		return &Answer{Text: UnavailableMessage, Provenance: rag.ProvenanceError}, nil
	}
	if err != nil {
		return nil, err
	}

	// Terminal guidance branch, no generation call.
	if retrieval.Provenance == rag.EmptyUserRAG {
		return &Answer{Text: retrieval.Guidance, Provenance: rag.EmptyUserRAG}, nil
	}

	text, err := s.synth.Synthesize(ctx, query, retrieval.Results, identity)
	if errors.Is(err, ErrNotInitialized) {
		return &Answer{Text: NotInitializedMessage, Provenance: rag.ProvenanceError}, nil
	}
	if err != nil {
		return nil, err
	}

	return &Answer{Text: text, Provenance: retrieval.Provenance}, nil
}

// identity builds the caller's authorization context from the member
// directory. Directory failures degrade to guest-level access rather than
// failing the request.
func (s *Service) identity(ctx context.Context, userID string) (rag.Identity, error) {
	id := rag.Identity{UserID: userID}
	if userID == "" || s.members == nil {
		return id, nil
	}

	approved, err := s.members.Approved(ctx, userID)
	if err != nil {
		s.logger.Warn("member lookup failed, treating as unapproved",
			"user", userID, "error", err)
		return id, nil
	}
	id.Approved = approved

	credential, err := s.members.Credential(ctx, userID)
	if err != nil {
		s.logger.Warn("credential lookup failed, continuing without personal key",
			"user", userID, "error", err)
		return id, nil
	}
	id.Credential = credential
	return id, nil
}
