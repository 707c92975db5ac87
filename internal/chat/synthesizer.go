// Package chat turns retrieved passages into grounded answers.
package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/adroit-club/assistant/internal/index"
	"github.com/adroit-club/assistant/internal/log"
	"github.com/adroit-club/assistant/internal/rag"
)

var (
	// ErrNotInitialized means no generation credential exists at all.
	ErrNotInitialized = errors.New("no generation credential available")

	// ErrGeneration wraps provider failures. It is not retried.
	ErrGeneration = errors.New("generation failed")
)

// Generator is the outbound generation capability.
type Generator interface {
	Generate(ctx context.Context, prompt, credential string) (string, error)
}

// Synthesizer formats retrieved passages into a bounded prompt and invokes
// the generator with the highest-precedence credential available.
type Synthesizer struct {
	generator Generator
	adminKey  string
	logger    log.Logger

	// sources is the credential precedence order, evaluated top-down.
	sources []credentialSource
}

type credentialSource struct {
	name string
	get  func(id rag.Identity) string
}

// NewSynthesizer creates a synthesizer. adminKey is the process-wide
// default credential; it may be empty when members always bring their own.
func NewSynthesizer(generator Generator, adminKey string, logger log.Logger) *Synthesizer {
	if logger == nil {
		logger = log.NewNop()
	}
	s := &Synthesizer{
		generator: generator,
		adminKey:  adminKey,
		logger:    logger,
	}
	s.sources = []credentialSource{
		{name: "user", get: func(id rag.Identity) string { return id.Credential }},
		{name: "admin", get: func(rag.Identity) string { return s.adminKey }},
	}
	return s
}

// Synthesize generates an answer from the ranked chunks. It returns
// ErrNotInitialized when no credential source yields a key, and
// ErrGeneration on provider failure, with the retrieved context discarded.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, results []index.Result, id rag.Identity) (string, error) {
	credential, source := s.credential(id)
	if credential == "" {
		return "", ErrNotInitialized
	}

	prompt := BuildPrompt(query, results)
	answer, err := s.generator.Generate(ctx, prompt, credential)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	s.logger.Debug("answer generated",
		"credential_source", source,
		"context_chunks", len(results))
	return answer, nil
}

// credential returns the first non-empty credential in precedence order
// and the name of the source it came from.
func (s *Synthesizer) credential(id rag.Identity) (string, string) {
	for _, src := range s.sources {
		if key := src.get(id); key != "" {
			return key, src.name
		}
	}
	return "", ""
}
