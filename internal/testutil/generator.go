package testutil

import (
	"context"
	"sync"
)

// StubGenerator is a canned-answer generation capability. It records the
// last prompt and credential it saw so tests can assert on what would have
// reached the model.
//
// Thread-safe for concurrent use.
type StubGenerator struct {
	mu             sync.Mutex
	answer         string
	err            error
	lastPrompt     string
	lastCredential string
	calls          int
}

// NewStubGenerator creates a generator returning answer on every call.
func NewStubGenerator(answer string) *StubGenerator {
	return &StubGenerator{answer: answer}
}

// FailWith makes every subsequent Generate call return err (nil restores).
func (g *StubGenerator) FailWith(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.err = err
}

// Generate implements the chat generator contract.
func (g *StubGenerator) Generate(_ context.Context, prompt, credential string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.lastPrompt = prompt
	g.lastCredential = credential
	if g.err != nil {
		return "", g.err
	}
	return g.answer, nil
}

// Calls returns how many times Generate ran.
func (g *StubGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// LastPrompt returns the prompt from the most recent Generate call.
func (g *StubGenerator) LastPrompt() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastPrompt
}

// LastCredential returns the credential from the most recent Generate call.
func (g *StubGenerator) LastCredential() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastCredential
}
