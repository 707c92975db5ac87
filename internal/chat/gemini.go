package chat

import (
	"context"
	"fmt"
	"sync"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"google.golang.org/genai"

	"github.com/adroit-club/assistant/internal/log"
)

// GeminiGenerator produces answers through the Google AI plugin. Because a
// credential is bound at plugin init, one genkit instance is kept per
// distinct API key; members bringing their own key get their own instance.
//
// Safe for concurrent use.
type GeminiGenerator struct {
	model       string
	temperature float32
	logger      log.Logger

	mu        sync.Mutex
	instances map[string]*genkit.Genkit
}

// NewGeminiGenerator creates a generator for the given model name, e.g.
// "googleai/gemini-2.5-flash".
func NewGeminiGenerator(model string, temperature float32, logger log.Logger) *GeminiGenerator {
	if logger == nil {
		logger = log.NewNop()
	}
	return &GeminiGenerator{
		model:       model,
		temperature: temperature,
		logger:      logger,
		instances:   make(map[string]*genkit.Genkit),
	}
}

// Generate runs the prompt with the given credential and returns the model
// text.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt, credential string) (string, error) {
	instance := g.instance(ctx, credential)

	response, err := genkit.Generate(ctx, instance,
		ai.WithModelName(g.model),
		ai.WithPrompt(prompt),
		ai.WithConfig(&genai.GenerateContentConfig{
			Temperature: genai.Ptr(g.temperature),
		}),
	)
	if err != nil {
		return "", fmt.Errorf("generating answer: %w", err)
	}
	return response.Text(), nil
}

func (g *GeminiGenerator) instance(ctx context.Context, credential string) *genkit.Genkit {
	g.mu.Lock()
	defer g.mu.Unlock()

	if instance, ok := g.instances[credential]; ok {
		return instance
	}

	instance := genkit.Init(ctx,
		genkit.WithPlugins(&googlegenai.GoogleAI{APIKey: credential}),
	)
	g.instances[credential] = instance
	g.logger.Debug("initialized generation backend", "model", g.model)
	return instance
}
