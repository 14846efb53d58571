// Package brain turns a (source, content) pair into a candidate inference
// via a local language model, degrading to a deterministic mock generator
// when the model service is unreachable. Generation never fails the caller:
// the failure surface is the explicit two-branch tryLive/mock contract, not
// an exception path.
package brain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/selfatlas/selfatlas/internal/model"
)

// ErrUnavailable marks the model service as unreachable or failing. It is
// recovered internally by the mock fallback and never surfaced to callers.
var ErrUnavailable = errors.New("model service unavailable")

// Provider defines the interface for local model backends
type Provider interface {
	// Name returns the provider name
	Name() string

	// IsAlive reports whether the model service answers a cheap
	// reachability probe. The context should carry a short timeout.
	IsAlive(ctx context.Context) bool

	// Complete submits a prompt and returns the raw completion text
	Complete(ctx context.Context, prompt string) (string, error)
}

// NewProvider creates a provider from configuration
func NewProvider(cfg model.BrainConfig) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "ollama":
		return NewOllamaProvider(cfg), nil
	case "openai":
		return NewOpenAIProvider(cfg)
	default:
		return nil, fmt.Errorf("unknown brain provider: %s (supported: ollama, openai)", cfg.Provider)
	}
}

// BuildPrompt constructs the single-fact-extraction prompt
func BuildPrompt(source, content string) string {
	return fmt.Sprintf(`Analyze the following data source and content.
Extract a single key fact or inference about the user.
Return ONLY the inference text.

Source: %s
Content: %s
Inference:`, source, content)
}
