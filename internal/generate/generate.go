// Package generate wraps the generative-model providers behind a single
// text-in/text-out interface and builds the prompts for the four model
// tasks: document analysis, full dialogue, single-line refinement, and
// next-line continuation.
package generate

import (
	"context"
	"time"
)

// Options controls a single generation call.
type Options struct {
	Temperature float64
	MaxTokens   int
	// ThinkingBudget caps the model's internal reasoning tokens where the
	// provider supports it. Negative means provider default.
	ThinkingBudget int
}

// Generator produces raw text from a prompt. Implementations retry
// transient failures internally and return a *Error describing why no
// usable text was produced.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
	// ListModels returns the provider's available model identifiers.
	ListModels(ctx context.Context) ([]string, error)
}

// Retry policy shared by all providers.
const (
	maxRetries     = 3
	initialBackoff = 1 * time.Second
	backoffMult    = 2
)

// sleepBackoff waits for the current backoff or until the context is done.
func sleepBackoff(ctx context.Context, backoff time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(backoff):
		return nil
	}
}
