package generate

import (
	"context"
	"fmt"
	"strings"
)

// ProviderNames returns all valid provider values.
func ProviderNames() []string {
	return []string{"gemini", "claude", "nova"}
}

// IsValidProvider returns true if the provider name is recognized.
func IsValidProvider(name string) bool {
	for _, p := range ProviderNames() {
		if p == name {
			return true
		}
	}
	return false
}

// NewGenerator builds the Generator for a provider/model pair. An empty
// model selects the provider's default.
func NewGenerator(ctx context.Context, provider, model string) (Generator, error) {
	switch strings.ToLower(provider) {
	case "", "gemini":
		return NewGeminiGenerator(model), nil
	case "claude":
		return NewClaudeGenerator(model), nil
	case "nova":
		return NewNovaGenerator(ctx, model)
	default:
		return nil, fmt.Errorf("unknown provider %q: must be one of %s",
			provider, strings.Join(ProviderNames(), ", "))
	}
}
