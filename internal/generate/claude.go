package generate

import (
	"context"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
)

var claudeModels = map[string]string{
	"haiku":  "claude-haiku-4-5-20251001",
	"sonnet": "claude-sonnet-4-5-20250929",
}

// ClaudeGenerator calls the Anthropic Messages API.
type ClaudeGenerator struct {
	model  string
	client anthropic.Client
}

func NewClaudeGenerator(model string) *ClaudeGenerator {
	return &ClaudeGenerator{
		model:  model,
		client: anthropic.NewClient(),
	}
}

func (g *ClaudeGenerator) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	modelID := claudeModels[g.model]
	if modelID == "" {
		modelID = g.model
	}
	if modelID == "" {
		modelID = claudeModels["haiku"]
	}

	maxTokens := int64(opts.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	var lastErr error
	backoff := initialBackoff

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		message, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:       anthropic.Model(modelID),
			MaxTokens:   maxTokens,
			Temperature: anthropic.Float(opts.Temperature),
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			},
		})
		if err != nil {
			lastErr = &Error{Provider: "claude", Reason: ReasonTransport, Detail: "call Anthropic API", Err: err}
			if attempt < maxRetries {
				if serr := sleepBackoff(ctx, backoff); serr != nil {
					return "", serr
				}
				backoff *= time.Duration(backoffMult)
			}
			continue
		}

		text := claudeText(message)
		if text == "" {
			lastErr = &Error{Provider: "claude", Reason: ReasonEmptyResponse, Detail: "empty response"}
			if attempt < maxRetries {
				if serr := sleepBackoff(ctx, backoff); serr != nil {
					return "", serr
				}
				backoff *= time.Duration(backoffMult)
			}
			continue
		}

		return text, nil
	}
	return "", lastErr
}

func claudeText(msg *anthropic.Message) string {
	var parts []string
	for _, block := range msg.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			parts = append(parts, tb.Text)
		}
	}
	return strings.Join(parts, "")
}

// ListModels returns the first page of model identifiers from the API.
func (g *ClaudeGenerator) ListModels(ctx context.Context) ([]string, error) {
	page, err := g.client.Models.List(ctx, anthropic.ModelListParams{})
	if err != nil {
		return nil, &ListError{Provider: "claude", Err: err}
	}
	ids := make([]string, 0, len(page.Data))
	for _, m := range page.Data {
		ids = append(ids, string(m.ID))
	}
	return ids, nil
}
