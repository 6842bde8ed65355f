package generate

import (
	"context"

	"github.com/apresai/sflstudio/internal/dialogue"
)

// Sampling temperatures per task. Analysis runs near-deterministic;
// full dialogue generation gets the most latitude.
const (
	AnalysisTemperature = 0.2
	dialogueTemperature = 0.75
	refineTemperature   = 0.6
	nextLineTemperature = 0.7
)

const (
	dialogueMaxTokens = 8192
	lineMaxTokens     = 1024
)

// DialogueClient adapts a Generator to the dialogue engine's
// collaborator interface, pairing each task with its prompt builder
// and sampling options.
type DialogueClient struct {
	gen            Generator
	thinkingBudget int
}

func NewDialogueClient(gen Generator, thinkingBudget int) *DialogueClient {
	return &DialogueClient{gen: gen, thinkingBudget: thinkingBudget}
}

var _ dialogue.Generator = (*DialogueClient)(nil)

func (c *DialogueClient) Dialogue(ctx context.Context, a, b dialogue.Binding, topic, contextMaterial, length string) (string, error) {
	prompt := DialoguePrompt(a.Config, b.Config, topic, contextMaterial, length)
	return c.gen.Generate(ctx, prompt, Options{
		Temperature:    dialogueTemperature,
		MaxTokens:      dialogueMaxTokens,
		ThinkingBudget: c.thinkingBudget,
	})
}

func (c *DialogueClient) RefineLine(ctx context.Context, original string, speaker dialogue.Binding, instruction string) (string, error) {
	prompt := RefinePrompt(original, speaker.Config, instruction)
	return c.gen.Generate(ctx, prompt, Options{
		Temperature:    refineTemperature,
		MaxTokens:      lineMaxTokens,
		ThinkingBudget: c.thinkingBudget,
	})
}

func (c *DialogueClient) NextLine(ctx context.Context, history []dialogue.Turn, next dialogue.Speaker, speaker dialogue.Binding, instruction string) (string, error) {
	prompt := NextLinePrompt(history, next, speaker.Config, instruction)
	return c.gen.Generate(ctx, prompt, Options{
		Temperature:    nextLineTemperature,
		MaxTokens:      lineMaxTokens,
		ThinkingBudget: c.thinkingBudget,
	})
}
