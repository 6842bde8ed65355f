package generate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apresai/sflstudio/internal/dialogue"
)

type recordingGenerator struct {
	lastPrompt string
	lastOpts   Options
	out        string
}

func (r *recordingGenerator) Generate(_ context.Context, prompt string, opts Options) (string, error) {
	r.lastPrompt = prompt
	r.lastOpts = opts
	return r.out, nil
}

func (r *recordingGenerator) ListModels(context.Context) ([]string, error) { return nil, nil }

func TestDialogueClientSamplingOptions(t *testing.T) {
	rec := &recordingGenerator{out: "text"}
	client := NewDialogueClient(rec, 256)

	a := dialogue.Binding{Name: "Ada", Config: testConfig(8)}
	b := dialogue.Binding{Name: "Bo", Config: testConfig(3)}

	_, err := client.Dialogue(context.Background(), a, b, "topic", "ctx", "Short (1-3 mins)")
	require.NoError(t, err)
	assert.Equal(t, 0.75, rec.lastOpts.Temperature)
	assert.Equal(t, dialogueMaxTokens, rec.lastOpts.MaxTokens)
	assert.Equal(t, 256, rec.lastOpts.ThinkingBudget)
	assert.Contains(t, rec.lastPrompt, "SPEAKER A PERSONA PROFILE")

	_, err = client.RefineLine(context.Background(), "a line", a, "tighter")
	require.NoError(t, err)
	assert.Equal(t, 0.6, rec.lastOpts.Temperature)
	assert.Equal(t, lineMaxTokens, rec.lastOpts.MaxTokens)
	assert.Contains(t, rec.lastPrompt, `"a line"`)

	history := []dialogue.Turn{{Speaker: dialogue.SpeakerA, Text: "hi"}}
	_, err = client.NextLine(context.Background(), history, dialogue.SpeakerB, b, "")
	require.NoError(t, err)
	assert.Equal(t, 0.7, rec.lastOpts.Temperature)
	assert.Contains(t, rec.lastPrompt, "You are Speaker B.")
}
