package dialogue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apresai/sflstudio/internal/sfl"
)

// fakeGenerator scripts collaborator behavior per call. The hooks run on the
// calling goroutine, so reentrant controller calls from inside a hook model
// a competing operation completing first.
type fakeGenerator struct {
	dialogueText string
	dialogueErr  error
	refineText   string
	refineErr    error
	nextText     string
	nextErr      error

	dialogueCalls int
	refineCalls   int
	nextCalls     int

	lastHistory []Turn
	lastSpeaker Speaker
	lastBinding Binding

	onNextLine   func()
	onRefineLine func(original string)
}

func (f *fakeGenerator) Dialogue(ctx context.Context, a, b Binding, topic, contextMaterial, length string) (string, error) {
	f.dialogueCalls++
	return f.dialogueText, f.dialogueErr
}

func (f *fakeGenerator) RefineLine(ctx context.Context, original string, speaker Binding, instruction string) (string, error) {
	f.refineCalls++
	f.lastBinding = speaker
	if f.onRefineLine != nil {
		f.onRefineLine(original)
	}
	return f.refineText, f.refineErr
}

func (f *fakeGenerator) NextLine(ctx context.Context, history []Turn, next Speaker, speaker Binding, instruction string) (string, error) {
	f.nextCalls++
	f.lastHistory = history
	f.lastSpeaker = next
	f.lastBinding = speaker
	if f.onNextLine != nil {
		f.onNextLine()
	}
	return f.nextText, f.nextErr
}

func bindings() (Binding, Binding) {
	a := Binding{Name: "Ada", Config: sfl.PersonaConfiguration{
		Ideational: sfl.IdeationalSettings{TechnicalityLevel: 8},
	}}
	b := Binding{Name: "Bo", Config: sfl.PersonaConfiguration{
		Ideational: sfl.IdeationalSettings{TechnicalityLevel: 2},
	}}
	return a, b
}

func TestGenerateScriptEmptyTopicNeverCallsCollaborator(t *testing.T) {
	gen := &fakeGenerator{dialogueText: "Speaker A: hi"}
	c := NewController(gen)
	a, b := bindings()

	_, err := c.GenerateScript(context.Background(), a, b, "   ", "", "Short")

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Zero(t, gen.dialogueCalls)
}

func TestGenerateScriptReplacesScript(t *testing.T) {
	gen := &fakeGenerator{dialogueText: "Speaker A: one\nSpeaker B: two\nstage direction\nSpeaker A: three"}
	c := NewController(gen)
	a, b := bindings()

	turns, err := c.GenerateScript(context.Background(), a, b, "entropy", "", "Short")
	require.NoError(t, err)
	require.Len(t, turns, 3)
	assert.Equal(t, "Ada", turns[0].PersonaName)
	assert.Equal(t, "Bo", turns[1].PersonaName)
	assert.Equal(t, SpeakerA, turns[2].Speaker)

	// A second generation replaces everything.
	gen.dialogueText = "Speaker A: fresh start"
	turns, err = c.GenerateScript(context.Background(), a, b, "entropy", "", "Short")
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "fresh start", turns[0].Text)
}

func TestGenerateScriptFailureLeavesScriptEmpty(t *testing.T) {
	gen := &fakeGenerator{dialogueErr: errors.New("boom")}
	c := NewController(gen)
	a, b := bindings()

	_, err := c.GenerateScript(context.Background(), a, b, "entropy", "", "Short")
	require.Error(t, err)
	assert.Empty(t, c.Script())
	assert.False(t, c.Generating())

	// Empty model output is an error too, not an empty commit.
	gen.dialogueErr = nil
	gen.dialogueText = "  \n "
	_, err = c.GenerateScript(context.Background(), a, b, "entropy", "", "Short")
	require.Error(t, err)
	assert.Empty(t, c.Script())
}

func seedScript(t *testing.T, c *Controller, gen *fakeGenerator) []Turn {
	t.Helper()
	a, b := bindings()
	gen.dialogueText = "Speaker A: one\nSpeaker B: two\nSpeaker A: three\nSpeaker B: four\nSpeaker A: five"
	turns, err := c.GenerateScript(context.Background(), a, b, "entropy", "", "Short")
	require.NoError(t, err)
	return turns
}

func lookupFor(a, b Binding) func(Speaker) (Binding, bool) {
	return func(s Speaker) (Binding, bool) {
		switch s {
		case SpeakerA:
			return a, true
		case SpeakerB:
			return b, true
		}
		return Binding{}, false
	}
}

func TestRefineTurnReplacesOnlyText(t *testing.T) {
	gen := &fakeGenerator{refineText: "rewritten"}
	c := NewController(gen)
	a, b := bindings()
	turns := seedScript(t, c, gen)
	target := turns[1]

	err := c.RefineTurn(context.Background(), target.ID, "make it sharper", lookupFor(a, b))
	require.NoError(t, err)

	got := c.Script()[1]
	assert.Equal(t, target.ID, got.ID)
	assert.Equal(t, target.Speaker, got.Speaker)
	assert.Equal(t, target.PersonaName, got.PersonaName)
	assert.Equal(t, "rewritten", got.Text)
	assert.Empty(t, c.RefiningTurn())

	// Speaker B's configuration was the one resolved.
	assert.Equal(t, "Bo", gen.lastBinding.Name)
}

func TestRefineTurnUnknownIDIsNoOp(t *testing.T) {
	gen := &fakeGenerator{refineText: "x"}
	c := NewController(gen)
	a, b := bindings()
	before := seedScript(t, c, gen)

	err := c.RefineTurn(context.Background(), "no-such-turn", "instr", lookupFor(a, b))
	assert.ErrorIs(t, err, ErrTurnNotFound)
	assert.Equal(t, before, c.Script())
	assert.Zero(t, gen.refineCalls)
}

func TestRefineTurnFailureLeavesTurnUnchanged(t *testing.T) {
	gen := &fakeGenerator{refineErr: errors.New("model unavailable")}
	c := NewController(gen)
	a, b := bindings()
	before := seedScript(t, c, gen)

	err := c.RefineTurn(context.Background(), before[0].ID, "instr", lookupFor(a, b))
	require.Error(t, err)
	assert.Equal(t, before, c.Script())
	assert.Empty(t, c.RefiningTurn(), "in-flight marker must clear on failure")
}

func TestRefineTurnEmptyInstruction(t *testing.T) {
	gen := &fakeGenerator{}
	c := NewController(gen)
	a, b := bindings()
	turns := seedScript(t, c, gen)

	err := c.RefineTurn(context.Background(), turns[0].ID, " ", lookupFor(a, b))
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Zero(t, gen.refineCalls)
}

func TestAppendNextTurnAlternates(t *testing.T) {
	gen := &fakeGenerator{nextText: " a new line "}
	c := NewController(gen)
	a, b := bindings()
	seedScript(t, c, gen) // last turn is Speaker A

	err := c.AppendNextTurn(context.Background(), "wrap it up", a, b)
	require.NoError(t, err)

	turns := c.Script()
	require.Len(t, turns, 6)
	last := turns[5]
	assert.Equal(t, SpeakerB, last.Speaker)
	assert.Equal(t, "Bo", last.PersonaName)
	assert.Equal(t, "a new line", last.Text)
	assert.Equal(t, SpeakerB, gen.lastSpeaker)
	assert.Equal(t, "Bo", gen.lastBinding.Name)

	// Only the trailing four turns travel as context.
	require.Len(t, gen.lastHistory, 4)
	assert.Equal(t, "two", gen.lastHistory[0].Text)
	assert.Equal(t, "five", gen.lastHistory[3].Text)
}

func TestAppendNextTurnOnEmptyScript(t *testing.T) {
	gen := &fakeGenerator{nextText: "x"}
	c := NewController(gen)
	a, b := bindings()

	err := c.AppendNextTurn(context.Background(), "go", a, b)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Zero(t, gen.nextCalls)
}

func TestAppendNextTurnFailureLeavesScript(t *testing.T) {
	gen := &fakeGenerator{nextErr: errors.New("timeout")}
	c := NewController(gen)
	a, b := bindings()
	before := seedScript(t, c, gen)

	err := c.AppendNextTurn(context.Background(), "go", a, b)
	require.Error(t, err)
	assert.Equal(t, before, c.Script())
	assert.False(t, c.AddingLine())
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition never reached")
}

// A refine that resolves stale after a wholesale regeneration is discarded,
// and it must not release the refine marker now owned by a refine against
// the new script: that would admit a second concurrent refine.
func TestStaleRefineLeavesNewerMarker(t *testing.T) {
	gen := &fakeGenerator{refineText: "rewritten"}
	c := NewController(gen)
	a, b := bindings()
	turns := seedScript(t, c, gen)

	oldEntered := make(chan struct{})
	gateOld := make(chan struct{})
	gateNew := make(chan struct{})
	gen.onRefineLine = func(original string) {
		switch original {
		case "one":
			close(oldEntered)
			<-gateOld
		case "reply":
			<-gateNew
		}
	}

	oldDone := make(chan error, 1)
	go func() {
		oldDone <- c.RefineTurn(context.Background(), turns[0].ID, "sharper", lookupFor(a, b))
	}()
	<-oldEntered

	gen.dialogueText = "Speaker A: regenerated\nSpeaker B: reply"
	newTurns, err := c.GenerateScript(context.Background(), a, b, "new topic", "", "Short")
	require.NoError(t, err)
	require.Len(t, newTurns, 2)

	newDone := make(chan error, 1)
	go func() {
		newDone <- c.RefineTurn(context.Background(), newTurns[1].ID, "warmer", lookupFor(a, b))
	}()
	waitFor(t, func() bool { return c.RefiningTurn() == newTurns[1].ID })

	close(gateOld)
	assert.ErrorIs(t, <-oldDone, ErrStaleSession)

	// The newer refine still holds the marker, so a third refine is gated.
	assert.Equal(t, newTurns[1].ID, c.RefiningTurn())
	err = c.RefineTurn(context.Background(), newTurns[0].ID, "again", lookupFor(a, b))
	assert.ErrorIs(t, err, ErrBusy)

	close(gateNew)
	require.NoError(t, <-newDone)
	assert.Empty(t, c.RefiningTurn())
	assert.Equal(t, "rewritten", c.Script()[1].Text)
}

// A stale append, one that resolves after the script was regenerated
// wholesale, must be discarded rather than spliced into the new script.
func TestStaleAppendIsDiscarded(t *testing.T) {
	gen := &fakeGenerator{nextText: "stale line"}
	c := NewController(gen)
	a, b := bindings()
	seedScript(t, c, gen)

	gen.onNextLine = func() {
		gen.onNextLine = nil
		gen.dialogueText = "Speaker A: regenerated"
		_, err := c.GenerateScript(context.Background(), a, b, "new topic", "", "Short")
		require.NoError(t, err)
	}

	err := c.AppendNextTurn(context.Background(), "go", a, b)
	assert.ErrorIs(t, err, ErrStaleSession)

	turns := c.Script()
	require.Len(t, turns, 1)
	assert.Equal(t, "regenerated", turns[0].Text)
}
