package dialogue

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// historyWindow is how many trailing turns of context a next-line request
// carries. The full history is never sent.
const historyWindow = 4

// Generator is the external generation collaborator. Implementations prompt
// a model and return raw text; they never touch the script.
type Generator interface {
	// Dialogue produces the full raw dialogue text for two persona
	// configurations.
	Dialogue(ctx context.Context, a, b Binding, topic, contextMaterial, length string) (string, error)
	// RefineLine rewrites one line of dialogue per the user's instruction,
	// in the voice of the given configuration.
	RefineLine(ctx context.Context, original string, speaker Binding, instruction string) (string, error)
	// NextLine continues the dialogue with a single new line for the next
	// speaker, given a trailing window of history.
	NextLine(ctx context.Context, history []Turn, next Speaker, speaker Binding, instruction string) (string, error)
}

// Controller owns the script for one dialogue session and sequences the
// three mutating operations against it. Each mutation target (the whole
// script, one refine target, one add-line request) carries an independent
// in-flight marker; a second request for a busy target is rejected, never
// queued. No lock is held across a collaborator call; results are spliced
// back only if the session token still matches, so a result that resolves
// after the script was replaced wholesale is discarded.
type Controller struct {
	gen Generator

	mu           sync.Mutex
	session      uint64
	turns        []Turn
	generating   bool
	refiningTurn string
	addingLine   bool
}

func NewController(gen Generator) *Controller {
	return &Controller{gen: gen}
}

// Script returns a snapshot of the current turns.
func (c *Controller) Script() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// RefiningTurn returns the id of the turn with a refine in flight, or ""
// when none is. Callers use this to gate redundant submissions.
func (c *Controller) RefiningTurn() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refiningTurn
}

// Generating reports whether a whole-script generation is outstanding.
func (c *Controller) Generating() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generating
}

// AddingLine reports whether a next-turn request is outstanding.
func (c *Controller) AddingLine() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.addingLine
}

// GenerateScript replaces the whole script with a freshly generated
// dialogue between the two bound personas. The current script is discarded
// and the session token bumped before the collaborator is called, so any
// refine or append still in flight resolves stale and is dropped. On
// failure the script stays empty and the error is surfaced; a partial
// script is never committed.
func (c *Controller) GenerateScript(ctx context.Context, a, b Binding, topic, contextMaterial, length string) ([]Turn, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, validationErr("dialogue topic must not be empty")
	}

	c.mu.Lock()
	if c.generating {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	c.generating = true
	c.session++
	c.turns = nil
	c.refiningTurn = ""
	c.addingLine = false
	session := c.session
	c.mu.Unlock()

	raw, err := c.gen.Dialogue(ctx, a, b, topic, contextMaterial, length)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.generating = false

	if err != nil {
		return nil, fmt.Errorf("dialogue generation failed: %w", err)
	}
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("dialogue generation failed: model returned no text")
	}
	if c.session != session {
		return nil, ErrStaleSession
	}

	c.turns = ParseTranscript(raw, a.Name, b.Name)
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out, nil
}

// RefineTurn regenerates the text of a single turn per the user's
// instruction. The persona configuration is resolved through lookup at
// request time; edits saved while the refine is outstanding do not affect
// it. Only the matching turn's text is replaced; id, speaker, and persona
// name are preserved. On failure the turn is left unchanged and the
// in-flight marker clears so the user can retry. A resolve whose session
// token went stale leaves the marker alone: a wholesale regeneration
// already reclaimed it, possibly for a newer refine.
func (c *Controller) RefineTurn(ctx context.Context, turnID, instruction string, lookup func(Speaker) (Binding, bool)) error {
	if strings.TrimSpace(instruction) == "" {
		return validationErr("refine instruction must not be empty")
	}

	c.mu.Lock()
	if c.refiningTurn != "" {
		c.mu.Unlock()
		return ErrBusy
	}
	idx := c.turnIndex(turnID)
	if idx < 0 {
		c.mu.Unlock()
		return ErrTurnNotFound
	}
	target := c.turns[idx]
	session := c.session
	c.refiningTurn = turnID
	c.mu.Unlock()

	release := func() {
		c.mu.Lock()
		if c.session == session {
			c.refiningTurn = ""
		}
		c.mu.Unlock()
	}

	binding, ok := lookup(target.Speaker)
	if !ok {
		release()
		return validationErr(fmt.Sprintf("no persona bound to %s", target.Speaker))
	}

	text, err := c.gen.RefineLine(ctx, target.Text, binding, instruction)

	c.mu.Lock()
	defer c.mu.Unlock()
	// The marker belongs to this call only while the session token holds.
	// After a regeneration it may be owned by a refine against the new
	// script, which must stay gated.
	if c.session == session {
		c.refiningTurn = ""
	}

	if err != nil {
		return fmt.Errorf("refinement failed: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("refinement failed: model returned no text")
	}
	if c.session != session {
		return ErrStaleSession
	}
	if idx = c.turnIndex(turnID); idx < 0 {
		return ErrTurnNotFound
	}
	c.turns[idx].Text = strings.TrimSpace(text)
	return nil
}

// AppendNextTurn continues the dialogue by one turn. The next speaker is the
// alternation partner of the last turn's speaker; only the trailing
// historyWindow turns plus the instruction and the next speaker's
// configuration reach the collaborator. Exactly one turn is appended on
// success; on failure the script is unchanged.
func (c *Controller) AppendNextTurn(ctx context.Context, instruction string, a, b Binding) error {
	if strings.TrimSpace(instruction) == "" {
		return validationErr("continuation instruction must not be empty")
	}

	c.mu.Lock()
	if c.addingLine {
		c.mu.Unlock()
		return ErrBusy
	}
	if len(c.turns) == 0 {
		c.mu.Unlock()
		return validationErr("cannot continue an empty script")
	}
	next := c.turns[len(c.turns)-1].Speaker.Next()
	binding := a
	if next == SpeakerB {
		binding = b
	}
	start := len(c.turns) - historyWindow
	if start < 0 {
		start = 0
	}
	history := make([]Turn, len(c.turns)-start)
	copy(history, c.turns[start:])
	session := c.session
	c.addingLine = true
	c.mu.Unlock()

	text, err := c.gen.NextLine(ctx, history, next, binding, instruction)

	c.mu.Lock()
	defer c.mu.Unlock()
	// Same ownership rule as the refine marker: a stale resolve must not
	// release an add-line slot claimed after regeneration.
	if c.session == session {
		c.addingLine = false
	}

	if err != nil {
		return fmt.Errorf("failed to add line: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("failed to add line: model returned no text")
	}
	if c.session != session {
		return ErrStaleSession
	}
	c.turns = append(c.turns, newTurn(next, binding.Name, strings.TrimSpace(text)))
	return nil
}

func (c *Controller) turnIndex(id string) int {
	for i, t := range c.turns {
		if t.ID == id {
			return i
		}
	}
	return -1
}
