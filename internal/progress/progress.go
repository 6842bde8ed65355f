// Package progress reports dialogue-generation progress to the terminal.
package progress

import "time"

// Stage identifies which step of script generation is active.
type Stage string

const (
	StageContext  Stage = "context"
	StageAnalysis Stage = "analysis"
	StageDialogue Stage = "dialogue"
	StageComplete Stage = "complete"
)

// Event carries progress information from the generation flow to the renderer.
type Event struct {
	Stage   Stage
	Message string
	Percent float64 // 0.0 to 1.0
	Elapsed time.Duration
	Error   error
	// OutputFile is set on StageComplete when the script was written to disk.
	OutputFile string
	// TurnCount is the number of dialogue turns, set on StageComplete.
	TurnCount int
}

// Callback is the function signature for progress event handlers.
type Callback func(Event)

// NopCallback is a no-op progress callback for tests and silent mode.
func NopCallback(Event) {}

// NewEvent creates an Event with common fields populated.
func NewEvent(stage Stage, msg string, pct float64, start time.Time) Event {
	return Event{
		Stage:   stage,
		Message: msg,
		Percent: pct,
		Elapsed: time.Since(start),
	}
}
