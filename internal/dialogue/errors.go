package dialogue

import "errors"

var (
	// ErrTurnNotFound is returned when a refine targets a turn id that is
	// not in the current script. The script is left untouched.
	ErrTurnNotFound = errors.New("turn not found in script")

	// ErrStaleSession is returned when an operation's result resolved after
	// the script it was started against was replaced wholesale. The result
	// is discarded, never spliced into the newer script.
	ErrStaleSession = errors.New("script was replaced while the operation was in flight")

	// ErrBusy is returned when a second request is made for a mutation
	// target that already has an operation outstanding. Requests are
	// rejected, never queued.
	ErrBusy = errors.New("an operation is already in flight for this target")

	// ErrEditingConfig is returned when generation is attempted while a
	// persona-configuration editor is open; generating against a
	// configuration that is about to change is not permitted.
	ErrEditingConfig = errors.New("a persona configuration is being edited")
)

// ValidationError reports empty or invalid user input caught before any
// collaborator call is made.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationErr(msg string) error { return &ValidationError{Msg: msg} }
