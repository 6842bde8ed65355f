package generate

import (
	"errors"
	"fmt"
)

// Reason classifies why a provider produced no usable text.
type Reason string

const (
	// ReasonSafetyBlocked means the request was rejected by the provider's
	// content safety filter.
	ReasonSafetyBlocked Reason = "safety-blocked"
	// ReasonEmptyResponse means the call succeeded but returned no text or
	// text that could not be used.
	ReasonEmptyResponse Reason = "empty-response"
	// ReasonTransport means the call itself failed: network error, bad
	// credentials, or a non-2xx status.
	ReasonTransport Reason = "transport"
)

// Error is the typed failure of a generation call.
type Error struct {
	Provider string
	Reason   Reason
	Detail   string
	Err      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Provider, e.Detail)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// HasReason reports whether err is a generation Error with the given reason.
func HasReason(err error, reason Reason) bool {
	var ge *Error
	return errors.As(err, &ge) && ge.Reason == reason
}

// ListError reports a failed model-listing call. Callers fall back to an
// empty list and surface the message; nothing else stops working.
type ListError struct {
	Provider string
	Err      error
}

func (e *ListError) Error() string {
	return fmt.Sprintf("list %s models: %v", e.Provider, e.Err)
}

func (e *ListError) Unwrap() error { return e.Err }
