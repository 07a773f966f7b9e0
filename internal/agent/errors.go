package agent

import "fmt"

// ModelRequestError indicates the model could not be reached or rejected a
// request. It is fatal for the current Run invocation; the accumulated
// conversation is kept so the caller may retry with the same prefix.
type ModelRequestError struct {
	Err error
}

func (e *ModelRequestError) Error() string {
	return fmt.Sprintf("model request failed: %v", e.Err)
}

func (e *ModelRequestError) Unwrap() error { return e.Err }

// ProtocolError indicates the model ended a turn with a stop reason the loop
// does not understand. Failing loudly here beats looping silently.
type ProtocolError struct {
	StopReason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("unexpected stop reason %q", e.StopReason)
}
