// Package taskoerr defines the error value carried across every public
// taskolib operation that can fail.
package taskoerr

import "fmt"

// Error reports a failure during sequence or step execution. StepIndex is
// nil when the failure cannot be attributed to a single step (a sequence-
// level syntax error, for example).
type Error struct {
	Message   string
	StepIndex *uint16
	cause     error
}

// New builds an Error not attributable to any particular step.
func New(message string) *Error {
	return &Error{Message: message}
}

// Newf builds an Error from a format string, not attributable to any step.
func Newf(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

// AtStep builds an Error attributable to the step at the given index.
func AtStep(index uint16, message string) *Error {
	return &Error{Message: message, StepIndex: &index}
}

// Wrap builds an Error that joins an underlying cause, preserving it for
// errors.Unwrap/errors.As while presenting a taskolib-shaped message.
func Wrap(message string, cause error) *Error {
	return &Error{Message: message, cause: cause}
}

// WrapAtStep is Wrap with a step index attached.
func WrapAtStep(index uint16, message string, cause error) *Error {
	return &Error{Message: message, StepIndex: &index, cause: cause}
}

func (e *Error) Error() string {
	if e.StepIndex != nil {
		return fmt.Sprintf("step %d: %s", *e.StepIndex, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// HasStepIndex reports whether the error is attributable to a step, and
// returns that index.
func (e *Error) HasStepIndex() (uint16, bool) {
	if e.StepIndex == nil {
		return 0, false
	}
	return *e.StepIndex, true
}
