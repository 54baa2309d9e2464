package scripthost

import (
	"errors"
	"fmt"

	"github.com/dop251/goja"
)

// Cause classifies why a script run failed, mirroring the original error
// taxonomy (§3/§7): a compile-time syntax error, an ordinary runtime error
// raised by the script, a script explicitly calling terminate_sequence, or
// an externally triggered abort (timeout or cancellation).
type Cause int

const (
	CauseRuntime Cause = iota
	CauseSyntax
	CauseTerminatedByScript
	CauseAborted
)

func (c Cause) String() string {
	switch c {
	case CauseSyntax:
		return "syntax"
	case CauseTerminatedByScript:
		return "terminated-by-script"
	case CauseAborted:
		return "aborted"
	default:
		return "runtime"
	}
}

// HostError is what Run returns on failure.
type HostError struct {
	Cause   Cause
	Message string
	cause   error
}

func (e *HostError) Error() string {
	return fmt.Sprintf("%s: %s", e.Cause, e.Message)
}

func (e *HostError) Unwrap() error { return e.cause }

// Uncatchable reports whether the failure must propagate past any
// sequence-level CATCH step rather than be handled by one: an externally
// triggered abort (timeout/cancellation) and a script's own
// terminate_sequence call both unwind unconditionally.
func (e *HostError) Uncatchable() bool {
	return e.Cause == CauseAborted || e.Cause == CauseTerminatedByScript
}

func classifyError(err error) error {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		msg := ""
		if s, ok := interrupted.Value().(string); ok {
			msg = s
		}
		return abortHostError(msg, err)
	}

	var exc *goja.Exception
	if errors.As(err, &exc) {
		msg := exc.Error()
		if s, ok := exc.Value().Export().(string); ok {
			msg = s
		}
		if IsAbort(msg) {
			return abortHostError(msg, err)
		}
		return &HostError{Cause: CauseRuntime, Message: msg, cause: err}
	}

	var syn *goja.CompilerSyntaxError
	if errors.As(err, &syn) {
		return &HostError{Cause: CauseSyntax, Message: syn.Error(), cause: err}
	}

	msg := err.Error()
	if IsAbort(msg) {
		return abortHostError(msg, err)
	}
	return &HostError{Cause: CauseRuntime, Message: msg, cause: err}
}

// abortHostError classifies a marked abort message. Stripping the marker
// leaves either an empty string, meaning the script called
// terminate_sequence() with no other cause in play, or the explanatory
// text abortReason produced for an externally triggered abort — exactly
// the two-way split the original's remove_abort_markers makes on the text
// between its own markers.
func abortHostError(marked string, cause error) *HostError {
	reason := StripAbortMarker(marked)
	if reason == "" {
		return &HostError{Cause: CauseTerminatedByScript, Message: "Script called terminate_sequence()", cause: cause}
	}
	return &HostError{Cause: CauseAborted, Message: reason, cause: cause}
}
