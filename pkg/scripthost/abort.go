package scripthost

import "strings"

// abortMarker embeds in an error's message to mark it as not catchable by
// a sequence-level TRY/CATCH: once tripped, execution must unwind all the
// way out rather than be intercepted. It is stripped from the message
// before the error reaches a caller outside the engine.
//
// A marked message whose reason text is empty once the marker is stripped
// means the script called terminate_sequence() with no other cause in
// play; any other reason text means an externally triggered abort
// (cancellation or a timeout), mirroring the original's
// remove_abort_markers case split on the string between its markers.
const abortMarker = "\x00taskolib-abort\x00"

// markAbort embeds the abort marker in msg.
func markAbort(msg string) string {
	return msg + abortMarker
}

// IsAbort reports whether msg carries the uncatchable-abort marker.
func IsAbort(msg string) bool {
	return strings.Contains(msg, abortMarker)
}

// StripAbortMarker removes the marker from msg, leaving the human-readable
// text, for presentation to a caller.
func StripAbortMarker(msg string) string {
	return strings.ReplaceAll(msg, abortMarker, "")
}
