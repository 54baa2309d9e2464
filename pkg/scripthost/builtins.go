package scripthost

import (
	"strings"
	"time"

	"github.com/dop251/goja"
)

// InstallControlBuiltins registers the three builtins every step script
// gets regardless of context whitelist (§4.1/§6): print (the only way a
// script can emit Output messages, since goja has no console by default),
// sleep (a cooperative, interruptible wait), and terminate_sequence (an
// uncatchable abort the script can trigger deliberately).
//
// emit is called with the complete text of one print() call, already
// newline-terminated; it is the caller's job (steprun) to route that into
// message.Send so the callback and CommChannel stay in sync.
func (h *Host) InstallControlBuiltins(emit func(string)) {
	h.vm.Set("print", func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, a := range call.Arguments {
			parts[i] = a.String()
		}
		emit(strings.Join(parts, "\t") + "\n")
		return goja.Undefined()
	})

	h.vm.Set("sleep", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return goja.Undefined()
		}
		seconds := call.Arguments[0].ToFloat()
		remaining := time.Duration(seconds * float64(time.Second))
		for remaining > 0 {
			slice := sleepSlice
			if remaining < slice {
				slice = remaining
			}
			time.Sleep(slice)
			remaining -= slice
			if reason := abortReason(h.current); reason != "" {
				panic(h.vm.ToValue(markAbort(reason)))
			}
		}
		return goja.Undefined()
	})

	// terminate_sequence takes no arguments (§4.1): it always raises the
	// same uncatchable abort, classified by classifyError into the fixed
	// message "Script called terminate_sequence()" because its marked
	// reason text is empty, mirroring the original's
	// abort_script_with_error(sol, "") call.
	h.vm.Set("terminate_sequence", func(call goja.FunctionCall) goja.Value {
		panic(h.vm.ToValue(markAbort("")))
	})
}
