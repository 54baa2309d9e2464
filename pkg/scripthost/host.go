// Package scripthost implements the embedded scripting language runtime
// (Script Host, component A): compiling and running one script fragment in
// an isolated goja.Runtime, with cooperative interruption, a sandboxed
// builtin surface, and the context import/export boundary.
//
// goja exposes no file I/O, process control or module loader unless a host
// explicitly wires one in via goja_nodejs, which this package does not
// import — the safe subset described by the original Lua design
// ("opens math, string, table, UTF8... removes collectgarbage, debug,
// dofile, load, loadfile, print, require") is achieved here structurally,
// by omission, rather than by enumerating removals.
package scripthost

import (
	"fmt"
	"time"

	"github.com/dop251/goja"

	"github.com/taskolib/taskolib/pkg/message"
	"github.com/taskolib/taskolib/pkg/taskctx"
	"github.com/taskolib/taskolib/pkg/timeout"
	"github.com/taskolib/taskolib/pkg/value"
)

// pollInterval is how often the watcher goroutine checks the termination
// flag and deadline. The original Lua hook fires roughly every 100 VM
// instructions; goja has no instruction-count hook, so a short wall-clock
// tick is the idiomatic Go substitute described in the design notes.
const pollInterval = 5 * time.Millisecond

// sleepSlice bounds how long a single internal time.Sleep inside the
// sleep() builtin waits before re-checking for interruption, matching the
// original's "sleep in slices of at most 10ms" behavior.
const sleepSlice = 10 * time.Millisecond

// Host wraps one goja.Runtime: a fresh Host is created per step execution,
// matching the original design's one-VM-per-step isolation.
type Host struct {
	vm      *goja.Runtime
	current RunOptions
}

// New builds a Host on a fresh goja.Runtime. print, sleep and
// terminate_sequence are not available until InstallControlBuiltins is
// called; RegisterFunc adds further host-application builtins.
func New() *Host {
	h := &Host{vm: goja.New()}
	return h
}

// RegisterFunc exposes a Go function as a global callable from scripts. It
// satisfies taskctx.ScriptSetupTarget so a StepSetupFunc can add
// host-application-specific helpers.
func (h *Host) RegisterFunc(name string, fn func(args ...value.Value) (value.Value, error)) {
	h.vm.Set(name, func(call goja.FunctionCall) goja.Value {
		args := make([]value.Value, len(call.Arguments))
		for i, a := range call.Arguments {
			v, ok := value.FromAny(a.Export())
			if !ok {
				panic(h.vm.NewTypeError("unsupported argument type for " + name))
			}
			args[i] = v
		}
		result, err := fn(args...)
		if err != nil {
			panic(h.vm.NewGoError(err))
		}
		if result.IsNone() {
			return goja.Undefined()
		}
		return h.vm.ToValue(result.Any())
	})
}

// Import binds the subset of ctx.Variables named in whitelist as globals
// visible to the script. An empty whitelist imports nothing.
func (h *Host) Import(ctx *taskctx.Context, whitelist []string) {
	for _, name := range whitelist {
		v := ctx.Get(name)
		if v.IsNone() {
			h.vm.Set(name, goja.Undefined())
			continue
		}
		h.vm.Set(name, v.Any())
	}
}

// Export reads the subset of globals named in whitelist back out of the
// script and writes them into ctx. A global left undefined or null by the
// script removes the corresponding context variable; a global of a type
// the variant can't represent (function, object, array) is silently
// ignored, per §4.2 step 6, leaving whatever value ctx already held.
func (h *Host) Export(ctx *taskctx.Context, whitelist []string) {
	for _, name := range whitelist {
		gv := h.vm.Get(name)
		if gv == nil || goja.IsUndefined(gv) {
			ctx.Set(name, value.None)
			continue
		}
		v, ok := value.FromAny(gv.Export())
		if !ok {
			continue
		}
		ctx.Set(name, v)
	}
}

// RunOptions configures one Run call.
type RunOptions struct {
	StepDeadline *timeout.Trigger
	SeqDeadline  *timeout.Trigger
	Comm         *message.CommChannel
	ChunkName    string

	// DiscardReturn marks a run whose caller only needs side effects, not
	// the script's return value (the step-setup script): any return,
	// representable or not, is converted to value.None instead of being
	// classified. Left false for a step's own script, whose return value
	// §4.2 step 8 requires the caller to validate.
	DiscardReturn bool
}

// Run compiles and executes script, returning its top-level return value
// (§4.1): script is wrapped as an immediately invoked function so that,
// matching the original Lua chunk's "return" semantics, only an explicit
// top-level `return` statement produces a value — a script that runs to
// completion without one yields value.None, regardless of what its last
// statement evaluated to. A bare identifier assignment like `y = x + 1`
// still reaches the Script Host's globals: without a var/let/const, it is
// an implicit global assignment in sloppy mode even from inside the
// wrapper function.
//
// Run also installs a watcher goroutine that interrupts the VM the moment
// the CommChannel's termination flag is set or either deadline elapses,
// and tears the watcher down before returning.
func (h *Host) Run(script string, opts RunOptions) (value.Value, error) {
	name := opts.ChunkName
	if name == "" {
		name = "<step>"
	}

	prog, err := goja.Compile(name, "(function(){\n"+script+"\n})()", false)
	if err != nil {
		return value.Value{}, &HostError{Cause: CauseSyntax, Message: err.Error(), cause: err}
	}

	h.current = opts
	h.vm.ClearInterrupt()

	stop := make(chan struct{})
	done := make(chan struct{})
	go h.watch(opts, stop, done)

	result, err := h.vm.RunProgram(prog)
	close(stop)
	<-done

	if err != nil {
		return value.Value{}, classifyError(err)
	}
	if opts.DiscardReturn {
		return value.None, nil
	}
	v, ok := value.FromAny(result.Export())
	if !ok {
		return value.Value{}, &HostError{Cause: CauseRuntime, Message: "script's return value has a type the context variant cannot represent"}
	}
	return v, nil
}

// watch polls for the conditions that should interrupt a running script:
// an external immediate-termination request, or either deadline elapsing.
// Once it trips, it keeps re-issuing Interrupt on every tick for as long as
// the script keeps running, mirroring the original hook's self-reinstalling
// behavior so a pcall-equivalent inside the script cannot swallow the
// interruption.
func (h *Host) watch(opts RunOptions, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var reason string
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if reason == "" {
				reason = abortReason(opts)
			}
			if reason != "" {
				h.vm.Interrupt(markAbort(reason))
			}
		}
	}
}

// abortReason reports the explanatory text for whichever condition in opts
// demands the running script be interrupted, or "" if none does. The text
// matches the original hook's three messages exactly (cf.
// check_immediate_termination_request/check_script_timeout in
// original_source/src/lua_details.cc) so that classifyError and a caller's
// get_error() surface the same wording: "Stop on user request" for an
// external cancel, "Timeout: Script took more than N s to run" for a step
// deadline, "Timeout: Sequence took more than N s to run" for a sequence
// deadline. Cancellation is checked first, matching the original's
// ordering.
func abortReason(opts RunOptions) string {
	if opts.Comm != nil && opts.Comm.ImmediateTerminationRequested() {
		return "Stop on user request"
	}
	if opts.StepDeadline != nil && opts.StepDeadline.IsElapsed() {
		seconds := opts.StepDeadline.GetTimeout().Duration().Seconds()
		return fmt.Sprintf("Timeout: Script took more than %g s to run", seconds)
	}
	if opts.SeqDeadline != nil && opts.SeqDeadline.IsElapsed() {
		seconds := opts.SeqDeadline.GetTimeout().Duration().Seconds()
		return fmt.Sprintf("Timeout: Sequence took more than %g s to run", seconds)
	}
	return ""
}
