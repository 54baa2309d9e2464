// Package steprun implements the Step Runtime (component B): executing one
// step against a Script Host, including sandbox setup, custom builtins,
// context import/export, timeout enforcement, and classification of the
// script's return value into the bool an IF/ELSEIF/WHILE condition needs.
package steprun

import (
	"github.com/taskolib/taskolib/pkg/message"
	"github.com/taskolib/taskolib/pkg/scripthost"
	"github.com/taskolib/taskolib/pkg/step"
	"github.com/taskolib/taskolib/pkg/taskctx"
	"github.com/taskolib/taskolib/pkg/taskoerr"
	"github.com/taskolib/taskolib/pkg/timeout"
)

// Runtime holds the Script Host of the step being executed. Execute gives
// every step a fresh Host, so no script state other than the whitelisted
// context variables carries over from one step to the next.
type Runtime struct {
	Host *scripthost.Host
}

// New builds a Runtime around a fresh Script Host.
func New() *Runtime {
	h := scripthost.New()
	return &Runtime{Host: h}
}

// Result is what executing one step produces.
type Result struct {
	// ConditionValue is the script's return value interpreted as a bool,
	// used by the engine to decide which branch of an IF/WHILE to take.
	// It is always false for a step that doesn't execute a script.
	ConditionValue bool
	Ran            bool // false if the step was skipped (disabled or non-executing)
}

// Execute runs st's script (if any) following the eight-step procedure:
// skip disabled/non-script steps silently, emit StepStarted, run any
// step-setup script/func first in the same host, import the whitelist,
// run the step's own script under both its own and the sequence's
// deadline, export the whitelist back, classify the return value, and
// emit StepStopped(WithError).
func Execute(rt *Runtime, st *step.Step, ctx *taskctx.Context, comm *message.CommChannel, cb message.Callback, seqIndex uint16, seqDeadline *timeout.Trigger) (Result, *taskoerr.Error) {
	if st.Disabled || !st.Type.ExecutesScript() {
		return Result{}, nil
	}

	rt.Host = scripthost.New()

	idx := seqIndex
	st.Running = true
	defer func() { st.Running = false }()

	message.Send(cb, comm, message.New(message.StepStarted, st.Label, &idx))

	emit := func(text string) {
		message.Send(cb, comm, message.New(message.Output, text, &idx))
	}
	rt.Host.InstallControlBuiltins(emit)

	if ctx.StepSetupFunc != nil {
		if err := ctx.StepSetupFunc(rt.Host); err != nil {
			return fail(cb, comm, idx, taskoerr.WrapAtStep(idx, "step setup failed", err))
		}
	}
	if ctx.StepSetupScript != "" {
		if _, err := rt.Host.Run(ctx.StepSetupScript, scripthost.RunOptions{
			Comm: comm, SeqDeadline: seqDeadline, ChunkName: "<step-setup>", DiscardReturn: true,
		}); err != nil {
			setupErr := classify(idx, err)
			return fail(cb, comm, idx, taskoerr.WrapAtStep(idx, "[setup] "+setupErr.Message, setupErr))
		}
	}

	rt.Host.Import(ctx, st.Whitelist)

	stepDeadline := timeout.NewTrigger()
	stepDeadline.SetTimeout(st.Timeout)
	stepDeadline.Reset()

	result, hostErr := rt.Host.Run(st.Script, scripthost.RunOptions{
		StepDeadline: stepDeadline,
		SeqDeadline:  seqDeadline,
		Comm:         comm,
		ChunkName:    st.Label,
	})
	if hostErr != nil {
		return fail(cb, comm, idx, classify(idx, hostErr))
	}

	rt.Host.Export(ctx, st.Whitelist)

	var cond bool
	if st.Type.RequiresCondition() {
		b, ok := result.Bool()
		if !ok {
			return fail(cb, comm, idx, taskoerr.AtStep(idx, "condition step must return a boolean value"))
		}
		cond = b
	} else if !result.IsNone() {
		return fail(cb, comm, idx, taskoerr.AtStep(idx, "step must return nothing or nil"))
	}

	message.Send(cb, comm, message.New(message.StepStopped, st.Label, &idx))
	return Result{ConditionValue: cond, Ran: true}, nil
}

func classify(idx uint16, err error) *taskoerr.Error {
	if he, ok := err.(*scripthost.HostError); ok {
		return taskoerr.WrapAtStep(idx, he.Message, he)
	}
	return taskoerr.WrapAtStep(idx, err.Error(), err)
}

func fail(cb message.Callback, comm *message.CommChannel, idx uint16, err *taskoerr.Error) (Result, *taskoerr.Error) {
	message.Send(cb, comm, message.New(message.StepStoppedWithError, err.Error(), &idx))
	return Result{}, err
}
