// Package engine implements the Sequence Engine (component E): the
// recursive-descent walk over a Sequence's flat, validated step list
// (§4.5.4) wrapped in the sequence-level execution envelope (§4.5.6) —
// SequenceStarted/SequenceStopped(WithError) messages, the sequence
// timeout trigger, and LastError bookkeeping.
package engine

import (
	"errors"

	"github.com/taskolib/taskolib/pkg/message"
	"github.com/taskolib/taskolib/pkg/scripthost"
	"github.com/taskolib/taskolib/pkg/sequence"
	"github.com/taskolib/taskolib/pkg/step"
	"github.com/taskolib/taskolib/pkg/steprun"
	"github.com/taskolib/taskolib/pkg/taskctx"
	"github.com/taskolib/taskolib/pkg/taskoerr"
	"github.com/taskolib/taskolib/pkg/timeout"
)

// Run executes every step of seq in order, honoring IF/ELSEIF/ELSE
// branching, WHILE looping and TRY/CATCH recovery, and returns the first
// uncaught error, if any. seq must already satisfy ValidateSyntax; Run
// does not re-validate.
func Run(seq *sequence.Sequence, ctx *taskctx.Context, comm *message.CommChannel, cb message.Callback) *taskoerr.Error {
	rt := steprun.New()

	seqDeadline := timeout.NewTrigger()
	seqDeadline.SetTimeout(seq.Timeout)
	seqDeadline.Reset()
	seq.TimeoutStart = seqDeadline.GetStartTime()

	seq.Running = true
	message.Send(cb, comm, message.New(message.SequenceStarted, seq.Label, nil))

	pos := 0
	var runErr *taskoerr.Error
	for pos < len(seq.Steps) {
		var next int
		next, runErr = execStatement(rt, seq.Steps, pos, ctx, comm, cb, seqDeadline)
		if runErr != nil {
			break
		}
		pos = next
	}

	seq.Running = false

	var he *scripthost.HostError
	if runErr != nil && errors.As(runErr, &he) {
		switch he.Cause {
		case scripthost.CauseTerminatedByScript:
			// A script calling terminate_sequence() stops the sequence
			// cleanly: no error, fixed message, cf. original_source's
			// internals.cc treatment of an empty abort reason.
			seq.LastError = nil
			message.Send(cb, comm, message.New(message.SequenceStopped, he.Message, nil))
			return nil
		case scripthost.CauseAborted:
			abortErr := taskoerr.Wrap("Sequence aborted: "+he.Message, runErr)
			seq.LastError = abortErr
			message.Send(cb, comm, message.New(message.SequenceStoppedWithError, abortErr.Error(), nil))
			return abortErr
		}
	}

	seq.LastError = runErr
	if runErr != nil {
		message.Send(cb, comm, message.New(message.SequenceStoppedWithError, runErr.Error(), runErr.StepIndex))
	} else {
		message.Send(cb, comm, message.New(message.SequenceStopped, seq.Label, nil))
	}
	return runErr
}

// execStatement runs the statement starting at pos and returns the index
// of the next statement to run. For a block opener (IF/WHILE/TRY) this
// consumes the whole block, including its matching END.
func execStatement(rt *steprun.Runtime, steps []*step.Step, pos int, ctx *taskctx.Context, comm *message.CommChannel, cb message.Callback, seqDeadline *timeout.Trigger) (int, *taskoerr.Error) {
	st := steps[pos]

	if err := checkCancellation(comm, pos); err != nil {
		return pos, err
	}

	switch st.Type {
	case step.If:
		return execIf(rt, steps, pos, ctx, comm, cb, seqDeadline)
	case step.While:
		return execWhile(rt, steps, pos, ctx, comm, cb, seqDeadline)
	case step.Try:
		return execTry(rt, steps, pos, ctx, comm, cb, seqDeadline)
	default:
		_, err := steprun.Execute(rt, st, ctx, comm, cb, uint16(pos), seqDeadline)
		return pos + 1, err
	}
}

// execIf runs the IF/ELSEIF chain's first true branch (or ELSE if none
// matched), then skips to just past the matching END.
func execIf(rt *steprun.Runtime, steps []*step.Step, pos int, ctx *taskctx.Context, comm *message.CommChannel, cb message.Callback, seqDeadline *timeout.Trigger) (int, *taskoerr.Error) {
	branches := collectBranches(steps, pos)
	end := branches[len(branches)-1].end

	if steps[pos].Disabled {
		return end + 1, nil
	}

	for _, br := range branches {
		if err := checkCancellation(comm, br.start); err != nil {
			return 0, err
		}
		isElse := steps[br.start].Type == step.Else
		taken := isElse
		if !isElse {
			res, err := steprun.Execute(rt, steps[br.start], ctx, comm, cb, uint16(br.start), seqDeadline)
			if err != nil {
				return 0, err
			}
			taken = res.ConditionValue
		}
		if taken {
			if err := execRange(rt, steps, br.bodyStart, br.bodyEnd, ctx, comm, cb, seqDeadline); err != nil {
				return 0, err
			}
			break
		}
	}
	return end + 1, nil
}

// execWhile repeatedly evaluates the WHILE condition and runs the loop
// body while it holds true.
func execWhile(rt *steprun.Runtime, steps []*step.Step, pos int, ctx *taskctx.Context, comm *message.CommChannel, cb message.Callback, seqDeadline *timeout.Trigger) (int, *taskoerr.Error) {
	end := matchingEnd(steps, pos)
	if steps[pos].Disabled {
		return end + 1, nil
	}

	for {
		if err := checkCancellation(comm, pos); err != nil {
			return 0, err
		}
		res, err := steprun.Execute(rt, steps[pos], ctx, comm, cb, uint16(pos), seqDeadline)
		if err != nil {
			return 0, err
		}
		if !res.ConditionValue {
			break
		}
		if err := execRange(rt, steps, pos+1, end, ctx, comm, cb, seqDeadline); err != nil {
			return 0, err
		}
	}
	return end + 1, nil
}

// execTry runs the TRY body; if it fails with a catchable error, it runs
// the CATCH body instead. An uncatchable error (timeout, cancellation, or
// terminate_sequence) always propagates regardless of CATCH.
func execTry(rt *steprun.Runtime, steps []*step.Step, pos int, ctx *taskctx.Context, comm *message.CommChannel, cb message.Callback, seqDeadline *timeout.Trigger) (int, *taskoerr.Error) {
	catchIdx, end := findCatch(steps, pos)
	if steps[pos].Disabled {
		return end + 1, nil
	}

	bodyEnd := end
	if catchIdx >= 0 {
		bodyEnd = catchIdx
	}

	err := execRange(rt, steps, pos+1, bodyEnd, ctx, comm, cb, seqDeadline)
	if err == nil {
		return end + 1, nil
	}
	if uncatchable(err) || catchIdx < 0 {
		return 0, err
	}
	if cerr := execRange(rt, steps, catchIdx+1, end, ctx, comm, cb, seqDeadline); cerr != nil {
		return 0, cerr
	}
	return end + 1, nil
}

// execRange runs every statement in [from, to).
func execRange(rt *steprun.Runtime, steps []*step.Step, from, to int, ctx *taskctx.Context, comm *message.CommChannel, cb message.Callback, seqDeadline *timeout.Trigger) *taskoerr.Error {
	pos := from
	for pos < to {
		next, err := execStatement(rt, steps, pos, ctx, comm, cb, seqDeadline)
		if err != nil {
			return err
		}
		pos = next
	}
	return nil
}

// checkCancellation raises an abort before a step runs if the CommChannel's
// immediate-termination flag is already set, so steps that never reach the
// Script Host (TRY, ELSE, disabled steps) and every re-evaluation of a
// WHILE condition still have a cancellation point, per §4.5.4.
func checkCancellation(comm *message.CommChannel, pos int) *taskoerr.Error {
	if comm == nil || !comm.ImmediateTerminationRequested() {
		return nil
	}
	idx := uint16(pos)
	he := &scripthost.HostError{Cause: scripthost.CauseAborted, Message: "Stop on user request"}
	return taskoerr.WrapAtStep(idx, he.Message, he)
}

// uncatchable reports whether err must unwind past any enclosing CATCH:
// true for an externally triggered abort (timeout/cancellation) or a
// script's own terminate_sequence call.
func uncatchable(err *taskoerr.Error) bool {
	var he *scripthost.HostError
	if errors.As(err, &he) {
		return he.Uncatchable()
	}
	return false
}
