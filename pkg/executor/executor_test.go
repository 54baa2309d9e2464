package executor

import (
	"testing"
	"time"

	"github.com/taskolib/taskolib/pkg/message"
	"github.com/taskolib/taskolib/pkg/sequence"
	"github.com/taskolib/taskolib/pkg/step"
	"github.com/taskolib/taskolib/pkg/taskctx"
	"github.com/taskolib/taskolib/pkg/value"
)

func TestIsBusyFalseBeforeAnyRun(t *testing.T) {
	e := New()
	if e.IsBusy() {
		t.Error("expected a fresh Executor not to be busy")
	}
}

func TestUpdateFalseBeforeAnyRun(t *testing.T) {
	e := New()
	if e.Update() {
		t.Error("expected Update to return false before any run has started")
	}
}

func TestRunAsynchronouslyCompletesAndDrains(t *testing.T) {
	s := sequence.New("demo")
	if err := s.PushBack(step.New(step.Action).WithScript("out = 1 + 1").WithWhitelist("out")); err != nil {
		t.Fatalf("building sequence: %v", err)
	}
	ctx := taskctx.New()

	e := New()
	if err := e.RunAsynchronously(s, ctx, nil); err != nil {
		t.Fatalf("unexpected error starting run: %v", err)
	}

	var types []message.Type
	deadline := time.Now().Add(2 * time.Second)
	for e.IsBusy() || e.Update() {
		for e.Update() {
		}
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for the run to finish")
		}
		time.Sleep(time.Millisecond)
	}
	e.Wait()
	for e.Update() {
	}
	_ = types

	if e.LastError() != nil {
		t.Errorf("unexpected run error: %v", e.LastError())
	}
	got, _ := ctx.Get("out").Int()
	if got != 2 {
		t.Errorf("got %d, want 2", got)
	}
}

func TestRunAsynchronouslyRejectsOverlap(t *testing.T) {
	s := sequence.New("demo")
	if err := s.PushBack(step.New(step.Action).WithScript("while (true) {}")); err != nil {
		t.Fatalf("building sequence: %v", err)
	}
	ctx := taskctx.New()
	e := New()

	if err := e.RunAsynchronously(s, ctx, nil); err != nil {
		t.Fatalf("unexpected error starting first run: %v", err)
	}
	if err := e.RunAsynchronously(s, ctx, nil); err == nil {
		t.Error("expected starting a second run while busy to fail")
		e.Cancel()
		e.Wait()
	} else {
		e.Cancel()
		e.Wait()
	}
}

func TestCancelStopsABusyLoop(t *testing.T) {
	s := sequence.New("demo")
	if err := s.PushBack(step.New(step.Action).WithScript("while (true) {}")); err != nil {
		t.Fatalf("building sequence: %v", err)
	}
	ctx := taskctx.New()
	e := New()

	if err := e.RunAsynchronously(s, ctx, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e.Cancel()
	e.Wait()

	if e.LastError() == nil {
		t.Error("expected cancellation to surface as a run error")
	}
}

func TestRunSingleStepAsynchronously(t *testing.T) {
	st := step.New(step.Action).WithScript("y = x * 2").WithWhitelist("x", "y")
	ctx := taskctx.New()
	ctx.Set("x", value.Int(21))

	e := New()
	if err := e.RunSingleStepAsynchronously(st, ctx, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e.Wait()
	for e.Update() {
	}

	if e.LastError() != nil {
		t.Errorf("unexpected error: %v", e.LastError())
	}
	got, _ := ctx.Get("y").Int()
	if got != 42 {
		t.Errorf("got %d, want 42", got)
	}
}
