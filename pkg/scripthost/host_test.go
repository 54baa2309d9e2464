package scripthost

import (
	"strings"
	"testing"
	"time"

	"github.com/taskolib/taskolib/pkg/message"
	"github.com/taskolib/taskolib/pkg/taskctx"
	"github.com/taskolib/taskolib/pkg/timeout"
	"github.com/taskolib/taskolib/pkg/value"
)

func TestRunReturnsScriptValue(t *testing.T) {
	h := New()
	v, err := h.Run("return 2 + 2", RunOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	i, ok := v.Int()
	if !ok || i != 4 {
		t.Errorf("got (%d,%v), want (4,true)", i, ok)
	}
}

func TestImportExportRoundTrip(t *testing.T) {
	h := New()
	ctx := taskctx.New()
	ctx.Set("x", value.Int(10))

	h.Import(ctx, []string{"x"})
	_, err := h.Run("x = x + 5", RunOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h.Export(ctx, []string{"x"})
	got, _ := ctx.Get("x").Int()
	if got != 15 {
		t.Errorf("got %d, want 15", got)
	}
}

func TestSyntaxErrorClassified(t *testing.T) {
	h := New()
	_, err := h.Run("this is not valid {{{ js", RunOptions{})
	if err == nil {
		t.Fatal("expected a syntax error")
	}
	he, ok := err.(*HostError)
	if !ok || he.Cause != CauseSyntax {
		t.Errorf("got %v, want CauseSyntax", err)
	}
}

func TestStepTimeoutAborts(t *testing.T) {
	h := New()
	deadline := timeout.NewTrigger()
	deadline.SetTimeout(timeout.Of(20 * time.Millisecond))
	deadline.Reset()

	_, err := h.Run("while (true) {}", RunOptions{StepDeadline: deadline})
	if err == nil {
		t.Fatal("expected an abort error")
	}
	he, ok := err.(*HostError)
	if !ok || he.Cause != CauseAborted {
		t.Errorf("got %v, want CauseAborted", err)
	}
	if !strings.Contains(he.Message, "Timeout: Script took more than 0.02 s") {
		t.Errorf("got message %q, want it to contain %q", he.Message, "Timeout: Script took more than 0.02 s")
	}
}

func TestImmediateTerminationAborts(t *testing.T) {
	h := New()
	comm := message.NewCommChannel()
	go func() {
		time.Sleep(10 * time.Millisecond)
		comm.RequestImmediateTermination()
	}()

	_, err := h.Run("while (true) {}", RunOptions{Comm: comm})
	he, ok := err.(*HostError)
	if !ok || he.Cause != CauseAborted {
		t.Errorf("got %v, want CauseAborted", err)
	}
	if he.Message != "Stop on user request" {
		t.Errorf("got message %q, want %q", he.Message, "Stop on user request")
	}
}

func TestTerminateSequenceBuiltinIsUncatchable(t *testing.T) {
	h := New()
	h.InstallControlBuiltins(func(string) {})

	_, err := h.Run(`terminate_sequence()`, RunOptions{})
	he, ok := err.(*HostError)
	if !ok {
		t.Fatalf("expected *HostError, got %T: %v", err, err)
	}
	if he.Cause != CauseTerminatedByScript {
		t.Errorf("got cause %v, want CauseTerminatedByScript", he.Cause)
	}
	if !he.Uncatchable() {
		t.Error("expected terminate_sequence error to be uncatchable")
	}
	if he.Message != "Script called terminate_sequence()" {
		t.Errorf("got message %q, want %q", he.Message, "Script called terminate_sequence()")
	}
}

func TestPrintBuiltinEmits(t *testing.T) {
	h := New()
	var got []string
	h.InstallControlBuiltins(func(s string) { got = append(got, s) })

	_, err := h.Run(`print("hello")`, RunOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != "hello\n" {
		t.Errorf("got %v", got)
	}
}

func TestPrintBuiltinJoinsArgumentsInOneMessage(t *testing.T) {
	h := New()
	var got []string
	h.InstallControlBuiltins(func(s string) { got = append(got, s) })

	_, err := h.Run(`print("a", "b", 3)`, RunOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected exactly one Output message, got %d: %v", len(got), got)
	}
	if got[0] != "a\tb\t3\n" {
		t.Errorf("got %q, want %q", got[0], "a\tb\t3\n")
	}
}
