package taskoerr

import (
	"errors"
	"testing"
)

func TestErrorMessageFormatting(t *testing.T) {
	e := New("boom")
	if e.Error() != "boom" {
		t.Errorf("got %q, want %q", e.Error(), "boom")
	}

	s := AtStep(3, "boom")
	if s.Error() != "step 3: boom" {
		t.Errorf("got %q, want %q", s.Error(), "step 3: boom")
	}
	idx, ok := s.HasStepIndex()
	if !ok || idx != 3 {
		t.Errorf("got (%d, %v), want (3, true)", idx, ok)
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("underlying")
	wrapped := WrapAtStep(1, "step failed", cause)

	if !errors.Is(wrapped, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
	if wrapped.Error() != "step 1: step failed" {
		t.Errorf("got %q", wrapped.Error())
	}
}

func TestErrorWithoutStepIndexHasNoIndex(t *testing.T) {
	e := New("no step")
	if _, ok := e.HasStepIndex(); ok {
		t.Error("expected no step index")
	}
}
