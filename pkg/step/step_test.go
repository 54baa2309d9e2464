package step

import "testing"

func TestExecutesScript(t *testing.T) {
	cases := []struct {
		typ  Type
		want bool
	}{
		{Action, true},
		{If, true},
		{ElseIf, true},
		{While, true},
		{Try, true},
		{Else, false},
		{End, false},
		{Catch, false},
	}
	for _, c := range cases {
		if got := c.typ.ExecutesScript(); got != c.want {
			t.Errorf("%v.ExecutesScript() = %v, want %v", c.typ, got, c.want)
		}
	}
}

func TestNewDefaultsToInfiniteTimeout(t *testing.T) {
	s := New(Action)
	if !s.Timeout.IsInfinite() {
		t.Error("expected a fresh step to have an infinite timeout")
	}
}

func TestWithScriptBumpsModifiedAt(t *testing.T) {
	s := New(Action)
	before := s.ModifiedAt
	s.WithScript("print('x')")
	if !s.ModifiedAt.After(before) && s.ModifiedAt != before {
		t.Error("expected ModifiedAt to advance or stay equal, never regress")
	}
	if s.Script != "print('x')" {
		t.Errorf("got %q", s.Script)
	}
}

func TestBlockStartAndContinuation(t *testing.T) {
	if !If.IsBlockStart() {
		t.Error("IF should start a block")
	}
	if !ElseIf.IsBlockContinuation() {
		t.Error("ELSEIF should continue a block")
	}
	if Action.IsBlockStart() || Action.IsBlockContinuation() {
		t.Error("ACTION is neither")
	}
}
