// Package sequence implements the Sequence value type: an ordered list of
// steps plus the structural derivations (indentation, disabled-flag
// consistency, syntax validation) and the mutation API that keeps them
// current after every edit.
package sequence

import (
	"time"

	"github.com/taskolib/taskolib/pkg/step"
	"github.com/taskolib/taskolib/pkg/taskoerr"
	"github.com/taskolib/taskolib/pkg/timeout"
)

// MaxSteps bounds how many steps a Sequence may hold: indices 0..65535.
const MaxSteps = 65536

// Sequence is an ordered, 0-indexed list of steps plus sequence-wide
// execution state.
type Sequence struct {
	Label           string
	Steps           []*step.Step
	StepSetupScript string
	Running         bool
	Timeout         timeout.Timeout
	TimeoutStart    time.Time
	LastError       *taskoerr.Error

	indentationError string // ValidateSyntax result cached by the last accepted mutation
}

// New builds an empty Sequence with an infinite timeout.
func New(label string) *Sequence {
	return &Sequence{Label: label, Timeout: timeout.Infinity()}
}

// Len returns the number of steps.
func (s *Sequence) Len() int { return len(s.Steps) }

// At returns the step at index, or nil if out of range.
func (s *Sequence) At(index int) *step.Step {
	if index < 0 || index >= len(s.Steps) {
		return nil
	}
	return s.Steps[index]
}

// Clone deep-copies the sequence, including its step list, so a worker
// goroutine can execute its own snapshot while the caller's Sequence
// remains untouched and safe to keep using, per §4.6.
func (s *Sequence) Clone() *Sequence {
	steps := make([]*step.Step, len(s.Steps))
	for i, st := range s.Steps {
		cp := *st
		steps[i] = &cp
	}
	return &Sequence{
		Label:           s.Label,
		Steps:           steps,
		StepSetupScript: s.StepSetupScript,
		Timeout:         s.Timeout,
	}
}

// IndentationError returns the ValidateSyntax message cached by the last
// accepted mutation (for example an opener still waiting for its END), or
// "" if the sequence validated cleanly at that point.
func (s *Sequence) IndentationError() string {
	return s.indentationError
}

// refresh re-derives indentation, re-applies disabled-flag consistency and
// re-validates syntax. Every mutator below calls this so a caller can never
// observe a Sequence in a structurally stale state. A step list whose only
// fault is a block opener still missing its END is accepted, with that
// fault cached for IndentationError; any other structural error rejects
// the mutation.
func (s *Sequence) refresh() *taskoerr.Error {
	if len(s.Steps) > MaxSteps {
		return taskoerr.Newf("sequence %q exceeds the maximum of %d steps", s.Label, MaxSteps)
	}
	if err := s.validate(false); err != nil {
		s.indentationError = err.Error()
		return err
	}
	s.indentationError = ""
	if err := s.ValidateSyntax(); err != nil {
		s.indentationError = err.Error()
	}
	s.DeriveIndentation()
	s.ApplyDisabledConsistency()
	return nil
}

// PushBack appends a step, then revalidates.
func (s *Sequence) PushBack(st *step.Step) *taskoerr.Error {
	s.Steps = append(s.Steps, st)
	if err := s.refresh(); err != nil {
		s.Steps = s.Steps[:len(s.Steps)-1]
		return err
	}
	return nil
}

// PopBack removes the last step. It is a no-op on an empty sequence.
func (s *Sequence) PopBack() {
	if len(s.Steps) == 0 {
		return
	}
	s.Steps = s.Steps[:len(s.Steps)-1]
	s.refresh()
}

// Insert places st at index, shifting later steps back, then revalidates.
func (s *Sequence) Insert(index int, st *step.Step) *taskoerr.Error {
	if index < 0 || index > len(s.Steps) {
		return taskoerr.Newf("insert index %d out of range [0,%d]", index, len(s.Steps))
	}
	s.Steps = append(s.Steps, nil)
	copy(s.Steps[index+1:], s.Steps[index:])
	s.Steps[index] = st
	if err := s.refresh(); err != nil {
		s.Steps = append(s.Steps[:index], s.Steps[index+1:]...)
		return err
	}
	return nil
}

// Erase removes the step at index, then revalidates.
func (s *Sequence) Erase(index int) *taskoerr.Error {
	if index < 0 || index >= len(s.Steps) {
		return taskoerr.Newf("erase index %d out of range [0,%d)", index, len(s.Steps))
	}
	removed := s.Steps[index]
	s.Steps = append(s.Steps[:index], s.Steps[index+1:]...)
	if err := s.refresh(); err != nil {
		s.Steps = append(s.Steps[:index], append([]*step.Step{removed}, s.Steps[index:]...)...)
		return err
	}
	return nil
}

// Assign replaces the entire step list, then revalidates.
func (s *Sequence) Assign(steps []*step.Step) *taskoerr.Error {
	old := s.Steps
	s.Steps = steps
	if err := s.refresh(); err != nil {
		s.Steps = old
		return err
	}
	return nil
}

// Modify applies fn to the sequence's step list under the caller's control
// (add/remove/reorder arbitrarily), then revalidates once at the end. This
// is the closure-based escape hatch for edits too complex to express as a
// single Insert/Erase.
func (s *Sequence) Modify(fn func(steps []*step.Step) []*step.Step) *taskoerr.Error {
	old := s.Steps
	s.Steps = fn(s.Steps)
	if err := s.refresh(); err != nil {
		s.Steps = old
		return err
	}
	return nil
}
