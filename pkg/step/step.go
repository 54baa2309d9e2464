// Package step defines the Step value type: one entry in a Sequence's
// flat step list, carrying its own script, timeout, and structural role.
package step

import (
	"time"

	"github.com/taskolib/taskolib/pkg/timeout"
)

// Type enumerates the structural role a Step plays in a Sequence.
type Type int

const (
	Action Type = iota
	If
	ElseIf
	Else
	End
	While
	Try
	Catch
)

func (t Type) String() string {
	switch t {
	case Action:
		return "action"
	case If:
		return "if"
	case ElseIf:
		return "elseif"
	case Else:
		return "else"
	case End:
		return "end"
	case While:
		return "while"
	case Try:
		return "try"
	case Catch:
		return "catch"
	default:
		return "unknown"
	}
}

// ExecutesScript reports whether this step type ever runs its Script
// against the Script Host. END, CATCH and bare ELSE are structural markers
// only — executing one is a silent no-op that never touches the host.
func (t Type) ExecutesScript() bool {
	switch t {
	case End, Catch, Else:
		return false
	default:
		return true
	}
}

// Step is one entry in a Sequence's step list.
type Step struct {
	Type      Type
	Label     string
	Script    string
	Whitelist []string // names importable/exportable into the Context
	Timeout   timeout.Timeout
	Disabled  bool
	Running   bool
	Indent    uint16 // derived by Sequence, not set directly by callers

	CreatedAt  time.Time
	ModifiedAt time.Time
}

// New builds a Step of the given type with no script and an infinite
// timeout, the same defaults the original constructs a fresh step with.
func New(t Type) *Step {
	now := time.Now()
	return &Step{
		Type:       t,
		Timeout:    timeout.Infinity(),
		CreatedAt:  now,
		ModifiedAt: now,
	}
}

// WithScript sets the script body and bumps ModifiedAt, the pattern every
// Step mutator below follows.
func (s *Step) WithScript(script string) *Step {
	s.Script = script
	s.ModifiedAt = time.Now()
	return s
}

// WithLabel sets the human-readable label.
func (s *Step) WithLabel(label string) *Step {
	s.Label = label
	s.ModifiedAt = time.Now()
	return s
}

// WithTimeout sets the step-level timeout.
func (s *Step) WithTimeout(to timeout.Timeout) *Step {
	s.Timeout = to
	s.ModifiedAt = time.Now()
	return s
}

// WithWhitelist sets the context-variable whitelist.
func (s *Step) WithWhitelist(names ...string) *Step {
	s.Whitelist = names
	s.ModifiedAt = time.Now()
	return s
}

// SetDisabled toggles whether the engine skips this step during execution.
func (s *Step) SetDisabled(disabled bool) {
	s.Disabled = disabled
	s.ModifiedAt = time.Now()
}

// IsBlockStart reports whether this step type opens a nested block that
// must eventually be closed by a matching END (IF/WHILE/TRY families).
func (t Type) IsBlockStart() bool {
	switch t {
	case If, While, Try:
		return true
	default:
		return false
	}
}

// IsBlockContinuation reports whether this step type continues a block
// opened by a prior step at the same indentation rather than opening a new
// one of its own (ELSEIF/ELSE continue IF; CATCH continues TRY).
func (t Type) IsBlockContinuation() bool {
	switch t {
	case ElseIf, Else, Catch:
		return true
	default:
		return false
	}
}

// RequiresCondition reports whether this step type's script must return a
// boolean, per §4.2 step 8: IF, ELSEIF and WHILE select a branch or decide
// whether to loop again; every other executing step type must return
// nothing or nil instead.
func (t Type) RequiresCondition() bool {
	switch t {
	case If, ElseIf, While:
		return true
	default:
		return false
	}
}
