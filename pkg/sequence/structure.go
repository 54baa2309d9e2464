package sequence

import (
	"github.com/taskolib/taskolib/pkg/step"
	"github.com/taskolib/taskolib/pkg/taskoerr"
)

// DeriveIndentation assigns each step's Indent from its nesting depth: a
// block opener (IF/WHILE/TRY) is indented at its enclosing depth and
// increases the depth for the steps that follow it; a continuation
// (ELSEIF/ELSE/CATCH) sits at the same depth as the block it continues;
// END dedents back to the opener's own depth before being assigned it.
// Called after every accepted mutation; an opener that has no END yet
// leaves the depth raised for every step after it.
func (s *Sequence) DeriveIndentation() {
	depth := 0
	for _, st := range s.Steps {
		switch {
		case st.Type == step.End:
			if depth > 0 {
				depth--
			}
			st.Indent = uint16(depth)
		case st.Type.IsBlockContinuation():
			openDepth := depth - 1
			if openDepth < 0 {
				openDepth = 0
			}
			st.Indent = uint16(openDepth)
		case st.Type.IsBlockStart():
			st.Indent = uint16(depth)
			depth++
		default:
			st.Indent = uint16(depth)
		}
	}
}

// ApplyDisabledConsistency cascades a disabled block opener's flag onto
// every step inside its block (down to the matching END), so the engine
// can decide whether to skip a step by reading its own Disabled flag
// without re-walking the block structure at execution time.
func (s *Sequence) ApplyDisabledConsistency() {
	var disabledFromDepth []bool // stack: whether the block at this depth is disabled
	depth := 0
	for _, st := range s.Steps {
		switch {
		case st.Type == step.End:
			if blockDisabled(disabledFromDepth) {
				st.Disabled = true
			}
			if depth > 0 {
				depth--
				disabledFromDepth = disabledFromDepth[:depth]
			}
		case st.Type.IsBlockContinuation():
			if blockDisabled(disabledFromDepth) {
				st.Disabled = true
			}
		case st.Type.IsBlockStart():
			inherited := blockDisabled(disabledFromDepth) || st.Disabled
			if inherited {
				st.Disabled = true
			}
			disabledFromDepth = append(disabledFromDepth, inherited)
			depth++
		default:
			if blockDisabled(disabledFromDepth) {
				st.Disabled = true
			}
		}
	}
}

func blockDisabled(stack []bool) bool {
	for _, d := range stack {
		if d {
			return true
		}
	}
	return false
}

// ValidateSyntax walks the flat step list and confirms it forms properly
// nested blocks: every IF/WHILE/TRY has a matching END, ELSEIF/ELSE may
// only follow an IF/ELSEIF block at the same depth, and CATCH may only
// follow a TRY block at the same depth. It returns the first structural
// error found, or nil.
func (s *Sequence) ValidateSyntax() *taskoerr.Error {
	return s.validate(true)
}

// validate is ValidateSyntax with the final "every opener has its END"
// check made optional: mutators pass requireClosed=false so that a block
// can be built up one step at a time, while a stray END or continuation is
// still rejected.
func (s *Sequence) validate(requireClosed bool) *taskoerr.Error {
	type frame struct {
		opener  step.Type
		index   int
		sawElse bool
	}
	var stack []frame

	for i, st := range s.Steps {
		switch {
		case st.Type.IsBlockStart():
			stack = append(stack, frame{opener: st.Type, index: i})

		case st.Type == step.ElseIf, st.Type == step.Else:
			if len(stack) == 0 || stack[len(stack)-1].opener != step.If {
				return taskoerr.AtStep(uint16(i), st.Type.String()+" without a matching IF")
			}
			top := &stack[len(stack)-1]
			if top.sawElse {
				return taskoerr.AtStep(uint16(i), "no step may follow ELSE in an IF block")
			}
			if st.Type == step.Else {
				top.sawElse = true
			}

		case st.Type == step.Catch:
			if len(stack) == 0 || stack[len(stack)-1].opener != step.Try {
				return taskoerr.AtStep(uint16(i), "CATCH without a matching TRY")
			}

		case st.Type == step.End:
			if len(stack) == 0 {
				return taskoerr.AtStep(uint16(i), "END without a matching block opener")
			}
			stack = stack[:len(stack)-1]

		case st.Type == step.Action:
			// always valid on its own

		default:
			return taskoerr.AtStep(uint16(i), "unrecognized step type")
		}
	}

	if requireClosed && len(stack) != 0 {
		unclosed := stack[len(stack)-1]
		return taskoerr.AtStep(uint16(unclosed.index), unclosed.opener.String()+" has no matching END")
	}
	return nil
}
