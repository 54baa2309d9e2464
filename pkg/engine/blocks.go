package engine

import "github.com/taskolib/taskolib/pkg/step"

// branch describes one arm of an IF/ELSEIF/ELSE chain: its own opener step
// index, where its body runs ([bodyStart,bodyEnd)), and where the whole
// chain's closing END sits.
type branch struct {
	start     int
	bodyStart int
	bodyEnd   int
	end       int
}

// collectBranches walks the IF chain starting at ifPos (relying on the
// Indent already derived by sequence.DeriveIndentation) and returns one
// branch per IF/ELSEIF/ELSE arm, all sharing the same trailing END index.
func collectBranches(steps []*step.Step, ifPos int) []branch {
	openIndent := steps[ifPos].Indent
	var starts []int
	starts = append(starts, ifPos)

	end := ifPos
scan:
	for i := ifPos + 1; i < len(steps); i++ {
		if steps[i].Indent != openIndent {
			continue
		}
		switch steps[i].Type {
		case step.ElseIf, step.Else:
			starts = append(starts, i)
		case step.End:
			end = i
			break scan
		}
	}

	branches := make([]branch, len(starts))
	for i, s := range starts {
		bodyStart := s + 1
		var bodyEnd int
		if i+1 < len(starts) {
			bodyEnd = starts[i+1]
		} else {
			bodyEnd = end
		}
		branches[i] = branch{start: s, bodyStart: bodyStart, bodyEnd: bodyEnd, end: end}
	}
	return branches
}

// matchingEnd finds the END that closes the block opened at pos.
func matchingEnd(steps []*step.Step, pos int) int {
	openIndent := steps[pos].Indent
	for i := pos + 1; i < len(steps); i++ {
		if steps[i].Indent == openIndent && steps[i].Type == step.End {
			return i
		}
	}
	return len(steps) - 1
}

// findCatch locates the CATCH step (if any) and the closing END of the TRY
// block opened at pos. catchIdx is -1 if the TRY has no CATCH.
func findCatch(steps []*step.Step, pos int) (catchIdx int, end int) {
	openIndent := steps[pos].Indent
	catchIdx = -1
	for i := pos + 1; i < len(steps); i++ {
		if steps[i].Indent != openIndent {
			continue
		}
		switch steps[i].Type {
		case step.Catch:
			catchIdx = i
		case step.End:
			return catchIdx, i
		}
	}
	return catchIdx, len(steps) - 1
}
