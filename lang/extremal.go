package lang

import "unicode/utf8"

// extremum is the resolved length of a choice under Shortest or Longest.
type extremum struct {
	length int // runes in the best expansion
	index  int // leftmost alternative achieving length
}

// Length returns the rune count of the expansion of n under e's policy when
// that policy is [PolicyShortest] or [PolicyLongest]. For other policies it
// returns the length of the shortest expansion.
func (e *Evaluator) Length(n *Node) int {
	switch n.Kind {
	case KindLiteral:
		return utf8.RuneCountInString(n.Text)
	case KindSequence:
		total := 0
		for _, c := range n.Children {
			total += e.Length(c)
		}

		return total
	case KindChoice:
		return e.extremal(n).length
	default:
		return 0
	}
}

// extremal resolves choice n. Only the subtree of n is measured, and each
// choice is measured once per Evaluator.
func (e *Evaluator) extremal(n *Node) extremum {
	if x, ok := e.memo[n]; ok {
		return x
	}

	longest := e.policy == PolicyLongest
	best := extremum{index: -1}

	for i, a := range n.Alternatives {
		l := e.Length(a.Node)

		switch {
		case best.index < 0,
			longest && l > best.length,
			!longest && l < best.length:
			best = extremum{length: l, index: i}
		}
	}

	if e.memo == nil {
		e.memo = make(map[*Node]extremum)
	}

	e.memo[n] = best

	return best
}
