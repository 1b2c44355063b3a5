package lang

import (
	"strings"
)

// Evaluator expands templates under one [Policy].
//
// An Evaluator memoizes extremal lengths of the choice nodes it visits and
// is not safe for concurrent use. Evaluators are cheap; use one per
// goroutine.
type Evaluator struct {
	policy Policy
	src    Source
	memo   map[*Node]extremum
}

// NewEvaluator returns an Evaluator for policy. src is only consulted by
// [PolicyRandom]; if it is nil a randomly seeded source is used.
func NewEvaluator(policy Policy, src Source) *Evaluator {
	if src == nil && policy == PolicyRandom {
		src = NewSource(randomSeed())
	}

	return &Evaluator{policy: policy, src: src}
}

// Policy returns the policy of e.
func (e *Evaluator) Policy() Policy { return e.policy }

// Expand returns one expansion of t.
func (e *Evaluator) Expand(t *Template) string {
	return e.ExpandNode(t.Root)
}

// ExpandNode returns one expansion of the subtree rooted at n.
func (e *Evaluator) ExpandNode(n *Node) string {
	var b strings.Builder

	e.write(&b, n)

	return b.String()
}

func (e *Evaluator) write(b *strings.Builder, n *Node) {
	switch n.Kind {
	case KindLiteral:
		b.WriteString(n.Text)
	case KindSequence:
		for _, c := range n.Children {
			e.write(b, c)
		}
	case KindChoice:
		e.write(b, e.Choose(n).Node)
	}
}

// Choose returns the alternative of choice node n that e's policy selects.
func (e *Evaluator) Choose(n *Node) *Alternative {
	switch e.policy {
	case PolicyShortest, PolicyLongest:
		return n.Alternatives[e.extremal(n).index]
	case PolicyLeastLikely:
		return byWeight(n.Alternatives, func(a, b float64) bool { return a < b })
	case PolicyMostLikely:
		return byWeight(n.Alternatives, func(a, b float64) bool { return a > b })
	default:
		return e.sample(n)
	}
}

// sample draws an alternative with probability proportional to its weight.
func (e *Evaluator) sample(n *Node) *Alternative {
	peak, total := n.weightScale()
	draw := e.src.Float64() * total

	var acc float64

	for _, a := range n.Alternatives {
		acc += a.Weight / peak
		if draw < acc {
			return a
		}
	}

	// Rounding can leave draw at the total.
	return n.Alternatives[len(n.Alternatives)-1]
}

// byWeight returns the first alternative whose weight no other beats.
func byWeight(alts []*Alternative, beats func(a, b float64) bool) *Alternative {
	best := alts[0]

	for _, a := range alts[1:] {
		if beats(a.Weight, best.Weight) {
			best = a
		}
	}

	return best
}

// Expand returns one expansion of t under policy. src is only consulted by
// [PolicyRandom]; if it is nil a randomly seeded source is used.
func (t *Template) Expand(policy Policy, src Source) string {
	return NewEvaluator(policy, src).Expand(t)
}
