package lang

import (
	"log/slog"
	"math/big"
)

// Stats summarizes the shape of a template.
type Stats struct {
	Choices      int      // choice groups, nested ones included
	Alternatives int      // alternatives across all groups
	Depth        int      // deepest nesting of choice groups
	Shortest     int      // runes in the shortest expansion
	Longest      int      // runes in the longest expansion
	Paths        *big.Int // distinct selection paths; may exceed any int
}

// Stats computes a summary of t.
func (t *Template) Stats() Stats {
	s := Stats{
		Shortest: NewEvaluator(PolicyShortest, nil).Length(t.Root),
		Longest:  NewEvaluator(PolicyLongest, nil).Length(t.Root),
		Paths:    paths(t.Root),
		Depth:    depth(t.Root),
	}

	for n := range t.All() {
		if n.Kind == KindChoice {
			s.Choices++
			s.Alternatives += len(n.Alternatives)
		}
	}

	return s
}

// LogValue implements slog.LogValuer.
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("choices", s.Choices),
		slog.Int("alternatives", s.Alternatives),
		slog.Int("depth", s.Depth),
		slog.Int("shortest", s.Shortest),
		slog.Int("longest", s.Longest),
		slog.String("paths", s.Paths.String()),
	)
}

// paths counts the selection paths below n: a sequence multiplies its
// children, a choice adds its alternatives.
func paths(n *Node) *big.Int {
	switch n.Kind {
	case KindSequence:
		p := big.NewInt(1)
		for _, c := range n.Children {
			p.Mul(p, paths(c))
		}

		return p
	case KindChoice:
		p := new(big.Int)
		for _, a := range n.Alternatives {
			p.Add(p, paths(a.Node))
		}

		return p
	default:
		return big.NewInt(1)
	}
}

func depth(n *Node) int {
	d := 0

	for _, c := range n.Children {
		d = max(d, depth(c))
	}

	for _, a := range n.Alternatives {
		d = max(d, depth(a.Node))
	}

	if n.Kind == KindChoice {
		d++
	}

	return d
}
