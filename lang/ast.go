package lang

import (
	"iter"
	"strconv"
)

// Template is a parsed template.
type Template struct {
	Root    *Node  // always a KindSequence node
	Source  string // text the template was parsed from
	Lenient bool   // malformed weights were read as literal text
}

// Node is one element of a template tree.
type Node struct {
	Kind Kind
	// Exactly one of these is meaningful, depending on Kind.
	Text         string         // KindLiteral: unescaped text
	Children     []*Node        // KindSequence: ordered parts
	Alternatives []*Alternative // KindChoice: at least one alternative
	Pos          Position       // where the node starts in the source
}

// Alternative is one option of a choice group.
type Alternative struct {
	Node   *Node   // always a KindSequence node
	Weight float64 // positive; 1 when omitted
	Order  int     // zero-based position within the group
}

// Kind indicates the kind of a [Node].
type Kind int

const (
	// KindLiteral is fixed text.
	KindLiteral Kind = iota

	// KindSequence is a concatenation of child nodes.
	KindSequence

	// KindChoice is a brace group of weighted alternatives.
	KindChoice
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindSequence:
		return "sequence"
	case KindChoice:
		return "choice"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Position locates a byte in a template source.
type Position struct {
	Offset int // zero-based byte offset
	Line   int // one-based line
	Column int // one-based column, counted in runes
}

// String returns "line:column".
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// All returns an iterator over n and every node below it, depth first.
func (n *Node) All() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		n.walk(yield)
	}
}

func (n *Node) walk(yield func(*Node) bool) bool {
	if n == nil {
		return true
	}

	if !yield(n) {
		return false
	}

	for _, c := range n.Children {
		if !c.walk(yield) {
			return false
		}
	}

	for _, a := range n.Alternatives {
		if !a.Node.walk(yield) {
			return false
		}
	}

	return true
}

// All returns an iterator over every node of t, depth first.
func (t *Template) All() iter.Seq[*Node] {
	return t.Root.All()
}

// weightScale returns the largest weight of n's alternatives and the sum of
// all weights divided by it. The scaled sum stays finite for any finite
// weights.
func (n *Node) weightScale() (peak, total float64) {
	for _, a := range n.Alternatives {
		peak = max(peak, a.Weight)
	}

	for _, a := range n.Alternatives {
		total += a.Weight / peak
	}

	return peak, total
}
