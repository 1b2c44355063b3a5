package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
)

// String returns canonical template text for t. Parsing it yields a tree
// equal to t's, with every weight of 1 omitted and every delimiter in
// literal text escaped.
func (t *Template) String() string {
	return t.Root.String()
}

// String returns canonical template text for the subtree rooted at n.
func (n *Node) String() string {
	var b strings.Builder

	n.format(&b)

	return b.String()
}

func (n *Node) format(b *strings.Builder) {
	switch n.Kind {
	case KindLiteral:
		for i := range len(n.Text) {
			if escapable(n.Text[i]) {
				b.WriteByte('\\')
			}

			b.WriteByte(n.Text[i])
		}
	case KindSequence:
		for _, c := range n.Children {
			c.format(b)
		}
	case KindChoice:
		b.WriteByte('{')

		for i, a := range n.Alternatives {
			if i > 0 {
				b.WriteByte('|')
			}

			a.Node.format(b)

			if a.Weight != 1 {
				b.WriteByte(':')
				b.WriteString(formatWeight(a.Weight))
			}
		}

		b.WriteByte('}')
	}
}

// Format writes the canonical text of t followed by a newline.
func (t *Template) Format(_ context.Context, w io.Writer) error {
	_, err := fmt.Fprintln(w, t.String())

	return err
}

// nodeView is the serialized shape of a [Node].
type nodeView struct {
	Kind         string            `json:"kind"                   yaml:"kind"`
	Text         string            `json:"text,omitempty"         yaml:"text,omitempty"`
	Children     []nodeView        `json:"children,omitempty"     yaml:"children,omitempty"`
	Alternatives []alternativeView `json:"alternatives,omitempty" yaml:"alternatives,omitempty"`
	Line         int               `json:"line"                   yaml:"line"`
	Column       int               `json:"column"                 yaml:"column"`
}

type alternativeView struct {
	Weight float64  `json:"weight" yaml:"weight"`
	Node   nodeView `json:"node"   yaml:"node"`
}

func (n *Node) view() nodeView {
	v := nodeView{
		Kind:   n.Kind.String(),
		Text:   n.Text,
		Line:   n.Pos.Line,
		Column: n.Pos.Column,
	}

	for _, c := range n.Children {
		v.Children = append(v.Children, c.view())
	}

	for _, a := range n.Alternatives {
		v.Alternatives = append(v.Alternatives, alternativeView{
			Weight: a.Weight,
			Node:   a.Node.view(),
		})
	}

	return v
}

// MarshalJSON implements [json.Marshaler].
func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.view())
}

// FormatJSON writes the tree of t as JSON to the writer.
func (t *Template) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(t.Root, "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(t.Root)
	}

	if err != nil {
		return ErrFormat.Wrap(err)
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

// FormatYAML writes the tree of t as YAML to the writer.
func (t *Template) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, t.Root.view(), opts...)
	if err != nil {
		return ErrFormat.Wrap(err)
	}

	_, err = fmt.Fprint(w, string(yamlData))

	return err
}
