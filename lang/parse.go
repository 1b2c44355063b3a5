package lang

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"unicode/utf8"
)

// Parse parses text into a [Template].
//
// Unbalanced braces, malformed weights (unless lenient) and non-positive
// weights yield a [*ParseError]. The returned template never shares state
// with other templates and is safe for concurrent expansion.
func Parse(text string, opts ...Option) (*Template, error) {
	return parseContext(context.Background(), text, makeOptions(opts...))
}

// ParseContext is like [Parse] but passes ctx to the logger.
func ParseContext(ctx context.Context, text string, opts ...Option) (*Template, error) {
	return parseContext(ctx, text, makeOptions(opts...))
}

func parseContext(ctx context.Context, text string, o options) (*Template, error) {
	o.logger.TraceContext(
		ctx,
		"parse template",
		slog.Int("source_bytes", len(text)),
		slog.Bool("lenient", o.lenient),
	)

	p := newParser(text, o.lenient)

	root, err := p.parseSequence(0, len(text))
	if err != nil {
		o.logger.DebugContext(ctx, "parse failed", slog.Any("error", err))

		return nil, err
	}

	o.logger.TraceContext(
		ctx,
		"template parsed",
		slog.Int("choices", p.choices),
	)

	return &Template{Root: root, Source: text, Lenient: o.lenient}, nil
}

// MustParse is like [Parse] but panics on error.
func MustParse(text string, opts ...Option) *Template {
	t, err := Parse(text, opts...)
	if err != nil {
		panic(err)
	}

	return t
}

// parser holds the state of one parse. Delimiters are ASCII, so the source
// is scanned byte by byte without decoding runes.
type parser struct {
	src     string
	lenient bool
	lines   []int // byte offset of the start of each line
	runes   []int // rune count of src[:i] for each byte offset i
	groups  map[int]group
	open    int // innermost group left unclosed at end of input, or -1
	choices int
}

// group records the delimiters of one brace pair found by [parser.scan].
type group struct {
	closing int
	seps    []int // top-level '|' offsets
	colons  []int // last top-level ':' of each alternative, or -1
}

func newParser(src string, lenient bool) *parser {
	p := &parser{
		src:     src,
		lenient: lenient,
		lines:   []int{0},
		runes:   make([]int, len(src)+1),
		groups:  map[int]group{},
		open:    -1,
	}

	n := 0

	for i := range len(src) {
		p.runes[i] = n
		if utf8.RuneStart(src[i]) {
			n++
		}

		if src[i] == '\n' {
			p.lines = append(p.lines, i+1)
		}
	}

	p.runes[len(src)] = n

	p.scan()

	return p
}

// position converts a byte offset into a [Position].
func (p *parser) position(offset int) Position {
	line := sort.SearchInts(p.lines, offset+1) - 1
	start := p.lines[line]

	return Position{
		Offset: offset,
		Line:   line + 1,
		Column: 1 + p.runes[offset] - p.runes[start],
	}
}

func (p *parser) fail(kind *Error, offset int, detail string) error {
	return &ParseError{
		Kind:   kind,
		Pos:    p.position(offset),
		Detail: detail,
		Source: p.src,
	}
}

func escapable(c byte) bool {
	switch c {
	case '{', '}', '|', ':', '\\':
		return true
	default:
		return false
	}
}

// scan records every balanced group of src in one pass. A '}' with no open
// group is left for parseSequence to report in source order.
func (p *parser) scan() {
	type frame struct {
		open  int
		colon int
		group
	}

	var stack []frame

	for i := 0; i < len(p.src); i++ {
		switch p.src[i] {
		case '\\':
			if i+1 < len(p.src) && escapable(p.src[i+1]) {
				i++
			}
		case '{':
			stack = append(stack, frame{open: i, colon: -1})
		case '|':
			if top := len(stack) - 1; top >= 0 {
				stack[top].seps = append(stack[top].seps, i)
				stack[top].colons = append(stack[top].colons, stack[top].colon)
				stack[top].colon = -1
			}
		case ':':
			if top := len(stack) - 1; top >= 0 {
				stack[top].colon = i
			}
		case '}':
			top := len(stack) - 1
			if top < 0 {
				continue
			}

			f := stack[top]
			stack = stack[:top]

			f.closing = i
			f.colons = append(f.colons, f.colon)
			p.groups[f.open] = f.group
		}
	}

	if len(stack) > 0 {
		p.open = stack[len(stack)-1].open
	}
}

// parseSequence parses src[start:end] into a KindSequence node. Any '|' or
// ':' reached here is literal text.
func (p *parser) parseSequence(start, end int) (*Node, error) {
	seq := &Node{Kind: KindSequence, Pos: p.position(start)}

	var (
		text    strings.Builder
		textPos = -1
	)

	flush := func() {
		if text.Len() > 0 {
			seq.Children = append(seq.Children, &Node{
				Kind: KindLiteral,
				Text: text.String(),
				Pos:  p.position(textPos),
			})
			text.Reset()
		}

		textPos = -1
	}

	for i := start; i < end; i++ {
		c := p.src[i]

		switch {
		case c == '{':
			g, ok := p.groups[i]
			if !ok {
				return nil, p.fail(ErrUnterminatedGroup, p.open, "")
			}

			flush()

			choice, err := p.parseChoice(i, g)
			if err != nil {
				return nil, err
			}

			seq.Children = append(seq.Children, choice)
			i = g.closing

			continue

		case c == '}':
			return nil, p.fail(ErrUnexpectedCloseBrace, i, "")
		}

		if textPos < 0 {
			textPos = i
		}

		if c == '\\' && i+1 < end && escapable(p.src[i+1]) {
			i++
			c = p.src[i]
		}

		text.WriteByte(c)
	}

	flush()

	return seq, nil
}

// parseChoice parses the group g opened at open.
func (p *parser) parseChoice(open int, g group) (*Node, error) {
	p.choices++

	choice := &Node{
		Kind:         KindChoice,
		Pos:          p.position(open),
		Alternatives: make([]*Alternative, 0, len(g.colons)),
	}

	start := open + 1

	for order, colon := range g.colons {
		end := g.closing
		if order < len(g.seps) {
			end = g.seps[order]
		}

		alt, err := p.parseAlternative(start, end, colon, order)
		if err != nil {
			return nil, err
		}

		choice.Alternatives = append(choice.Alternatives, alt)
		start = end + 1
	}

	return choice, nil
}

// parseAlternative parses src[start:end], splitting off a weight suffix at
// colon, the last top-level ':', if colon is not negative.
func (p *parser) parseAlternative(start, end, colon, order int) (*Alternative, error) {
	if colon < 0 {
		node, err := p.parseSequence(start, end)
		if err != nil {
			return nil, err
		}

		return &Alternative{Node: node, Weight: 1, Order: order}, nil
	}

	raw := p.src[colon+1 : end]
	weight, werr := parseWeight(raw)

	if errors.Is(werr, errMalformedWeight) && p.lenient {
		node, err := p.parseSequence(start, end)
		if err != nil {
			return nil, err
		}

		return &Alternative{Node: node, Weight: 1, Order: order}, nil
	}

	// Report earlier failures in the text before the weight's.
	node, err := p.parseSequence(start, colon)
	if err != nil {
		return nil, err
	}

	switch {
	case errors.Is(werr, errNonPositiveWeight):
		return nil, p.fail(ErrNegativeWeight, colon+1, raw)
	case werr != nil:
		return nil, p.fail(ErrInvalidWeight, colon+1, raw)
	}

	return &Alternative{Node: node, Weight: weight, Order: order}, nil
}
