package lang

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
var (
	ErrUnterminatedGroup    = NewError("unterminated choice group")
	ErrUnexpectedCloseBrace = NewError("unexpected closing brace")
	ErrInvalidWeight        = NewError("invalid weight")
	ErrNegativeWeight       = NewError("weight must be positive")
	ErrInvalidCount         = NewError("invalid output count")
	ErrExhausted            = NewError("no acceptable expansion within attempt limit")
	ErrReadInput            = NewError("failed to read input")
	ErrFormat               = NewError("failed to format template")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
	root  *Error      // sentinel this error derives from
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	e := &Error{msg: msg}
	e.root = e

	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from, so that
// errors.Is(ErrX.With(...), ErrX) holds.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.root != nil && t.root == e.root
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs,
		root:  e.root,
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
		root:  e.root,
	}
}

// ParseError reports a template that could not be parsed.
//
// errors.Is matches it against the sentinel in Kind, one of
// [ErrUnterminatedGroup], [ErrUnexpectedCloseBrace], [ErrInvalidWeight] or
// [ErrNegativeWeight].
type ParseError struct {
	Kind   *Error
	Pos    Position
	Detail string // offending text, e.g. the rejected weight
	Source string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	var buf strings.Builder

	buf.WriteString(e.Kind.msg)

	if e.Detail != "" {
		buf.WriteString(" ")
		buf.WriteString(strconv.Quote(e.Detail))
	}

	buf.WriteString(" at line ")
	buf.WriteString(strconv.Itoa(e.Pos.Line))
	buf.WriteString(", column ")
	buf.WriteString(strconv.Itoa(e.Pos.Column))
	buf.WriteString(" (offset ")
	buf.WriteString(strconv.Itoa(e.Pos.Offset))
	buf.WriteString(")")

	return buf.String()
}

// Unwrap returns the sentinel identifying the failure.
func (e *ParseError) Unwrap() error { return e.Kind }

// Offset returns the byte offset of the failure.
func (e *ParseError) Offset() int { return e.Pos.Offset }

// LogValue implements slog.LogValuer.
func (e *ParseError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("error", e.Kind.msg),
		slog.Int("offset", e.Pos.Offset),
		slog.Int("line", e.Pos.Line),
		slog.Int("column", e.Pos.Column),
	}

	if e.Detail != "" {
		attrs = append(attrs, slog.String("detail", e.Detail))
	}

	return slog.GroupValue(attrs...)
}

// Snippet returns the offending source line with a caret under the failure,
// or "" if the source is unknown.
func (e *ParseError) Snippet() string {
	if e.Source == "" || e.Pos.Line < 1 {
		return ""
	}

	lines := strings.Split(e.Source, "\n")
	if e.Pos.Line > len(lines) {
		return ""
	}

	var src strings.Builder

	num := strconv.Itoa(e.Pos.Line)

	src.WriteString("  ")
	src.WriteString(num)
	src.WriteString(" | ")
	src.WriteString(strings.TrimRight(lines[e.Pos.Line-1], "\r"))
	src.WriteRune('\n')

	// 2 leading spaces + " | "
	src.WriteString(strings.Repeat(" ", len(num)+5+max(e.Pos.Column-1, 0)))
	src.WriteString("^\n")

	return src.String()
}

// AsParseError returns the [ParseError] in err's chain, if any.
func AsParseError(err error) (*ParseError, bool) {
	var pe *ParseError
	ok := errors.As(err, &pe)

	return pe, ok
}
