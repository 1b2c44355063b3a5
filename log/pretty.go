package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the lipgloss styles used by the pretty handlers. Styles are
// bound to a renderer for the handler's writer, so colour is dropped
// automatically when the writer is not a terminal.
type palette struct {
	key, str, num, time, null lipgloss.Style
	yes, no                   lipgloss.Style
	level                     map[slog.Level]lipgloss.Style
}

func newPalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return palette{
		key:  fg("8"),
		str:  fg("6"),
		num:  fg("3"),
		time: fg("4"),
		null: fg("8"),
		yes:  fg("2"),
		no:   fg("1"),
		level: map[slog.Level]lipgloss.Style{
			slog.Level(LevelTrace): fg("5"),
			slog.LevelDebug:        fg("4"),
			slog.LevelInfo:         fg("2").Bold(true),
			slog.LevelWarn:         fg("3").Bold(true),
			slog.LevelError:        fg("1").Bold(true),
		},
	}
}

// levelStyle returns the style of the highest named level not above l.
func (p palette) levelStyle(l slog.Level) lipgloss.Style {
	style := p.level[slog.Level(LevelTrace)]

	for _, n := range levelNames {
		if l >= slog.Level(n.level) {
			style = p.level[slog.Level(n.level)]
		}
	}

	return style
}

// value renders v with the style matching its kind.
func (p palette) value(v slog.Value) string {
	v = v.Resolve()

	switch v.Kind() {
	case slog.KindString:
		return p.str.Render(v.String())
	case slog.KindInt64:
		return p.num.Render(strconv.FormatInt(v.Int64(), 10))
	case slog.KindUint64:
		return p.num.Render(strconv.FormatUint(v.Uint64(), 10))
	case slog.KindFloat64:
		return p.num.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))
	case slog.KindBool:
		if v.Bool() {
			return p.yes.Render("true")
		}

		return p.no.Render("false")
	case slog.KindDuration:
		return p.time.Render(v.Duration().String())
	case slog.KindTime:
		return p.time.Render(v.Time().String())
	case slog.KindAny:
		if v.Any() == nil {
			return p.null.Render("null")
		}

		if l, ok := v.Any().(slog.Level); ok {
			return p.levelStyle(l).Render(strings.ToUpper(Level(l).String()))
		}

		if err, ok := v.Any().(error); ok {
			return p.no.Render(err.Error())
		}

		return p.str.Render(fmt.Sprint(v.Any()))
	default:
		return p.str.Render(v.String())
	}
}

// flatten expands group values into dotted keys so both pretty handlers can
// print one key per entry.
func flatten(prefix string, attrs []slog.Attr, yield func(string, slog.Value)) {
	for _, a := range attrs {
		v := a.Value.Resolve()
		if a.Equal(slog.Attr{}) {
			continue
		}

		key := a.Key
		if prefix != "" {
			key = prefix + "." + key
		}

		if v.Kind() == slog.KindGroup {
			sub := key
			if a.Key == "" {
				sub = prefix
			}

			flatten(sub, v.Group(), yield)

			continue
		}

		yield(key, v)
	}
}

// prettyBase is the state shared by both pretty handlers.
type prettyBase struct {
	opts       slog.HandlerOptions
	formatTime FormatTime
	mu         *sync.Mutex
	w          io.Writer
	pal        palette
	group      string
	attrs      []slog.Attr
}

func newPrettyBase(w io.Writer, opts *slog.HandlerOptions, ft FormatTime) prettyBase {
	return prettyBase{
		opts:       *opts,
		formatTime: ft,
		mu:         &sync.Mutex{},
		w:          w,
		pal:        newPalette(w),
	}
}

func (b prettyBase) enabled(level slog.Level) bool {
	threshold := slog.LevelInfo
	if b.opts.Level != nil {
		threshold = b.opts.Level.Level()
	}

	return level >= threshold
}

func (b prettyBase) withAttrs(attrs []slog.Attr) prettyBase {
	grouped := attrs
	if b.group != "" {
		grouped = []slog.Attr{{Key: b.group, Value: slog.GroupValue(attrs...)}}
	}

	b.attrs = append(b.attrs[:len(b.attrs):len(b.attrs)], grouped...)

	return b
}

func (b prettyBase) withGroup(name string) prettyBase {
	if name == "" {
		return b
	}

	if b.group != "" {
		name = b.group + "." + name
	}

	b.group = name

	return b
}

// fields returns the ordered key/value pairs of a record, including the
// built-in time, level, source and message entries.
func (b prettyBase) fields(r slog.Record) (keys []string, vals []string) {
	add := func(k, v string) {
		keys = append(keys, k)
		vals = append(vals, v)
	}

	if !r.Time.IsZero() && b.formatTime != nil {
		if s := b.formatTime(r.Time); s != "" {
			add(slog.TimeKey, b.pal.time.Render(s))
		}
	}

	add(slog.LevelKey, b.pal.value(slog.AnyValue(r.Level)))

	if b.opts.AddSource {
		if src := r.Source(); src != nil && src.File != "" {
			add(slog.SourceKey, b.pal.str.Render(src.File+":"+strconv.Itoa(src.Line)))
		}
	}

	add(slog.MessageKey, b.pal.str.Render(r.Message))

	emit := func(k string, v slog.Value) { add(k, b.pal.value(v)) }

	flatten("", b.attrs, emit)

	var own []slog.Attr

	r.Attrs(func(a slog.Attr) bool {
		own = append(own, a)

		return true
	})

	flatten(b.group, own, emit)

	return keys, vals
}

func (b prettyBase) write(buf *bytes.Buffer) error {
	buf.WriteByte('\n')

	b.mu.Lock()
	defer b.mu.Unlock()

	_, err := b.w.Write(buf.Bytes())

	return err
}

// prettyTextHandler renders records as a single colourised key=value line.
type prettyTextHandler struct{ prettyBase }

func newPrettyTextHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	ft FormatTime,
) *prettyTextHandler {
	return &prettyTextHandler{newPrettyBase(w, opts, ft)}
}

func (h *prettyTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.enabled(level)
}

func (h *prettyTextHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	keys, vals := h.fields(r)
	for i := range keys {
		if i > 0 {
			buf.WriteByte(' ')
		}

		buf.WriteString(h.pal.key.Render(keys[i]))
		buf.WriteByte('=')
		buf.WriteString(vals[i])
	}

	return h.write(&buf)
}

func (h *prettyTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyTextHandler{h.withAttrs(attrs)}
}

func (h *prettyTextHandler) WithGroup(name string) slog.Handler {
	return &prettyTextHandler{h.withGroup(name)}
}

// prettyJSONHandler renders records as an indented, colourised object. The
// output is meant for people; values are not quoted.
type prettyJSONHandler struct{ prettyBase }

func newPrettyJSONHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	ft FormatTime,
) *prettyJSONHandler {
	return &prettyJSONHandler{newPrettyBase(w, opts, ft)}
}

func (h *prettyJSONHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.enabled(level)
}

func (h *prettyJSONHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	buf.WriteString("{\n")

	keys, vals := h.fields(r)
	for i := range keys {
		if i > 0 {
			buf.WriteString(",\n")
		}

		buf.WriteString("  ")
		buf.WriteString(h.pal.key.Render(keys[i]))
		buf.WriteString(": ")
		buf.WriteString(vals[i])
	}

	buf.WriteString("\n}")

	return h.write(&buf)
}

func (h *prettyJSONHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyJSONHandler{h.withAttrs(attrs)}
}

func (h *prettyJSONHandler) WithGroup(name string) slog.Handler {
	return &prettyJSONHandler{h.withGroup(name)}
}
