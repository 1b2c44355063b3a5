package lang

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// globalCache stores parse results keyed by the hash of source and options.
var globalCache sync.Map

// entry is one cached parse. Failures are cached too.
type entry struct {
	once    sync.Once
	source  string
	lenient bool
	tmpl    *Template
	err     error
}

// ParseReader reads all of r and parses it with [ParseCached]. A single
// trailing line break, as text editors leave at the end of a file, is not
// part of the template.
func ParseReader(ctx context.Context, r io.Reader, opts ...Option) (*Template, error) {
	// Wrap reader with async read-ahead for concurrent I/O.
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	text := string(data)
	if t, ok := strings.CutSuffix(text, "\n"); ok {
		text = strings.TrimSuffix(t, "\r")
	}

	return ParseCached(ctx, text, opts...)
}

// ParseCached is like [Parse] but reuses the result of an earlier call with
// the same text and options. Templates are never mutated after parsing, so
// the shared result is safe for concurrent use.
func ParseCached(ctx context.Context, text string, opts ...Option) (*Template, error) {
	o := makeOptions(opts...)
	key := xxh3.HashString(text) ^ o.key()

	v, loaded := globalCache.LoadOrStore(key, &entry{source: text, lenient: o.lenient})
	e := v.(*entry)

	if e.source != text || e.lenient != o.lenient {
		// Hash collision: parse without caching.
		return parseContext(ctx, text, o)
	}

	e.once.Do(func() { e.tmpl, e.err = parseContext(ctx, text, o) })

	o.logger.TraceContext(
		ctx,
		"template cache",
		slog.Bool("hit", loaded),
		slog.Uint64("key", key),
	)

	return e.tmpl, e.err
}

// ClearCache discards all cached parse results.
func ClearCache() {
	globalCache.Clear()
}
