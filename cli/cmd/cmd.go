package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/promptgen/lang"
	"github.com/ardnew/promptgen/log"
)

const (
	// ConfigIdentifier is the kong variable holding the YAML config path.
	ConfigIdentifier = "config"
	// CacheIdentifier is the kong variable holding the cache directory.
	CacheIdentifier = "cache"
)

// Vars returns the kong variables referenced by command struct tags.
func Vars() kong.Vars {
	return kong.Vars{
		"policies":    strings.Join(slices.Collect(lang.Policies()), ", "),
		"maxAttempts": strconv.Itoa(lang.DefaultMaxAttempts),
	}
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type streamsKey struct{}

// Streams are the standard input and output used by commands.
type Streams struct {
	In  io.Reader
	Out io.Writer
}

// WithStreams returns a new context.Context whose commands read stdin from
// in and write stdout to out.
func WithStreams(ctx context.Context, in io.Reader, out io.Writer) context.Context {
	return context.WithValue(ctx, streamsKey{}, Streams{In: in, Out: out})
}

// streamsFrom returns the streams stored by [WithStreams], defaulting to the
// process's stdin and stdout.
func streamsFrom(ctx context.Context) Streams {
	s, _ := ctx.Value(streamsKey{}).(Streams)

	if s.In == nil {
		s.In = os.Stdin
	}

	if s.Out == nil {
		s.Out = os.Stdout
	}

	return s
}

// openSource opens path for reading, or stdin if path is "-".
func openSource(ctx context.Context, path string) (io.ReadCloser, error) {
	if path == stdinSource {
		return io.NopCloser(streamsFrom(ctx).In), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).With(slog.String("file", path))
	}

	return file, nil
}

// loadTemplate parses the template at path, or stdin if path is "-".
func loadTemplate(ctx context.Context, path string, lenient bool) (*lang.Template, error) {
	r, err := openSource(ctx, path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	tmpl, err := lang.ParseReader(ctx, r,
		lang.WithLenient(lenient),
		lang.WithLogger(log.Default()),
	)
	if errors.Is(err, lang.ErrReadInput) {
		return nil, ErrReadInput.Wrap(err).With(slog.String("file", path))
	}

	return tmpl, parseFailure(err, path)
}

// parseTemplate parses literal template text.
func parseTemplate(ctx context.Context, text string, lenient bool) (*lang.Template, error) {
	tmpl, err := lang.ParseCached(ctx, text,
		lang.WithLenient(lenient),
		lang.WithLogger(log.Default()),
	)

	return tmpl, parseFailure(err, "prompt")
}

// parseFailure attaches the input name and the caret snippet to a parse
// error. It returns nil for a nil err.
func parseFailure(err error, name string) error {
	if err == nil {
		return nil
	}

	e := ErrParse.Wrap(err).With(slog.String("input", name))
	if pe, ok := lang.AsParseError(err); ok {
		e = e.With(slog.String("snippet", pe.Snippet()))
	}

	return e
}
