package lang

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/ardnew/promptgen/log"
)

// DefaultMaxAttempts is the default number of expansions tried per output
// when a filter or uniqueness is in effect.
const DefaultMaxAttempts = 100

// Filter accepts or rejects the expansion drawn for output index.
type Filter func(index int, text string) (bool, error)

// GenerateOption configures [Generate].
type GenerateOption func(*generator)

type generator struct {
	policy   Policy
	src      Source
	seed     uint64
	seeded   bool
	jobs     int
	filter   Filter
	unique   bool
	attempts int
	logger   log.Logger
}

// WithPolicy sets the expansion policy. The default is [PolicyRandom].
func WithPolicy(p Policy) GenerateOption {
	return func(g *generator) { g.policy = p }
}

// WithSource draws every output, in order, from src. It forces a single
// worker.
func WithSource(src Source) GenerateOption {
	return func(g *generator) { g.src = src }
}

// WithSeed makes generation reproducible. Output i is drawn from its own
// stream of a generator seeded with seed, so the result does not depend on
// the number of workers.
func WithSeed(seed uint64) GenerateOption {
	return func(g *generator) {
		g.seed = seed
		g.seeded = true
	}
}

// WithJobs sets the number of parallel workers. Values below 1 use
// runtime.GOMAXPROCS(0).
func WithJobs(n int) GenerateOption {
	return func(g *generator) { g.jobs = n }
}

// WithFilter redraws an output until f accepts it.
func WithFilter(f Filter) GenerateOption {
	return func(g *generator) { g.filter = f }
}

// WithUnique redraws an output that equals an earlier one. It forces a
// single worker.
func WithUnique(unique bool) GenerateOption {
	return func(g *generator) { g.unique = unique }
}

// WithMaxAttempts bounds the draws per output under [WithFilter] or
// [WithUnique]. Values below 1 use [DefaultMaxAttempts].
func WithMaxAttempts(n int) GenerateOption {
	return func(g *generator) { g.attempts = n }
}

// WithGenerateLogger sets the structured logger.
func WithGenerateLogger(logger log.Logger) GenerateOption {
	return func(g *generator) { g.logger = logger }
}

func newGenerator(opts ...GenerateOption) *generator {
	g := &generator{}

	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}

	if !g.seeded {
		g.seed = randomSeed()
	}

	if g.jobs < 1 {
		g.jobs = runtime.GOMAXPROCS(0)
	}

	if g.attempts < 1 {
		g.attempts = DefaultMaxAttempts
	}

	if g.src != nil || g.unique || g.policy.Deterministic() {
		g.jobs = 1
	}

	return g
}

// Generate returns count expansions of t.
//
// A negative count yields [ErrInvalidCount]. Deterministic policies return
// count copies of the same text. Cancelling ctx stops generation and
// returns ctx.Err().
func Generate(
	ctx context.Context,
	t *Template,
	count int,
	opts ...GenerateOption,
) ([]string, error) {
	if count < 0 {
		return nil, ErrInvalidCount.With(slog.Int("count", count))
	}

	g := newGenerator(opts...)

	g.logger.DebugContext(
		ctx,
		"generate",
		slog.Int("count", count),
		slog.String("policy", g.policy.String()),
		slog.Int("jobs", g.jobs),
		slog.Uint64("seed", g.seed),
	)

	out := make([]string, count)
	if count == 0 {
		return out, nil
	}

	if g.jobs == 1 {
		return out, g.sequential(ctx, t, out)
	}

	return out, g.parallel(ctx, t, out)
}

func (g *generator) sequential(ctx context.Context, t *Template, out []string) error {
	var seen map[string]struct{}
	if g.unique {
		seen = make(map[string]struct{}, len(out))
	}

	var shared *Evaluator

	switch {
	case g.src != nil:
		shared = NewEvaluator(g.policy, g.src)
	case g.policy.Deterministic():
		shared = NewEvaluator(g.policy, nil)
	}

	for i := range out {
		if err := ctx.Err(); err != nil {
			return err
		}

		ev := shared
		if ev == nil {
			ev = NewEvaluator(g.policy, streamSource(g.seed, uint64(i)))
		}

		s, err := g.draw(ctx, t, i, ev, seen)
		if err != nil {
			return err
		}

		out[i] = s

		if seen != nil {
			seen[s] = struct{}{}
		}
	}

	return nil
}

func (g *generator) parallel(ctx context.Context, t *Template, out []string) error {
	eg, ctx := errgroup.WithContext(ctx)

	for w := range g.jobs {
		eg.Go(func() error {
			for i := w; i < len(out); i += g.jobs {
				if err := ctx.Err(); err != nil {
					return err
				}

				ev := NewEvaluator(g.policy, streamSource(g.seed, uint64(i)))

				s, err := g.draw(ctx, t, i, ev, nil)
				if err != nil {
					return err
				}

				out[i] = s
			}

			return nil
		})
	}

	return eg.Wait()
}

// draw expands t until the result passes the filter and, if seen is not
// nil, differs from every earlier output.
func (g *generator) draw(
	ctx context.Context,
	t *Template,
	index int,
	ev *Evaluator,
	seen map[string]struct{},
) (string, error) {
	if g.filter == nil && seen == nil {
		return ev.Expand(t), nil
	}

	attempts := g.attempts
	if ev.Policy().Deterministic() {
		attempts = 1
	}

	for attempt := range attempts {
		s := ev.Expand(t)

		ok := true
		if g.filter != nil {
			var err error
			if ok, err = g.filter(index, s); err != nil {
				return "", err
			}
		}

		if _, dup := seen[s]; ok && !dup {
			return s, nil
		}

		g.logger.TraceContext(
			ctx,
			"expansion rejected",
			slog.Int("index", index),
			slog.Int("attempt", attempt),
		)
	}

	return "", ErrExhausted.With(
		slog.Int("index", index),
		slog.Int("attempts", attempts),
	)
}
