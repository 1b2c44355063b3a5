package lang

import (
	"github.com/zeebo/xxh3"

	"github.com/ardnew/promptgen/log"
)

// Option configures parsing.
type Option func(*options)

type options struct {
	lenient bool
	logger  log.Logger // zero value discards; not part of the cache key
}

// WithLenient controls whether a malformed weight suffix is kept as literal
// text instead of failing the parse. Non-positive weights are rejected
// either way.
func WithLenient(lenient bool) Option {
	return func(o *options) { o.lenient = lenient }
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func makeOptions(opts ...Option) options {
	var o options

	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}

// key hashes the options that change the parse result.
func (o options) key() uint64 {
	if o.lenient {
		return xxh3.HashString("lenient")
	}

	return 0
}
