//go:build pprof

package profile

import (
	"maps"
	"slices"
	"sync"

	"github.com/pkg/profile"

	_ "net/http/pprof" // register HTTP handlers
)

// Enabled reports whether profiling was compiled in.
const Enabled = true

// Modes returns the sorted names of the supported profiling modes.
var Modes = sync.OnceValue(
	func() []string {
		return slices.Sorted(maps.Keys(mode))
	},
)

var mode = map[string]func(*profile.Profile){
	"block":     profile.BlockProfile,
	"cpu":       profile.CPUProfile,
	"clock":     profile.ClockProfile,
	"goroutine": profile.GoroutineProfile,
	"mem":       profile.MemProfile,
	"allocs":    profile.MemProfileAllocs,
	"heap":      profile.MemProfileHeap,
	"mutex":     profile.MutexProfile,
	"thread":    profile.ThreadcreationProfile,
	"trace":     profile.TraceProfile,
}

// option appends a pkg/profile setting.
type option func([]func(*profile.Profile)) []func(*profile.Profile)

func start(p Profiler) Stopper {
	var opts []func(*profile.Profile)

	for _, o := range []option{withMode(p.Mode), withPath(p.Path), withQuiet(p.Quiet)} {
		opts = o(opts)
	}

	// Let the caller's signal handling decide when to stop.
	opts = append(opts, profile.NoShutdownHook)

	return profile.Start(opts...)
}

func withMode(m string) option {
	return func(opts []func(*profile.Profile)) []func(*profile.Profile) {
		return append(opts, mode[m])
	}
}

func withPath(p string) option {
	return func(opts []func(*profile.Profile)) []func(*profile.Profile) {
		if p == "" {
			return opts
		}

		return append(opts, profile.ProfilePath(p))
	}
}

func withQuiet(v bool) option {
	return func(opts []func(*profile.Profile)) []func(*profile.Profile) {
		if !v {
			return opts
		}

		return append(opts, profile.Quiet)
	}
}
