package profile

import "slices"

// Profiler selects a profiling mode and where its output goes.
type Profiler struct {
	Mode  string // one of [Modes]; empty disables profiling
	Path  string // output directory; empty uses the working directory
	Quiet bool   // suppress the profiler's own log lines
}

// Stopper ends a profiling session.
type Stopper interface{ Stop() }

// Start begins profiling and returns a [Stopper] that flushes the profile.
//
// If the pprof build tag is unset, or p.Mode is empty or unknown, Start
// returns a no-op. Both Start and Stop are always safely callable.
func (p Profiler) Start() Stopper {
	if p.Mode == "" || !Supports(p.Mode) {
		return ignore{}
	}

	return start(p)
}

// Supports reports whether mode is one of [Modes].
func Supports(mode string) bool {
	return slices.Contains(Modes(), mode)
}

type ignore struct{}

func (ignore) Stop() {}
