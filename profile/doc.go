// Package profile provides optional runtime profiling for promptgen.
//
// Profiling is built on [github.com/pkg/profile] and is compiled in only with
// the "pprof" build tag. Without the tag every [Profiler] is a no-op and
// [Modes] is empty.
//
//	p := profile.Profiler{Mode: "cpu", Path: "/tmp/profiles"}
//	defer p.Start().Stop()
//
// Profile files are written to Path with names matching the mode (cpu.pprof,
// mem.pprof, ...). Inspect them with:
//
//	go tool pprof -http=: /tmp/profiles/cpu.pprof
//
// The pprof build also imports [net/http/pprof], registering its handlers on
// [net/http.DefaultServeMux].
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
