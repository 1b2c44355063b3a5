// Package cli contains the command line interface for promptgen.
//
// # Usage
//
// The default command generates prompts from a template:
//
//	promptgen -n 5 -v '{a|an enormous:0.5} {cat|dog|heron:2}'
//	promptgen -f template.txt -g longest -d -v
//	promptgen --where 'length < 40' --unique -n 20 '...'
//
// Other commands format a template (fmt native|json|yaml), summarize it
// (info), sample it interactively (repl), write the current flags to the
// configuration file (init), and print the version (version).
//
// # Configuration
//
// Flag defaults are read from config.yaml and config.json in the user
// configuration directory; see [resolve] for the YAML layout. Command-line
// flags override both.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, kitchen, none, ...)
//   - --[no-]log-caller: Include caller information in log output
//   - --[no-]log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default: the pprof
//     directory under the user cache directory)
package cli
