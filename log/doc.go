// Package log provides the concurrency-safe structured logger shared by the
// promptgen packages. It is a thin layer over [log/slog].
//
// A [Logger] is created with [Make] and configured with functional options
// applied at creation time:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatText),
//		log.WithTimeLayout("kitchen"))
//	logger.Info("template parsed", slog.Int("choices", 3))
//
// The zero value of [Logger] discards everything, which lets library code
// accept an optional logger without nil checks.
//
// # Levels
//
// Five levels are defined: [LevelTrace], [LevelDebug], [LevelInfo],
// [LevelWarn] and [LevelError]. Trace sits below slog's debug level and is
// used for per-node evaluator detail.
//
// # Formats
//
// [FormatJSON] (default) and [FormatText] select the slog handler. With
// [WithPretty] enabled, both formats are rendered by colourised handlers
// styled with lipgloss.
//
// # Default logger
//
// Package-level functions ([Info], [ErrorContext], ...) write through a
// default logger on standard error that is reconfigured with [Config].
package log
