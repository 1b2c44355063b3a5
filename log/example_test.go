package log_test

import (
	"log/slog"
	"os"

	"github.com/ardnew/promptgen/log"
)

func Example() {
	logger := log.Make(os.Stdout,
		log.WithFormat(log.FormatText),
		log.WithTimeLayout("none"))

	logger.Info("generated", slog.Int("count", 3), slog.String("policy", "longest"))
	// Output:
	// level=INFO msg=generated count=3 policy=longest
}

func Example_levels() {
	logger := log.Make(os.Stdout,
		log.WithLevel(log.LevelWarn),
		log.WithFormat(log.FormatText),
		log.WithTimeLayout("none"))

	logger.Info("hidden")
	logger.Warn("shown", slog.String("weight", "abc"))
	// Output:
	// level=WARN msg=shown weight=abc
}
