package cmd

import (
	"log/slog"
	"unicode/utf8"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ardnew/promptgen/lang"
)

// filterEnv returns the variables visible to a --where expression.
func filterEnv(index int, text string) map[string]any {
	return map[string]any{
		"text":   text,
		"length": utf8.RuneCountInString(text),
		"index":  index,
	}
}

// compileFilter compiles source into a [lang.Filter]. An empty source
// accepts everything and yields a nil filter.
func compileFilter(source string) (lang.Filter, error) {
	if source == "" {
		return nil, nil
	}

	program, err := expr.Compile(source, expr.Env(filterEnv(0, "")), expr.AsBool())
	if err != nil {
		return nil, ErrFilterCompile.Wrap(err).
			With(slog.String("where", source))
	}

	return func(index int, text string) (bool, error) {
		return runFilter(program, source, index, text)
	}, nil
}

func runFilter(program *vm.Program, source string, index int, text string) (bool, error) {
	result, err := vm.Run(program, filterEnv(index, text))
	if err != nil {
		return false, ErrFilterEvaluate.Wrap(err).
			With(slog.String("where", source), slog.Int("index", index))
	}

	ok, _ := result.(bool)

	return ok, nil
}
