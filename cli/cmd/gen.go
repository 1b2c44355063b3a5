package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ardnew/promptgen/lang"
	"github.com/ardnew/promptgen/log"
)

// Gen expands a template and writes the results, one per line.
type Gen struct {
	Prompt string `arg:"" help:"Template text, e.g. 'a random {prompt|word}'." optional:""`
	File   string `       help:"Read the template from a file ('-' for stdin)." placeholder:"PATH" short:"f"`

	Num     int    `default:"1"           help:"Number of prompts to generate."      short:"n"`
	Out     string `default:"prompts.txt" help:"Output file."                        short:"o" type:"path"`
	Verbose bool   `                      help:"Print each prompt to stdout."        short:"v"`
	DryRun  bool   `                      help:"Do not write the output file."       short:"d"`

	ChoiceGuidance              lang.Policy `help:"Resolve choices by policy instead of at random (${policies})." placeholder:"POLICY" short:"g"`
	IgnoreInvalidWeightLiterals bool        `help:"Treat malformed weights as literal text."                     short:"i"`

	Seed        uint64 `help:"Seed for reproducible random output (0 picks one)."`
	Jobs        int    `help:"Parallel workers (0 uses every CPU)."                 short:"j"`
	Where       string `help:"Keep only prompts for which EXPR is true; variables: text, length, index." placeholder:"EXPR"`
	Unique      bool   `help:"Redraw prompts equal to an earlier one."`
	MaxAttempts int    `default:"${maxAttempts}" help:"Draws per prompt before --where or --unique gives up."`
}

// Run executes the gen command.
func (g *Gen) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	tmpl, err := g.template(ctx)
	if err != nil {
		return err
	}

	filter, err := compileFilter(g.Where)
	if err != nil {
		return err
	}

	prompts, err := lang.Generate(ctx, tmpl, g.Num, g.options(filter)...)
	if err != nil {
		if errors.Is(err, lang.ErrExhausted) {
			return ErrFilterExhausted.Wrap(err).
				With(slog.String("where", g.Where), slog.Bool("unique", g.Unique))
		}

		return ErrGenerate.Wrap(err).With(slog.Int("num", g.Num))
	}

	log.DebugContext(ctx, "generated prompts",
		slog.Int("count", len(prompts)),
		slog.String("policy", g.ChoiceGuidance.String()),
	)

	if g.Verbose {
		if err := writeLines(streamsFrom(ctx).Out, prompts); err != nil {
			return err
		}
	}

	if g.DryRun {
		return nil
	}

	return g.write(prompts)
}

// template parses the prompt argument or the --file contents.
func (g *Gen) template(ctx context.Context) (*lang.Template, error) {
	lenient := g.IgnoreInvalidWeightLiterals

	switch {
	case g.Prompt != "" && g.File != "":
		return nil, ErrInputConflict.With(slog.String("file", g.File))
	case g.File != "":
		return loadTemplate(ctx, g.File, lenient)
	case g.Prompt != "":
		return parseTemplate(ctx, g.Prompt, lenient)
	default:
		return nil, ErrNoInput
	}
}

func (g *Gen) options(filter lang.Filter) []lang.GenerateOption {
	opts := []lang.GenerateOption{
		lang.WithPolicy(g.ChoiceGuidance),
		lang.WithJobs(g.Jobs),
		lang.WithFilter(filter),
		lang.WithUnique(g.Unique),
		lang.WithMaxAttempts(g.MaxAttempts),
		lang.WithGenerateLogger(log.Default()),
	}

	if g.Seed != 0 {
		opts = append(opts, lang.WithSeed(g.Seed))
	}

	return opts
}

// write replaces the output file with prompts.
func (g *Gen) write(prompts []string) error {
	file, err := os.Create(g.Out)
	if err != nil {
		return ErrWriteOutput.Wrap(err).With(slog.String("file", g.Out))
	}

	err = writeLines(file, prompts)
	if cerr := file.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		return ErrWriteOutput.Wrap(err).With(slog.String("file", g.Out))
	}

	return nil
}

func writeLines(w io.Writer, lines []string) error {
	bw := bufio.NewWriter(w)

	for _, line := range lines {
		if _, err := fmt.Fprintln(bw, line); err != nil {
			return err
		}
	}

	return bw.Flush()
}
