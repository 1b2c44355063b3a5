package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/promptgen/cli/cmd/repl"
	"github.com/ardnew/promptgen/lang"
	"github.com/ardnew/promptgen/log"
)

// Repl starts an interactive session that samples a template as it is typed.
type Repl struct {
	Template string `arg:"" help:"Initial template text." optional:""`

	Num            int         `default:"5" help:"Samples shown per draw."                       short:"n"`
	Seed           uint64      `            help:"Seed for the first draw (0 picks one)."`
	ChoiceGuidance lang.Policy `            help:"Initial choice policy (${policies})."          placeholder:"POLICY" short:"g"`
	Lenient        bool        `            help:"Treat malformed weights as literal text."      short:"i"`
	NoHistory      bool        `            help:"Do not read or write the history file."`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) error {
	cfg := repl.Config{
		Template: r.Template,
		Num:      r.Num,
		Seed:     r.Seed,
		Policy:   r.ChoiceGuidance,
		Lenient:  r.Lenient,
	}

	if !r.NoHistory {
		if ktx := kongContextFrom(ctx); ktx != nil {
			cfg.CacheDir = ktx.Model.Vars()[CacheIdentifier]
		}
	}

	log.DebugContext(ctx, "starting repl",
		slog.String("cache_dir", cfg.CacheDir),
		slog.String("policy", cfg.Policy.String()),
	)

	return repl.Run(ctx, cfg, log.Default())
}
