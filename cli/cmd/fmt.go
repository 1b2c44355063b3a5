package cmd

import (
	"context"
	"log/slog"
)

// Fmt parses a template and prints it in the chosen format.
type Fmt struct {
	Native Native `cmd:"" default:"withargs" help:"Format as canonical template text (default)."`
	JSON   JSON   `cmd:""                    help:"Format the parse tree as JSON."`
	YAML   YAML   `cmd:""                    help:"Format the parse tree as YAML."`
}

// Input names a template source shared by the fmt and info commands.
type Input struct {
	Source  string `arg:"" default:"-" help:"Template file or '-' for stdin." name:"source"`
	Lenient bool   `help:"Treat malformed weights as literal text." short:"l"`
}

// Native formats input as canonical template text.
type Native struct {
	Input `embed:""`
}

// Run executes the fmt native command.
func (f *Native) Run(ctx context.Context) error {
	tmpl, err := loadTemplate(ctx, f.Source, f.Lenient)
	if err != nil {
		return err
	}

	return tmpl.Format(ctx, streamsFrom(ctx).Out)
}

// JSON formats the parse tree of input as JSON.
type JSON struct {
	Input `embed:""`

	Indent int `default:"2" help:"Indent width for JSON output" short:"i"`
}

// Run executes the fmt json command.
func (j *JSON) Run(ctx context.Context) error {
	tmpl, err := loadTemplate(ctx, j.Source, j.Lenient)
	if err != nil {
		return err
	}

	if err := tmpl.FormatJSON(ctx, streamsFrom(ctx).Out, j.Indent); err != nil {
		return ErrWriteOutput.Wrap(err).With(slog.String("format", "json"))
	}

	return nil
}

// YAML formats the parse tree of input as YAML.
type YAML struct {
	Input `embed:""`

	Indent int `default:"2" help:"Indent width for YAML output (0 for flow style)" short:"i"`
}

// Run executes the fmt yaml command.
func (y *YAML) Run(ctx context.Context) error {
	tmpl, err := loadTemplate(ctx, y.Source, y.Lenient)
	if err != nil {
		return err
	}

	if err := tmpl.FormatYAML(ctx, streamsFrom(ctx).Out, y.Indent); err != nil {
		return ErrYAMLMarshal.Wrap(err)
	}

	return nil
}
