package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/ardnew/promptgen/log"
)

// Info prints a summary of a template's shape.
type Info struct {
	Input `embed:""`
}

// Run executes the info command.
func (i *Info) Run(ctx context.Context) error {
	tmpl, err := loadTemplate(ctx, i.Source, i.Lenient)
	if err != nil {
		return err
	}

	stats := tmpl.Stats()

	log.DebugContext(ctx, "template info", slog.Any("stats", stats))

	tw := tabwriter.NewWriter(streamsFrom(ctx).Out, 0, 0, 1, ' ', 0)

	for _, row := range []struct {
		name  string
		value any
	}{
		{"choices", stats.Choices},
		{"alternatives", stats.Alternatives},
		{"depth", stats.Depth},
		{"shortest", stats.Shortest},
		{"longest", stats.Longest},
		{"paths", stats.Paths},
	} {
		if _, err := fmt.Fprintf(tw, "%s:\t%v\n", row.name, row.value); err != nil {
			return ErrWriteOutput.Wrap(err)
		}
	}

	if err := tw.Flush(); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}
