package cmd

import (
	"context"
	"encoding"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/promptgen/log"
	"github.com/ardnew/promptgen/profile"
)

// defaultConfigIndent is the number of spaces to use for indentation
// when generating the default configuration file.
const defaultConfigIndent = 2

// configCommand is the command whose flags are stored alongside the global
// ones.
const configCommand = "gen"

// Init generates a default configuration file with current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	// Check if file exists and force not set
	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	data, err := yaml.MarshalWithOptions(
		configValues(ktx.Model),
		yaml.Indent(defaultConfigIndent),
	)
	if err != nil {
		return ErrYAMLMarshal.Wrap(err)
	}

	if err := os.MkdirAll(filepath.Dir(confPath), 0o700); err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	if err := os.WriteFile(confPath, data, 0o600); err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	log.DebugContext(
		ctx,
		"initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// configValues maps the name of every configurable flag to its current
// value. Global flags come first, then those of the gen command.
func configValues(app *kong.Application) yaml.MapSlice {
	flags := slices.Clone(app.Flags)

	for _, child := range app.Children {
		if child.Name == configCommand {
			flags = append(flags, child.Flags...)
		}
	}

	prefixIgnore := []string{"help", profile.Tag}

	var values yaml.MapSlice

	for _, flag := range flags {
		if flag.Hidden || slices.ContainsFunc(prefixIgnore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		if v, ok := flagValue(flag); ok {
			values = append(values, yaml.MapItem{Key: flag.Name, Value: v})
		}
	}

	return values
}

// flagValue returns the value a flag currently holds in a form YAML can
// store and the config resolver can read back.
func flagValue(flag *kong.Flag) (any, bool) {
	if !flag.Target.IsValid() || !flag.Target.CanInterface() {
		return nil, false
	}

	if m, ok := flag.Target.Interface().(encoding.TextMarshaler); ok {
		text, err := m.MarshalText()

		return string(text), err == nil
	}

	v := flag.Target

	switch v.Kind() {
	case reflect.String:
		return pathDefault(flag, v.String()), v.String() != ""
	case reflect.Bool:
		return v.Bool(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint(), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	default:
		return nil, false
	}
}

// pathDefault returns the default of a path flag if s is that default as
// kong resolved it, so a relative default stays relative to the working
// directory of each run.
func pathDefault(flag *kong.Flag, s string) string {
	if flag.Tag == nil || flag.Tag.Type != "path" || !flag.HasDefault {
		return s
	}

	if s == kong.ExpandPath(flag.Default) {
		return flag.Default
	}

	return s
}
