package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/promptgen/log"
)

// resolve is a [kong.ConfigurationLoader] that reads a YAML config file.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve, "/path/to/config.yaml")
//
// Top-level keys name flags of any command. A key naming a command holds a
// mapping of flags that apply only to that command, and takes precedence
// over a top-level key of the same name:
//
//	log-level: debug
//	num: 3
//	repl:
//	  num: 10
//
// Keys may use underscores in place of hyphens. Command-line flags override
// config file values. A file that is not valid YAML is ignored with a
// warning, so that init --force can still replace it.
func resolve(r io.Reader) (kong.Resolver, error) {
	var values map[string]any

	if err := yaml.NewDecoder(r).Decode(&values); err != nil {
		if !errors.Is(err, io.EOF) {
			log.Warn("ignoring malformed configuration", slog.Any("error", err))
		}

		return config{}, nil
	}

	return newConfig(values), nil
}

// config implements [kong.Resolver] for YAML configs.
type config struct {
	flags    map[string]any
	commands map[string]map[string]any
}

func newConfig(values map[string]any) config {
	c := config{
		flags:    map[string]any{},
		commands: map[string]map[string]any{},
	}

	for key, value := range values {
		if section, ok := value.(map[string]any); ok {
			flags := map[string]any{}
			for k, v := range section {
				flags[normalizeKey(k)] = flagValue(v)
			}

			c.commands[normalizeKey(key)] = flags

			continue
		}

		c.flags[normalizeKey(key)] = flagValue(value)
	}

	return c
}

// Validate implements [kong.Resolver].
func (r config) Validate(*kong.Application) error {
	return nil
}

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	parent *kong.Path,
	flag *kong.Flag,
) (any, error) {
	name := normalizeKey(flag.Name)

	if parent != nil && parent.Command != nil {
		if value, ok := r.commands[parent.Command.Name][name]; ok {
			return value, nil
		}
	}

	if value, ok := r.flags[name]; ok {
		return value, nil
	}

	// Not found - return nil to let Kong use defaults
	return nil, nil
}

func normalizeKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(key), "_", "-")
}

// flagValue converts a decoded YAML value to a form kong can parse. Kong
// requires numbers as strings.
func flagValue(v any) any {
	switch v := v.(type) {
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = fmt.Sprint(flagValue(e))
		}

		return strings.Join(parts, ",")
	default:
		return v
	}
}
