package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/promptgen/lang"
)

// run executes fn with stdin reading in and returns what it wrote to stdout.
func run(t *testing.T, in string, fn func(ctx context.Context) error) (string, error) {
	t.Helper()

	var out bytes.Buffer

	ctx := WithStreams(t.Context(), strings.NewReader(in), &out)
	err := fn(ctx)

	return out.String(), err
}

func lines(s string) []string {
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

func TestGen_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.txt")

	g := &Gen{
		Prompt:         "{big|small} dog",
		Num:            3,
		Out:            path,
		ChoiceGuidance: lang.PolicyLongest,
	}

	out, err := run(t, "", g.Run)
	require.NoError(t, err)
	require.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "small dog\nsmall dog\nsmall dog\n", string(data))
}

func TestGen_VerboseDryRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.txt")

	g := &Gen{
		Prompt:         "{a|b|c}",
		Num:            4,
		Out:            path,
		Verbose:        true,
		DryRun:         true,
		ChoiceGuidance: lang.PolicyMostLikely,
	}

	out, err := run(t, "", g.Run)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "a", "a", "a"}, lines(out))

	_, err = os.Stat(path)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestGen_SeedReproducible(t *testing.T) {
	gen := func() string {
		g := &Gen{
			Prompt:  "{a|b|c|d} {e|f|g|h}",
			Num:     16,
			Seed:    99,
			Jobs:    4,
			Verbose: true,
			DryRun:  true,
		}

		out, err := run(t, "", g.Run)
		require.NoError(t, err)

		return out
	}

	require.Equal(t, gen(), gen())
}

func TestGen_FileFromStdin(t *testing.T) {
	g := &Gen{
		File:           "-",
		Num:            1,
		Verbose:        true,
		DryRun:         true,
		ChoiceGuidance: lang.PolicyShortest,
	}

	out, err := run(t, "{tiny|enormous} {cat|dog}\n", g.Run)
	require.NoError(t, err)
	require.Equal(t, "tiny cat\n", out)
}

func TestGen_Inputs(t *testing.T) {
	_, err := run(t, "", (&Gen{Num: 1, DryRun: true}).Run)
	require.ErrorIs(t, err, ErrNoInput)

	_, err = run(t, "", (&Gen{Prompt: "a", File: "-", Num: 1, DryRun: true}).Run)
	require.ErrorIs(t, err, ErrInputConflict)

	_, err = run(t, "", (&Gen{File: filepath.Join(t.TempDir(), "missing"), Num: 1, DryRun: true}).Run)
	require.ErrorIs(t, err, ErrReadInput)
}

func TestGen_ParseError(t *testing.T) {
	_, err := run(t, "", (&Gen{Prompt: "{a:x}", Num: 1, DryRun: true}).Run)
	require.ErrorIs(t, err, ErrParse)
	require.ErrorIs(t, err, lang.ErrInvalidWeight)

	g := &Gen{
		Prompt:                      "{a:x}",
		Num:                         1,
		DryRun:                      true,
		Verbose:                     true,
		IgnoreInvalidWeightLiterals: true,
	}

	out, err := run(t, "", g.Run)
	require.NoError(t, err)
	require.Equal(t, "a:x\n", out)
}

func TestGen_Where(t *testing.T) {
	g := &Gen{
		Prompt:  "{a|bb|ccc|dddd}",
		Num:     20,
		Seed:    5,
		Where:   "length >= 3",
		Verbose: true,
		DryRun:  true,
	}

	out, err := run(t, "", g.Run)
	require.NoError(t, err)

	for _, line := range lines(out) {
		require.GreaterOrEqual(t, len(line), 3, "line %q", line)
	}
}

func TestGen_WhereExhausted(t *testing.T) {
	g := &Gen{
		Prompt:      "{a|b}",
		Num:         1,
		Where:       `text == "z"`,
		MaxAttempts: 5,
		DryRun:      true,
	}

	_, err := run(t, "", g.Run)
	require.ErrorIs(t, err, ErrFilterExhausted)
	require.ErrorIs(t, err, lang.ErrExhausted)
}

func TestGen_WhereCompileError(t *testing.T) {
	_, err := run(t, "", (&Gen{Prompt: "a", Num: 1, Where: "length +", DryRun: true}).Run)
	require.ErrorIs(t, err, ErrFilterCompile)

	_, err = run(t, "", (&Gen{Prompt: "a", Num: 1, Where: "length", DryRun: true}).Run)
	require.ErrorIs(t, err, ErrFilterCompile)
}

func TestGen_Unique(t *testing.T) {
	g := &Gen{
		Prompt:  "{a|b|c}",
		Num:     3,
		Seed:    3,
		Unique:  true,
		Verbose: true,
		DryRun:  true,
	}

	out, err := run(t, "", g.Run)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a", "b", "c"}, lines(out))
}

func TestFilter(t *testing.T) {
	f, err := compileFilter("")
	require.NoError(t, err)
	require.Nil(t, f)

	f, err = compileFilter(`index % 2 == 0 && text contains "x"`)
	require.NoError(t, err)

	ok, err := f(0, "xy")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = f(1, "xy")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = f(2, "yy")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFmt_Native(t *testing.T) {
	out, err := run(t, "{a|b:2}\\{x\\}\n", (&Native{Input{Source: "-"}}).Run)
	require.NoError(t, err)
	require.Equal(t, "{a|b:2}\\{x\\}\n", out)
}

func TestFmt_JSON(t *testing.T) {
	out, err := run(t, "x {a|b:2}", (&JSON{Input: Input{Source: "-"}, Indent: 2}).Run)
	require.NoError(t, err)

	var tree map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &tree))
	require.Equal(t, "sequence", tree["kind"])

	children, ok := tree["children"].([]any)
	require.True(t, ok)
	require.Len(t, children, 2)
	require.Equal(t, "choice", children[1].(map[string]any)["kind"])
}

func TestFmt_YAML(t *testing.T) {
	out, err := run(t, "{a|b}", (&YAML{Input: Input{Source: "-"}, Indent: 2}).Run)
	require.NoError(t, err)

	var tree map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &tree))
	require.Equal(t, "sequence", tree["kind"])
}

func TestFmt_ParseError(t *testing.T) {
	_, err := run(t, "a}", (&Native{Input{Source: "-"}}).Run)
	require.ErrorIs(t, err, ErrParse)
	require.ErrorIs(t, err, lang.ErrUnexpectedCloseBrace)
}

func TestInfo(t *testing.T) {
	out, err := run(t, "{a|bb} {c|{d|e}}", (&Info{Input{Source: "-"}}).Run)
	require.NoError(t, err)

	got := map[string]string{}
	for _, line := range lines(out) {
		name, value, ok := strings.Cut(line, ":")
		require.True(t, ok, "line %q", line)
		got[name] = strings.TrimSpace(value)
	}

	require.Equal(t, map[string]string{
		"choices":      "3",
		"alternatives": "6",
		"depth":        "2",
		"shortest":     "3",
		"longest":      "4",
		"paths":        "6",
	}, got)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", Version{}.Run)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "promptgen "))
}

type initCLI struct {
	Quiet bool `help:"Top-level flag."`

	Gen  Gen  `cmd:"" default:"withargs"`
	Init Init `cmd:""`
}

func parseInit(t *testing.T, path string, args ...string) (*initCLI, *kong.Context) {
	t.Helper()

	var cli initCLI

	parser, err := kong.New(&cli,
		kong.Vars{ConfigIdentifier: path}.CloneWith(Vars()),
		kong.Exit(func(int) { t.Fatal("unexpected exit") }),
	)
	require.NoError(t, err)

	ktx, err := parser.Parse(args)
	require.NoError(t, err)

	return &cli, ktx
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cli, ktx := parseInit(t, path, "init")
	ctx := WithContext(t.Context(), ktx)

	require.NoError(t, cli.Init.Run(ctx))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var values map[string]any
	require.NoError(t, yaml.Unmarshal(data, &values))

	require.Equal(t, false, values["quiet"])
	require.EqualValues(t, 1, values["num"])
	require.Equal(t, "prompts.txt", values["out"])
	require.Equal(t, "random", values["choice-guidance"])
	require.NotContains(t, values, "help")

	err = cli.Init.Run(ctx)
	require.ErrorIs(t, err, ErrWriteConfig)
	require.ErrorIs(t, err, ErrFileExists)

	cli.Init.Force = true
	require.NoError(t, cli.Init.Run(ctx))
}
