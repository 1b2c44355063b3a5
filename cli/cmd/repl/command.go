package repl

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"

	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/promptgen/lang"
)

// commandPrefix starts a control command on the input line.
const commandPrefix = ":"

// command describes one control command.
type command struct {
	name  string
	usage string
	help  string
}

// commands are the control commands in help order.
var commands = []command{
	{"num", "num N", "Show N samples per draw"},
	{"seed", "seed [N]", "Set the seed, or pick a new one"},
	{"policy", "policy [NAME]", "Set the choice policy, or show the current one"},
	{"lenient", "lenient [on|off]", "Toggle literal fallback for malformed weights"},
	{"edit", "edit", "Edit the template in $EDITOR"},
	{"clear", "clear", "Clear screen"},
	{"help", "help", "Print this cruft"},
	{"quit", "quit", "Exit REPL"},
}

func commandNames() []string {
	names := make([]string, len(commands))
	for i, c := range commands {
		names[i] = c.name
	}

	return names
}

func policyNames() []string {
	return slices.Collect(lang.Policies())
}

// resolve returns the candidate that word names. An exact match wins; otherwise
// the best fuzzy match is taken.
func resolve(word string, candidates []string) (string, bool) {
	word = strings.ToLower(word)

	if slices.Contains(candidates, word) {
		return word, true
	}

	matches := fuzzy.Find(word, candidates)
	if len(matches) == 0 {
		return "", false
	}

	return matches[0].Str, true
}

// splitCommand splits a control line into its command word and arguments.
// It reports false when line is not a control command.
func splitCommand(line string) (string, []string, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(line), commandPrefix)
	if !ok {
		return "", nil, false
	}

	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return "", nil, true
	}

	return fields[0], fields[1:], true
}

func helpMessage() string {
	var b strings.Builder

	b.WriteString("\n: Commands (type a prefix of any, e.g. :pol long):\n\n")

	for _, c := range commands {
		fmt.Fprintf(&b, "  %-18s %s\n", commandPrefix+c.usage, c.help)
	}

	b.WriteString(`
Usage:
  Type a template to see samples as you type
  Press Enter to print the samples and draw again
  Press Tab / Shift-Tab to cycle the choice policy
  Use Up/Down arrows for history navigation
  Press Ctrl+C on empty line or Ctrl+D to exit
`)

	return b.String()
}

// executeCommand runs the control command on line.
func (m model) executeCommand(line string) (model, tea.Cmd) {
	word, args, _ := splitCommand(line)
	echo := tea.Println(formatCommand(line))

	if word == "" {
		return m, echo
	}

	name, ok := resolve(word, commandNames())
	if !ok {
		return m, tea.Sequence(echo, printError(
			fmt.Errorf("%w: %s (try :help)", ErrUnknownCommand, word),
		))
	}

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl exec command",
		slog.String("command", name),
		slog.Any("args", args),
	)

	var (
		out string
		err error
	)

	switch name {
	case "quit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "help":
		out = helpMessage()

	case "clear":
		return m, tea.ClearScreen

	case "edit":
		return m.handleEdit()

	case "num":
		out, err = m.setNum(args)

	case "seed":
		out, err = m.setSeed(args)

	case "policy":
		out, err = m.setPolicy(args)

	case "lenient":
		out, err = m.setLenient(args)
	}

	if err != nil {
		return m, tea.Sequence(echo, printError(err))
	}

	m.refresh()

	return m, tea.Sequence(echo, tea.Println(hintStyle.Render(out)))
}

func (m *model) setNum(args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("%w: usage :num N", ErrInvalidArgument)
	}

	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return "", fmt.Errorf("%w: count %q", ErrInvalidArgument, args[0])
	}

	m.num = n

	return "num " + strconv.Itoa(n), nil
}

func (m *model) setSeed(args []string) (string, error) {
	switch len(args) {
	case 0:
		m.seed = rand.Uint64()
	case 1:
		seed, err := strconv.ParseUint(args[0], 0, 64)
		if err != nil {
			return "", fmt.Errorf("%w: seed %q", ErrInvalidArgument, args[0])
		}

		m.seed = seed
	default:
		return "", fmt.Errorf("%w: usage :seed [N]", ErrInvalidArgument)
	}

	m.draw = 0

	return "seed " + strconv.FormatUint(m.seed, 10), nil
}

func (m *model) setPolicy(args []string) (string, error) {
	switch len(args) {
	case 0:
	case 1:
		name, ok := resolve(strings.ReplaceAll(args[0], "_", "-"), policyNames())
		if !ok {
			return "", fmt.Errorf("%w: policy %q", ErrInvalidArgument, args[0])
		}

		p, err := lang.ParsePolicy(name)
		if err != nil {
			return "", err
		}

		m.policy = p
	default:
		return "", fmt.Errorf("%w: usage :policy [NAME]", ErrInvalidArgument)
	}

	return "policy " + m.policy.String(), nil
}

func (m *model) setLenient(args []string) (string, error) {
	switch len(args) {
	case 0:
		m.lenient = !m.lenient
	case 1:
		on, err := parseSwitch(args[0])
		if err != nil {
			return "", err
		}

		m.lenient = on
	default:
		return "", fmt.Errorf("%w: usage :lenient [on|off]", ErrInvalidArgument)
	}

	return "lenient " + strconv.FormatBool(m.lenient), nil
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}

	on, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%w: switch %q", ErrInvalidArgument, s)
	}

	return on, nil
}
