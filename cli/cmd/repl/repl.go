package repl

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/promptgen/lang"
	"github.com/ardnew/promptgen/log"
)

// editTemplateMsg is sent when the editor returns new template text.
type editTemplateMsg struct{ text string }

// editErrorMsg is sent when the editor could not be run.
type editErrorMsg struct{ err error }

const prompt = "➜ "

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
)

// formatCommand formats the echo line with prompt and input styled.
func formatCommand(input string) string {
	return promptStyle.Render(prompt) + inputStyle.Render(input)
}

func printError(err error) tea.Cmd {
	return tea.Println(errorStyle.Render("error: " + err.Error()))
}

// Config holds the settings a session starts with.
type Config struct {
	Template string
	Num      int
	Seed     uint64 // 0 picks one
	Policy   lang.Policy
	Lenient  bool
	CacheDir string // empty keeps history in memory
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc    func() context.Context
	input      textinput.Model
	logger     log.Logger
	history    *History
	historyIdx int
	source     string // last template text entered
	num        int
	seed       uint64
	draw       uint64 // draws since the seed was set
	policy     lang.Policy
	lenient    bool
	samples    []string
	err        error
	matches    fuzzy.Matches // command names matching the typed prefix
	quitting   bool
}

// Run starts the REPL.
func Run(ctx context.Context, cfg Config, logger log.Logger) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger.TraceContext(
		ctx,
		"repl start",
		slog.String("cache_dir", cfg.CacheDir),
		slog.Int("num", cfg.Num),
		slog.String("policy", cfg.Policy.String()),
	)

	history := NewHistory("")
	if cfg.CacheDir != "" {
		history = NewHistory(filepath.Join(cfg.CacheDir, baseHistory))
	}

	if err := history.Load(); err != nil {
		fmt.Printf("Warning: could not load history: %v\n", err)
	}

	logger.TraceContext(
		ctx,
		"repl history loaded",
		slog.Int("entry_count", history.Len()),
	)

	m := newModel(ctx, cfg, history, logger)

	p := tea.NewProgram(m, tea.WithContext(ctx))
	_, err = p.Run()

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	cfg Config,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(prompt)
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = defaultWidth
	ti.SetValue(cfg.Template)

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	m := model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		num:        max(cfg.Num, 1),
		seed:       seed,
		policy:     cfg.Policy,
		lenient:    cfg.Lenient,
	}
	m.refresh()

	return m
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.input.Width = msg.Width - len(prompt) - 2

		return m, nil

	case editTemplateMsg:
		m.input.SetValue(msg.text)
		m.input.CursorEnd()
		m.refresh()

		return m, nil

	case editErrorMsg:
		return m, printError(msg.err)
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")

	_, _, isCommand := splitCommand(m.input.Value())

	switch {
	case m.historyIdx < m.history.Len():
		hint := fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len())
		b.WriteString(hintStyle.Render(hint))
		b.WriteString("\n")

	case isCommand:
		b.WriteString(renderCandidates(m.matches))
		b.WriteString("\n")

	case strings.TrimSpace(m.input.Value()) == "":
		b.WriteString(hintStyle.Render("Type a template, e.g. {red|blue:2} car, or :help"))
		b.WriteString("\n")

	case m.err != nil:
		b.WriteString(renderError(m.err))

	default:
		for _, s := range m.samples {
			b.WriteString(resultStyle.Render(s))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (m model) statusLine() string {
	lenient := ""
	if m.lenient {
		lenient = " · lenient"
	}

	return statusStyle.Render(fmt.Sprintf(
		"%s · num %d · seed %d%s",
		m.policy, m.num, m.seed, lenient,
	))
}

// renderError shows a parse error with a caret under its position.
func renderError(err error) string {
	var b strings.Builder

	b.WriteString(errorStyle.Render(err.Error()))
	b.WriteString("\n")

	if pe, ok := lang.AsParseError(err); ok {
		b.WriteString(hintStyle.Render(pe.Snippet()))
	}

	return b.String()
}

func renderCandidates(matches fuzzy.Matches) string {
	names := make([]string, len(matches))
	for i, match := range matches {
		names[i] = suggestionStyle.Render(commandPrefix + match.Str)
	}

	return strings.Join(names, "  ")
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(
		m.ctxFunc(),
		"repl keypress",
		slog.String("key", msg.String()),
		slog.Int("type", int(msg.Type)),
	)

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.historyIdx = m.history.Len()
		m.refresh()

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		return m.executeInput()

	case tea.KeyTab:
		if len(m.matches) > 0 {
			m.input.SetValue(commandPrefix + m.matches[0].Str + " ")
			m.input.CursorEnd()
			m.refresh()

			return m, nil
		}

		return m.cyclePolicy(1), nil

	case tea.KeyShiftTab:
		return m.cyclePolicy(-1), nil

	case tea.KeyUp:
		return m.historyPrev()

	case tea.KeyDown:
		return m.historyNext()
	}

	var cmd tea.Cmd

	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	m.refresh()

	return m, cmd
}

// refresh recomputes the command matches or the samples shown for the
// current input. Command lines keep the samples of the last template.
func (m *model) refresh() {
	text := m.input.Value()
	m.matches = nil

	if word, args, ok := splitCommand(text); ok {
		if len(args) == 0 && !strings.HasSuffix(text, " ") {
			if word == "" {
				for i, name := range commandNames() {
					m.matches = append(m.matches, fuzzy.Match{Str: name, Index: i})
				}
			} else {
				m.matches = fuzzy.Find(word, commandNames())
			}
		}

		text = m.source
	} else {
		m.source = text
	}

	m.sample(text)
}

// sample redraws the samples for text.
func (m *model) sample(text string) {
	ctx := m.ctxFunc()

	m.samples = nil

	tmpl, err := lang.ParseContext(ctx, text, lang.WithLenient(m.lenient))
	if err != nil {
		m.err = err

		return
	}

	m.samples, m.err = lang.Generate(ctx, tmpl, m.num,
		lang.WithPolicy(m.policy),
		lang.WithSeed(m.seed+m.draw),
		lang.WithJobs(1),
	)
}

func (m model) cyclePolicy(step int) model {
	names := policyNames()
	next := (int(m.policy) + step + len(names)) % len(names)

	if p, err := lang.ParsePolicy(names[next]); err == nil {
		m.policy = p
	}

	m.refresh()

	return m
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	_, _ = m.history.Write(input)
	m.historyIdx = m.history.Len()

	if _, _, ok := splitCommand(input); ok {
		m.input.SetValue(m.source)
		m.input.CursorEnd()
		m.logger.TraceContext(
			m.ctxFunc(),
			"repl command",
			slog.String("input", input),
		)

		return m.executeCommand(input)
	}

	echo := tea.Println(formatCommand(m.input.Value()))

	if m.err != nil {
		return m, tea.Sequence(echo, tea.Println(renderError(m.err)))
	}

	lines := make([]string, len(m.samples))
	for i, s := range m.samples {
		lines[i] = resultStyle.Render(s)
	}

	printed := tea.Println(strings.Join(lines, "\n"))

	m.draw++
	m.sample(m.source)

	return m, tea.Sequence(echo, printed)
}

func (m model) handleEdit() (model, tea.Cmd) {
	cmd := &editTemplateCommand{
		text:    m.source,
		ctxFunc: m.ctxFunc,
		logger:  m.logger,
	}

	return m, tea.Exec(cmd, func(err error) tea.Msg {
		if err != nil {
			return editErrorMsg{err: err}
		}

		return editTemplateMsg{text: cmd.edited}
	})
}

func (m model) historyPrev() (model, tea.Cmd) {
	if m.historyIdx == 0 {
		return m, nil
	}

	m.historyIdx--

	line, err := m.history.Line(m.historyIdx)
	if err != nil {
		return m, nil
	}

	m.input.SetValue(line)
	m.input.CursorEnd()
	m.refresh()

	return m, nil
}

func (m model) historyNext() (model, tea.Cmd) {
	if m.historyIdx >= m.history.Len() {
		return m, nil
	}

	m.historyIdx++

	if m.historyIdx == m.history.Len() {
		m.input.SetValue("")
		m.refresh()

		return m, nil
	}

	line, err := m.history.Line(m.historyIdx)
	if err != nil {
		return m, nil
	}

	m.input.SetValue(line)
	m.input.CursorEnd()
	m.refresh()

	return m, nil
}
