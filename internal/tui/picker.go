// Package tui is the terminal statistic picker behind `ocgb pick`.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/emiliopalmerini/ocgbuilder/internal/domain"
	"github.com/emiliopalmerini/ocgbuilder/internal/pkg/tui/components"
	"github.com/emiliopalmerini/ocgbuilder/internal/pkg/tui/theme"
)

type Screen int

const (
	ScreenStatistics Screen = iota
	ScreenFormat
)

const invalidValueMessage = "Invalid Value: You must enter a numeric value only."

// Result is what the picker hands back when the user finishes.
type Result struct {
	Calculations []domain.Calculation
	Format       string
}

type row struct {
	depth int
	text  string
	key   string
	leaf  bool
}

type prompt struct {
	sel    *domain.Selection
	view   *domain.Prompt
	inputs []textinput.Model
	focus  int
}

// Model is the bubbletea model of the picker.
type Model struct {
	rows      []row
	cursor    int
	set       *domain.SelectionSet
	prompt    *prompt
	formats   components.Selector
	screen    Screen
	errMsg    string
	done      bool
	cancelled bool
	help      components.HelpBar
	styles    *theme.Styles
}

// New builds a picker over the tree. initial restores earlier selections and
// format preselects the output format.
func New(tree *domain.StatisticTree, format string, initial []domain.Calculation) (Model, error) {
	m := Model{
		set:    domain.NewSelectionSet(tree),
		styles: theme.Default(),
	}
	tree.Walk(func(n domain.StatisticNode, depth int) {
		r := row{depth: depth, text: n.Text, leaf: n.Leaf}
		if n.Leaf {
			r.key = n.Key()
		}
		m.rows = append(m.rows, r)
	})
	for _, c := range initial {
		if err := m.set.Restore(c); err != nil {
			return Model{}, err
		}
	}
	m.cursor = m.nextLeaf(-1, 1)

	opts := make([]components.Option, len(domain.OutputFormats))
	for i, f := range domain.OutputFormats {
		opts[i] = components.Option{Label: f.Text, Value: f.Value}
	}
	if format == "" {
		format = domain.DefaultOutputFormat
	}
	m.formats = components.NewSelector("Output Format", opts)
	m.formats.SetSelected(format)
	m.setHelp()
	return m, nil
}

// nextLeaf returns the first leaf row after from in direction dir, or from
// when there is none.
func (m Model) nextLeaf(from, dir int) int {
	for i := from + dir; i >= 0 && i < len(m.rows); i += dir {
		if m.rows[i].leaf {
			return i
		}
	}
	return from
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.prompt != nil {
			return m.updateInput(msg)
		}
		return m, nil
	}
	if key.String() == "ctrl+c" {
		m.cancelled = true
		return m, tea.Quit
	}
	if m.prompt != nil {
		return m.updatePrompt(key)
	}

	switch key.String() {
	case "q":
		m.done = true
		return m, tea.Quit
	case "tab", "1", "2":
		m.switchScreen(key.String())
		return m, nil
	}

	if m.screen == ScreenFormat {
		var cmd tea.Cmd
		m.formats, cmd = m.formats.Update(msg)
		return m, cmd
	}

	switch key.String() {
	case "k", "up":
		m.cursor = m.nextLeaf(m.cursor, -1)
	case "j", "down":
		m.cursor = m.nextLeaf(m.cursor, 1)
	case " ", "space", "enter":
		return m.activate()
	}
	return m, nil
}

func (m *Model) switchScreen(key string) {
	switch {
	case key == "1", key == "tab" && m.screen == ScreenFormat:
		m.screen = ScreenStatistics
		m.formats.Blur()
	default:
		m.screen = ScreenFormat
		m.formats.Focus()
	}
	m.setHelp()
}

func (m Model) activate() (tea.Model, tea.Cmd) {
	if m.cursor < 0 || m.cursor >= len(m.rows) || !m.rows[m.cursor].leaf {
		return m, nil
	}
	sel, err := m.set.Get(m.rows[m.cursor].key)
	if err != nil {
		m.errMsg = err.Error()
		return m, nil
	}
	m.errMsg = ""

	view := sel.Activate()
	if view == nil {
		return m, nil
	}
	p := &prompt{sel: sel, view: view}
	for i, label := range view.Labels {
		in := textinput.New()
		in.Prompt = label + " "
		in.CharLimit = 32
		if i == 0 {
			in.Focus()
		}
		p.inputs = append(p.inputs, in)
	}
	m.prompt = p
	m.setHelp()
	return m, textinput.Blink
}

func (m Model) updatePrompt(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "esc":
		m.prompt.sel.Cancel()
		m.closePrompt()
		return m, nil
	case "enter":
		values := make([]string, len(m.prompt.inputs))
		for i, in := range m.prompt.inputs {
			values[i] = in.Value()
		}
		err := m.prompt.sel.Confirm(values)
		switch {
		case errors.Is(err, domain.ErrNonNumericInput):
			m.errMsg = invalidValueMessage
		case err != nil && !errors.Is(err, domain.ErrEmptyInput):
			m.errMsg = err.Error()
		}
		m.closePrompt()
		return m, nil
	case "tab", "down":
		m.focusInput(m.prompt.focus + 1)
		return m, nil
	case "shift+tab", "up":
		m.focusInput(m.prompt.focus - 1)
		return m, nil
	}
	return m.updateInput(key)
}

func (m Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	p := m.prompt
	var cmd tea.Cmd
	p.inputs[p.focus], cmd = p.inputs[p.focus].Update(msg)
	return m, cmd
}

func (m *Model) focusInput(i int) {
	p := m.prompt
	n := len(p.inputs)
	if n == 0 {
		return
	}
	p.inputs[p.focus].Blur()
	p.focus = (i%n + n) % n
	p.inputs[p.focus].Focus()
}

func (m *Model) closePrompt() {
	m.prompt = nil
	m.setHelp()
}

func (m *Model) setHelp() {
	switch {
	case m.prompt != nil:
		m.help = components.NewHelpBar(
			components.KeyBinding{Key: "enter", Desc: "confirm"},
			components.KeyBinding{Key: "tab", Desc: "next field"},
			components.KeyBinding{Key: "esc", Desc: "cancel"},
		)
	case m.screen == ScreenFormat:
		m.help = components.NewHelpBar(
			components.KeyBinding{Key: "↑/↓", Desc: "move"},
			components.KeyBinding{Key: "space", Desc: "select"},
			components.KeyBinding{Key: "tab", Desc: "statistics"},
			components.KeyBinding{Key: "q", Desc: "done"},
		)
	default:
		m.help = components.NewHelpBar(
			components.KeyBinding{Key: "↑/↓", Desc: "move"},
			components.KeyBinding{Key: "space", Desc: "toggle"},
			components.KeyBinding{Key: "tab", Desc: "format"},
			components.KeyBinding{Key: "q", Desc: "done"},
		)
	}
}

func (m Model) View() string {
	if m.done || m.cancelled {
		return ""
	}

	header := m.styles.Title.Render("OCGB STATISTICS") + "  " + m.styles.Muted.Render("Data Request Builder")
	nav := renderNav(m.styles, []navItem{
		{Key: "1", Label: "Statistics", Active: m.screen == ScreenStatistics},
		{Key: "2", Label: "Format", Active: m.screen == ScreenFormat},
	})

	var content string
	if m.screen == ScreenFormat {
		content = m.formats.View()
	} else {
		content = m.treeView()
	}
	parts := []string{header, nav, "", content}
	if m.prompt != nil {
		parts = append(parts, m.promptView())
	}
	if m.errMsg != "" {
		parts = append(parts, m.styles.Error.Render(m.errMsg))
	}
	parts = append(parts, m.help.View())
	return m.styles.Container.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m Model) treeView() string {
	var b strings.Builder
	b.WriteString(m.styles.Subtitle.Render(domain.StatisticTreeRoot))
	b.WriteString("\n")
	for i, r := range m.rows {
		indent := strings.Repeat("  ", r.depth+1)
		if !r.leaf {
			fmt.Fprintf(&b, "%s%s\n", indent, m.styles.Folder.Render(r.text))
			continue
		}

		cursor := " "
		if i == m.cursor {
			cursor = m.styles.Active.Render(">")
		}
		box := m.styles.Muted.Render("[ ]")
		textStyle := m.styles.Body
		suffix := ""
		switch m.set.State(r.key) {
		case domain.Checked:
			box = m.styles.Selected.Render("[x]")
			textStyle = m.styles.Selected
			sel, _ := m.set.Get(r.key)
			if c, ok := sel.Calculation(); ok && len(c.Params) > 0 {
				suffix = m.styles.Muted.Render("  " + c.String())
			}
		case domain.AwaitingInput:
			box = m.styles.Awaiting.Render("[?]")
		}
		if i == m.cursor {
			textStyle = m.styles.Cursor
		}
		fmt.Fprintf(&b, "%s%s %s %s%s\n", indent, cursor, box, textStyle.Render(r.text), suffix)
	}
	return b.String()
}

func (m Model) promptView() string {
	lines := []string{
		m.styles.Subtitle.Render(m.prompt.view.Title),
		m.styles.Body.Render(m.prompt.view.Message),
	}
	for _, in := range m.prompt.inputs {
		lines = append(lines, in.View())
	}
	return m.styles.Modal.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// Result returns the checked calculations in tree order and the chosen format.
func (m Model) Result() Result {
	return Result{Calculations: m.set.Calculations(), Format: m.formats.Value()}
}

func (m Model) Cancelled() bool {
	return m.cancelled
}

// ErrAborted is returned by Run when the user quits with ctrl+c.
var ErrAborted = errors.New("picker aborted")

// Run shows the picker until the user finishes.
func Run(ctx context.Context, m Model, opts ...tea.ProgramOption) (Result, error) {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, opts...)
	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		return Result{}, fmt.Errorf("failed to run picker: %w", err)
	}
	result := final.(Model)
	if result.Cancelled() {
		return Result{}, ErrAborted
	}
	return result.Result(), nil
}
