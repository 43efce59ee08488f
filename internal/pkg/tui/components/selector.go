package components

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/emiliopalmerini/ocgbuilder/internal/pkg/tui/theme"
)

// Option is one selectable entry.
type Option struct {
	Label string
	Value string
}

// Selector is a list with a single selected value, or several when Multi is set.
type Selector struct {
	Label    string
	Options  []Option
	Selected map[string]bool
	Cursor   int
	Focused  bool
	Multi    bool
	styles   *theme.Styles
}

func NewSelector(label string, options []Option) Selector {
	return Selector{
		Label:    label,
		Options:  options,
		Selected: make(map[string]bool),
		styles:   theme.Default(),
	}
}

func NewMultiSelector(label string, options []Option) Selector {
	s := NewSelector(label, options)
	s.Multi = true
	return s
}

func (s *Selector) Focus() {
	s.Focused = true
}

func (s *Selector) Blur() {
	s.Focused = false
}

// SelectedValues returns the selected values in option order.
func (s Selector) SelectedValues() []string {
	var result []string
	for _, opt := range s.Options {
		if s.Selected[opt.Value] {
			result = append(result, opt.Value)
		}
	}
	return result
}

// Value returns the first selected value, or "".
func (s Selector) Value() string {
	if v := s.SelectedValues(); len(v) > 0 {
		return v[0]
	}
	return ""
}

// SetSelected replaces the selection and moves the cursor to the first hit.
func (s *Selector) SetSelected(values ...string) {
	s.Selected = make(map[string]bool)
	for _, v := range values {
		s.Selected[v] = true
	}
	for i, opt := range s.Options {
		if s.Selected[opt.Value] {
			s.Cursor = i
			break
		}
	}
}

func (s Selector) Update(msg tea.Msg) (Selector, tea.Cmd) {
	if !s.Focused || len(s.Options) == 0 {
		return s, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "k", "up":
			if s.Cursor > 0 {
				s.Cursor--
			}
		case "j", "down":
			if s.Cursor < len(s.Options)-1 {
				s.Cursor++
			}
		case " ", "space", "enter":
			s.toggle()
		}
	}
	return s, nil
}

func (s *Selector) toggle() {
	value := s.Options[s.Cursor].Value
	if s.Multi {
		s.Selected[value] = !s.Selected[value]
		return
	}
	s.Selected = map[string]bool{value: true}
}

func (s Selector) View() string {
	var b strings.Builder

	b.WriteString(s.styles.Subtitle.Render(s.Label))
	b.WriteString("\n")

	for i, opt := range s.Options {
		isSelected := s.Selected[opt.Value]
		isCursor := s.Focused && i == s.Cursor

		indicator := " "
		if isCursor {
			indicator = s.styles.Active.Render(">")
		}

		bullet := s.styles.Muted.Render("( )")
		if s.Multi {
			bullet = s.styles.Muted.Render("[ ]")
		}
		if isSelected {
			bullet = s.styles.Selected.Render("(*)")
			if s.Multi {
				bullet = s.styles.Selected.Render("[x]")
			}
		}

		var label string
		switch {
		case isCursor:
			label = s.styles.Cursor.Render(opt.Label)
		case isSelected:
			label = s.styles.Selected.Render(opt.Label)
		default:
			label = s.styles.Muted.Render(opt.Label)
		}

		fmt.Fprintf(&b, "  %s %s %s\n", indicator, bullet, label)
	}

	return b.String()
}
