package theme

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Styles contains all shared TUI styles
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Folder   lipgloss.Style

	// Interactive elements
	Cursor   lipgloss.Style
	Selected lipgloss.Style
	Active   lipgloss.Style
	Inactive lipgloss.Style
	Awaiting lipgloss.Style

	Help    lipgloss.Style
	HelpKey lipgloss.Style

	Container lipgloss.Style
	Modal     lipgloss.Style

	Error lipgloss.Style
}

var (
	defaultStyles *Styles
	once          sync.Once
)

// Default returns the singleton default Styles instance
func Default() *Styles {
	once.Do(func() {
		defaultStyles = newStyles()
	})
	return defaultStyles
}

func newStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(White),

		Subtitle: lipgloss.NewStyle().
			Foreground(Ocean).
			Bold(true).
			MarginBottom(1),

		Body: lipgloss.NewStyle().
			Foreground(LightGray),

		Muted: lipgloss.NewStyle().
			Foreground(DimGray),

		Folder: lipgloss.NewStyle().
			Foreground(Sky).
			Bold(true),

		Cursor: lipgloss.NewStyle().
			Foreground(Sky).
			Bold(true),

		Selected: lipgloss.NewStyle().
			Foreground(Leaf),

		Active: lipgloss.NewStyle().
			Foreground(Sky).
			Bold(true),

		Inactive: lipgloss.NewStyle().
			Foreground(DimGray),

		Awaiting: lipgloss.NewStyle().
			Foreground(Warning),

		Help: lipgloss.NewStyle().
			Foreground(DimGray).
			MarginTop(1),

		HelpKey: lipgloss.NewStyle().
			Foreground(LightGray).
			Bold(true),

		Container: lipgloss.NewStyle().
			Padding(1, 2),

		Modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(DeepOcean).
			Padding(1, 2),

		Error: lipgloss.NewStyle().
			Foreground(Error).
			Bold(true),
	}
}
