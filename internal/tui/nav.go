package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/emiliopalmerini/ocgbuilder/internal/pkg/tui/theme"
)

type navItem struct {
	Key    string
	Label  string
	Active bool
}

// renderNav draws the screen tabs.
func renderNav(styles *theme.Styles, items []navItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		if item.Active {
			parts = append(parts, styles.Active.Render(item.Label))
			continue
		}
		key := lipgloss.NewStyle().Foreground(theme.DarkGray).Render("[" + item.Key + "]")
		parts = append(parts, key+" "+styles.Inactive.Render(item.Label))
	}
	sep := lipgloss.NewStyle().Foreground(theme.DarkGray).Render("  /  ")
	return strings.Join(parts, sep)
}
