package components

import (
	"strings"

	"github.com/emiliopalmerini/ocgbuilder/internal/pkg/tui/theme"
)

// KeyBinding is one entry of the help bar.
type KeyBinding struct {
	Key  string
	Desc string
}

// HelpBar renders key bindings on one line.
type HelpBar struct {
	Bindings []KeyBinding
	styles   *theme.Styles
}

func NewHelpBar(bindings ...KeyBinding) HelpBar {
	return HelpBar{
		Bindings: bindings,
		styles:   theme.Default(),
	}
}

func (h *HelpBar) SetBindings(bindings ...KeyBinding) {
	h.Bindings = bindings
}

func (h HelpBar) View() string {
	parts := make([]string, 0, len(h.Bindings))
	for _, kb := range h.Bindings {
		parts = append(parts, h.styles.HelpKey.Render(kb.Key)+h.styles.Muted.Render(":"+kb.Desc))
	}
	return h.styles.Help.Render(strings.Join(parts, " "))
}
