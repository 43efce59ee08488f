package components

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(s Selector, keys ...string) Selector {
	for _, k := range keys {
		s, _ = s.Update(key(k))
	}
	return s
}

var formats = []Option{
	{Label: "GeoJSON", Value: "geojson"},
	{Label: "CSV", Value: "csv"},
	{Label: "KML", Value: "kml"},
}

func TestSelector_SingleSelect(t *testing.T) {
	s := NewSelector("Format", formats)
	s.SetSelected("geojson")
	s.Focus()

	s = press(s, "down", "down", "down", "enter")
	if got := s.Value(); got != "kml" {
		t.Errorf("expected kml, got %q", got)
	}
	s = press(s, "k", " ")
	if diff := cmp.Diff([]string{"csv"}, s.SelectedValues()); diff != "" {
		t.Errorf("selection mismatch (-want +got):\n%s", diff)
	}
}

func TestSelector_MultiSelect(t *testing.T) {
	s := NewMultiSelector("Formats", formats)
	s.Focus()

	s = press(s, " ", "j", "j", " ")
	if diff := cmp.Diff([]string{"geojson", "kml"}, s.SelectedValues()); diff != "" {
		t.Errorf("selection mismatch (-want +got):\n%s", diff)
	}
	s = press(s, " ")
	if diff := cmp.Diff([]string{"geojson"}, s.SelectedValues()); diff != "" {
		t.Errorf("selection mismatch (-want +got):\n%s", diff)
	}
}

func TestSelector_IgnoresKeysWhenBlurred(t *testing.T) {
	s := NewSelector("Format", formats)
	s.SetSelected("csv")

	s = press(s, "down", "enter")
	if s.Value() != "csv" || s.Cursor != 1 {
		t.Errorf("blurred selector changed: value=%q cursor=%d", s.Value(), s.Cursor)
	}
}
