package theme

import "github.com/charmbracelet/lipgloss"

// Palette shared by every terminal view.
var (
	Ocean     = lipgloss.Color("#0EA5E9")
	DeepOcean = lipgloss.Color("#0369A1")
	Sky       = lipgloss.Color("#7DD3FC")
	Leaf      = lipgloss.Color("#22C55E")

	White     = lipgloss.Color("#FFFFFF")
	LightGray = lipgloss.Color("#9CA3AF")
	DimGray   = lipgloss.Color("#6B7280")
	DarkGray  = lipgloss.Color("#374151")

	Warning = lipgloss.Color("#F59E0B")
	Error   = lipgloss.Color("#EF4444")
)
