package util

import (
	"fmt"
	"time"
)

// FormatDateTime formats a timestamp for listings (2006-01-02 15:04).
func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

// ParseTimeSQLite parses a SQLite datetime or RFC3339 string to time.Time.
// Handles "YYYY-MM-DD HH:MM:SS" (SQLite) and RFC3339 formats.
// Returns zero time if parsing fails.
func ParseTimeSQLite(s string) time.Time {
	// Try SQLite datetime format first (most common from DB)
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t
	}
	// Fall back to RFC3339
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

// Truncate shortens s to max runes, marking the cut with an ellipsis.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max || max < 1 {
		return s
	}
	return fmt.Sprintf("%s…", string(r[:max-1]))
}
