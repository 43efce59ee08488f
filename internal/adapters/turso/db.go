package turso

import (
	"time"

	"github.com/emiliopalmerini/ocgbuilder/internal/util"
)

// Fixed-width UTC timestamps sort lexically in created_at order.
const timeLayout = "2006-01-02T15:04:05.000000Z"

const maxRetries = 2

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t
	}
	return util.ParseTimeSQLite(s)
}
