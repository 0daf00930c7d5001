package ui

import (
	"time"

	"github.com/dustin/go-humanize"
)

// TimeAgo describes t relative to now, e.g. "3 hours ago" or "2 days from now".
// A zero time renders as "unknown".
func TimeAgo(t, now time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}
