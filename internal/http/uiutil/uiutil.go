// Package uiutil holds small formatting helpers shared by templates and handlers.
package uiutil

import (
	"strconv"
	"time"
)

const FriendlyDateTimeLayout = "Jan 2, 2006 3:04 PM"

// FormatFriendlyDateTime returns a consistent, user-friendly local timestamp representation.
func FormatFriendlyDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(FriendlyDateTimeLayout)
}

// FriendlyRemaining describes how long until t, e.g. "in 3 hours". Past times are "expired".
func FriendlyRemaining(t, now time.Time) string {
	diff := t.Sub(now)
	switch {
	case diff <= 0:
		return "expired"
	case diff < time.Minute:
		return "in less than a minute"
	case diff < time.Hour:
		return plural(int(diff.Minutes()), "minute")
	default:
		return plural(int(diff.Hours()), "hour")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "in 1 " + unit
	}
	return "in " + strconv.Itoa(n) + " " + unit + "s"
}
