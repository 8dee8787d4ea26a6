package ui

import (
	"fmt"
	"time"
)

// FormatTimeAgo returns a compact age string like "2m ago".
func FormatTimeAgo(then time.Time, now time.Time) string {
	if then.IsZero() {
		return "-"
	}
	age := now.Sub(then)
	if age < 0 {
		age = 0
	}
	return FormatDurationShort(age) + " ago"
}

// FormatDueDate renders a due date relative to now: "due 3d",
// "due today", or "overdue 2d". A nil due date renders as "-".
func FormatDueDate(due *time.Time, now time.Time) string {
	if due == nil {
		return "-"
	}
	remaining := due.Sub(now)
	switch {
	case remaining < -time.Minute:
		return "overdue " + FormatDurationShort(-remaining)
	case remaining < 24*time.Hour:
		return "due today"
	default:
		return "due " + FormatDurationShort(remaining)
	}
}

// FormatDurationShort formats a duration using short units (s/m/h/d).
func FormatDurationShort(duration time.Duration) string {
	if duration < 0 {
		duration = 0
	}

	duration = duration.Truncate(time.Second)
	seconds := int64(duration.Seconds())
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}

	minutes := seconds / 60
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}

	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%dh", hours)
	}

	days := hours / 24
	return fmt.Sprintf("%dd", days)
}
