// Package due buckets task due dates into urgency categories for display.
package due

import (
	"fmt"
	"time"
)

// Urgency is the display bucket of a due date.
type Urgency string

const (
	None     Urgency = "none"
	Overdue  Urgency = "overdue"
	Today    Urgency = "today"
	Tomorrow Urgency = "tomorrow"
	Upcoming Urgency = "upcoming"
)

// Classification is the result of Classify.
type Classification struct {
	Label   string
	Urgency Urgency
}

// Classify buckets dueDate relative to today.
//
// Only the calendar dates matter: each value is reduced to its year, month
// and day in its own location before diffing, so a due date late in the day
// or a "today" taken mid-afternoon never shifts the bucket.
func Classify(dueDate *time.Time, today time.Time) Classification {
	if dueDate == nil || dueDate.IsZero() {
		return Classification{Label: "No due date", Urgency: None}
	}

	diff := DaysBetween(today, *dueDate)
	switch {
	case diff < 0:
		n := -diff
		if n == 1 {
			return Classification{Label: "Overdue by 1 day", Urgency: Overdue}
		}
		return Classification{Label: fmt.Sprintf("Overdue by %d days", n), Urgency: Overdue}
	case diff == 0:
		return Classification{Label: "Due today", Urgency: Today}
	case diff == 1:
		return Classification{Label: "Due tomorrow", Urgency: Tomorrow}
	default:
		return Classification{Label: fmt.Sprintf("Due in %d days", diff), Urgency: Upcoming}
	}
}

// DaysBetween returns the number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(midnight(b).Sub(midnight(a)).Hours() / 24)
}

// midnight maps t to midnight UTC of its calendar date, which keeps
// DST transitions out of the day arithmetic.
func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
