package due

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestClassify_NoDueDate(t *testing.T) {
	for _, today := range []time.Time{date(2024, 1, 1), date(2030, 12, 31), time.Now()} {
		c := Classify(nil, today)
		if c.Urgency != None || c.Label != "No due date" {
			t.Errorf("expected none/No due date, got %q/%q", c.Urgency, c.Label)
		}
	}
}

func TestClassify_Buckets(t *testing.T) {
	today := date(2024, 3, 10)

	tests := []struct {
		name    string
		due     time.Time
		urgency Urgency
		label   string
	}{
		{"one day overdue", date(2024, 3, 9), Overdue, "Overdue by 1 day"},
		{"many days overdue", date(2024, 2, 29), Overdue, "Overdue by 10 days"},
		{"today", date(2024, 3, 10), Today, "Due today"},
		{"tomorrow", date(2024, 3, 11), Tomorrow, "Due tomorrow"},
		{"two days", date(2024, 3, 12), Upcoming, "Due in 2 days"},
		{"across year", date(2025, 3, 10), Upcoming, "Due in 365 days"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			due := tt.due
			c := Classify(&due, today)
			if c.Urgency != tt.urgency {
				t.Errorf("expected urgency %q, got %q", tt.urgency, c.Urgency)
			}
			if c.Label != tt.label {
				t.Errorf("expected label %q, got %q", tt.label, c.Label)
			}
		})
	}
}

func TestClassify_IgnoresTimeOfDay(t *testing.T) {
	// A raw millisecond diff of these would round into the wrong bucket.
	today := time.Date(2024, 3, 10, 23, 59, 0, 0, time.UTC)
	due := time.Date(2024, 3, 11, 0, 1, 0, 0, time.UTC)
	if c := Classify(&due, today); c.Urgency != Tomorrow {
		t.Errorf("expected tomorrow, got %q", c.Urgency)
	}

	today = time.Date(2024, 3, 10, 0, 1, 0, 0, time.UTC)
	due = time.Date(2024, 3, 10, 23, 59, 0, 0, time.UTC)
	if c := Classify(&due, today); c.Urgency != Today {
		t.Errorf("expected today, got %q", c.Urgency)
	}

	today = time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	due = date(2024, 3, 9)
	if c := Classify(&due, today); c.Label != "Overdue by 1 day" {
		t.Errorf("expected Overdue by 1 day, got %q", c.Label)
	}
}

func TestClassify_LocalTodayAgainstUTCDate(t *testing.T) {
	loc := time.FixedZone("UTC-8", -8*3600)
	// 22:00 local on the 10th is already the 11th in UTC
	today := time.Date(2024, 3, 10, 22, 0, 0, 0, loc)
	due := date(2024, 3, 10)
	if c := Classify(&due, today); c.Urgency != Today {
		t.Errorf("expected today, got %q", c.Urgency)
	}
}

func TestClassify_AcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	today := time.Date(2024, 3, 9, 12, 0, 0, 0, loc)
	due := time.Date(2024, 3, 11, 0, 0, 0, 0, loc)
	if c := Classify(&due, today); c.Label != "Due in 2 days" {
		t.Errorf("expected Due in 2 days, got %q", c.Label)
	}
}

func TestDaysBetween(t *testing.T) {
	if n := DaysBetween(date(2024, 2, 28), date(2024, 3, 1)); n != 2 {
		t.Errorf("expected 2 (leap year), got %d", n)
	}
	if n := DaysBetween(date(2024, 3, 1), date(2024, 2, 28)); n != -2 {
		t.Errorf("expected -2, got %d", n)
	}
}
