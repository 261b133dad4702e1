// Package service defines the backend-agnostic interface for project and task operations.
package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and CLI format for due dates.
const DateLayout = "2006-01-02"

// Project represents a project owning a set of tasks.
type Project struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Task represents a single task within a project.
type Task struct {
	ID          int64  `json:"id"`
	ProjectID   int64  `json:"projectId,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	DueDate     *Date  `json:"dueDate,omitempty"`
	Completed   bool   `json:"completed"`
}

// UnmarshalJSON implements json.Unmarshaler.
// An empty dueDate decodes as no due date.
func (t *Task) UnmarshalJSON(data []byte) error {
	type plain Task
	if err := json.Unmarshal(data, (*plain)(t)); err != nil {
		return err
	}
	if t.DueDate != nil && t.DueDate.IsZero() {
		t.DueDate = nil
	}
	return nil
}

// Progress is the completion snapshot of a project.
// Percentage is nil when the server omitted it.
type Progress struct {
	TotalTasks     int      `json:"totalTasks"`
	CompletedTasks int      `json:"completedTasks"`
	Percentage     *float64 `json:"progressPercentage,omitempty"`
}

// User is the identity returned by the auth endpoints.
type User struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// AuthResult is the response to login, register and refresh.
type AuthResult struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

// Registration holds the fields for creating an account.
type Registration struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// ProjectInput is the create/update payload for a project.
type ProjectInput struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// TaskInput is the create/update payload for a task.
// A nil DueDate is sent as null so an update clears the stored date.
type TaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	DueDate     *Date  `json:"dueDate"`
}

// Date is a calendar date without time of day, encoded as "YYYY-MM-DD".
type Date struct {
	time.Time
}

// ParseDate parses s in DateLayout. The result is midnight UTC.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return Date{Time: t}, nil
}

// NewDate returns the calendar date of t in t's location.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// localDateTimeLayout is a timestamp without a zone, as sent by servers that
// serialise local date-times.
const localDateTimeLayout = "2006-01-02T15:04:05"

// UnmarshalJSON implements json.Unmarshaler.
// Accepts "YYYY-MM-DD", RFC 3339 timestamps and zone-less timestamps; the time
// part is dropped. null and "" leave d as the zero Date.
func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return nil
	case len(s) == len(DateLayout):
		parsed, err := ParseDate(s)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		*d = NewDate(t)
		return nil
	}
	if t, err := time.Parse(localDateTimeLayout, s); err == nil {
		*d = NewDate(t)
		return nil
	}
	return fmt.Errorf("invalid date %q", s)
}
