// Package taskfilter partitions task lists by completion state.
package taskfilter

import (
	"strings"

	"taskmgr/internal/service"
)

// Mode selects which tasks a view shows.
type Mode string

const (
	All       Mode = "all"
	Pending   Mode = "pending"
	Completed Mode = "completed"
)

// ParseMode maps a user-supplied mode name to a Mode.
// ok is false for unrecognized names; the returned mode is then All.
func ParseMode(s string) (mode Mode, ok bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case All, "":
		return All, true
	case Pending:
		return Pending, true
	case Completed:
		return Completed, true
	}
	return All, false
}

// match reports whether t belongs in a view of mode.
// All and unrecognized modes match every task.
func match(mode Mode, t service.Task) bool {
	switch mode {
	case Completed:
		return t.Completed
	case Pending:
		return !t.Completed
	}
	return true
}

// Filter returns the tasks matching mode, preserving order.
// All and unrecognized modes return tasks unchanged.
func Filter(tasks []service.Task, mode Mode) []service.Task {
	if mode != Completed && mode != Pending {
		return tasks
	}
	out := make([]service.Task, 0, len(tasks))
	for _, t := range tasks {
		if match(mode, t) {
			out = append(out, t)
		}
	}
	return out
}

// Numbered is a task with its 1-based position in the unfiltered list.
type Numbered struct {
	Num  int
	Task service.Task
}

// FilterNumbered is like Filter but keeps each task's position in the
// original list, so references stay stable across views.
func FilterNumbered(tasks []service.Task, mode Mode) []Numbered {
	out := make([]Numbered, 0, len(tasks))
	for i, t := range tasks {
		if match(mode, t) {
			out = append(out, Numbered{Num: i + 1, Task: t})
		}
	}
	return out
}

// Counts returns the number of pending and completed tasks.
func Counts(tasks []service.Task) (pending, completed int) {
	for _, t := range tasks {
		if t.Completed {
			completed++
		} else {
			pending++
		}
	}
	return pending, completed
}
