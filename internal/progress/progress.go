// Package progress derives completion percentages for projects.
package progress

import (
	"math"

	"taskmgr/internal/service"
)

// Compute returns the completion percentage in [0,100].
//
// A non-nil percentage is authoritative: it is clamped, then rounded.
// Otherwise the percentage is derived from the counts, and is 0 for an
// empty project.
func Compute(total, completed int, percentage *float64) int {
	if percentage != nil && !math.IsNaN(*percentage) {
		return int(math.Round(clamp(*percentage)))
	}
	if total > 0 {
		return int(clamp(math.Round(float64(completed) / float64(total) * 100)))
	}
	return 0
}

// Of computes the percentage of a snapshot. When trustServer is false the
// server's percentage is ignored and recomputed from the counts.
func Of(p service.Progress, trustServer bool) int {
	if !trustServer {
		return Compute(p.TotalTasks, p.CompletedTasks, nil)
	}
	return Compute(p.TotalTasks, p.CompletedTasks, p.Percentage)
}

// FromTasks builds a snapshot by counting tasks locally.
func FromTasks(tasks []service.Task) service.Progress {
	var p service.Progress
	p.TotalTasks = len(tasks)
	for _, t := range tasks {
		if t.Completed {
			p.CompletedTasks++
		}
	}
	return p
}

// Summary aggregates snapshots across projects.
type Summary struct {
	Projects       int
	TotalTasks     int
	CompletedTasks int
	Percentage     int
}

// Sum combines snapshots. The percentage is always recomputed from the
// summed counts; per-project percentages are not averaged.
func Sum(snapshots []service.Progress) Summary {
	s := Summary{Projects: len(snapshots)}
	for _, p := range snapshots {
		s.TotalTasks += p.TotalTasks
		s.CompletedTasks += p.CompletedTasks
	}
	s.Percentage = Compute(s.TotalTasks, s.CompletedTasks, nil)
	return s
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
