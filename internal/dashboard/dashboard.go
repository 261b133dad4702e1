// Package dashboard aggregates progress across all projects.
package dashboard

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"taskmgr/internal/progress"
	"taskmgr/internal/service"
)

// MaxConcurrent bounds the number of in-flight progress requests.
const MaxConcurrent = 8

// ProjectProgress is one project's row in the dashboard.
type ProjectProgress struct {
	Project  service.Project
	Progress service.Progress
	// Err is set when the progress fetch failed; Progress is then zero.
	Err error
}

// Stats is the aggregate over all projects.
type Stats struct {
	progress.Summary
	Projects []ProjectProgress
	Failed   int
}

// Load fetches every project's progress concurrently and sums the results.
// A failed per-project fetch contributes zero instead of failing the whole
// load; only a failure to list projects is returned as an error.
func Load(ctx context.Context, svc service.Service, log *slog.Logger) (Stats, error) {
	projects, err := svc.ListProjects(ctx)
	if err != nil {
		return Stats{}, err
	}
	if len(projects) == 0 {
		return Stats{}, nil
	}

	rows := make([]ProjectProgress, len(projects))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(MaxConcurrent)
	for i, p := range projects {
		rows[i].Project = p
		g.Go(func() error {
			prog, err := svc.Progress(gctx, p.ID)
			if err != nil {
				log.Debug("progress fetch failed", "project", p.ID, "err", err)
				rows[i].Err = err
				return nil
			}
			rows[i].Progress = prog
			return nil
		})
	}
	// workers never return an error
	_ = g.Wait()

	snapshots := make([]service.Progress, len(rows))
	var failed int
	for i, r := range rows {
		snapshots[i] = r.Progress
		if r.Err != nil {
			failed++
		}
	}

	return Stats{
		Summary:  progress.Sum(snapshots),
		Projects: rows,
		Failed:   failed,
	}, nil
}
