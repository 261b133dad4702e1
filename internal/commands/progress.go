package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskmgr/internal/config"
	"taskmgr/internal/dashboard"
	"taskmgr/internal/exitcode"
	"taskmgr/internal/output"
	"taskmgr/internal/progress"
	"taskmgr/internal/service"
)

func init() {
	Register(&ProgressCmd{})
	Register(&DashboardCmd{})
}

// ProgressCmd implements the progress command.
type ProgressCmd struct {
	project string
}

func (c *ProgressCmd) Name() string      { return "progress" }
func (c *ProgressCmd) Aliases() []string { return nil }
func (c *ProgressCmd) Synopsis() string  { return "Show a project's completion" }
func (c *ProgressCmd) Usage() string     { return "taskmgr progress [--project <project>] [<project>]" }
func (c *ProgressCmd) NeedsAuth() bool   { return true }

func (c *ProgressCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.project, "project", "", "")
	fs.StringVar(&c.project, "p", "", "")
}

func (c *ProgressCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	proj, err := resolveProject(ctx, svc, projectRef(cfg, c.project, args))
	if err != nil {
		return reportError(errOut, err)
	}

	snap, err := svc.Progress(ctx, proj.ID)
	if err != nil {
		// Fall back to counting tasks locally
		cfg.Log().Debug("progress endpoint failed", "project", proj.ID, "err", err)
		tasks, lerr := svc.ListTasks(ctx, proj.ID)
		if lerr != nil {
			return reportError(errOut, err)
		}
		snap = progress.FromTasks(tasks)
	}

	p := output.New(out)
	fmt.Fprintln(out, p.Bar(progress.Of(snap, cfg.TrustServerPercentage()), snap.CompletedTasks, snap.TotalTasks))
	return exitcode.Success
}

// DashboardCmd implements the dashboard command, the default when no
// command is given.
type DashboardCmd struct{}

func (c *DashboardCmd) Name() string      { return "dashboard" }
func (c *DashboardCmd) Aliases() []string { return []string{"stats"} }
func (c *DashboardCmd) Synopsis() string  { return "Show totals across all projects" }
func (c *DashboardCmd) Usage() string     { return "taskmgr dashboard" }
func (c *DashboardCmd) NeedsAuth() bool   { return true }

func (c *DashboardCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DashboardCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	stats, err := dashboard.Load(ctx, svc, cfg.Log())
	if err != nil {
		return reportError(errOut, err)
	}

	output.New(out).Dashboard(stats.Summary)
	if stats.Failed > 0 {
		fmt.Fprintf(errOut, "warning: progress unavailable for %d project(s)\n", stats.Failed)
	}
	return exitcode.Success
}
