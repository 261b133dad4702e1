package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskmgr/internal/config"
	"taskmgr/internal/dashboard"
	"taskmgr/internal/exitcode"
	"taskmgr/internal/output"
	"taskmgr/internal/progress"
	"taskmgr/internal/service"
	"taskmgr/internal/taskfilter"
)

func init() {
	Register(&ProjectsCmd{})
	Register(&NewProjectCmd{})
	Register(&ShowProjectCmd{})
	Register(&EditProjectCmd{})
	Register(&RmProjectCmd{})
}

// ProjectsCmd implements the projects command.
type ProjectsCmd struct{}

func (c *ProjectsCmd) Name() string      { return "projects" }
func (c *ProjectsCmd) Aliases() []string { return nil }
func (c *ProjectsCmd) Synopsis() string  { return "List projects with progress" }
func (c *ProjectsCmd) Usage() string     { return "taskmgr projects" }
func (c *ProjectsCmd) NeedsAuth() bool   { return true }

func (c *ProjectsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ProjectsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	stats, err := dashboard.Load(ctx, svc, cfg.Log())
	if err != nil {
		return reportError(errOut, err)
	}

	if len(stats.Projects) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no projects")
		}
		return exitcode.Success
	}

	p := output.New(out)
	trust := cfg.TrustServerPercentage()
	for _, row := range stats.Projects {
		p.Project(row.Project, progress.Of(row.Progress, trust), row.Progress)
	}
	if stats.Failed > 0 {
		fmt.Fprintf(errOut, "warning: progress unavailable for %d project(s)\n", stats.Failed)
	}
	return exitcode.Success
}

// NewProjectCmd implements the newproject command.
type NewProjectCmd struct {
	desc string
}

func (c *NewProjectCmd) Name() string      { return "newproject" }
func (c *NewProjectCmd) Aliases() []string { return []string{"addproject"} }
func (c *NewProjectCmd) Synopsis() string  { return "Create a project" }
func (c *NewProjectCmd) Usage() string     { return "taskmgr newproject [--desc <text>] <title...>" }
func (c *NewProjectCmd) NeedsAuth() bool   { return true }

func (c *NewProjectCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.desc, "desc", "", "")
	fs.StringVar(&c.desc, "d", "", "")
}

func (c *NewProjectCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		return reportError(errOut, &service.ValidationError{Field: "title"})
	}

	proj, err := svc.CreateProject(ctx, service.ProjectInput{Title: title, Description: c.desc})
	if err != nil {
		return reportError(errOut, err)
	}
	cfg.Log().Debug("project created", "id", proj.ID)

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// ShowProjectCmd implements the showproject command.
type ShowProjectCmd struct{}

func (c *ShowProjectCmd) Name() string      { return "showproject" }
func (c *ShowProjectCmd) Aliases() []string { return nil }
func (c *ShowProjectCmd) Synopsis() string  { return "Show a project and its progress" }
func (c *ShowProjectCmd) Usage() string     { return "taskmgr showproject <project>" }
func (c *ShowProjectCmd) NeedsAuth() bool   { return true }

func (c *ShowProjectCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ShowProjectCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	proj, err := resolveProject(ctx, svc, projectRef(cfg, "", args))
	if err != nil {
		return reportError(errOut, err)
	}
	snap, err := svc.Progress(ctx, proj.ID)
	if err != nil {
		return reportError(errOut, err)
	}

	output.New(out).ProjectDetail(proj, progress.Of(snap, cfg.TrustServerPercentage()), snap)
	return exitcode.Success
}

// EditProjectCmd implements the editproject command.
type EditProjectCmd struct {
	title string
	desc  string
	set   map[string]bool
}

func (c *EditProjectCmd) Name() string      { return "editproject" }
func (c *EditProjectCmd) Aliases() []string { return nil }
func (c *EditProjectCmd) Synopsis() string  { return "Rename a project or change its description" }
func (c *EditProjectCmd) Usage() string {
	return "taskmgr editproject [--title <title>] [--desc <text>] <project>"
}
func (c *EditProjectCmd) NeedsAuth() bool { return true }

func (c *EditProjectCmd) RegisterFlags(fs *flag.FlagSet) {
	c.set = make(map[string]bool)
	fs.Func("title", "", func(v string) error { c.title, c.set["title"] = v, true; return nil })
	fs.Func("desc", "", func(v string) error { c.desc, c.set["desc"] = v, true; return nil })
}

func (c *EditProjectCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		return reportError(errOut, &usageError{ErrProjectRequired})
	}
	if !c.set["title"] && !c.set["desc"] {
		fmt.Fprintln(errOut, "error: nothing to change (use --title or --desc)")
		return exitcode.UserError
	}

	proj, err := resolveProject(ctx, svc, projectRef(cfg, "", args))
	if err != nil {
		return reportError(errOut, err)
	}

	in := service.ProjectInput{Title: proj.Title, Description: proj.Description}
	if c.set["title"] {
		in.Title = strings.TrimSpace(c.title)
		if in.Title == "" {
			return reportError(errOut, &service.ValidationError{Field: "title"})
		}
	}
	if c.set["desc"] {
		in.Description = c.desc
	}

	if _, err := svc.UpdateProject(ctx, proj.ID, in); err != nil {
		return reportError(errOut, err)
	}
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// RmProjectCmd implements the rmproject command.
type RmProjectCmd struct {
	force bool
}

// SetForce sets the force flag (for testing).
func (c *RmProjectCmd) SetForce(force bool) {
	c.force = force
}

func (c *RmProjectCmd) Name() string      { return "rmproject" }
func (c *RmProjectCmd) Aliases() []string { return nil }
func (c *RmProjectCmd) Synopsis() string  { return "Delete a project" }
func (c *RmProjectCmd) Usage() string     { return "taskmgr rmproject [--force] <project>" }
func (c *RmProjectCmd) NeedsAuth() bool   { return true }

func (c *RmProjectCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.force, "force", false, "")
}

func (c *RmProjectCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		return reportError(errOut, &usageError{ErrProjectRequired})
	}
	proj, err := resolveProject(ctx, svc, projectRef(cfg, "", args))
	if err != nil {
		return reportError(errOut, err)
	}

	// Refuse while pending tasks remain (unless --force)
	if !c.force {
		tasks, err := svc.ListTasks(ctx, proj.ID)
		if err != nil {
			return reportError(errOut, err)
		}
		if pending, _ := taskfilter.Counts(tasks); pending > 0 {
			fmt.Fprintf(errOut, "error: project has %d pending task(s) (use --force)\n", pending)
			return exitcode.UserError
		}
	}

	if err := svc.DeleteProject(ctx, proj.ID); err != nil {
		return reportError(errOut, err)
	}
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
