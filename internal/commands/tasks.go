package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskmgr/internal/config"
	"taskmgr/internal/exitcode"
	"taskmgr/internal/output"
	"taskmgr/internal/service"
	"taskmgr/internal/taskfilter"
)

func init() {
	Register(&TasksCmd{})
}

// TasksCmd implements the tasks command.
type TasksCmd struct {
	project string
	filter  string
}

// SetFilter sets the filter flag (for testing).
func (c *TasksCmd) SetFilter(filter string) {
	c.filter = filter
}

func (c *TasksCmd) Name() string      { return "tasks" }
func (c *TasksCmd) Aliases() []string { return []string{"ls"} }
func (c *TasksCmd) Synopsis() string  { return "List a project's tasks" }
func (c *TasksCmd) Usage() string {
	return "taskmgr tasks [--filter all|pending|completed] [--project <project>] [<project>]"
}
func (c *TasksCmd) NeedsAuth() bool { return true }

func (c *TasksCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.project, "project", "", "")
	fs.StringVar(&c.project, "p", "", "")
	fs.StringVar(&c.filter, "filter", "", "")
	fs.StringVar(&c.filter, "f", "", "")
}

func (c *TasksCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	name := c.filter
	if name == "" {
		name = cfg.DefaultFilter
	}
	mode, ok := taskfilter.ParseMode(name)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown filter: %s (want all, pending or completed)\n", name)
		return exitcode.UserError
	}

	proj, err := resolveProject(ctx, svc, projectRef(cfg, c.project, args))
	if err != nil {
		return reportError(errOut, err)
	}
	tasks, err := svc.ListTasks(ctx, proj.ID)
	if err != nil {
		return reportError(errOut, err)
	}

	p := output.New(out)
	p.Header(proj.Title)
	shown := taskfilter.FilterNumbered(tasks, mode)
	if len(shown) == 0 {
		fmt.Fprintln(out, "no tasks")
		return exitcode.Success
	}
	p.Tasks(shown, cfg.Clock())
	return exitcode.Success
}
