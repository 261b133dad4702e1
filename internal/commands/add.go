package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskmgr/internal/config"
	"taskmgr/internal/exitcode"
	"taskmgr/internal/service"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	project string
	due     string
	desc    string
}

// SetProject sets the project flag (for testing).
func (c *AddCmd) SetProject(ref string) {
	c.project = ref
}

// SetDue sets the due flag (for testing).
func (c *AddCmd) SetDue(due string) {
	c.due = due
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "taskmgr add [--project <project>] [--due YYYY-MM-DD] [--desc <text>] <title...>"
}
func (c *AddCmd) NeedsAuth() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.project, "project", "", "")
	fs.StringVar(&c.project, "p", "", "")
	fs.StringVar(&c.due, "due", "", "")
	fs.StringVar(&c.desc, "desc", "", "")
	fs.StringVar(&c.desc, "d", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	// Validate before any request
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		return reportError(errOut, &service.ValidationError{Field: "title"})
	}

	in := service.TaskInput{Title: title, Description: c.desc}
	if c.due != "" {
		d, err := service.ParseDate(c.due)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		in.DueDate = &d
	}

	proj, err := resolveProject(ctx, svc, projectRef(cfg, c.project, nil))
	if err != nil {
		return reportError(errOut, err)
	}

	task, err := svc.CreateTask(ctx, proj.ID, in)
	if err != nil {
		return reportError(errOut, err)
	}
	cfg.Log().Debug("task created", "id", task.ID, "project", proj.ID)

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
