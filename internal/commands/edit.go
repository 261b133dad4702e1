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
	Register(&EditCmd{})
}

// EditCmd implements the edit command.
// Only flags that were given change the task; --due none clears the date.
type EditCmd struct {
	project string
	title   *string
	desc    *string
	due     *string
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Change a task's title, description or due date" }
func (c *EditCmd) Usage() string {
	return "taskmgr edit [--project <project>] [--title <title>] [--desc <text>] [--due YYYY-MM-DD|none] <n>"
}
func (c *EditCmd) NeedsAuth() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	c.title, c.desc, c.due = nil, nil, nil
	fs.StringVar(&c.project, "project", "", "")
	fs.StringVar(&c.project, "p", "", "")
	fs.Func("title", "", func(v string) error { c.title = &v; return nil })
	fs.Func("desc", "", func(v string) error { c.desc = &v; return nil })
	fs.Func("due", "", func(v string) error { c.due = &v; return nil })
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if c.title == nil && c.desc == nil && c.due == nil {
		fmt.Fprintln(errOut, "error: nothing to change (use --title, --desc or --due)")
		return exitcode.UserError
	}

	// Validate flag values before any request
	var newDue *service.Date
	clearDue := false
	if c.due != nil {
		if strings.EqualFold(strings.TrimSpace(*c.due), "none") {
			clearDue = true
		} else {
			d, err := service.ParseDate(*c.due)
			if err != nil {
				fmt.Fprintf(errOut, "error: %v\n", err)
				return exitcode.UserError
			}
			newDue = &d
		}
	}
	if c.title != nil && strings.TrimSpace(*c.title) == "" {
		return reportError(errOut, &service.ValidationError{Field: "title"})
	}

	task, err := lookupTask(ctx, cfg, svc, c.project, args)
	if err != nil {
		return reportError(errOut, err)
	}

	in := service.TaskInput{Title: task.Title, Description: task.Description, DueDate: task.DueDate}
	if c.title != nil {
		in.Title = strings.TrimSpace(*c.title)
	}
	if c.desc != nil {
		in.Description = *c.desc
	}
	switch {
	case clearDue:
		in.DueDate = nil
	case newDue != nil:
		in.DueDate = newDue
	}

	if _, err := svc.UpdateTask(ctx, task.ID, in); err != nil {
		return reportError(errOut, err)
	}
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
