package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskmgr/internal/config"
	"taskmgr/internal/exitcode"
	"taskmgr/internal/service"
)

func init() {
	Register(&DoneCmd{})
	Register(&ToggleCmd{})
}

// DoneCmd implements the done command.
type DoneCmd struct {
	project string
}

// SetProject sets the project flag (for testing).
func (c *DoneCmd) SetProject(ref string) {
	c.project = ref
}

func (c *DoneCmd) Name() string      { return "done" }
func (c *DoneCmd) Aliases() []string { return []string{"complete"} }
func (c *DoneCmd) Synopsis() string  { return "Mark a task completed" }
func (c *DoneCmd) Usage() string     { return "taskmgr done [--project <project>] <n>" }
func (c *DoneCmd) NeedsAuth() bool   { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.project, "project", "", "")
	fs.StringVar(&c.project, "p", "", "")
}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	task, err := lookupTask(ctx, cfg, svc, c.project, args)
	if err != nil {
		return reportError(errOut, err)
	}

	// Completing a completed task is a no-op
	if !task.Completed {
		if _, err := svc.CompleteTask(ctx, task.ID); err != nil {
			return reportError(errOut, err)
		}
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// ToggleCmd implements the toggle command.
type ToggleCmd struct {
	project string
}

// SetProject sets the project flag (for testing).
func (c *ToggleCmd) SetProject(ref string) {
	c.project = ref
}

func (c *ToggleCmd) Name() string      { return "toggle" }
func (c *ToggleCmd) Aliases() []string { return []string{"undo"} }
func (c *ToggleCmd) Synopsis() string  { return "Flip a task between pending and completed" }
func (c *ToggleCmd) Usage() string     { return "taskmgr toggle [--project <project>] <n>" }
func (c *ToggleCmd) NeedsAuth() bool   { return true }

func (c *ToggleCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.project, "project", "", "")
	fs.StringVar(&c.project, "p", "", "")
}

func (c *ToggleCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	task, err := lookupTask(ctx, cfg, svc, c.project, args)
	if err != nil {
		return reportError(errOut, err)
	}

	updated, err := svc.ToggleTask(ctx, task.ID)
	if err != nil {
		return reportError(errOut, err)
	}

	if !cfg.Quiet {
		if updated.Completed {
			fmt.Fprintln(out, "completed")
		} else {
			fmt.Fprintln(out, "pending")
		}
	}
	return exitcode.Success
}
