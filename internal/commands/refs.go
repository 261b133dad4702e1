package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"taskmgr/internal/config"
	"taskmgr/internal/service"
)

// ErrTaskRefRequired indicates no task number was provided.
var ErrTaskRefRequired = errors.New("task number required")

// ErrProjectRequired indicates no project was given and no default is configured.
var ErrProjectRequired = errors.New("project required (use --project or set default_project)")

// ParseTaskNum parses a 1-based task number from args.
// Exactly one all-digit argument is accepted.
func ParseTaskNum(args []string) (int, error) {
	if len(args) == 0 {
		return 0, ErrTaskRefRequired
	}
	if len(args) > 1 {
		return 0, fmt.Errorf("too many arguments: %s", strings.Join(args[1:], " "))
	}
	ref := args[0]
	if !isAllDigits(ref) {
		return 0, fmt.Errorf("invalid task number: %s", ref)
	}
	n, err := strconv.Atoi(ref)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("task number out of range: %s", ref)
	}
	return n, nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// projectRef picks the project reference: the flag, else the joined
// positional args, else the configured default.
func projectRef(cfg *config.Config, flagValue string, args []string) string {
	if ref := strings.TrimSpace(flagValue); ref != "" {
		return ref
	}
	if ref := strings.TrimSpace(strings.Join(args, " ")); ref != "" {
		return ref
	}
	return strings.TrimSpace(cfg.DefaultProject)
}

// resolveProject resolves ref to a project, with user-facing errors.
func resolveProject(ctx context.Context, svc service.Service, ref string) (service.Project, error) {
	if ref == "" {
		return service.Project{}, &usageError{ErrProjectRequired}
	}
	p, err := service.ResolveProject(ctx, svc, ref)
	switch {
	case errors.Is(err, service.ErrNotFound):
		return service.Project{}, fmt.Errorf("project %w: %s", service.ErrNotFound, ref)
	case errors.Is(err, service.ErrAmbiguous):
		return service.Project{}, fmt.Errorf("%w project name: %s", service.ErrAmbiguous, ref)
	}
	return p, err
}

// findTaskByNumber returns the num-th task (1-based) of a project's
// unfiltered task list, as numbered by the tasks command.
func findTaskByNumber(ctx context.Context, svc service.Service, projectID int64, num int) (service.Task, error) {
	tasks, err := svc.ListTasks(ctx, projectID)
	if err != nil {
		return service.Task{}, err
	}
	if num < 1 || num > len(tasks) {
		return service.Task{}, &usageError{fmt.Errorf("task number out of range: %d", num)}
	}
	return tasks[num-1], nil
}

// lookupTask resolves the project and task number shared by done, toggle,
// edit and rm.
func lookupTask(ctx context.Context, cfg *config.Config, svc service.Service, projectFlag string, args []string) (service.Task, error) {
	num, err := ParseTaskNum(args)
	if err != nil {
		return service.Task{}, &usageError{err}
	}
	project, err := resolveProject(ctx, svc, projectRef(cfg, projectFlag, nil))
	if err != nil {
		return service.Task{}, err
	}
	return findTaskByNumber(ctx, svc, project.ID, num)
}

// usageError marks bad arguments; reported as a user error.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }
