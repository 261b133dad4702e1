// Package service defines the backend-agnostic interface for project and task operations.
package service

import (
	"context"
	"strconv"
	"strings"
)

// Service defines the interface for backend operations.
// All REST calls go through this interface.
// Commands never import the HTTP client directly.
type Service interface {
	// Login exchanges credentials for a token. No bearer token is sent.
	Login(ctx context.Context, email, password string) (AuthResult, error)

	// Register creates an account and returns a token for it.
	Register(ctx context.Context, reg Registration) (AuthResult, error)

	// Me returns the user the current token belongs to.
	Me(ctx context.Context) (User, error)

	// Refresh exchanges the current token for a fresh one.
	Refresh(ctx context.Context) (AuthResult, error)

	// ListProjects returns all projects in API order.
	ListProjects(ctx context.Context) ([]Project, error)

	GetProject(ctx context.Context, id int64) (Project, error)
	CreateProject(ctx context.Context, in ProjectInput) (Project, error)
	UpdateProject(ctx context.Context, id int64, in ProjectInput) (Project, error)
	DeleteProject(ctx context.Context, id int64) error

	// Progress returns the completion snapshot of a project.
	Progress(ctx context.Context, projectID int64) (Progress, error)

	// ListTasks returns a project's tasks in API order.
	ListTasks(ctx context.Context, projectID int64) ([]Task, error)

	GetTask(ctx context.Context, id int64) (Task, error)
	CreateTask(ctx context.Context, projectID int64, in TaskInput) (Task, error)
	UpdateTask(ctx context.Context, id int64, in TaskInput) (Task, error)
	DeleteTask(ctx context.Context, id int64) error

	// CompleteTask marks a task completed. Completing a completed task is a no-op.
	CompleteTask(ctx context.Context, id int64) (Task, error)

	// ToggleTask flips a task's completion state.
	ToggleTask(ctx context.Context, id int64) (Task, error)
}

// ResolveProject finds a project by numeric id or by title
// (case-insensitive, trimmed). Returns ErrNotFound or ErrAmbiguous.
func ResolveProject(ctx context.Context, svc Service, ref string) (Project, error) {
	ref = strings.TrimSpace(ref)
	projects, err := svc.ListProjects(ctx)
	if err != nil {
		return Project{}, err
	}

	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		for _, p := range projects {
			if p.ID == id {
				return p, nil
			}
		}
	}

	refLower := strings.ToLower(ref)
	var matches []Project
	for _, p := range projects {
		if strings.ToLower(strings.TrimSpace(p.Title)) == refLower {
			matches = append(matches, p)
		}
	}

	switch len(matches) {
	case 0:
		return Project{}, ErrNotFound
	case 1:
		return matches[0], nil
	default:
		return Project{}, ErrAmbiguous
	}
}
