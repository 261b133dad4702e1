// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"sync"

	"taskmgr/internal/service"
)

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu       sync.RWMutex
	projects []service.Project
	tasks    []service.Task
	progress map[int64]service.Progress // overrides computed progress
	users    map[string]fakeUser
	nextID   int64

	// Token is returned by Login, Register and Refresh.
	Token string
	// CurrentUser is returned by Me.
	CurrentUser service.User

	// Error injection for testing
	LoginErr         error
	RegisterErr      error
	MeErr            error
	RefreshErr       error
	ListProjectsErr  error
	CreateProjectErr error
	UpdateProjectErr error
	DeleteProjectErr error
	ProgressErr      map[int64]error // projectID -> error
	ListTasksErr     error
	CreateTaskErr    error
	UpdateTaskErr    error
	DeleteTaskErr    error
	CompleteTaskErr  error
	ToggleTaskErr    error

	// Calls counts invocations per method name.
	Calls map[string]int
}

type fakeUser struct {
	password string
	user     service.User
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		progress:    make(map[int64]service.Progress),
		users:       make(map[string]fakeUser),
		ProgressErr: make(map[int64]error),
		Calls:       make(map[string]int),
		Token:       "fake-token",
	}
}

// AddUser registers an account that Login accepts.
func (f *FakeService) AddUser(email, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[email] = fakeUser{password: password, user: service.User{Email: email}}
}

// AddProject adds a project and returns its id.
func (f *FakeService) AddProject(title string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.projects = append(f.projects, service.Project{ID: f.nextID, Title: title})
	return f.nextID
}

// AddTask adds a task to a project and returns its id.
func (f *FakeService) AddTask(projectID int64, title string, completed bool, dueDate *service.Date) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.tasks = append(f.tasks, service.Task{
		ID:        f.nextID,
		ProjectID: projectID,
		Title:     title,
		DueDate:   dueDate,
		Completed: completed,
	})
	return f.nextID
}

// SetProgress makes Progress return p for projectID instead of counting tasks.
func (f *FakeService) SetProgress(projectID int64, p service.Progress) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.progress[projectID] = p
}

// Task returns a task by id for assertions.
func (f *FakeService) Task(id int64) (service.Task, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, t := range f.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return service.Task{}, false
}

// Projects returns a copy of all projects for assertions.
func (f *FakeService) Projects() []service.Project {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.Project, len(f.projects))
	copy(out, f.projects)
	return out
}

func (f *FakeService) called(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls[name]++
}

// Login implements service.Service.
func (f *FakeService) Login(ctx context.Context, email, password string) (service.AuthResult, error) {
	f.called("Login")
	if f.LoginErr != nil {
		return service.AuthResult{}, f.LoginErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	u, ok := f.users[email]
	if !ok || u.password != password {
		return service.AuthResult{}, &service.ClientError{Status: 401, Message: "Invalid email or password"}
	}
	return service.AuthResult{Token: f.Token, Email: email}, nil
}

// Register implements service.Service.
func (f *FakeService) Register(ctx context.Context, reg service.Registration) (service.AuthResult, error) {
	f.called("Register")
	if f.RegisterErr != nil {
		return service.AuthResult{}, f.RegisterErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.users[reg.Email]; exists {
		return service.AuthResult{}, &service.ClientError{Status: 409, Message: "User with email " + reg.Email + " already exists"}
	}
	f.users[reg.Email] = fakeUser{
		password: reg.Password,
		user:     service.User{Email: reg.Email, FirstName: reg.FirstName, LastName: reg.LastName},
	}
	return service.AuthResult{Token: f.Token, Email: reg.Email}, nil
}

// Me implements service.Service.
func (f *FakeService) Me(ctx context.Context) (service.User, error) {
	f.called("Me")
	if f.MeErr != nil {
		return service.User{}, f.MeErr
	}
	return f.CurrentUser, nil
}

// Refresh implements service.Service.
func (f *FakeService) Refresh(ctx context.Context) (service.AuthResult, error) {
	f.called("Refresh")
	if f.RefreshErr != nil {
		return service.AuthResult{}, f.RefreshErr
	}
	return service.AuthResult{Token: f.Token, Email: f.CurrentUser.Email}, nil
}

// ListProjects implements service.Service.
func (f *FakeService) ListProjects(ctx context.Context) ([]service.Project, error) {
	f.called("ListProjects")
	if f.ListProjectsErr != nil {
		return nil, f.ListProjectsErr
	}
	return f.Projects(), nil
}

// GetProject implements service.Service.
func (f *FakeService) GetProject(ctx context.Context, id int64) (service.Project, error) {
	f.called("GetProject")
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, p := range f.projects {
		if p.ID == id {
			return p, nil
		}
	}
	return service.Project{}, notFound()
}

// CreateProject implements service.Service.
func (f *FakeService) CreateProject(ctx context.Context, in service.ProjectInput) (service.Project, error) {
	f.called("CreateProject")
	if f.CreateProjectErr != nil {
		return service.Project{}, f.CreateProjectErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p := service.Project{ID: f.nextID, Title: in.Title, Description: in.Description}
	f.projects = append(f.projects, p)
	return p, nil
}

// UpdateProject implements service.Service.
func (f *FakeService) UpdateProject(ctx context.Context, id int64, in service.ProjectInput) (service.Project, error) {
	f.called("UpdateProject")
	if f.UpdateProjectErr != nil {
		return service.Project{}, f.UpdateProjectErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.projects {
		if p.ID == id {
			f.projects[i].Title = in.Title
			f.projects[i].Description = in.Description
			return f.projects[i], nil
		}
	}
	return service.Project{}, notFound()
}

// DeleteProject implements service.Service. Tasks of the project go with it.
func (f *FakeService) DeleteProject(ctx context.Context, id int64) error {
	f.called("DeleteProject")
	if f.DeleteProjectErr != nil {
		return f.DeleteProjectErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.projects {
		if p.ID == id {
			f.projects = append(f.projects[:i], f.projects[i+1:]...)
			kept := f.tasks[:0]
			for _, t := range f.tasks {
				if t.ProjectID != id {
					kept = append(kept, t)
				}
			}
			f.tasks = kept
			return nil
		}
	}
	return notFound()
}

// Progress implements service.Service.
// Counts tasks unless SetProgress was called for the project.
func (f *FakeService) Progress(ctx context.Context, projectID int64) (service.Progress, error) {
	f.called("Progress")
	if err, ok := f.ProgressErr[projectID]; ok && err != nil {
		return service.Progress{}, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if p, ok := f.progress[projectID]; ok {
		return p, nil
	}
	if !f.hasProject(projectID) {
		return service.Progress{}, notFound()
	}
	var p service.Progress
	for _, t := range f.tasks {
		if t.ProjectID != projectID {
			continue
		}
		p.TotalTasks++
		if t.Completed {
			p.CompletedTasks++
		}
	}
	pct := 0.0
	if p.TotalTasks > 0 {
		pct = float64(p.CompletedTasks) / float64(p.TotalTasks) * 100
	}
	p.Percentage = &pct
	return p, nil
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context, projectID int64) ([]service.Task, error) {
	f.called("ListTasks")
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if !f.hasProject(projectID) {
		return nil, notFound()
	}
	var out []service.Task
	for _, t := range f.tasks {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out, nil
}

// GetTask implements service.Service.
func (f *FakeService) GetTask(ctx context.Context, id int64) (service.Task, error) {
	f.called("GetTask")
	if t, ok := f.Task(id); ok {
		return t, nil
	}
	return service.Task{}, notFound()
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, projectID int64, in service.TaskInput) (service.Task, error) {
	f.called("CreateTask")
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.hasProject(projectID) {
		return service.Task{}, notFound()
	}
	f.nextID++
	t := service.Task{
		ID:          f.nextID,
		ProjectID:   projectID,
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
	}
	f.tasks = append(f.tasks, t)
	return t, nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, id int64, in service.TaskInput) (service.Task, error) {
	f.called("UpdateTask")
	if f.UpdateTaskErr != nil {
		return service.Task{}, f.UpdateTaskErr
	}
	return f.mutateTask(id, func(t *service.Task) {
		t.Title = in.Title
		t.Description = in.Description
		t.DueDate = in.DueDate
	})
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id int64) error {
	f.called("DeleteTask")
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return notFound()
}

// CompleteTask implements service.Service.
func (f *FakeService) CompleteTask(ctx context.Context, id int64) (service.Task, error) {
	f.called("CompleteTask")
	if f.CompleteTaskErr != nil {
		return service.Task{}, f.CompleteTaskErr
	}
	return f.mutateTask(id, func(t *service.Task) { t.Completed = true })
}

// ToggleTask implements service.Service.
func (f *FakeService) ToggleTask(ctx context.Context, id int64) (service.Task, error) {
	f.called("ToggleTask")
	if f.ToggleTaskErr != nil {
		return service.Task{}, f.ToggleTaskErr
	}
	return f.mutateTask(id, func(t *service.Task) { t.Completed = !t.Completed })
}

func (f *FakeService) mutateTask(id int64, fn func(*service.Task)) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			fn(&f.tasks[i])
			return f.tasks[i], nil
		}
	}
	return service.Task{}, notFound()
}

func (f *FakeService) hasProject(id int64) bool {
	for _, p := range f.projects {
		if p.ID == id {
			return true
		}
	}
	return false
}

func notFound() error {
	return &service.ClientError{Status: 404, Message: "Not Found"}
}
