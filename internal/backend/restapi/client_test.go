package restapi_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"taskmgr/internal/backend/restapi"
	"taskmgr/internal/config"
	"taskmgr/internal/service"
	"taskmgr/internal/session"
	"taskmgr/internal/testutil"
)

func setup(t *testing.T, token string) (*restapi.Client, *testutil.FakeAPI, *session.Store) {
	t.Helper()
	svc := testutil.NewFakeService()
	api := testutil.NewFakeAPI(svc)
	t.Cleanup(api.Close)

	cfg, _ := config.New(t.TempDir())
	cfg.APIURL = api.URL
	cfg.Timeout = 2 * time.Second

	store := session.NewMemory(session.Credentials{Token: token})
	return restapi.NewWithHTTPClient(cfg, store, api.Client()), api, store
}

func TestLogin_NoBearerToken(t *testing.T) {
	c, api, _ := setup(t, "")
	api.Svc.AddUser("a@b.c", "secret")

	res, err := c.Login(context.Background(), "a@b.c", "secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Token != "fake-token" || res.Email != "a@b.c" {
		t.Errorf("unexpected result: %+v", res)
	}
	if h := api.LastHeaders().Get("Authorization"); h != "" {
		t.Errorf("login must not send Authorization, got %q", h)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	c, api, _ := setup(t, "")
	api.Svc.AddUser("a@b.c", "secret")

	_, err := c.Login(context.Background(), "a@b.c", "wrong")
	var ce *service.ClientError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ClientError, got %v", err)
	}
	if ce.Status != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", ce.Status)
	}
	if ce.Message != "Invalid email or password" {
		t.Errorf("unexpected message %q", ce.Message)
	}
}

func TestAuthedRequest_SendsBearerAndRequestID(t *testing.T) {
	c, api, _ := setup(t, "fake-token")
	api.Svc.AddProject("Home")

	projects, err := c.ListProjects(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(projects) != 1 || projects[0].Title != "Home" {
		t.Errorf("unexpected projects: %+v", projects)
	}

	h := api.LastHeaders()
	if got := h.Get("Authorization"); got != "Bearer fake-token" {
		t.Errorf("expected bearer header, got %q", got)
	}
	if _, err := uuid.Parse(h.Get(restapi.RequestIDHeader)); err != nil {
		t.Errorf("expected uuid request id, got %q", h.Get(restapi.RequestIDHeader))
	}
}

func TestUnauthorized_ClearsSession(t *testing.T) {
	c, _, store := setup(t, "stale-token")

	var states []session.State
	store.Subscribe(func(s session.State) { states = append(states, s) })

	_, err := c.ListProjects(context.Background())
	if !service.IsUnauthorized(err) {
		t.Fatalf("expected 401, got %v", err)
	}
	if store.State() != session.Unauthenticated {
		t.Error("expected session cleared after 401")
	}
	if len(states) != 1 || states[0] != session.Unauthenticated {
		t.Errorf("expected one transition to unauthenticated, got %v", states)
	}

	// subsequent calls fail locally without a request
	_, err = c.ListProjects(context.Background())
	if !service.IsUnauthorized(err) {
		t.Errorf("expected local not-logged-in error, got %v", err)
	}
}

func TestServerError(t *testing.T) {
	c, api, _ := setup(t, "fake-token")
	api.SetFail(http.StatusBadGateway)

	_, err := c.ListProjects(context.Background())
	var se *service.ServerError
	if !errors.As(err, &se) {
		t.Fatalf("expected ServerError, got %v", err)
	}
	if se.Status != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", se.Status)
	}
}

func TestNetworkError(t *testing.T) {
	c, api, _ := setup(t, "fake-token")
	api.Close()

	_, err := c.ListProjects(context.Background())
	var ne *service.NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
}

func TestProjectLifecycle(t *testing.T) {
	c, _, _ := setup(t, "fake-token")
	ctx := context.Background()

	p, err := c.CreateProject(ctx, service.ProjectInput{Title: "Garden", Description: "spring"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID == 0 || p.Title != "Garden" {
		t.Fatalf("unexpected project: %+v", p)
	}

	p, err = c.UpdateProject(ctx, p.ID, service.ProjectInput{Title: "Yard"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if p.Title != "Yard" {
		t.Errorf("expected updated title, got %q", p.Title)
	}

	got, err := c.GetProject(ctx, p.ID)
	if err != nil || got.Title != "Yard" {
		t.Errorf("get: %+v, %v", got, err)
	}

	if err := c.DeleteProject(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := c.GetProject(ctx, p.ID); !service.IsNotFound(err) {
		t.Errorf("expected not found after delete, got %v", err)
	}
}

func TestTaskLifecycle(t *testing.T) {
	c, api, _ := setup(t, "fake-token")
	ctx := context.Background()
	pid := api.Svc.AddProject("Home")

	due, _ := service.ParseDate("2024-05-01")
	task, err := c.CreateTask(ctx, pid, service.TaskInput{Title: "Paint fence", DueDate: &due})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.DueDate == nil || task.DueDate.String() != "2024-05-01" {
		t.Errorf("expected due date round trip, got %v", task.DueDate)
	}

	tasks, err := c.ListTasks(ctx, pid)
	if err != nil || len(tasks) != 1 {
		t.Fatalf("list: %v, %v", tasks, err)
	}
	if tasks[0].ProjectID != pid {
		t.Errorf("expected project id %d, got %d", pid, tasks[0].ProjectID)
	}

	done, err := c.CompleteTask(ctx, task.ID)
	if err != nil || !done.Completed {
		t.Fatalf("complete: %+v, %v", done, err)
	}
	toggled, err := c.ToggleTask(ctx, task.ID)
	if err != nil || toggled.Completed {
		t.Fatalf("toggle: %+v, %v", toggled, err)
	}

	updated, err := c.UpdateTask(ctx, task.ID, service.TaskInput{Title: "Paint gate"})
	if err != nil || updated.Title != "Paint gate" || updated.DueDate != nil {
		t.Fatalf("update: %+v, %v", updated, err)
	}

	prog, err := c.Progress(ctx, pid)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if prog.TotalTasks != 1 || prog.CompletedTasks != 0 || prog.Percentage == nil {
		t.Errorf("unexpected progress: %+v", prog)
	}

	if err := c.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := c.GetTask(ctx, task.ID); !service.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}

	want := []string{
		"POST /projects/1/tasks",
		"GET /projects/1/tasks",
		"PUT /tasks/2/complete",
		"PUT /tasks/2/toggle",
		"PUT /tasks/2",
		"GET /projects/1/progress",
		"DELETE /tasks/2",
		"GET /tasks/2",
	}
	seen := api.Seen()
	if len(seen) != len(want) {
		t.Fatalf("expected %d requests, got %v", len(want), seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("request %d: expected %q, got %q", i, want[i], seen[i])
		}
	}
}

func TestRegisterMeRefresh(t *testing.T) {
	c, api, store := setup(t, "")
	ctx := context.Background()

	res, err := c.Register(ctx, service.Registration{Email: "n@e.w", Password: "pw", FirstName: "N"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := store.Set(session.Credentials{Token: res.Token, Email: res.Email}); err != nil {
		t.Fatal(err)
	}

	api.Svc.CurrentUser = service.User{Email: "n@e.w"}
	u, err := c.Me(ctx)
	if err != nil || u.Email != "n@e.w" {
		t.Fatalf("me: %+v, %v", u, err)
	}

	r, err := c.Refresh(ctx)
	if err != nil || r.Token != "fake-token" {
		t.Fatalf("refresh: %+v, %v", r, err)
	}

	_, err = c.Register(ctx, service.Registration{Email: "n@e.w", Password: "pw"})
	var ce *service.ClientError
	if !errors.As(err, &ce) || ce.Status != http.StatusConflict {
		t.Errorf("expected 409 on duplicate register, got %v", err)
	}
}

// rawServer serves handler and returns a client logged in with a plain token.
func rawServer(t *testing.T, handler http.HandlerFunc) *restapi.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg, _ := config.New(t.TempDir())
	cfg.APIURL = srv.URL
	cfg.Timeout = 2 * time.Second
	return restapi.NewWithHTTPClient(cfg, session.NewMemory(session.Credentials{Token: "tok"}), srv.Client())
}

func TestListTasks_LenientDueDates(t *testing.T) {
	c := rawServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[{"id":1,"title":"a","dueDate":""},`+
			`{"id":2,"title":"b","dueDate":"2024-03-10T00:00:00"},`+
			`{"id":3,"title":"c","dueDate":null}]`)
	})

	tasks, err := c.ListTasks(context.Background(), 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}
	if tasks[0].DueDate != nil {
		t.Errorf("empty due date should decode as none, got %v", tasks[0].DueDate)
	}
	if tasks[1].DueDate == nil || tasks[1].DueDate.String() != "2024-03-10" {
		t.Errorf("expected 2024-03-10, got %v", tasks[1].DueDate)
	}
	if tasks[2].DueDate != nil {
		t.Errorf("null due date should decode as none, got %v", tasks[2].DueDate)
	}
}

func TestUpdateTask_ClearingDueDateSendsNull(t *testing.T) {
	var body string
	c := rawServer(t, func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":7,"title":"a"}`)
	})

	if _, err := c.UpdateTask(context.Background(), 7, service.TaskInput{Title: "a"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	want := `{"title":"a","dueDate":null}`
	if body != want {
		t.Errorf("expected body %s, got %s", want, body)
	}
}
