package testutil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/mux"

	"taskmgr/internal/service"
)

// FakeAPI serves the REST API over HTTP, backed by a FakeService.
type FakeAPI struct {
	*httptest.Server
	Svc *FakeService

	mu sync.Mutex
	// Requests records every request as "METHOD /path".
	Requests []string
	// Headers records the headers of the last request.
	Headers http.Header
	// Fail, when set, makes every route reply with this status.
	Fail int
}

// NewFakeAPI starts a server backed by svc. Authenticated routes require
// "Authorization: Bearer <svc.Token>". Close it with t.Cleanup(api.Close).
func NewFakeAPI(svc *FakeService) *FakeAPI {
	api := &FakeAPI{Svc: svc}

	r := mux.NewRouter()
	r.Use(api.record)

	r.HandleFunc("/auth/login", api.login).Methods(http.MethodPost)
	r.HandleFunc("/auth/register", api.register).Methods(http.MethodPost)

	authed := r.NewRoute().Subrouter()
	authed.Use(api.requireToken)
	authed.HandleFunc("/auth/me", api.me).Methods(http.MethodGet)
	authed.HandleFunc("/auth/refresh", api.refresh).Methods(http.MethodPost)
	authed.HandleFunc("/projects", api.listProjects).Methods(http.MethodGet)
	authed.HandleFunc("/projects", api.createProject).Methods(http.MethodPost)
	authed.HandleFunc("/projects/{id:[0-9]+}", api.getProject).Methods(http.MethodGet)
	authed.HandleFunc("/projects/{id:[0-9]+}", api.updateProject).Methods(http.MethodPut)
	authed.HandleFunc("/projects/{id:[0-9]+}", api.deleteProject).Methods(http.MethodDelete)
	authed.HandleFunc("/projects/{id:[0-9]+}/progress", api.progress).Methods(http.MethodGet)
	authed.HandleFunc("/projects/{id:[0-9]+}/tasks", api.listTasks).Methods(http.MethodGet)
	authed.HandleFunc("/projects/{id:[0-9]+}/tasks", api.createTask).Methods(http.MethodPost)
	authed.HandleFunc("/tasks/{id:[0-9]+}", api.getTask).Methods(http.MethodGet)
	authed.HandleFunc("/tasks/{id:[0-9]+}", api.updateTask).Methods(http.MethodPut)
	authed.HandleFunc("/tasks/{id:[0-9]+}", api.deleteTask).Methods(http.MethodDelete)
	authed.HandleFunc("/tasks/{id:[0-9]+}/complete", api.completeTask).Methods(http.MethodPut)
	authed.HandleFunc("/tasks/{id:[0-9]+}/toggle", api.toggleTask).Methods(http.MethodPut)

	api.Server = httptest.NewServer(r)
	return api
}

// SetFail makes every subsequent request fail with status.
func (a *FakeAPI) SetFail(status int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Fail = status
}

// LastHeaders returns the headers of the most recent request.
func (a *FakeAPI) LastHeaders() http.Header {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Headers.Clone()
}

// Seen returns the recorded requests.
func (a *FakeAPI) Seen() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.Requests))
	copy(out, a.Requests)
	return out
}

func (a *FakeAPI) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		a.Requests = append(a.Requests, r.Method+" "+r.URL.Path)
		a.Headers = r.Header.Clone()
		fail := a.Fail
		a.mu.Unlock()

		if fail != 0 {
			http.Error(w, http.StatusText(fail), fail)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *FakeAPI) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != a.Svc.Token {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *FakeAPI) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &body) {
		return
	}
	res, err := a.Svc.Login(r.Context(), body.Email, body.Password)
	reply(w, http.StatusOK, res, err)
}

func (a *FakeAPI) register(w http.ResponseWriter, r *http.Request) {
	var reg service.Registration
	if !decode(w, r, &reg) {
		return
	}
	res, err := a.Svc.Register(r.Context(), reg)
	reply(w, http.StatusCreated, res, err)
}

func (a *FakeAPI) me(w http.ResponseWriter, r *http.Request) {
	u, err := a.Svc.Me(r.Context())
	reply(w, http.StatusOK, u, err)
}

func (a *FakeAPI) refresh(w http.ResponseWriter, r *http.Request) {
	res, err := a.Svc.Refresh(r.Context())
	reply(w, http.StatusOK, res, err)
}

func (a *FakeAPI) listProjects(w http.ResponseWriter, r *http.Request) {
	ps, err := a.Svc.ListProjects(r.Context())
	if ps == nil {
		ps = []service.Project{}
	}
	reply(w, http.StatusOK, ps, err)
}

func (a *FakeAPI) createProject(w http.ResponseWriter, r *http.Request) {
	var in service.ProjectInput
	if !decode(w, r, &in) {
		return
	}
	p, err := a.Svc.CreateProject(r.Context(), in)
	reply(w, http.StatusCreated, p, err)
}

func (a *FakeAPI) getProject(w http.ResponseWriter, r *http.Request) {
	p, err := a.Svc.GetProject(r.Context(), pathID(r))
	reply(w, http.StatusOK, p, err)
}

func (a *FakeAPI) updateProject(w http.ResponseWriter, r *http.Request) {
	var in service.ProjectInput
	if !decode(w, r, &in) {
		return
	}
	p, err := a.Svc.UpdateProject(r.Context(), pathID(r), in)
	reply(w, http.StatusOK, p, err)
}

func (a *FakeAPI) deleteProject(w http.ResponseWriter, r *http.Request) {
	err := a.Svc.DeleteProject(r.Context(), pathID(r))
	reply(w, http.StatusNoContent, nil, err)
}

func (a *FakeAPI) progress(w http.ResponseWriter, r *http.Request) {
	p, err := a.Svc.Progress(r.Context(), pathID(r))
	reply(w, http.StatusOK, p, err)
}

func (a *FakeAPI) listTasks(w http.ResponseWriter, r *http.Request) {
	ts, err := a.Svc.ListTasks(r.Context(), pathID(r))
	if ts == nil {
		ts = []service.Task{}
	}
	reply(w, http.StatusOK, ts, err)
}

func (a *FakeAPI) createTask(w http.ResponseWriter, r *http.Request) {
	var in service.TaskInput
	if !decode(w, r, &in) {
		return
	}
	t, err := a.Svc.CreateTask(r.Context(), pathID(r), in)
	reply(w, http.StatusCreated, t, err)
}

func (a *FakeAPI) getTask(w http.ResponseWriter, r *http.Request) {
	t, err := a.Svc.GetTask(r.Context(), pathID(r))
	reply(w, http.StatusOK, t, err)
}

func (a *FakeAPI) updateTask(w http.ResponseWriter, r *http.Request) {
	var in service.TaskInput
	if !decode(w, r, &in) {
		return
	}
	t, err := a.Svc.UpdateTask(r.Context(), pathID(r), in)
	reply(w, http.StatusOK, t, err)
}

func (a *FakeAPI) deleteTask(w http.ResponseWriter, r *http.Request) {
	err := a.Svc.DeleteTask(r.Context(), pathID(r))
	reply(w, http.StatusNoContent, nil, err)
}

func (a *FakeAPI) completeTask(w http.ResponseWriter, r *http.Request) {
	t, err := a.Svc.CompleteTask(r.Context(), pathID(r))
	reply(w, http.StatusOK, t, err)
}

func (a *FakeAPI) toggleTask(w http.ResponseWriter, r *http.Request) {
	t, err := a.Svc.ToggleTask(r.Context(), pathID(r))
	reply(w, http.StatusOK, t, err)
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid body"})
		return false
	}
	return true
}

func reply(w http.ResponseWriter, status int, v any, err error) {
	if err != nil {
		var ce *service.ClientError
		var se *service.ServerError
		switch {
		case errors.As(err, &ce):
			writeJSON(w, ce.Status, map[string]string{"message": ce.Message})
		case errors.As(err, &se):
			writeJSON(w, se.Status, map[string]string{"message": se.Message})
		case errors.Is(err, context.Canceled):
			w.WriteHeader(499)
		default:
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
		}
		return
	}
	if v == nil {
		w.WriteHeader(status)
		return
	}
	writeJSON(w, status, v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
