// Package restapi implements the service.Service interface over the project/task REST API.
package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"taskmgr/internal/config"
	"taskmgr/internal/service"
	"taskmgr/internal/session"
)

// RequestIDHeader carries a per-request id for correlating server logs.
const RequestIDHeader = "X-Request-ID"

var errNotLoggedIn = &service.ClientError{Status: http.StatusUnauthorized, Message: "not logged in"}

// Client implements service.Service over HTTP.
type Client struct {
	baseURL string
	timeout time.Duration
	log     *slog.Logger

	// anon sends requests without credentials (login, register).
	anon *http.Client
	// authed adds the bearer token from the session store.
	authed *http.Client

	store *session.Store
}

// New creates a client for cfg's API, authenticating with the token in store.
func New(cfg *config.Config, store *session.Store) *Client {
	return NewWithHTTPClient(cfg, store, http.DefaultClient)
}

// NewWithHTTPClient creates a client on top of base (for testing).
func NewWithHTTPClient(cfg *config.Config, store *session.Store, base *http.Client) *Client {
	if base == nil {
		base = http.DefaultClient
	}
	authed := *base
	authed.Transport = &oauth2.Transport{
		Source: storeTokenSource{store},
		Base:   base.Transport,
	}
	return &Client{
		baseURL: cfg.BaseURL(),
		timeout: cfg.RequestTimeout(),
		log:     cfg.Log(),
		anon:    base,
		authed:  &authed,
		store:   store,
	}
}

// storeTokenSource reads the bearer token from the session store on every
// request, so a Clear is seen by later calls.
type storeTokenSource struct {
	store *session.Store
}

func (s storeTokenSource) Token() (*oauth2.Token, error) {
	tok := s.store.Token()
	if tok == "" {
		return nil, errors.New("not logged in")
	}
	return &oauth2.Token{AccessToken: tok, TokenType: "Bearer"}, nil
}

// Login implements service.Service.
func (c *Client) Login(ctx context.Context, email, password string) (service.AuthResult, error) {
	var res service.AuthResult
	body := map[string]string{"email": email, "password": password}
	err := c.do(ctx, c.anon, http.MethodPost, "/auth/login", body, &res)
	return res, err
}

// Register implements service.Service.
func (c *Client) Register(ctx context.Context, reg service.Registration) (service.AuthResult, error) {
	var res service.AuthResult
	err := c.do(ctx, c.anon, http.MethodPost, "/auth/register", reg, &res)
	return res, err
}

// Me implements service.Service.
func (c *Client) Me(ctx context.Context) (service.User, error) {
	var u service.User
	err := c.do(ctx, c.authed, http.MethodGet, "/auth/me", nil, &u)
	return u, err
}

// Refresh implements service.Service.
func (c *Client) Refresh(ctx context.Context) (service.AuthResult, error) {
	var res service.AuthResult
	err := c.do(ctx, c.authed, http.MethodPost, "/auth/refresh", nil, &res)
	return res, err
}

// ListProjects implements service.Service.
func (c *Client) ListProjects(ctx context.Context) ([]service.Project, error) {
	var out []service.Project
	err := c.do(ctx, c.authed, http.MethodGet, "/projects", nil, &out)
	return out, err
}

// GetProject implements service.Service.
func (c *Client) GetProject(ctx context.Context, id int64) (service.Project, error) {
	var p service.Project
	err := c.do(ctx, c.authed, http.MethodGet, fmt.Sprintf("/projects/%d", id), nil, &p)
	return p, err
}

// CreateProject implements service.Service.
func (c *Client) CreateProject(ctx context.Context, in service.ProjectInput) (service.Project, error) {
	var p service.Project
	err := c.do(ctx, c.authed, http.MethodPost, "/projects", in, &p)
	return p, err
}

// UpdateProject implements service.Service.
func (c *Client) UpdateProject(ctx context.Context, id int64, in service.ProjectInput) (service.Project, error) {
	var p service.Project
	err := c.do(ctx, c.authed, http.MethodPut, fmt.Sprintf("/projects/%d", id), in, &p)
	return p, err
}

// DeleteProject implements service.Service.
func (c *Client) DeleteProject(ctx context.Context, id int64) error {
	return c.do(ctx, c.authed, http.MethodDelete, fmt.Sprintf("/projects/%d", id), nil, nil)
}

// Progress implements service.Service.
func (c *Client) Progress(ctx context.Context, projectID int64) (service.Progress, error) {
	var p service.Progress
	err := c.do(ctx, c.authed, http.MethodGet, fmt.Sprintf("/projects/%d/progress", projectID), nil, &p)
	return p, err
}

// ListTasks implements service.Service.
func (c *Client) ListTasks(ctx context.Context, projectID int64) ([]service.Task, error) {
	var out []service.Task
	err := c.do(ctx, c.authed, http.MethodGet, fmt.Sprintf("/projects/%d/tasks", projectID), nil, &out)
	for i := range out {
		if out[i].ProjectID == 0 {
			out[i].ProjectID = projectID
		}
	}
	return out, err
}

// GetTask implements service.Service.
func (c *Client) GetTask(ctx context.Context, id int64) (service.Task, error) {
	var t service.Task
	err := c.do(ctx, c.authed, http.MethodGet, fmt.Sprintf("/tasks/%d", id), nil, &t)
	return t, err
}

// CreateTask implements service.Service.
func (c *Client) CreateTask(ctx context.Context, projectID int64, in service.TaskInput) (service.Task, error) {
	var t service.Task
	err := c.do(ctx, c.authed, http.MethodPost, fmt.Sprintf("/projects/%d/tasks", projectID), in, &t)
	return t, err
}

// UpdateTask implements service.Service.
func (c *Client) UpdateTask(ctx context.Context, id int64, in service.TaskInput) (service.Task, error) {
	var t service.Task
	err := c.do(ctx, c.authed, http.MethodPut, fmt.Sprintf("/tasks/%d", id), in, &t)
	return t, err
}

// DeleteTask implements service.Service.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, c.authed, http.MethodDelete, fmt.Sprintf("/tasks/%d", id), nil, nil)
}

// CompleteTask implements service.Service.
func (c *Client) CompleteTask(ctx context.Context, id int64) (service.Task, error) {
	var t service.Task
	err := c.do(ctx, c.authed, http.MethodPut, fmt.Sprintf("/tasks/%d/complete", id), nil, &t)
	return t, err
}

// ToggleTask implements service.Service.
func (c *Client) ToggleTask(ctx context.Context, id int64) (service.Task, error) {
	var t service.Task
	err := c.do(ctx, c.authed, http.MethodPut, fmt.Sprintf("/tasks/%d/toggle", id), nil, &t)
	return t, err
}

// do sends one JSON request and decodes the response into out (if non-nil).
func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, in, out any) error {
	if hc == c.authed && c.store.Token() == "" {
		return errNotLoggedIn
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	reqID := uuid.NewString()
	req.Header.Set(RequestIDHeader, reqID)

	start := time.Now()
	res, err := hc.Do(req)
	if err != nil {
		c.log.Debug("request failed", "method", method, "path", path, "request_id", reqID, "err", err)
		return wrapError(err)
	}
	defer googleapi.CloseBody(res)

	c.log.Debug("request", "method", method, "path", path, "status", res.StatusCode,
		"request_id", reqID, "elapsed", time.Since(start))

	if err := googleapi.CheckResponse(res); err != nil {
		err = wrapError(err)
		if hc == c.authed && service.IsUnauthorized(err) {
			// the server no longer accepts this token
			if clearErr := c.store.Clear(); clearErr != nil {
				c.log.Debug("failed to clear session", "err", clearErr)
			}
		}
		return err
	}

	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("invalid response from %s %s: %w", method, path, err)
	}
	return nil
}

// wrapError maps transport and HTTP failures onto the service error taxonomy.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		msg := gerr.Message
		if msg == "" {
			msg = serverMessage(gerr.Body)
		}
		if gerr.Code >= 500 {
			return &service.ServerError{Status: gerr.Code, Message: msg}
		}
		return &service.ClientError{Status: gerr.Code, Message: msg}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &service.NetworkError{Err: errors.New("request timed out")}
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return &service.NetworkError{Err: err}
}

// serverMessage extracts a human message from an error body: either a JSON
// object with "message" or "error", or the raw text.
func serverMessage(body string) string {
	body = strings.TrimSpace(body)
	if body == "" {
		return ""
	}
	var obj struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal([]byte(body), &obj) == nil {
		if obj.Message != "" {
			return obj.Message
		}
		if obj.Error != "" {
			return obj.Error
		}
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return body
}
