package apiclient

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/yukikurage/taskmanager/internal/dto"
)

// Register creates an account and returns its first session.
func (c *Client) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	var out dto.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/register", func(r *resty.Request) {
		r.SetBody(req).SetResult(&out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	var out dto.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", func(r *resty.Request) {
		r.SetBody(req).SetResult(&out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListTasks returns every task of the session's user.
func (c *Client) ListTasks(ctx context.Context) ([]dto.Task, error) {
	return c.listTasks(ctx, "/tasks", nil)
}

// GetTask returns one task.
func (c *Client) GetTask(ctx context.Context, id int64) (*dto.Task, error) {
	var out dto.Task
	err := c.do(ctx, http.MethodGet, "/tasks/{id}", func(r *resty.Request) {
		r.SetPathParam("id", strconv.FormatInt(id, 10)).SetResult(&out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateTask creates a task from draft.
func (c *Client) CreateTask(ctx context.Context, draft dto.TaskDraft) (*dto.Task, error) {
	var out dto.Task
	err := c.do(ctx, http.MethodPost, "/tasks", func(r *resty.Request) {
		r.SetBody(draft).SetResult(&out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTask replaces the editable fields of a task with draft.
func (c *Client) UpdateTask(ctx context.Context, id int64, draft dto.TaskDraft) (*dto.Task, error) {
	var out dto.Task
	err := c.do(ctx, http.MethodPut, "/tasks/{id}", func(r *resty.Request) {
		r.SetPathParam("id", strconv.FormatInt(id, 10)).SetBody(draft).SetResult(&out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/tasks/{id}", func(r *resty.Request) {
		r.SetPathParam("id", strconv.FormatInt(id, 10))
	})
}

// FilterByStatus returns the tasks with the given status.
func (c *Client) FilterByStatus(ctx context.Context, status dto.TaskStatus) ([]dto.Task, error) {
	return c.listTasks(ctx, "/tasks/filter/status", map[string]string{
		"status": string(status),
	})
}

// FilterByPriority returns the tasks with the given priority.
func (c *Client) FilterByPriority(ctx context.Context, priority dto.TaskPriority) ([]dto.Task, error) {
	return c.listTasks(ctx, "/tasks/filter/priority", map[string]string{
		"priority": string(priority),
	})
}

// Search returns the tasks whose title or description contains query.
func (c *Client) Search(ctx context.Context, query string) ([]dto.Task, error) {
	return c.listTasks(ctx, "/tasks/search", map[string]string{
		"query": query,
	})
}

// SearchByStatus combines Search with a status filter.
func (c *Client) SearchByStatus(ctx context.Context, status dto.TaskStatus, query string) ([]dto.Task, error) {
	return c.listTasks(ctx, "/tasks/search/status", map[string]string{
		"status": string(status),
		"query":  query,
	})
}

func (c *Client) listTasks(ctx context.Context, path string, params map[string]string) ([]dto.Task, error) {
	var out []dto.Task
	err := c.do(ctx, http.MethodGet, path, func(r *resty.Request) {
		r.SetQueryParams(params).SetResult(&out)
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []dto.Task{}
	}
	return out, nil
}
