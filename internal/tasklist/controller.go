// Package tasklist holds the user's task collection, the filtered view
// derived from it, and the state of the create/edit form.
package tasklist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/yukikurage/taskmanager/internal/dto"
)

var (
	// ErrTitleRequired is returned before any network call when a draft has no title.
	ErrTitleRequired = errors.New("title is required")
	// ErrNoForm is returned by Submit when no form is open.
	ErrNoForm = errors.New("no task form is open")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// API is the part of the API client the controller needs.
type API interface {
	ListTasks(ctx context.Context) ([]dto.Task, error)
	CreateTask(ctx context.Context, draft dto.TaskDraft) (*dto.Task, error)
	UpdateTask(ctx context.Context, id int64, draft dto.TaskDraft) (*dto.Task, error)
	DeleteTask(ctx context.Context, id int64) error
}

// Form is an open create or edit form.
type Form struct {
	Draft dto.TaskDraft
	// EditingID is set when the form edits an existing task.
	EditingID *int64
}

// Editing reports whether the form edits an existing task.
func (f Form) Editing() bool {
	return f.EditingID != nil
}

// Controller is not safe for concurrent use.
type Controller struct {
	api    API
	logger *slog.Logger

	tasks   []dto.Task
	visible []dto.Task
	filter  Filter
	form    *Form
	saved   *dto.Task
}

// New creates an empty Controller. logger may be nil.
func New(api API, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		api:     api,
		logger:  logger,
		tasks:   []dto.Task{},
		visible: []dto.Task{},
	}
}

// Refresh replaces the collection with the server's current list. On
// failure the previous collection is kept.
func (c *Controller) Refresh(ctx context.Context) error {
	tasks, err := c.api.ListTasks(ctx)
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to fetch tasks", slog.Any("error", err))
		return fmt.Errorf("failed to fetch tasks: %w", err)
	}
	if tasks == nil {
		tasks = []dto.Task{}
	}
	c.tasks = tasks
	c.recompute()
	return nil
}

// Tasks returns the full collection.
func (c *Controller) Tasks() []dto.Task {
	return c.tasks
}

// Visible returns the tasks that pass the current filter.
func (c *Controller) Visible() []dto.Task {
	return c.visible
}

// Find returns the task with the given id from the collection.
func (c *Controller) Find(id int64) (dto.Task, bool) {
	for _, t := range c.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return dto.Task{}, false
}

// Counts returns the number of tasks per status in the full collection.
func (c *Controller) Counts() map[dto.TaskStatus]int {
	counts := make(map[dto.TaskStatus]int, len(dto.Statuses()))
	for _, s := range dto.Statuses() {
		counts[s] = 0
	}
	for _, t := range c.tasks {
		counts[t.Status]++
	}
	return counts
}

// Filter returns the current predicate set.
func (c *Controller) Filter() Filter {
	return c.filter
}

// SetFilter replaces the whole predicate set.
func (c *Controller) SetFilter(f Filter) {
	c.filter = f
	c.recompute()
}

func (c *Controller) SetSearchText(q string) {
	c.filter.Query = q
	c.recompute()
}

func (c *Controller) SetStatusFilter(s string) {
	c.filter.Status = s
	c.recompute()
}

func (c *Controller) SetPriorityFilter(p string) {
	c.filter.Priority = p
	c.recompute()
}

func (c *Controller) recompute() {
	c.visible = Apply(c.tasks, c.filter)
}

// OpenCreate opens an empty create form.
func (c *Controller) OpenCreate() {
	c.form = &Form{Draft: dto.NewDraft()}
}

// OpenEdit opens an edit form prefilled from t.
func (c *Controller) OpenEdit(t dto.Task) {
	id := t.ID
	c.form = &Form{Draft: dto.DraftFromTask(t), EditingID: &id}
}

// UpdateDraft replaces the draft of the open form.
func (c *Controller) UpdateDraft(d dto.TaskDraft) error {
	if c.form == nil {
		return ErrNoForm
	}
	c.form.Draft = d
	return nil
}

// Form returns the open form.
func (c *Controller) Form() (Form, bool) {
	if c.form == nil {
		return Form{}, false
	}
	return *c.form, true
}

// CloseForm discards the open form.
func (c *Controller) CloseForm() {
	c.form = nil
}

// Submit saves the open form.
func (c *Controller) Submit(ctx context.Context) error {
	if c.form == nil {
		return ErrNoForm
	}
	return c.CreateOrUpdate(ctx, c.form.Draft, c.form.EditingID)
}

// CreateOrUpdate saves draft, updating editingID when set and creating a
// task otherwise. The title is trimmed and the draft becomes the open form.
// On success the form is closed and the collection refreshed; on failure the
// form stays open.
func (c *Controller) CreateOrUpdate(ctx context.Context, draft dto.TaskDraft, editingID *int64) error {
	draft.Title = strings.TrimSpace(draft.Title)
	c.form = &Form{Draft: draft, EditingID: editingID}

	if err := validateDraft(draft); err != nil {
		return err
	}

	var (
		saved *dto.Task
		err   error
	)
	if editingID != nil {
		saved, err = c.api.UpdateTask(ctx, *editingID, draft)
	} else {
		saved, err = c.api.CreateTask(ctx, draft)
	}
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to save task", slog.Any("error", err))
		return fmt.Errorf("failed to save task: %w", err)
	}

	c.saved = saved
	c.form = nil
	return c.Refresh(ctx)
}

// Saved returns the task the API returned for the last successful save.
func (c *Controller) Saved() (dto.Task, bool) {
	if c.saved == nil {
		return dto.Task{}, false
	}
	return *c.saved, true
}

// Delete deletes a task and refreshes the collection.
func (c *Controller) Delete(ctx context.Context, id int64) error {
	if err := c.api.DeleteTask(ctx, id); err != nil {
		c.logger.ErrorContext(ctx, "failed to delete task", slog.Int64("id", id), slog.Any("error", err))
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return c.Refresh(ctx)
}

func validateDraft(d dto.TaskDraft) error {
	err := validate.Struct(d)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Field() == "Title" {
				return ErrTitleRequired
			}
		}
	}
	return err
}
