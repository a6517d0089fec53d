package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/yukikurage/taskmanager/internal/dto"
	"github.com/yukikurage/taskmanager/internal/tasklist"
)

type TasksCmd struct {
	List   ListCmd   `cmd:"" default:"withargs" help:"List tasks, optionally filtered on the client."`
	Get    GetCmd    `cmd:"" help:"Show one task."`
	Create CreateCmd `cmd:"" help:"Create a task."`
	Update UpdateCmd `cmd:"" help:"Update a task."`
	Delete DeleteCmd `cmd:"" help:"Delete a task."`
	Search SearchCmd `cmd:"" help:"Search tasks on the server."`
	Filter FilterCmd `cmd:"" help:"Filter tasks by status or priority on the server."`
}

type ListCmd struct {
	Search   string `short:"q" help:"Only tasks whose title or description contains this text."`
	Status   string `short:"s" help:"Only tasks with this status (PENDING, IN_PROGRESS, COMPLETED, CANCELLED or all)." default:"all"`
	Priority string `short:"p" help:"Only tasks with this priority (LOW, MEDIUM, HIGH or all)." default:"all"`
}

// Run fetches the whole collection and filters it locally.
func (c *ListCmd) Run(ctx context.Context, env *Env) error {
	status, err := parseStatusFilter(c.Status)
	if err != nil {
		return err
	}
	priority, err := parsePriorityFilter(c.Priority)
	if err != nil {
		return err
	}

	if err := env.Tasks.Refresh(ctx); err != nil {
		return err
	}
	env.Tasks.SetSearchText(c.Search)
	env.Tasks.SetStatusFilter(status)
	env.Tasks.SetPriorityFilter(priority)
	return printTasks(env, env.Tasks.Visible())
}

func parseStatusFilter(v string) (string, error) {
	if v == "" || strings.EqualFold(v, tasklist.All) {
		return tasklist.All, nil
	}
	s, err := dto.ParseStatus(v)
	return string(s), err
}

func parsePriorityFilter(v string) (string, error) {
	if v == "" || strings.EqualFold(v, tasklist.All) {
		return tasklist.All, nil
	}
	p, err := dto.ParsePriority(v)
	return string(p), err
}

type SearchCmd struct {
	Query  string `short:"q" required:"" help:"Text to look for in titles and descriptions."`
	Status string `short:"s" help:"Only tasks with this status."`
}

func (c *SearchCmd) Run(ctx context.Context, env *Env) error {
	var (
		tasks []dto.Task
		err   error
	)
	if c.Status != "" {
		status, perr := dto.ParseStatus(c.Status)
		if perr != nil {
			return perr
		}
		tasks, err = env.API.SearchByStatus(ctx, status, c.Query)
	} else {
		tasks, err = env.API.Search(ctx, c.Query)
	}
	if err != nil {
		return err
	}
	return printTasks(env, tasks)
}

type FilterCmd struct {
	Status   string `short:"s" xor:"filter" required:"" help:"Status to filter by."`
	Priority string `short:"p" xor:"filter" required:"" help:"Priority to filter by."`
}

func (c *FilterCmd) Run(ctx context.Context, env *Env) error {
	var (
		tasks []dto.Task
		err   error
	)
	if c.Status != "" {
		status, perr := dto.ParseStatus(c.Status)
		if perr != nil {
			return perr
		}
		tasks, err = env.API.FilterByStatus(ctx, status)
	} else {
		priority, perr := dto.ParsePriority(c.Priority)
		if perr != nil {
			return perr
		}
		tasks, err = env.API.FilterByPriority(ctx, priority)
	}
	if err != nil {
		return err
	}
	return printTasks(env, tasks)
}

type GetCmd struct {
	ID int64 `arg:"" help:"Task id."`
}

func (c *GetCmd) Run(ctx context.Context, env *Env) error {
	task, err := env.API.GetTask(ctx, c.ID)
	if err != nil {
		return err
	}
	return printTask(env, *task)
}

// DraftFlags are the editable fields shared by create and update.
type DraftFlags struct {
	Title       string `short:"t" help:"Task title."`
	Description string `short:"d" help:"Task description."`
	Status      string `short:"s" help:"Task status."`
	Priority    string `short:"p" help:"Task priority."`
	Due         string `help:"Due date (YYYY-MM-DD)."`
}

// apply overlays the flags that were given onto d.
func (f DraftFlags) apply(d *dto.TaskDraft) error {
	if f.Title != "" {
		d.Title = f.Title
	}
	if f.Description != "" {
		d.Description = f.Description
	}
	if f.Status != "" {
		s, err := dto.ParseStatus(f.Status)
		if err != nil {
			return err
		}
		d.Status = s
	}
	if f.Priority != "" {
		p, err := dto.ParsePriority(f.Priority)
		if err != nil {
			return err
		}
		d.Priority = p
	}
	if f.Due != "" {
		due, err := dto.ParseDate(f.Due)
		if err != nil {
			return fmt.Errorf("invalid due date %q: %w", f.Due, err)
		}
		d.DueDate = &due
	}
	return nil
}

type CreateCmd struct {
	DraftFlags `embed:""`
}

func (c *CreateCmd) Run(ctx context.Context, env *Env) error {
	draft := dto.NewDraft()
	if err := c.apply(&draft); err != nil {
		return err
	}
	if err := env.Tasks.CreateOrUpdate(ctx, draft, nil); err != nil {
		return err
	}
	created, _ := env.Tasks.Saved()
	return printSaved(env, "Created", created)
}

type UpdateCmd struct {
	ID int64 `arg:"" help:"Task id."`

	DraftFlags `embed:""`

	ClearDescription bool `help:"Remove the description."`
	ClearDue         bool `help:"Remove the due date."`
}

// Run sends the current task with the given flags applied, since the API
// replaces every editable field.
func (c *UpdateCmd) Run(ctx context.Context, env *Env) error {
	current, err := env.API.GetTask(ctx, c.ID)
	if err != nil {
		return err
	}

	draft := dto.DraftFromTask(*current)
	if c.ClearDescription {
		draft.Description = ""
	}
	if c.ClearDue {
		draft.DueDate = nil
	}
	if err := c.apply(&draft); err != nil {
		return err
	}

	id := c.ID
	if err := env.Tasks.CreateOrUpdate(ctx, draft, &id); err != nil {
		return err
	}
	updated, _ := env.Tasks.Saved()
	return printSaved(env, "Updated", updated)
}

type DeleteCmd struct {
	ID  int64 `arg:"" help:"Task id."`
	Yes bool  `short:"y" help:"Delete without asking for confirmation."`
}

func (c *DeleteCmd) Run(ctx context.Context, env *Env) error {
	if !c.Yes && !confirm(env, fmt.Sprintf("Delete task %d?", c.ID)) {
		fmt.Fprintln(env.Out, "Cancelled.")
		return nil
	}
	if err := env.Tasks.Delete(ctx, c.ID); err != nil {
		return err
	}
	if env.JSON {
		return writeJSON(env.Out, map[string]int64{"deleted": c.ID})
	}
	fmt.Fprintf(env.Out, "Deleted task %d.\n", c.ID)
	return nil
}

// confirm asks a yes/no question on the error stream and reads the answer
// from the input. Anything but y or yes, including end of input, is a no.
func confirm(env *Env, question string) bool {
	fmt.Fprintf(env.Err, "%s [y/N] ", question)
	answer, err := bufio.NewReader(env.In).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
