package dto

import (
	"fmt"
	"strings"
	"time"
)

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "PENDING"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusCompleted  TaskStatus = "COMPLETED"
	StatusCancelled  TaskStatus = "CANCELLED"
)

// TaskPriority ranks a task.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
)

// Statuses returns every status in display order.
func Statuses() []TaskStatus {
	return []TaskStatus{StatusPending, StatusInProgress, StatusCompleted, StatusCancelled}
}

// Priorities returns every priority in display order.
func Priorities() []TaskPriority {
	return []TaskPriority{PriorityLow, PriorityMedium, PriorityHigh}
}

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Valid reports whether p is a known priority.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ParseStatus accepts a status name in any case.
func ParseStatus(v string) (TaskStatus, error) {
	s := TaskStatus(strings.ToUpper(strings.TrimSpace(v)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown task status %q", v)
	}
	return s, nil
}

// ParsePriority accepts a priority name in any case.
func ParsePriority(v string) (TaskPriority, error) {
	p := TaskPriority(strings.ToUpper(strings.TrimSpace(v)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown task priority %q", v)
	}
	return p, nil
}

// Task is a task as returned by the API. Clients treat ID, CreatedAt,
// UpdatedAt and UserID as read-only.
type Task struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Description *string      `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *Date        `json:"dueDate"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	UserID      int64        `json:"userId"`
}

// TaskDraft holds the user-editable fields of a task. It is the body of
// create and update requests and never carries server-assigned fields.
type TaskDraft struct {
	Title       string       `json:"title" form:"title" binding:"required" validate:"required"`
	Description string       `json:"description" form:"description"`
	Status      TaskStatus   `json:"status" form:"status"`
	Priority    TaskPriority `json:"priority" form:"priority"`
	DueDate     *Date        `json:"dueDate" form:"-"`
}

// NewDraft returns the defaults of an empty create form.
func NewDraft() TaskDraft {
	return TaskDraft{
		Status:   StatusPending,
		Priority: PriorityMedium,
	}
}

// DraftFromTask copies the editable fields of t.
func DraftFromTask(t Task) TaskDraft {
	d := TaskDraft{
		Title:    t.Title,
		Status:   t.Status,
		Priority: t.Priority,
	}
	if t.Description != nil {
		d.Description = *t.Description
	}
	if t.DueDate != nil {
		due := *t.DueDate
		d.DueDate = &due
	}
	return d
}
