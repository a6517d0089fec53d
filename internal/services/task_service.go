package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/taskmanager/internal/dto"
	"github.com/yukikurage/taskmanager/internal/models"
	"github.com/yukikurage/taskmanager/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrTitleRequired   = errors.New("title is required")
	ErrInvalidStatus   = errors.New("invalid task status")
	ErrInvalidPriority = errors.New("invalid task priority")
)

// TaskService handles task business logic. Every operation is scoped to
// the tasks owned by the acting user.
type TaskService struct {
	taskRepo repository.TaskRepository
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	UserID   int64
	Status   *dto.TaskStatus
	Priority *dto.TaskPriority
	Query    *string
}

// ListTasks returns the user's tasks matching the provided filters
func (s *TaskService) ListTasks(input ListTasksInput) ([]dto.Task, error) {
	if input.Status != nil && !input.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if input.Priority != nil && !input.Priority.Valid() {
		return nil, ErrInvalidPriority
	}

	tasks, err := s.taskRepo.List(repository.TaskFilter{
		UserID:   input.UserID,
		Status:   input.Status,
		Priority: input.Priority,
		Query:    input.Query,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return models.ToDTOs(tasks), nil
}

// GetTask returns one of the user's tasks
func (s *TaskService) GetTask(userID, taskID int64) (*dto.Task, error) {
	task, err := s.find(userID, taskID)
	if err != nil {
		return nil, err
	}
	out := task.ToDTO()
	return &out, nil
}

// CreateTask creates a task owned by userID. Empty status and priority
// default to PENDING and MEDIUM.
func (s *TaskService) CreateTask(userID int64, draft dto.TaskDraft) (*dto.Task, error) {
	if draft.Status == "" {
		draft.Status = dto.StatusPending
	}
	if draft.Priority == "" {
		draft.Priority = dto.PriorityMedium
	}
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	task := &models.Task{UserID: userID}
	applyDraft(task, draft)

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	out := task.ToDTO()
	return &out, nil
}

// UpdateTask replaces the editable fields of a task. An empty status or
// priority keeps the current value.
func (s *TaskService) UpdateTask(userID, taskID int64, draft dto.TaskDraft) (*dto.Task, error) {
	task, err := s.find(userID, taskID)
	if err != nil {
		return nil, err
	}

	if draft.Status == "" {
		draft.Status = task.Status
	}
	if draft.Priority == "" {
		draft.Priority = task.Priority
	}
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	applyDraft(task, draft)

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	out := task.ToDTO()
	return &out, nil
}

// DeleteTask deletes one of the user's tasks
func (s *TaskService) DeleteTask(userID, taskID int64) error {
	task, err := s.find(userID, taskID)
	if err != nil {
		return err
	}

	if err := s.taskRepo.Delete(task.ID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// find returns ErrTaskNotFound for tasks of other users as well as missing ones.
func (s *TaskService) find(userID, taskID int64) (*models.Task, error) {
	task, err := s.taskRepo.FindForUser(taskID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

func validateDraft(draft dto.TaskDraft) error {
	if strings.TrimSpace(draft.Title) == "" {
		return ErrTitleRequired
	}
	if !draft.Status.Valid() {
		return ErrInvalidStatus
	}
	if !draft.Priority.Valid() {
		return ErrInvalidPriority
	}
	return nil
}

func applyDraft(task *models.Task, draft dto.TaskDraft) {
	task.Title = strings.TrimSpace(draft.Title)
	task.Description = nil
	if draft.Description != "" {
		description := draft.Description
		task.Description = &description
	}
	task.Status = draft.Status
	task.Priority = draft.Priority
	task.DueDate = nil
	if draft.DueDate != nil {
		due := draft.DueDate.Time()
		task.DueDate = &due
	}
}
