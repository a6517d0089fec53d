package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskmanager/internal/dto"
	apierrors "github.com/yukikurage/taskmanager/internal/errors"
	"github.com/yukikurage/taskmanager/internal/middleware"
	"github.com/yukikurage/taskmanager/internal/services"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns every task of the current user
func (h *TaskHandler) ListTasks(c *gin.Context) {
	h.list(c, services.ListTasksInput{})
}

// FilterByStatus returns the current user's tasks with ?status=
func (h *TaskHandler) FilterByStatus(c *gin.Context) {
	status, ok := statusParam(c)
	if !ok {
		return
	}
	h.list(c, services.ListTasksInput{Status: &status})
}

// FilterByPriority returns the current user's tasks with ?priority=
func (h *TaskHandler) FilterByPriority(c *gin.Context) {
	raw, ok := requiredQuery(c, "priority")
	if !ok {
		return
	}
	priority, err := dto.ParsePriority(raw)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	h.list(c, services.ListTasksInput{Priority: &priority})
}

// Search returns the current user's tasks whose title or description contains ?query=
func (h *TaskHandler) Search(c *gin.Context) {
	query, ok := requiredQuery(c, "query")
	if !ok {
		return
	}
	h.list(c, services.ListTasksInput{Query: &query})
}

// SearchByStatus combines Search with ?status=
func (h *TaskHandler) SearchByStatus(c *gin.Context) {
	status, ok := statusParam(c)
	if !ok {
		return
	}
	query, ok := requiredQuery(c, "query")
	if !ok {
		return
	}
	h.list(c, services.ListTasksInput{Status: &status, Query: &query})
}

func (h *TaskHandler) list(c *gin.Context, input services.ListTasksInput) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "", "Not authenticated")
		return
	}
	input.UserID = userID

	tasks, err := h.taskService.ListTasks(input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, tasks)
}

// GetTask returns a specific task by ID
func (h *TaskHandler) GetTask(c *gin.Context) {
	userID, taskID, ok := taskScope(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(userID, taskID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "", "Not authenticated")
		return
	}

	draft, ok := bindDraft(c)
	if !ok {
		return
	}

	task, err := h.taskService.CreateTask(userID, draft)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// UpdateTask replaces the editable fields of a task
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, taskID, ok := taskScope(c)
	if !ok {
		return
	}

	draft, ok := bindDraft(c)
	if !ok {
		return
	}

	task, err := h.taskService.UpdateTask(userID, taskID, draft)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, taskID, ok := taskScope(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(userID, taskID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func taskScope(c *gin.Context) (userID, taskID int64, ok bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "", "Not authenticated")
		return 0, 0, false
	}
	taskID, exists = middleware.GetTaskID(c)
	if !exists {
		apierrors.BadRequest(c, "Invalid task ID")
		return 0, 0, false
	}
	return userID, taskID, true
}

func bindDraft(c *gin.Context) (dto.TaskDraft, bool) {
	var draft dto.TaskDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return dto.TaskDraft{}, false
	}
	return draft, true
}

func requiredQuery(c *gin.Context, key string) (string, bool) {
	value, exists := c.GetQuery(key)
	if !exists {
		apierrors.RespondWithError(c, http.StatusBadRequest,
			apierrors.NewAPIError(apierrors.ErrCodeMissingField, "Query parameter "+key+" is required"))
		return "", false
	}
	return value, true
}

func statusParam(c *gin.Context) (dto.TaskStatus, bool) {
	raw, ok := requiredQuery(c, "status")
	if !ok {
		return "", false
	}
	status, err := dto.ParseStatus(raw)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return "", false
	}
	return status, true
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrTitleRequired):
		apierrors.RespondWithError(c, http.StatusBadRequest, apierrors.NewAPIError(apierrors.ErrCodeMissingField, err.Error()))
	case errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidPriority):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
