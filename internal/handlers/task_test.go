package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/taskmanager/internal/constants"
	"github.com/yukikurage/taskmanager/internal/database"
	"github.com/yukikurage/taskmanager/internal/dto"
	apierrors "github.com/yukikurage/taskmanager/internal/errors"
	"github.com/yukikurage/taskmanager/internal/middleware"
	"github.com/yukikurage/taskmanager/internal/models"
	"github.com/yukikurage/taskmanager/internal/repository"
	"github.com/yukikurage/taskmanager/internal/services"
	"gorm.io/gorm"
)

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *TaskHandler
	router  *gin.Engine
	userID  int64
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	var err error

	gin.SetMode(gin.TestMode)

	suite.db, err = database.Open()
	suite.Require().NoError(err)

	suite.handler = NewTaskHandler(services.NewTaskService(repository.NewTaskRepository(suite.db)))
	suite.userID = suite.createTestUser("owner").ID

	// Simulates RequireAuth for the suite's user
	suite.router = gin.New()
	tasks := suite.router.Group("/api/tasks", func(c *gin.Context) {
		c.Set(constants.ContextKeyUserID, suite.userID)
		c.Next()
	})
	tasks.GET("", suite.handler.ListTasks)
	tasks.POST("", suite.handler.CreateTask)
	tasks.GET("/filter/status", suite.handler.FilterByStatus)
	tasks.GET("/filter/priority", suite.handler.FilterByPriority)
	tasks.GET("/search", suite.handler.Search)
	tasks.GET("/search/status", suite.handler.SearchByStatus)
	tasks.GET("/:id", middleware.RequireTaskID(), suite.handler.GetTask)
	tasks.PUT("/:id", middleware.RequireTaskID(), suite.handler.UpdateTask)
	tasks.DELETE("/:id", middleware.RequireTaskID(), suite.handler.DeleteTask)
}

// TearDownTest runs after each test
func (suite *TaskHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *TaskHandlerTestSuite) createTestUser(name string) *models.User {
	user := &models.User{
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "hashedpassword",
	}
	suite.Require().NoError(suite.db.Create(user).Error)
	return user
}

func (suite *TaskHandlerTestSuite) createTestTask(title string, status dto.TaskStatus, priority dto.TaskPriority, userID int64) *models.Task {
	description := "Test Description"
	task := &models.Task{
		Title:       title,
		Description: &description,
		Status:      status,
		Priority:    priority,
		UserID:      userID,
	}
	suite.Require().NoError(suite.db.Create(task).Error)
	return task
}

func (suite *TaskHandlerTestSuite) request(method, url string, body any) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		data, err := json.Marshal(body)
		suite.Require().NoError(err)
		req = httptest.NewRequest(method, url, bytes.NewReader(data))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *TaskHandlerTestSuite) decodeTasks(w *httptest.ResponseRecorder) []dto.Task {
	var tasks []dto.Task
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &tasks))
	return tasks
}

func (suite *TaskHandlerTestSuite) errorCode(w *httptest.ResponseRecorder) string {
	var body apierrors.APIError
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	return body.Code
}

func (suite *TaskHandlerTestSuite) TestListTasks_OnlyOwn() {
	other := suite.createTestUser("other")
	mine := suite.createTestTask("Mine", dto.StatusPending, dto.PriorityLow, suite.userID)
	suite.createTestTask("Theirs", dto.StatusPending, dto.PriorityLow, other.ID)

	w := suite.request(http.MethodGet, "/api/tasks", nil)

	suite.Equal(http.StatusOK, w.Code)
	tasks := suite.decodeTasks(w)
	suite.Require().Len(tasks, 1)
	suite.Equal(mine.ID, tasks[0].ID)
	suite.Equal(suite.userID, tasks[0].UserID)
}

func (suite *TaskHandlerTestSuite) TestListTasks_EmptyArray() {
	w := suite.request(http.MethodGet, "/api/tasks", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`[]`, w.Body.String())
}

func (suite *TaskHandlerTestSuite) TestGetTask_Success() {
	task := suite.createTestTask("Test Task", dto.StatusPending, dto.PriorityHigh, suite.userID)

	w := suite.request(http.MethodGet, "/api/tasks/"+itoa(task.ID), nil)

	suite.Equal(http.StatusOK, w.Code)
	var response dto.Task
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Equal("Test Task", response.Title)
	suite.Equal(dto.PriorityHigh, response.Priority)
}

func (suite *TaskHandlerTestSuite) TestGetTask_OtherUsersTaskIsNotFound() {
	other := suite.createTestUser("other")
	task := suite.createTestTask("Theirs", dto.StatusPending, dto.PriorityLow, other.ID)

	w := suite.request(http.MethodGet, "/api/tasks/"+itoa(task.ID), nil)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.Equal(apierrors.ErrCodeNotFound, suite.errorCode(w))
}

func (suite *TaskHandlerTestSuite) TestCreateTask_Defaults() {
	w := suite.request(http.MethodPost, "/api/tasks", map[string]any{
		"title":       "Buy milk",
		"description": "",
		"dueDate":     "2030-05-01",
	})

	suite.Equal(http.StatusOK, w.Code)
	var response dto.Task
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.NotZero(response.ID)
	suite.Equal(dto.StatusPending, response.Status)
	suite.Equal(dto.PriorityMedium, response.Priority)
	suite.Nil(response.Description)
	suite.Require().NotNil(response.DueDate)
	suite.Equal("2030-05-01", response.DueDate.String())
	suite.Equal(suite.userID, response.UserID)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_Rejections() {
	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing title", map[string]any{"description": "x"}},
		{"blank title", map[string]any{"title": "   "}},
		{"invalid status", map[string]any{"title": "x", "status": "DONE"}},
		{"invalid priority", map[string]any{"title": "x", "priority": "URGENT"}},
		{"invalid date", map[string]any{"title": "x", "dueDate": "tomorrow"}},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			w := suite.request(http.MethodPost, "/api/tasks", tt.body)
			suite.Equal(http.StatusBadRequest, w.Code)
		})
	}

	var count int64
	suite.db.Model(&models.Task{}).Count(&count)
	suite.Zero(count)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_FullReplace() {
	task := suite.createTestTask("Old", dto.StatusPending, dto.PriorityLow, suite.userID)
	due := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	suite.db.Model(task).Update("due_date", due)

	w := suite.request(http.MethodPut, "/api/tasks/"+itoa(task.ID), map[string]any{
		"title":       "New",
		"description": "",
		"status":      "COMPLETED",
		"priority":    "HIGH",
		"dueDate":     nil,
	})

	suite.Equal(http.StatusOK, w.Code)
	var response dto.Task
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Equal("New", response.Title)
	suite.Nil(response.Description)
	suite.Nil(response.DueDate)
	suite.Equal(dto.StatusCompleted, response.Status)
	suite.Equal(dto.PriorityHigh, response.Priority)
	suite.Equal(task.CreatedAt.Unix(), response.CreatedAt.Unix())
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_OtherUsersTask() {
	other := suite.createTestUser("other")
	task := suite.createTestTask("Theirs", dto.StatusPending, dto.PriorityLow, other.ID)

	w := suite.request(http.MethodPut, "/api/tasks/"+itoa(task.ID), map[string]any{"title": "Hijacked"})

	suite.Equal(http.StatusNotFound, w.Code)
	var stored models.Task
	suite.db.First(&stored, task.ID)
	suite.Equal("Theirs", stored.Title)
}

func (suite *TaskHandlerTestSuite) TestDeleteTask() {
	task := suite.createTestTask("Doomed", dto.StatusPending, dto.PriorityLow, suite.userID)

	w := suite.request(http.MethodDelete, "/api/tasks/"+itoa(task.ID), nil)
	suite.Equal(http.StatusNoContent, w.Code)
	suite.Empty(w.Body.String())

	w = suite.request(http.MethodDelete, "/api/tasks/"+itoa(task.ID), nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *TaskHandlerTestSuite) TestFilters() {
	t1 := suite.createTestTask("Buy milk", dto.StatusPending, dto.PriorityHigh, suite.userID)
	t2 := suite.createTestTask("Write report", dto.StatusCompleted, dto.PriorityHigh, suite.userID)
	t3 := suite.createTestTask("Milk the cow", dto.StatusCompleted, dto.PriorityLow, suite.userID)

	ids := func(tasks []dto.Task) []int64 {
		out := []int64{}
		for _, t := range tasks {
			out = append(out, t.ID)
		}
		return out
	}

	w := suite.request(http.MethodGet, "/api/tasks/filter/status?status=COMPLETED", nil)
	suite.Equal([]int64{t2.ID, t3.ID}, ids(suite.decodeTasks(w)))

	w = suite.request(http.MethodGet, "/api/tasks/filter/priority?priority=HIGH", nil)
	suite.Equal([]int64{t1.ID, t2.ID}, ids(suite.decodeTasks(w)))

	w = suite.request(http.MethodGet, "/api/tasks/search?query=MILK", nil)
	suite.Equal([]int64{t1.ID, t3.ID}, ids(suite.decodeTasks(w)))

	w = suite.request(http.MethodGet, "/api/tasks/search/status?status=COMPLETED&query=milk", nil)
	suite.Equal([]int64{t3.ID}, ids(suite.decodeTasks(w)))
}

func (suite *TaskHandlerTestSuite) TestFilters_BadParameters() {
	for _, url := range []string{
		"/api/tasks/filter/status",
		"/api/tasks/filter/status?status=DONE",
		"/api/tasks/filter/priority?priority=",
		"/api/tasks/search",
		"/api/tasks/search/status?status=PENDING",
	} {
		w := suite.request(http.MethodGet, url, nil)
		assert.Equal(suite.T(), http.StatusBadRequest, w.Code, url)
	}
}

func (suite *TaskHandlerTestSuite) TestUnauthenticatedContext() {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/tasks", nil)

	suite.handler.ListTasks(c)

	suite.Equal(http.StatusUnauthorized, w.Code)
}

func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
