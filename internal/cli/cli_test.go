package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/taskmanager/internal/apiclient"
	"github.com/yukikurage/taskmanager/internal/cli"
	"github.com/yukikurage/taskmanager/internal/config"
	"github.com/yukikurage/taskmanager/internal/database"
	"github.com/yukikurage/taskmanager/internal/dto"
	"github.com/yukikurage/taskmanager/internal/server"
	"github.com/yukikurage/taskmanager/internal/session"
	"github.com/yukikurage/taskmanager/internal/tasklist"
)

type CLITestSuite struct {
	suite.Suite
	backend     *httptest.Server
	sessionFile string
	// stdin is the input of the next invocations
	stdin   string
	deletes atomic.Int32
}

func (suite *CLITestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	db, err := database.Open()
	suite.Require().NoError(err)
	api := server.NewRouter(db, &config.Config{JWTSecret: "cli-test", TokenExpiry: time.Hour})
	suite.stdin = ""
	suite.deletes.Store(0)
	suite.backend = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			suite.deletes.Add(1)
		}
		api.ServeHTTP(w, r)
	}))
	suite.sessionFile = filepath.Join(suite.T().TempDir(), "session.yaml")
}

func (suite *CLITestSuite) TearDownTest() {
	suite.backend.Close()
}

// run executes one taskctl invocation, like a separate process would.
func (suite *CLITestSuite) run(args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	cfg := &config.Config{
		APIBaseURL:  suite.backend.URL + "/api",
		SessionFile: suite.sessionFile,
		LogLevel:    slog.LevelError + 1,
	}
	err := cli.Run(context.Background(), args, cfg, strings.NewReader(suite.stdin), &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func (suite *CLITestSuite) mustRun(args ...string) string {
	out, stderr, err := suite.run(args...)
	suite.Require().NoError(err, stderr)
	return out
}

func (suite *CLITestSuite) register() {
	out := suite.mustRun("register", "--username", "alice", "--email", "alice@example.com", "--password", "secret1")
	suite.Require().Contains(out, "Signed in as alice <alice@example.com>.")
}

func (suite *CLITestSuite) TestWhoami_RequiresLogin() {
	_, _, err := suite.run("whoami")

	suite.Error(err)
	suite.True(cli.IsLoginRequired(err))
}

func (suite *CLITestSuite) TestTasks_RequireLogin() {
	_, _, err := suite.run("tasks", "list")

	suite.True(cli.IsLoginRequired(err))
	suite.NoFileExists(suite.sessionFile)
}

func (suite *CLITestSuite) TestRegister_PersistsSession() {
	suite.register()
	suite.FileExists(suite.sessionFile)

	out := suite.mustRun("whoami")
	suite.Contains(out, "alice <alice@example.com>")

	out = suite.mustRun("whoami", "--json")
	var user dto.User
	suite.Require().NoError(json.Unmarshal([]byte(out), &user))
	suite.Equal("alice", user.Username)
}

func (suite *CLITestSuite) TestLogoutThenLogin() {
	suite.register()

	suite.Contains(suite.mustRun("logout"), "Signed out.")
	suite.NoFileExists(suite.sessionFile)

	_, _, err := suite.run("login", "--email", "alice@example.com", "--password", "nope-nope")
	suite.ErrorIs(err, apiclient.ErrUnauthorized)

	out := suite.mustRun("login", "--email", "Alice@Example.com", "--password", "secret1")
	suite.Contains(out, "Signed in as alice")
}

func (suite *CLITestSuite) TestCreateListGet() {
	suite.register()

	out := suite.mustRun("tasks", "create", "--title", "Buy milk", "--priority", "HIGH", "--due", "2030-01-15")
	suite.Equal("Created task 1: Buy milk\n", out)
	suite.mustRun("tasks", "create", "-t", "Write report", "-d", "quarterly numbers", "-s", "IN_PROGRESS")

	out = suite.mustRun("tasks", "list")
	suite.Contains(out, "TITLE")
	suite.Contains(out, "Buy milk")
	suite.Contains(out, "Write report")

	out = suite.mustRun("tasks", "get", "1")
	suite.Contains(out, "HIGH")
	suite.Contains(out, "2030-01-15")
	suite.Contains(out, "PENDING")
}

func (suite *CLITestSuite) TestCreate_TitleRequired() {
	suite.register()

	_, _, err := suite.run("tasks", "create", "--priority", "LOW")

	suite.ErrorIs(err, tasklist.ErrTitleRequired)
}

func (suite *CLITestSuite) TestCreate_BlankTitleRequired() {
	suite.register()

	_, _, err := suite.run("tasks", "create", "-t", "   ")

	suite.ErrorIs(err, tasklist.ErrTitleRequired)
	suite.Contains(suite.mustRun("tasks", "list"), "No tasks.")
}

func (suite *CLITestSuite) TestCreate_InvalidDueDate() {
	suite.register()

	_, _, err := suite.run("tasks", "create", "--title", "x", "--due", "tomorrow")

	suite.Error(err)
}

func (suite *CLITestSuite) TestList_Filters() {
	suite.register()
	suite.mustRun("tasks", "create", "-t", "Buy milk", "-p", "LOW")
	suite.mustRun("tasks", "create", "-t", "Write report", "-d", "milk budget", "-s", "IN_PROGRESS", "-p", "HIGH")
	suite.mustRun("tasks", "create", "-t", "File taxes", "-s", "COMPLETED", "-p", "HIGH")

	decode := func(out string) []string {
		var tasks []dto.Task
		suite.Require().NoError(json.Unmarshal([]byte(out), &tasks))
		titles := make([]string, 0, len(tasks))
		for _, t := range tasks {
			titles = append(titles, t.Title)
		}
		return titles
	}

	suite.Equal([]string{"Buy milk", "Write report"}, decode(suite.mustRun("--json", "tasks", "list", "-q", "MILK")))
	suite.Equal([]string{"Write report"}, decode(suite.mustRun("--json", "tasks", "list", "-q", "milk", "-s", "in_progress")))
	suite.Equal([]string{"Write report", "File taxes"}, decode(suite.mustRun("--json", "tasks", "list", "-p", "high")))
	suite.Equal([]string{"File taxes"}, decode(suite.mustRun("--json", "tasks", "list", "-s", "COMPLETED", "-p", "HIGH")))
	suite.Equal([]string{"Buy milk", "Write report", "File taxes"}, decode(suite.mustRun("--json", "tasks")))
	suite.Equal([]string{}, decode(suite.mustRun("--json", "tasks", "list", "-s", "CANCELLED")))

	suite.Contains(suite.mustRun("tasks", "list", "-s", "CANCELLED"), "No tasks.")

	_, _, err := suite.run("tasks", "list", "-s", "DONE")
	suite.Error(err)
}

func (suite *CLITestSuite) TestSearchAndFilter_UseServer() {
	suite.register()
	suite.mustRun("tasks", "create", "-t", "Buy milk", "-p", "LOW")
	suite.mustRun("tasks", "create", "-t", "Write report", "-d", "milk budget", "-s", "IN_PROGRESS", "-p", "HIGH")
	suite.mustRun("tasks", "create", "-t", "File taxes", "-s", "COMPLETED", "-p", "HIGH")

	decode := func(out string) []string {
		var tasks []dto.Task
		suite.Require().NoError(json.Unmarshal([]byte(out), &tasks))
		titles := make([]string, 0, len(tasks))
		for _, t := range tasks {
			titles = append(titles, t.Title)
		}
		return titles
	}

	suite.Equal([]string{"Buy milk", "Write report"}, decode(suite.mustRun("--json", "tasks", "search", "-q", "Milk")))
	suite.Equal([]string{"Write report"}, decode(suite.mustRun("--json", "tasks", "search", "-q", "milk", "-s", "IN_PROGRESS")))
	suite.Equal([]string{"File taxes"}, decode(suite.mustRun("--json", "tasks", "filter", "-s", "completed")))
	suite.Equal([]string{"Write report", "File taxes"}, decode(suite.mustRun("--json", "tasks", "filter", "-p", "HIGH")))

	_, _, err := suite.run("tasks", "filter", "-s", "PENDING", "-p", "LOW")
	suite.Error(err)
	_, _, err = suite.run("tasks", "filter")
	suite.Error(err)
}

func (suite *CLITestSuite) TestUpdate_KeepsUnsetFields() {
	suite.register()
	suite.mustRun("tasks", "create", "-t", "Buy milk", "-d", "oat", "-p", "HIGH", "--due", "2030-01-15")

	out := suite.mustRun("tasks", "update", "1", "--status", "COMPLETED")
	suite.Equal("Updated task 1: Buy milk\n", out)

	var task dto.Task
	suite.Require().NoError(json.Unmarshal([]byte(suite.mustRun("--json", "tasks", "get", "1")), &task))
	suite.Equal(dto.StatusCompleted, task.Status)
	suite.Equal(dto.PriorityHigh, task.Priority)
	suite.Require().NotNil(task.Description)
	suite.Equal("oat", *task.Description)
	suite.Require().NotNil(task.DueDate)

	suite.mustRun("tasks", "update", "1", "--clear-due", "--clear-description")
	task = dto.Task{}
	suite.Require().NoError(json.Unmarshal([]byte(suite.mustRun("--json", "tasks", "get", "1")), &task))
	suite.Nil(task.DueDate)
	suite.Nil(task.Description)
}

func (suite *CLITestSuite) TestDelete() {
	suite.register()
	suite.mustRun("tasks", "create", "-t", "Buy milk")

	suite.Equal("Deleted task 1.\n", suite.mustRun("tasks", "delete", "1", "--yes"))
	suite.Equal(int32(1), suite.deletes.Load())

	_, _, err := suite.run("tasks", "get", "1")
	suite.ErrorIs(err, apiclient.ErrNotFound)
}

func (suite *CLITestSuite) TestDelete_AsksForConfirmation() {
	suite.register()
	suite.mustRun("tasks", "create", "-t", "Buy milk")

	for _, answer := range []string{"", "n\n", "nope\n"} {
		suite.stdin = answer
		out, stderr, err := suite.run("tasks", "delete", "1")
		suite.Require().NoError(err)
		suite.Equal("Cancelled.\n", out)
		suite.Contains(stderr, "Delete task 1? [y/N]")
	}
	suite.Equal(int32(0), suite.deletes.Load())
	suite.Contains(suite.mustRun("tasks", "get", "1"), "Buy milk")

	suite.stdin = "Y\n"
	suite.Equal("Deleted task 1.\n", suite.mustRun("tasks", "delete", "1"))
	suite.Equal(int32(1), suite.deletes.Load())
}

func (suite *CLITestSuite) TestCreate_ReportsReturnedTask() {
	suite.register()
	suite.mustRun("tasks", "create", "-t", "First")
	suite.mustRun("tasks", "create", "-t", "Second")

	var created dto.Task
	suite.Require().NoError(json.Unmarshal([]byte(suite.mustRun("--json", "tasks", "create", "-t", "  Third  ")), &created))
	suite.Equal(int64(3), created.ID)
	suite.Equal("Third", created.Title)
}

func (suite *CLITestSuite) TestExpiredSession_ClearsSessionFile() {
	storage, err := session.OpenFileStorage(suite.sessionFile)
	suite.Require().NoError(err)
	suite.Require().NoError(session.NewStore(storage).Save("forged-token", dto.User{ID: 1, Username: "mallory", Email: "m@example.com"}))

	// the profile alone satisfies a local check
	suite.Contains(suite.mustRun("whoami"), "mallory")

	_, stderr, err := suite.run("tasks", "list")
	suite.ErrorIs(err, apiclient.ErrUnauthorized)
	suite.Contains(stderr, "Session expired.")

	_, err = os.Stat(suite.sessionFile)
	suite.True(os.IsNotExist(err))

	_, _, err = suite.run("whoami")
	suite.True(cli.IsLoginRequired(err))
}

func TestCLITestSuite(t *testing.T) {
	suite.Run(t, new(CLITestSuite))
}
