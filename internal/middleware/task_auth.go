package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/taskmanager/internal/errors"
)

const contextKeyTaskID = "task_id"

// RequireTaskID parses the :id path parameter. Ownership is checked by the
// service so that another user's task is indistinguishable from a missing one.
func RequireTaskID() gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || taskID <= 0 {
			apierrors.RespondWithError(c, http.StatusBadRequest, apierrors.NewAPIError(apierrors.ErrCodeInvalidFormat, "Invalid task ID"))
			return
		}

		c.Set(contextKeyTaskID, taskID)
		c.Next()
	}
}

// GetTaskID retrieves the task ID parsed by RequireTaskID
func GetTaskID(c *gin.Context) (int64, bool) {
	taskID, exists := c.Get(contextKeyTaskID)
	if !exists {
		return 0, false
	}
	id, ok := taskID.(int64)
	return id, ok
}
