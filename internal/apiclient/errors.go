package apiclient

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	apierrors "github.com/yukikurage/taskmanager/internal/errors"
)

var (
	// ErrUnauthorized matches any 401 response. The session has already been
	// torn down when a caller sees it.
	ErrUnauthorized = errors.New("authentication required")
	// ErrNotFound matches any 404 response.
	ErrNotFound = errors.New("resource not found")
)

// StatusError is returned for every non-2xx response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.Path, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// Is lets errors.Is match the status sentinels.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

func newStatusError(method, path string, resp *resty.Response) *StatusError {
	e := &StatusError{
		Method:     method,
		Path:       path,
		StatusCode: resp.StatusCode(),
	}

	if apiErr, ok := resp.Error().(*apierrors.APIError); ok && apiErr != nil {
		e.Code = apiErr.Code
		e.Message = apiErr.Message
	}
	if e.Message == "" {
		e.Message = strings.TrimSpace(resp.String())
	}
	if e.Message == "" {
		e.Message = http.StatusText(e.StatusCode)
	}
	return e
}
