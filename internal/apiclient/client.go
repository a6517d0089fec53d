// Package apiclient is a typed client of the task manager REST API.
//
// Every request carries the session's bearer token when one is stored. Any
// 401 response tears the session down (clears the token source, notifies
// listeners, redirects to login) before the error reaches the caller.
package apiclient

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	apierrors "github.com/yukikurage/taskmanager/internal/errors"
)

const (
	DefaultBaseURL  = "http://localhost:8080/api"
	RequestIDHeader = "X-Request-ID"
)

// TokenSource supplies the bearer token and discards it when the server
// rejects it. *session.Store satisfies it.
type TokenSource interface {
	Token() (string, bool)
	Clear() error
}

// Navigator moves the application to its login entry point.
type Navigator interface {
	RedirectToLogin()
}

// Config configures a Client.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client calls the REST API. It performs no retries.
type Client struct {
	rest           *resty.Client
	tokens         TokenSource
	nav            Navigator
	logger         *slog.Logger
	onUnauthorized []func()
}

// New creates a Client. tokens and nav may be nil.
func New(cfg Config, tokens TokenSource, nav Navigator) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	var rest *resty.Client
	if cfg.HTTPClient != nil {
		rest = resty.NewWithClient(cfg.HTTPClient)
	} else {
		rest = resty.New()
	}
	rest.SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetDisableWarn(true)

	c := &Client{
		rest:   rest,
		tokens: tokens,
		nav:    nav,
		logger: cfg.Logger,
	}
	rest.OnBeforeRequest(c.authorize)
	return c
}

// OnUnauthorized registers fn to run whenever a response reports an invalid
// credential. Listeners run after the token source is cleared and before
// the redirect.
func (c *Client) OnUnauthorized(fn func()) {
	c.onUnauthorized = append(c.onUnauthorized, fn)
}

func (c *Client) authorize(_ *resty.Client, r *resty.Request) error {
	if c.tokens != nil {
		if token, ok := c.tokens.Token(); ok {
			r.SetAuthToken(token)
		}
	}
	if r.Header.Get(RequestIDHeader) == "" {
		r.SetHeader(RequestIDHeader, uuid.NewString())
	}
	return nil
}

func (c *Client) expireSession(ctx context.Context) {
	if c.tokens != nil {
		if err := c.tokens.Clear(); err != nil {
			c.logger.ErrorContext(ctx, "failed to clear session", slog.Any("error", err))
		}
	}
	for _, fn := range c.onUnauthorized {
		fn()
	}
	if c.nav != nil {
		c.nav.RedirectToLogin()
	}
}

// do executes one request. configure sets body, result and parameters.
func (c *Client) do(ctx context.Context, method, path string, configure func(*resty.Request)) error {
	req := c.rest.R().
		SetContext(ctx).
		SetError(&apierrors.APIError{})
	if configure != nil {
		configure(req)
	}

	start := time.Now()
	resp, err := req.Execute(method, path)

	status := 0
	if resp != nil {
		status = resp.StatusCode()
	}
	attrs := []any{
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Duration("duration", time.Since(start)),
		slog.String("request_id", req.Header.Get(RequestIDHeader)),
	}

	if status == http.StatusUnauthorized {
		c.logger.WarnContext(ctx, "api rejected credentials", attrs...)
		c.expireSession(ctx)
		return newStatusError(method, path, resp)
	}
	if err != nil {
		c.logger.WarnContext(ctx, "api request failed", append(attrs, slog.Any("error", err))...)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		statusErr := newStatusError(method, path, resp)
		c.logger.WarnContext(ctx, "api request failed", append(attrs, slog.String("error", statusErr.Message))...)
		return statusErr
	}

	c.logger.DebugContext(ctx, "api request completed", attrs...)
	return nil
}
