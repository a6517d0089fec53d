package constants

import "time"

// Context keys
const (
	ContextKeyUserID    = "user_id"
	ContextKeyRequestID = "request_id"
)

// Auth
const (
	MinPasswordLength = 6
	TokenType         = "Bearer"
	TokenIssuer       = "taskmanager"
)

// Web client
const (
	SessionCookieName = "task_session"
	SessionMaxAge     = 86400 * 7
	RedisPoolSize     = 10
)

// HTTP
const (
	RequestIDHeader = "X-Request-ID"
	ShutdownTimeout = 5 * time.Second
)
