// Package guard decides whether a protected view may be entered.
package guard

import "errors"

// LoginPath is where unauthenticated visitors are sent.
const LoginPath = "/login"

// ErrLoginRequired is returned by Require when there is no session.
var ErrLoginRequired = errors.New("login required")

// Authenticator reports the current authentication state.
type Authenticator interface {
	IsAuthenticated() bool
}

// Decision is the outcome of a guard check.
type Decision struct {
	Allow    bool
	Redirect string
}

// Check allows entry when a is authenticated and redirects to LoginPath otherwise.
func Check(a Authenticator) Decision {
	if a != nil && a.IsAuthenticated() {
		return Decision{Allow: true}
	}
	return Decision{Redirect: LoginPath}
}

// Require is Check for callers that cannot redirect.
func Require(a Authenticator) error {
	if !Check(a).Allow {
		return ErrLoginRequired
	}
	return nil
}
