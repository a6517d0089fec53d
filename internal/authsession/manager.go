// Package authsession owns the client's notion of who is signed in.
package authsession

import (
	"context"
	"fmt"

	"github.com/yukikurage/taskmanager/internal/dto"
	"github.com/yukikurage/taskmanager/internal/session"
)

// State is the authentication state of a Manager.
type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// API is the part of the API client the manager needs.
type API interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error)
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error)
	OnUnauthorized(fn func())
}

// Manager holds the current user and keeps the session store in step with it.
type Manager struct {
	api   API
	store *session.Store
	user  *dto.User
}

// New creates a Manager, hydrated from store when it holds a complete
// session. The manager drops its user whenever api reports an invalid
// credential.
func New(api API, store *session.Store) *Manager {
	m := &Manager{
		api:   api,
		store: store,
	}
	if sess, ok := store.Load(); ok {
		user := sess.User
		m.user = &user
	}
	api.OnUnauthorized(m.forget)
	return m
}

// Login authenticates with email and password.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	resp, err := m.api.Login(ctx, dto.LoginRequest{Email: email, Password: password})
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	return m.establish(resp)
}

// Register creates an account and signs in with it.
func (m *Manager) Register(ctx context.Context, username, email, password string) error {
	resp, err := m.api.Register(ctx, dto.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	})
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}
	return m.establish(resp)
}

// Logout discards the session locally.
func (m *Manager) Logout() error {
	m.user = nil
	return m.store.Clear()
}

// User returns the signed-in user.
func (m *Manager) User() (dto.User, bool) {
	if m.user == nil {
		return dto.User{}, false
	}
	return *m.user, true
}

// IsAuthenticated reports whether a user is signed in.
func (m *Manager) IsAuthenticated() bool {
	return m.user != nil
}

// State returns the current state.
func (m *Manager) State() State {
	if m.user == nil {
		return Unauthenticated
	}
	return Authenticated
}

func (m *Manager) establish(resp *dto.AuthResponse) error {
	user := resp.User()
	if err := m.store.Save(resp.Token, user); err != nil {
		return err
	}
	m.user = &user
	return nil
}

func (m *Manager) forget() {
	m.user = nil
}
