// Package session persists the client's session (bearer token and user
// profile) in a Storage namespace.
package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/yukikurage/taskmanager/internal/dto"
)

// Storage keys.
const (
	TokenKey = "token"
	UserKey  = "user"
)

// Session pairs a bearer token with the user it authenticates.
type Session struct {
	Token string
	User  dto.User
}

// Store reads and writes the session entries of a Storage.
type Store struct {
	storage Storage
}

// NewStore wraps storage.
func NewStore(storage Storage) *Store {
	return &Store{storage: storage}
}

// Save persists both entries.
func (s *Store) Save(token string, user dto.User) error {
	if token == "" {
		return errors.New("session token is empty")
	}

	profile, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user profile: %w", err)
	}

	if err := s.storage.Set(TokenKey, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	if err := s.storage.Set(UserKey, string(profile)); err != nil {
		return fmt.Errorf("failed to save user profile: %w", err)
	}
	return nil
}

// Load returns the stored session. It reports false unless both entries are
// present and the profile decodes.
func (s *Store) Load() (Session, bool) {
	token, ok := s.Token()
	if !ok {
		return Session{}, false
	}

	raw, ok := s.storage.Get(UserKey)
	if !ok || raw == "" {
		return Session{}, false
	}

	var user dto.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return Session{}, false
	}

	return Session{Token: token, User: user}, true
}

// Token returns the stored bearer token.
func (s *Store) Token() (string, bool) {
	token, ok := s.storage.Get(TokenKey)
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

// Clear removes both entries.
func (s *Store) Clear() error {
	if err := s.storage.Remove(TokenKey, UserKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
