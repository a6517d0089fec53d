package web

import (
	"fmt"

	"github.com/gin-contrib/sessions"
)

// sessionStorage keeps the client session in the visitor's gin session, so
// the browser cookie (or the redis record behind it) plays the part of local
// storage.
type sessionStorage struct {
	s sessions.Session
}

func (st sessionStorage) Get(key string) (string, bool) {
	v, ok := st.s.Get(key).(string)
	return v, ok
}

func (st sessionStorage) Set(key, value string) error {
	st.s.Set(key, value)
	if err := st.s.Save(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (st sessionStorage) Remove(keys ...string) error {
	for _, k := range keys {
		st.s.Delete(k)
	}
	if err := st.s.Save(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// deferredNavigator records a redirect request. Handlers answer it once the
// current API call has returned.
type deferredNavigator struct {
	redirected bool
}

func (n *deferredNavigator) RedirectToLogin() {
	n.redirected = true
}
