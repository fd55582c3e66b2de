// Package auth holds the current sign-in session and keeps it in the system
// keyring between runs. The authentication protocol itself lives on the
// identity provider; this package only stores what it hands back.
package auth

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/colecta/colecta-cli/internal/models"
	"github.com/colecta/colecta-cli/internal/rest"
)

// Session is the authenticated principal. A nil *Session means anonymous /
// local mode.
type Session struct {
	User        models.User `json:"user"`
	AccessToken string      `json:"access_token"`
}

// Manager loads, caches and persists the session. Hooks registered with
// OnChange fire after every login and logout, mirroring the app-wide
// auth:login / auth:logout events of the web client.
type Manager struct {
	store    credentialStore
	current  *Session
	loaded   bool
	onChange []func(*Session)
}

// NewManager returns a manager backed by the system keyring, falling back to
// a file under the config directory on headless systems.
func NewManager() *Manager {
	return &Manager{store: newKeyringStore()}
}

// NewManagerAt returns a manager backed by a session file in dir. Used by
// tests and by deployments that cannot reach a keyring at all.
func NewManagerAt(dir string) *Manager {
	return &Manager{store: fileStore{dir: dir}}
}

// OnChange registers a hook invoked with the new session (nil on logout).
func (m *Manager) OnChange(fn func(*Session)) {
	m.onChange = append(m.onChange, fn)
}

// Current returns the active session, or nil when anonymous.
func (m *Manager) Current() *Session {
	if !m.loaded {
		m.loaded = true
		data, err := m.store.load()
		if err != nil || len(data) == 0 {
			return nil
		}
		var s Session
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		m.current = &s
	}
	return m.current
}

// Login persists the session and fires change hooks.
func (m *Manager) Login(s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := m.store.save(data); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	m.current = s
	m.loaded = true
	m.fire(s)
	return nil
}

// Logout discards the stored session and fires change hooks.
func (m *Manager) Logout() error {
	if err := m.store.delete(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	m.current = nil
	m.loaded = true
	m.fire(nil)
	return nil
}

func (m *Manager) fire(s *Session) {
	for _, fn := range m.onChange {
		fn(s)
	}
}

// SignIn exchanges an email and password for a session at the identity
// provider's password-grant endpoint. client must point at the backend base
// URL and already carry the apikey header.
func SignIn(ctx context.Context, client *rest.Client, email, password string) (*Session, error) {
	raw, err := client.Post(ctx, "/auth/v1/token?grant_type=password", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session response: %w", err)
	}
	if s.AccessToken == "" {
		return nil, fmt.Errorf("identity provider returned no access token")
	}
	return &s, nil
}
