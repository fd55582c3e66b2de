package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/colecta/colecta-cli/internal/models"
	"github.com/colecta/colecta-cli/internal/rest"
)

func testSession() *Session {
	return &Session{
		User:        models.User{ID: "user-1", Email: "ana@example.com"},
		AccessToken: "token-abc",
	}
}

func TestManagerPersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	m := NewManagerAt(dir)
	if m.Current() != nil {
		t.Fatal("fresh manager has a session")
	}
	if err := m.Login(testSession()); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	reloaded := NewManagerAt(dir)
	got := reloaded.Current()
	if got == nil {
		t.Fatal("session not persisted")
	}
	if got.User.Email != "ana@example.com" || got.AccessToken != "token-abc" {
		t.Errorf("reloaded session = %+v", got)
	}
}

func TestLogoutClearsStoredSession(t *testing.T) {
	dir := t.TempDir()

	m := NewManagerAt(dir)
	if err := m.Login(testSession()); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if err := m.Logout(); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if m.Current() != nil {
		t.Error("session still active after logout")
	}

	reloaded := NewManagerAt(dir)
	if reloaded.Current() != nil {
		t.Error("stored session survived logout")
	}
}

func TestOnChangeHooks(t *testing.T) {
	m := NewManagerAt(t.TempDir())

	var events []*Session
	m.OnChange(func(s *Session) { events = append(events, s) })

	if err := m.Login(testSession()); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if err := m.Logout(); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("hook fired %d times, want 2", len(events))
	}
	if events[0] == nil || events[0].AccessToken != "token-abc" {
		t.Errorf("login event = %+v", events[0])
	}
	if events[1] != nil {
		t.Errorf("logout event = %+v, want anonymous", events[1])
	}
}

func TestSignIn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/token" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("grant_type"); got != "password" {
			t.Errorf("grant_type = %q", got)
		}
		w.Write([]byte(`{"access_token":"jwt-123","user":{"id":"user-1","email":"ana@example.com"}}`))
	}))
	defer srv.Close()

	s, err := SignIn(context.Background(), rest.New(srv.URL, nil), "ana@example.com", "hunter2")
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	if s.AccessToken != "jwt-123" || s.User.ID != "user-1" {
		t.Errorf("session = %+v", s)
	}
}

func TestSignInRejectsMissingToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"user":{"id":"user-1"}}`))
	}))
	defer srv.Close()

	if _, err := SignIn(context.Background(), rest.New(srv.URL, nil), "ana@example.com", "hunter2"); err == nil {
		t.Error("SignIn() accepted a response without a token")
	}
}
