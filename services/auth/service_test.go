package auth_test

import (
	"errors"
	"path/filepath"
	"testing"

	"kino/internal/database"
	"kino/services/auth"
	"kino/services/storage"
)

func newTestService(t *testing.T) (*auth.Service, *auth.Gate) {
	t.Helper()

	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "kino.db")})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	gate, err := auth.NewGate(storage.NewAdapter(db.KV, nil), nil)
	if err != nil {
		t.Fatalf("failed to create gate: %v", err)
	}
	return auth.NewService(db.Users, gate, nil), gate
}

func TestRegisterStartsSession(t *testing.T) {
	svc, gate := newTestService(t)

	session, err := svc.Register("Ada", "Ada@Example.com ", "correct horse")
	if err != nil {
		t.Fatalf("register returned error: %v", err)
	}

	if !session.Authenticated {
		t.Fatalf("expected authenticated session after register")
	}
	if session.Email != "ada@example.com" {
		t.Fatalf("expected normalised email, got %q", session.Email)
	}
	if session.Token == "" {
		t.Fatalf("expected a bearer token")
	}
	if !gate.Authenticated() {
		t.Fatalf("expected gate authenticated after register")
	}
}

func TestRegisterValidatesInput(t *testing.T) {
	svc, _ := newTestService(t)

	cases := []struct {
		name, email, password string
	}{
		{"", "ada@example.com", "correct horse"},
		{"Ada", "", "correct horse"},
		{"Ada", "not-an-email", "correct horse"},
		{"Ada", "ada@example.com", "short"},
	}
	for _, tc := range cases {
		if _, err := svc.Register(tc.name, tc.email, tc.password); !errors.Is(err, auth.ErrInvalidInput) {
			t.Fatalf("register(%q, %q): expected ErrInvalidInput, got %v", tc.name, tc.email, err)
		}
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.Register("Ada", "ada@example.com", "correct horse"); err != nil {
		t.Fatalf("first register returned error: %v", err)
	}
	if _, err := svc.Register("Imposter", "ada@example.com", "correct horse"); !errors.Is(err, database.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLoginVerifiesPassword(t *testing.T) {
	svc, gate := newTestService(t)

	if _, err := svc.Register("Ada", "ada@example.com", "correct horse"); err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	if err := svc.Logout(); err != nil {
		t.Fatalf("logout returned error: %v", err)
	}

	if _, err := svc.Login("ada@example.com", "wrong password"); !errors.Is(err, auth.ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials for wrong password, got %v", err)
	}
	if _, err := svc.Login("nobody@example.com", "correct horse"); !errors.Is(err, auth.ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials for unknown email, got %v", err)
	}
	if gate.Authenticated() {
		t.Fatalf("expected gate anonymous after failed logins")
	}

	session, err := svc.Login("ADA@example.com", "correct horse")
	if err != nil {
		t.Fatalf("login returned error: %v", err)
	}
	if !session.Authenticated || session.DisplayName != "Ada" {
		t.Fatalf("unexpected session after login: %+v", session)
	}
}

func TestLoginIssuesFreshToken(t *testing.T) {
	svc, _ := newTestService(t)

	first, err := svc.Register("Ada", "ada@example.com", "correct horse")
	if err != nil {
		t.Fatalf("register returned error: %v", err)
	}

	second, err := svc.Login("ada@example.com", "correct horse")
	if err != nil {
		t.Fatalf("login returned error: %v", err)
	}

	if first.Token == second.Token {
		t.Fatalf("expected a fresh token per login")
	}
}
