package auth

import (
	"errors"
	"log/slog"
	"sync"

	"kino/models"
	"kino/services/storage"
)

// ErrAuthRequired signals a mutating call while anonymous. It is a
// recoverable condition: the boundary redirects to login and no mutation
// occurs.
var ErrAuthRequired = errors.New("authentication required")

// Gate is the process-wide Anonymous/Authenticated state machine. The
// session is persisted so the state survives restarts; absent or corrupt
// session data restores to Anonymous.
type Gate struct {
	mu      sync.RWMutex
	session models.Session
	persist *storage.Adapter
	logger  *slog.Logger
}

// NewGate restores the gate from the persisted session.
func NewGate(persist *storage.Adapter, logger *slog.Logger) (*Gate, error) {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Gate{persist: persist, logger: logger}
	if err := persist.Load(storage.KeySession, &g.session); err != nil {
		return nil, err
	}
	if g.session.Authenticated {
		logger.Info("auth.session.restored", "email", g.session.Email)
	}
	return g, nil
}

// Authenticated reports whether the gate is in the Authenticated state.
func (g *Gate) Authenticated() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.session.Authenticated
}

// Session returns a copy of the current session.
func (g *Gate) Session() models.Session {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.session
}

// Login transitions to Authenticated and persists the session fields.
func (g *Gate) Login(userID, displayName, email, token string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.session = models.Session{
		Authenticated: true,
		UserID:        userID,
		DisplayName:   displayName,
		Email:         email,
		Token:         token,
	}
	if err := g.persist.Save(storage.KeySession, g.session); err != nil {
		return err
	}
	g.logger.Info("auth.session.login", "email", email)
	return nil
}

// Logout transitions to Anonymous. Library collections are intentionally
// left untouched; they are keyed by a fixed storage namespace, not per-user.
func (g *Gate) Logout() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.session = models.Session{}
	if err := g.persist.Save(storage.KeySession, g.session); err != nil {
		return err
	}
	g.logger.Info("auth.session.logout")
	return nil
}

// SetDisplayName updates the profile name on the active session.
func (g *Gate) SetDisplayName(name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.session.Authenticated {
		return ErrAuthRequired
	}
	g.session.DisplayName = name
	return g.persist.Save(storage.KeySession, g.session)
}

// ValidToken reports whether token matches the active session token.
func (g *Gate) ValidToken(token string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.session.Authenticated && token != "" && token == g.session.Token
}
