package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"kino/internal/database"
	"kino/models"
	"kino/utils"
)

var (
	// ErrBadCredentials indicates the email/password pair does not match
	// a registered account.
	ErrBadCredentials = errors.New("bad credentials")
	// ErrInvalidInput indicates a malformed registration request.
	ErrInvalidInput = errors.New("invalid input")
)

// Service registers accounts and exchanges credentials for sessions. The
// boolean outcome lands in the Gate; callers only consume the gate state
// and the issued bearer token.
type Service struct {
	users  *database.UserRepository
	gate   *Gate
	logger *slog.Logger
}

// NewService creates the account service.
func NewService(users *database.UserRepository, gate *Gate, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{users: users, gate: gate, logger: logger}
}

// Register creates an account, then logs it in and returns the session.
func (s *Service) Register(name, email, password string) (models.Session, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || !strings.Contains(email, "@") {
		return models.Session{}, fmt.Errorf("%w: name and email are required", ErrInvalidInput)
	}
	if len(password) < 8 {
		return models.Session{}, fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.Session{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.users.Create(user, string(hash)); err != nil {
		return models.Session{}, err
	}

	s.logger.Info("auth.registered", "email", email)
	return s.startSession(user)
}

// Login verifies credentials and transitions the gate to Authenticated.
func (s *Service) Login(email, password string) (models.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, hash, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return models.Session{}, ErrBadCredentials
		}
		return models.Session{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return models.Session{}, ErrBadCredentials
	}

	return s.startSession(user)
}

// Logout revokes the session and transitions the gate to Anonymous.
func (s *Service) Logout() error {
	return s.gate.Logout()
}

func (s *Service) startSession(user models.User) (models.Session, error) {
	token, err := utils.GenerateToken()
	if err != nil {
		return models.Session{}, err
	}
	if err := s.gate.Login(user.ID, user.Name, user.Email, token); err != nil {
		return models.Session{}, err
	}
	return s.gate.Session(), nil
}
