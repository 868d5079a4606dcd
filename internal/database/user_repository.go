package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"kino/models"
)

var (
	// ErrUserNotFound indicates no account matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
)

// UserRepository persists registered accounts.
type UserRepository struct {
	conn *sql.DB
}

// NewUserRepository creates a repository backed by the given connection.
func NewUserRepository(conn *sql.DB) *UserRepository {
	return &UserRepository{conn: conn}
}

// Create inserts a new account with a pre-hashed password.
func (r *UserRepository) Create(user models.User, passwordHash string) error {
	_, err := r.conn.Exec(
		"INSERT INTO users (id, name, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)",
		user.ID, user.Name, user.Email, passwordHash, user.CreatedAt.UTC())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrEmailTaken
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// FindByEmail returns the account and its password hash for a login check.
func (r *UserRepository) FindByEmail(email string) (models.User, string, error) {
	var (
		user      models.User
		hash      string
		createdAt time.Time
	)
	err := r.conn.QueryRow(
		"SELECT id, name, email, password_hash, created_at FROM users WHERE email = ?",
		email).Scan(&user.ID, &user.Name, &user.Email, &hash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, "", ErrUserNotFound
	}
	if err != nil {
		return models.User{}, "", fmt.Errorf("find user by email: %w", err)
	}
	user.CreatedAt = createdAt
	return user, hash, nil
}

// Rename updates the display name for an account.
func (r *UserRepository) Rename(id, name string) error {
	res, err := r.conn.Exec("UPDATE users SET name = ? WHERE id = ?", name, id)
	if err != nil {
		return fmt.Errorf("rename user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rename user: %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}
