package reviews

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"kino/internal/database"
	"kino/models"
	"kino/services/auth"
)

var (
	// ErrInvalidRating indicates a rating outside the 1..5 star range.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	// ErrEmptyContent indicates a review without text.
	ErrEmptyContent = errors.New("review content must not be empty")
	// ErrNotFound indicates no review matches the id for this user.
	ErrNotFound = errors.New("review not found")
)

// AuthState is the slice of the auth gate the service consults before
// mutating.
type AuthState interface {
	Authenticated() bool
	Session() models.Session
}

// Service stores locally authored reviews alongside the catalog's own.
type Service struct {
	repo   *database.ReviewRepository
	auth   AuthState
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates the review service.
func NewService(repo *database.ReviewRepository, authState AuthState, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, auth: authState, logger: logger, now: time.Now}
}

// Add validates and stores a review for the active session's user.
func (s *Service) Add(movieID int64, content string, rating int) (models.Review, error) {
	if !s.auth.Authenticated() {
		return models.Review{}, auth.ErrAuthRequired
	}
	if rating < 1 || rating > 5 {
		return models.Review{}, ErrInvalidRating
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Review{}, ErrEmptyContent
	}

	session := s.auth.Session()
	review := models.Review{
		UserID:    session.UserID,
		MovieID:   movieID,
		Author:    session.DisplayName,
		Content:   content,
		Rating:    rating,
		CreatedAt: s.now().UTC(),
	}
	stored, err := s.repo.Insert(review)
	if err != nil {
		return models.Review{}, err
	}
	s.logger.Info("reviews.added", "movie", movieID, "rating", rating)
	return stored, nil
}

// ListByMovie returns local reviews for a movie, newest first.
func (s *Service) ListByMovie(movieID int64) ([]models.Review, error) {
	return s.repo.ListByMovie(movieID)
}

// Delete removes a review authored by the active session's user.
func (s *Service) Delete(id int64) error {
	if !s.auth.Authenticated() {
		return auth.ErrAuthRequired
	}
	removed, err := s.repo.Delete(id, s.auth.Session().UserID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFound
	}
	return nil
}
