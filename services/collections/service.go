package collections

import (
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"kino/models"
	"kino/services/auth"
	"kino/services/storage"
)

var (
	// ErrNotFound indicates no collection matches the id.
	ErrNotFound = errors.New("collection not found")
	// ErrInvalidName indicates an empty collection name.
	ErrInvalidName = errors.New("collection name must not be empty")
)

// AuthState is the slice of the auth gate the service consults before
// mutating.
type AuthState interface {
	Authenticated() bool
}

// Service owns user-created collections, persisted as one JSON document.
type Service struct {
	mu          sync.Mutex
	auth        AuthState
	persist     *storage.Adapter
	logger      *slog.Logger
	now         func() time.Time
	collections []models.Collection
}

// NewService restores collections from the persistence adapter.
func NewService(authState AuthState, persist *storage.Adapter, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{auth: authState, persist: persist, logger: logger, now: time.Now}
	if err := persist.Load(storage.KeyCollections, &s.collections); err != nil {
		return nil, err
	}
	return s, nil
}

// List returns all collections, newest first.
func (s *Service) List() []models.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Collection, len(s.collections))
	copy(out, s.collections)
	return out
}

// Get returns one collection by id.
func (s *Service) Get(id string) (models.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.collections {
		if c.ID == id {
			return c, nil
		}
	}
	return models.Collection{}, ErrNotFound
}

// Create adds a collection and returns it with its assigned id.
func (s *Service) Create(name, description string, tags []string, privacy string, movies []models.MovieRef) (models.Collection, error) {
	if !s.auth.Authenticated() {
		return models.Collection{}, auth.ErrAuthRequired
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Collection{}, ErrInvalidName
	}
	if privacy != models.CollectionPrivate {
		privacy = models.CollectionPublic
	}

	collection := models.Collection{
		ID:          "user-" + uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(description),
		Tags:        cleanTags(tags),
		Privacy:     privacy,
		Movies:      dedupeMovies(movies),
		CreatedAt:   s.now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections = append([]models.Collection{collection}, s.collections...)
	if err := s.persist.Save(storage.KeyCollections, s.collections); err != nil {
		return models.Collection{}, err
	}
	s.logger.Info("collections.created", "id", collection.ID, "name", name)
	return collection, nil
}

// Delete removes a collection by id.
func (s *Service) Delete(id string) error {
	if !s.auth.Authenticated() {
		return auth.ErrAuthRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.collections {
		if c.ID == id {
			s.collections = append(s.collections[:i], s.collections[i+1:]...)
			return s.persist.Save(storage.KeyCollections, s.collections)
		}
	}
	return ErrNotFound
}

// AddMovie appends a movie to a collection; duplicates by id are ignored.
func (s *Service) AddMovie(id string, movie models.MovieRef) error {
	if !s.auth.Authenticated() {
		return auth.ErrAuthRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.collections {
		if s.collections[i].ID != id {
			continue
		}
		for _, m := range s.collections[i].Movies {
			if m.ID == movie.ID {
				return nil
			}
		}
		s.collections[i].Movies = append(s.collections[i].Movies, movie)
		return s.persist.Save(storage.KeyCollections, s.collections)
	}
	return ErrNotFound
}

// RemoveMovie drops a movie from a collection by movie id.
func (s *Service) RemoveMovie(id string, movieID int64) error {
	if !s.auth.Authenticated() {
		return auth.ErrAuthRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.collections {
		if s.collections[i].ID != id {
			continue
		}
		for j, m := range s.collections[i].Movies {
			if m.ID == movieID {
				s.collections[i].Movies = append(s.collections[i].Movies[:j], s.collections[i].Movies[j+1:]...)
				return s.persist.Save(storage.KeyCollections, s.collections)
			}
		}
		return nil
	}
	return ErrNotFound
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

func dedupeMovies(movies []models.MovieRef) []models.MovieRef {
	seen := make(map[int64]bool, len(movies))
	out := make([]models.MovieRef, 0, len(movies))
	for _, m := range movies {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		out = append(out, m)
	}
	return out
}
