package library

import (
	"log/slog"
	"sync"
	"time"

	"kino/models"
	"kino/services/auth"
	"kino/services/storage"
)

// AuthState is the slice of the auth gate the store consults before
// mutating.
type AuthState interface {
	Authenticated() bool
}

// EventKind names which collection an event describes.
type EventKind string

const (
	EventFavorites EventKind = "favorites"
	EventWatchlist EventKind = "watchlist"
	EventHistory   EventKind = "history"
	EventRatings   EventKind = "ratings"
)

// Event describes a committed mutation. Watchlist events carry a snapshot
// so observers never read the live slice.
type Event struct {
	Kind      EventKind
	Watchlist []models.WatchlistEntry
}

// Observer receives events synchronously after a mutation commits, in
// mutation order. Observers must not call back into the store from the
// same goroutine.
type Observer func(Event)

// Store owns the favorites, watchlist and history collections. Mutations
// are gated on authentication, persisted write-through, and announced to
// observers. Queries are pure.
type Store struct {
	mu        sync.Mutex
	auth      AuthState
	persist   *storage.Adapter
	logger    *slog.Logger
	now       func() time.Time
	observers []Observer

	favorites []models.MovieRef
	watchlist []models.WatchlistEntry
	history   []models.HistoryEntry
	ratings   map[int64]int
	nextSeq   int64
}

// NewStore restores the collections from the persistence adapter. Corrupt
// stored collections come back empty; that is handled below this layer.
func NewStore(authState AuthState, persist *storage.Adapter, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		auth:    authState,
		persist: persist,
		logger:  logger,
		now:     time.Now,
		ratings: make(map[int64]int),
	}

	if err := persist.Load(storage.KeyFavorites, &s.favorites); err != nil {
		return nil, err
	}
	if err := persist.Load(storage.KeyWatchlist, &s.watchlist); err != nil {
		return nil, err
	}
	if err := persist.Load(storage.KeyHistory, &s.history); err != nil {
		return nil, err
	}
	if err := persist.Load(storage.KeyRatings, &s.ratings); err != nil {
		return nil, err
	}
	if s.ratings == nil {
		s.ratings = make(map[int64]int)
	}

	for _, entry := range s.watchlist {
		if entry.AddedSeq >= s.nextSeq {
			s.nextSeq = entry.AddedSeq + 1
		}
	}

	return s, nil
}

// Subscribe registers an observer for committed mutations.
func (s *Store) Subscribe(fn Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// IsFavorite reports membership in favorites.
func (s *Store) IsFavorite(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return indexFavorite(s.favorites, id) >= 0
}

// IsInWatchlist reports membership in the watchlist.
func (s *Store) IsInWatchlist(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return indexWatchlist(s.watchlist, id) >= 0
}

// IsInHistory reports membership in watch history.
func (s *Store) IsInHistory(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return indexHistory(s.history, id) >= 0
}

// Favorites returns a copy of the favorites in insertion order.
func (s *Store) Favorites() []models.MovieRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.MovieRef, len(s.favorites))
	copy(out, s.favorites)
	return out
}

// Watchlist returns a copy of the watchlist in insertion order.
func (s *Store) Watchlist() []models.WatchlistEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshotWatchlist(s.watchlist)
}

// History returns a copy of the history, most recently watched first.
func (s *Store) History() []models.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.HistoryEntry, len(s.history))
	copy(out, s.history)
	return out
}

// ToggleFavorite adds the movie to favorites, or removes it when already
// present. Calling twice with the same movie restores the prior state.
func (s *Store) ToggleFavorite(movie models.CatalogMovie) error {
	if !s.auth.Authenticated() {
		return auth.ErrAuthRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := indexFavorite(s.favorites, movie.ID); i >= 0 {
		s.favorites = append(s.favorites[:i], s.favorites[i+1:]...)
		s.logger.Debug("library.favorites.removed", "id", movie.ID)
	} else {
		s.favorites = append(s.favorites, models.ProjectMovie(movie))
		s.logger.Debug("library.favorites.added", "id", movie.ID)
	}

	if err := s.persist.Save(storage.KeyFavorites, s.favorites); err != nil {
		return err
	}
	s.notifyLocked(Event{Kind: EventFavorites})
	return nil
}

// ToggleWatchlist adds the movie to the watchlist, or removes it when
// already present. Watchlist changes are announced with a snapshot so the
// recommendation refresh keys off the committed state.
func (s *Store) ToggleWatchlist(movie models.CatalogMovie) error {
	if !s.auth.Authenticated() {
		return auth.ErrAuthRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := indexWatchlist(s.watchlist, movie.ID); i >= 0 {
		s.watchlist = append(s.watchlist[:i], s.watchlist[i+1:]...)
		s.logger.Debug("library.watchlist.removed", "id", movie.ID)
	} else {
		s.watchlist = append(s.watchlist, models.WatchlistEntry{
			MovieRef: models.ProjectMovie(movie),
			AddedAt:  s.now().UTC(),
			AddedSeq: s.nextSeq,
		})
		s.nextSeq++
		s.logger.Debug("library.watchlist.added", "id", movie.ID)
	}

	if err := s.persist.Save(storage.KeyWatchlist, s.watchlist); err != nil {
		return err
	}
	s.notifyLocked(Event{Kind: EventWatchlist, Watchlist: snapshotWatchlist(s.watchlist)})
	return nil
}

// MoveToHistory marks the movie watched now. Any previous history entry
// for the same id is replaced and moved to the most recent position, and
// the movie leaves the watchlist if present.
func (s *Store) MoveToHistory(movie models.CatalogMovie) error {
	if !s.auth.Authenticated() {
		return auth.ErrAuthRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry := models.HistoryEntry{
		MovieRef:    models.ProjectMovie(movie),
		DateWatched: s.now().UTC(),
	}
	if i := indexHistory(s.history, movie.ID); i >= 0 {
		s.history = append(s.history[:i], s.history[i+1:]...)
	}
	s.history = append([]models.HistoryEntry{entry}, s.history...)

	watchlistChanged := false
	if i := indexWatchlist(s.watchlist, movie.ID); i >= 0 {
		s.watchlist = append(s.watchlist[:i], s.watchlist[i+1:]...)
		if err := s.persist.Save(storage.KeyWatchlist, s.watchlist); err != nil {
			return err
		}
		watchlistChanged = true
	}

	if err := s.persist.Save(storage.KeyHistory, s.history); err != nil {
		return err
	}
	s.logger.Debug("library.history.watched", "id", movie.ID)

	s.notifyLocked(Event{Kind: EventHistory})
	if watchlistChanged {
		s.notifyLocked(Event{Kind: EventWatchlist, Watchlist: snapshotWatchlist(s.watchlist)})
	}
	return nil
}

// RemoveFromHistory deletes the history entry with the matching id. A
// missing entry is a no-op.
func (s *Store) RemoveFromHistory(id int64) error {
	if !s.auth.Authenticated() {
		return auth.ErrAuthRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexHistory(s.history, id)
	if i < 0 {
		return nil
	}
	s.history = append(s.history[:i], s.history[i+1:]...)

	if err := s.persist.Save(storage.KeyHistory, s.history); err != nil {
		return err
	}
	s.logger.Debug("library.history.removed", "id", id)
	s.notifyLocked(Event{Kind: EventHistory})
	return nil
}

// Rating returns the user's 1..10 rating for a movie, or 0 when unrated.
func (s *Store) Rating(id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ratings[id]
}

// RateMovie stores a 1..10 rating. Out-of-range values are clamped; a zero
// rating removes the entry.
func (s *Store) RateMovie(id int64, rating int) error {
	if !s.auth.Authenticated() {
		return auth.ErrAuthRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case rating <= 0:
		delete(s.ratings, id)
	case rating > 10:
		s.ratings[id] = 10
	default:
		s.ratings[id] = rating
	}

	if err := s.persist.Save(storage.KeyRatings, s.ratings); err != nil {
		return err
	}
	s.notifyLocked(Event{Kind: EventRatings})
	return nil
}

func (s *Store) notifyLocked(event Event) {
	for _, fn := range s.observers {
		fn(event)
	}
}

func snapshotWatchlist(entries []models.WatchlistEntry) []models.WatchlistEntry {
	out := make([]models.WatchlistEntry, len(entries))
	copy(out, entries)
	return out
}

func indexFavorite(refs []models.MovieRef, id int64) int {
	for i, ref := range refs {
		if ref.ID == id {
			return i
		}
	}
	return -1
}

func indexWatchlist(entries []models.WatchlistEntry, id int64) int {
	for i, entry := range entries {
		if entry.ID == id {
			return i
		}
	}
	return -1
}

func indexHistory(entries []models.HistoryEntry, id int64) int {
	for i, entry := range entries {
		if entry.ID == id {
			return i
		}
	}
	return -1
}
