package recommend

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/sourcegraph/conc"

	"kino/models"
)

// maxRecommendations caps the published list.
const maxRecommendations = 12

// SimilarProvider is the catalog capability the engine consumes.
type SimilarProvider interface {
	Similar(ctx context.Context, movieID int64) ([]models.CatalogMovie, error)
}

// Membership answers whether an id is already owned by the library.
type Membership interface {
	IsInWatchlist(id int64) bool
	IsInHistory(id int64) bool
}

// Engine keeps a list of up to 12 similar movies current with the most
// recently added watchlist entry. Every watchlist change bumps a version;
// a fetch that resolves after a newer change is discarded so the published
// list always corresponds to the latest watchlist state.
type Engine struct {
	provider SimilarProvider
	members  Membership
	logger   *slog.Logger
	wg       *conc.WaitGroup

	mu        sync.Mutex
	version   uint64
	current   []models.MovieRef
	listeners []func([]models.MovieRef)

	stale    atomic.Uint64
	failures atomic.Uint64
}

// NewEngine creates an engine. Wire it to a library store by forwarding
// watchlist snapshots from store.Subscribe into OnWatchlistChanged.
func NewEngine(provider SimilarProvider, members Membership, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		provider: provider,
		members:  members,
		logger:   logger,
		wg:       conc.NewWaitGroup(),
	}
}

// OnWatchlistChanged schedules a recommendation refresh for the given
// watchlist snapshot. An empty watchlist publishes an empty list
// immediately without fetching.
func (e *Engine) OnWatchlistChanged(snapshot []models.WatchlistEntry) {
	e.mu.Lock()
	e.version++
	version := e.version

	if len(snapshot) == 0 {
		e.publishLocked(nil)
		e.mu.Unlock()
		e.logger.Debug("recommend.cleared", "version", version)
		return
	}
	e.mu.Unlock()

	seed := seedEntry(snapshot)
	e.wg.Go(func() {
		e.refresh(version, seed)
	})
}

// Recommendations returns a copy of the currently published list.
func (e *Engine) Recommendations() []models.MovieRef {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.MovieRef, len(e.current))
	copy(out, e.current)
	return out
}

// Subscribe registers a listener for every published list.
func (e *Engine) Subscribe(fn func([]models.MovieRef)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, fn)
}

// StaleDiscards reports how many resolved fetches were superseded and
// dropped.
func (e *Engine) StaleDiscards() uint64 {
	return e.stale.Load()
}

// FetchFailures reports how many fetches errored.
func (e *Engine) FetchFailures() uint64 {
	return e.failures.Load()
}

// Close waits for in-flight fetches to settle.
func (e *Engine) Close() {
	e.wg.Wait()
}

func (e *Engine) refresh(version uint64, seed models.WatchlistEntry) {
	movies, err := e.provider.Similar(context.Background(), seed.ID)

	// Filter before taking the engine lock. Membership lives in the store,
	// which notifies this engine while holding its own lock; querying it
	// under e.mu would invert that order and deadlock. A watchlist change
	// racing this filter also bumped the version, so the check below
	// discards the result.
	var out []models.MovieRef
	if err == nil {
		out = make([]models.MovieRef, 0, maxRecommendations)
		for _, movie := range movies {
			if e.members.IsInWatchlist(movie.ID) || e.members.IsInHistory(movie.ID) {
				continue
			}
			out = append(out, models.ProjectMovie(movie))
			if len(out) == maxRecommendations {
				break
			}
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if version != e.version {
		e.stale.Add(1)
		e.logger.Debug("recommend.fetch.stale_discarded",
			"version", version, "current", e.version, "seed", seed.ID)
		return
	}

	if err != nil {
		e.failures.Add(1)
		e.logger.Warn("recommend.fetch.failed", "seed", seed.ID, "error", err)
		e.publishLocked(nil)
		return
	}

	e.logger.Debug("recommend.published", "seed", seed.ID, "count", len(out))
	e.publishLocked(out)
}

func (e *Engine) publishLocked(list []models.MovieRef) {
	e.current = list
	for _, fn := range e.listeners {
		published := make([]models.MovieRef, len(list))
		copy(published, list)
		fn(published)
	}
}

// seedEntry picks the most recently added entry by its insertion sequence,
// not by slice position.
func seedEntry(snapshot []models.WatchlistEntry) models.WatchlistEntry {
	seed := snapshot[0]
	for _, entry := range snapshot[1:] {
		if entry.AddedSeq > seed.AddedSeq {
			seed = entry
		}
	}
	return seed
}
