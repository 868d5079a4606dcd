package recommend_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"kino/models"
	"kino/services/library"
	"kino/services/recommend"
	"kino/services/storage"
)

type fakeProvider struct {
	mu      sync.Mutex
	results map[int64][]models.CatalogMovie
	err     error
	gate    chan struct{} // when set, Similar blocks until the channel closes
	calls   []int64
}

func (p *fakeProvider) Similar(_ context.Context, movieID int64) ([]models.CatalogMovie, error) {
	p.mu.Lock()
	p.calls = append(p.calls, movieID)
	gate := p.gate
	p.mu.Unlock()

	if gate != nil {
		<-gate
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	return p.results[movieID], nil
}

func (p *fakeProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

type fakeMembers struct {
	watchlist map[int64]bool
	history   map[int64]bool
}

func (m *fakeMembers) IsInWatchlist(id int64) bool { return m.watchlist[id] }
func (m *fakeMembers) IsInHistory(id int64) bool   { return m.history[id] }

func entry(id, seq int64) models.WatchlistEntry {
	return models.WatchlistEntry{
		MovieRef: models.MovieRef{ID: id, Title: fmt.Sprintf("movie-%d", id)},
		AddedSeq: seq,
	}
}

func similar(ids ...int64) []models.CatalogMovie {
	out := make([]models.CatalogMovie, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.CatalogMovie{ID: id, Title: fmt.Sprintf("similar-%d", id)})
	}
	return out
}

func TestPublishesFilteredRecommendations(t *testing.T) {
	provider := &fakeProvider{results: map[int64][]models.CatalogMovie{
		10: similar(1, 2, 3, 4),
	}}
	members := &fakeMembers{
		watchlist: map[int64]bool{2: true},
		history:   map[int64]bool{3: true},
	}
	engine := recommend.NewEngine(provider, members, nil)
	defer engine.Close()

	engine.OnWatchlistChanged([]models.WatchlistEntry{entry(10, 0)})

	require.Eventually(t, func() bool {
		return len(engine.Recommendations()) == 2
	}, time.Second, 5*time.Millisecond, "expected owned movies filtered out")

	recs := engine.Recommendations()
	if recs[0].ID != 1 || recs[1].ID != 4 {
		t.Fatalf("unexpected recommendations: %+v", recs)
	}
}

func TestTruncatesToTwelve(t *testing.T) {
	ids := make([]int64, 0, 20)
	for i := int64(1); i <= 20; i++ {
		ids = append(ids, i)
	}
	provider := &fakeProvider{results: map[int64][]models.CatalogMovie{
		10: similar(ids...),
	}}
	engine := recommend.NewEngine(provider, &fakeMembers{}, nil)
	defer engine.Close()

	engine.OnWatchlistChanged([]models.WatchlistEntry{entry(10, 0)})

	require.Eventually(t, func() bool {
		return len(engine.Recommendations()) == 12
	}, time.Second, 5*time.Millisecond)
}

func TestSeedsFromMostRecentlyAddedEntry(t *testing.T) {
	provider := &fakeProvider{results: map[int64][]models.CatalogMovie{
		20: similar(99),
	}}
	engine := recommend.NewEngine(provider, &fakeMembers{}, nil)
	defer engine.Close()

	// slice order differs from insertion order; the sequence decides
	engine.OnWatchlistChanged([]models.WatchlistEntry{entry(20, 5), entry(10, 1)})

	require.Eventually(t, func() bool {
		recs := engine.Recommendations()
		return len(recs) == 1 && recs[0].ID == 99
	}, time.Second, 5*time.Millisecond)
}

func TestEmptyWatchlistPublishesEmptyWithoutFetching(t *testing.T) {
	provider := &fakeProvider{results: map[int64][]models.CatalogMovie{
		10: similar(1),
	}}
	engine := recommend.NewEngine(provider, &fakeMembers{}, nil)
	defer engine.Close()

	engine.OnWatchlistChanged([]models.WatchlistEntry{entry(10, 0)})
	require.Eventually(t, func() bool {
		return len(engine.Recommendations()) == 1
	}, time.Second, 5*time.Millisecond)

	published := make(chan []models.MovieRef, 1)
	engine.Subscribe(func(list []models.MovieRef) {
		published <- list
	})

	before := provider.callCount()
	engine.OnWatchlistChanged(nil)

	select {
	case list := <-published:
		if len(list) != 0 {
			t.Fatalf("expected empty publication, got %+v", list)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected synchronous empty publication")
	}
	if provider.callCount() != before {
		t.Fatalf("expected no fetch for an empty watchlist")
	}
}

func TestStaleFetchIsDiscarded(t *testing.T) {
	gate := make(chan struct{})
	provider := &fakeProvider{
		results: map[int64][]models.CatalogMovie{
			10: similar(1),
			20: similar(2),
		},
		gate: gate,
	}
	engine := recommend.NewEngine(provider, &fakeMembers{}, nil)

	engine.OnWatchlistChanged([]models.WatchlistEntry{entry(10, 0)})
	require.Eventually(t, func() bool {
		return provider.callCount() == 1
	}, time.Second, time.Millisecond, "expected first fetch in flight")

	// supersede the in-flight fetch, then let both resolve
	engine.OnWatchlistChanged([]models.WatchlistEntry{entry(10, 0), entry(20, 1)})
	close(gate)
	engine.Close()

	recs := engine.Recommendations()
	if len(recs) != 1 || recs[0].ID != 2 {
		t.Fatalf("expected latest fetch to win, got %+v", recs)
	}
	if engine.StaleDiscards() != 1 {
		t.Fatalf("expected one stale discard, got %d", engine.StaleDiscards())
	}
}

type memoryKV struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryKV() *memoryKV {
	return &memoryKV{data: make(map[string]string)}
}

func (m *memoryKV) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memoryKV) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

type signedInAuth struct{}

func (signedInAuth) Authenticated() bool { return true }

// The store notifies observers while holding its own lock, so a refresh
// must never query membership under the engine lock. Wire a real store as
// the membership source, hold a fetch in flight, and mutate the watchlist
// again: the mutation has to commit without waiting on the fetch.
func TestStoreBackedMembershipAllowsConcurrentMutation(t *testing.T) {
	gate := make(chan struct{})
	provider := &fakeProvider{
		results: map[int64][]models.CatalogMovie{
			1: similar(101, 2),
			2: similar(102, 1),
		},
		gate: gate,
	}

	store, err := library.NewStore(signedInAuth{}, storage.NewAdapter(newMemoryKV(), nil), nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	engine := recommend.NewEngine(provider, store, nil)
	store.Subscribe(func(ev library.Event) {
		if ev.Kind == library.EventWatchlist {
			engine.OnWatchlistChanged(ev.Watchlist)
		}
	})

	if err := store.ToggleWatchlist(models.CatalogMovie{ID: 1, Title: "first"}); err != nil {
		t.Fatalf("ToggleWatchlist: %v", err)
	}
	require.Eventually(t, func() bool {
		return provider.callCount() == 1
	}, time.Second, time.Millisecond, "expected first fetch in flight")

	done := make(chan error, 1)
	go func() {
		done <- store.ToggleWatchlist(models.CatalogMovie{ID: 2, Title: "second"})
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("ToggleWatchlist: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("watchlist mutation blocked behind an in-flight refresh")
	}

	// Release the fetches and keep mutating while they filter, so refreshes
	// resolve concurrently with store notifications.
	close(gate)
	burst := make(chan error, 1)
	go func() {
		for i := 0; i < 50; i++ {
			if err := store.ToggleWatchlist(models.CatalogMovie{ID: 3, Title: "third"}); err != nil {
				burst <- err
				return
			}
		}
		burst <- nil
	}()

	select {
	case err := <-burst:
		if err != nil {
			t.Fatalf("ToggleWatchlist: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("watchlist mutations blocked behind resolving refreshes")
	}

	engine.Close()

	recs := engine.Recommendations()
	if len(recs) != 1 || recs[0].ID != 102 {
		t.Fatalf("expected the latest seed's results minus owned movies, got %+v", recs)
	}
}

func TestFetchFailurePublishesEmpty(t *testing.T) {
	provider := &fakeProvider{err: errors.New("upstream down")}
	engine := recommend.NewEngine(provider, &fakeMembers{}, nil)

	engine.OnWatchlistChanged([]models.WatchlistEntry{entry(10, 0)})
	engine.Close()

	if len(engine.Recommendations()) != 0 {
		t.Fatalf("expected empty list after failure")
	}
	if engine.FetchFailures() != 1 {
		t.Fatalf("expected one recorded failure, got %d", engine.FetchFailures())
	}
}
