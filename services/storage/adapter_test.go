package storage_test

import (
	"testing"

	"kino/models"
	"kino/services/storage"
)

type memoryKV struct {
	data map[string]string
}

func newMemoryKV() *memoryKV {
	return &memoryKV{data: make(map[string]string)}
}

func (m *memoryKV) Get(key string) (string, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryKV) Set(key, value string) error {
	m.data[key] = value
	return nil
}

func (m *memoryKV) Delete(key string) error {
	delete(m.data, key)
	return nil
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	kv := newMemoryKV()
	adapter := storage.NewAdapter(kv, nil)

	saved := []models.MovieRef{
		{ID: 603, Title: "The Matrix", PosterPath: "/matrix.jpg"},
		{ID: 550, Title: "Fight Club"},
	}
	if err := adapter.Save(storage.KeyFavorites, saved); err != nil {
		t.Fatalf("save returned error: %v", err)
	}

	var loaded []models.MovieRef
	if err := adapter.Load(storage.KeyFavorites, &loaded); err != nil {
		t.Fatalf("load returned error: %v", err)
	}

	if len(loaded) != 2 {
		t.Fatalf("expected 2 movies, got %d", len(loaded))
	}
	if loaded[0] != saved[0] || loaded[1] != saved[1] {
		t.Fatalf("loaded movies differ from saved: %+v", loaded)
	}
}

func TestLoadMissingKeyLeavesDestUntouched(t *testing.T) {
	adapter := storage.NewAdapter(newMemoryKV(), nil)

	loaded := []models.MovieRef{{ID: 1}}
	if err := adapter.Load(storage.KeyWatchlist, &loaded); err != nil {
		t.Fatalf("load returned error: %v", err)
	}

	if len(loaded) != 1 || loaded[0].ID != 1 {
		t.Fatalf("expected dest untouched, got %+v", loaded)
	}
	if adapter.Corruptions() != 0 {
		t.Fatalf("expected no corruptions, got %d", adapter.Corruptions())
	}
}

func TestLoadCorruptValueResetsWithoutError(t *testing.T) {
	kv := newMemoryKV()
	kv.data[storage.KeyHistory] = "{not json"
	adapter := storage.NewAdapter(kv, nil)

	var loaded []models.HistoryEntry
	if err := adapter.Load(storage.KeyHistory, &loaded); err != nil {
		t.Fatalf("expected corrupt value to be swallowed, got error: %v", err)
	}

	if len(loaded) != 0 {
		t.Fatalf("expected empty collection after corruption, got %d entries", len(loaded))
	}
	if adapter.Corruptions() != 1 {
		t.Fatalf("expected corruption counter at 1, got %d", adapter.Corruptions())
	}
	if _, ok := kv.data[storage.KeyHistory]; ok {
		t.Fatalf("expected corrupt row to be deleted")
	}

	// a later load behaves like a missing key
	if err := adapter.Load(storage.KeyHistory, &loaded); err != nil {
		t.Fatalf("load after reset returned error: %v", err)
	}
	if adapter.Corruptions() != 1 {
		t.Fatalf("expected counter unchanged, got %d", adapter.Corruptions())
	}
}

func TestLoadTypeMismatchLeavesNoPartialResult(t *testing.T) {
	kv := newMemoryKV()
	// valid JSON, wrong shape: decoding fails partway with the first
	// element already written into dest
	kv.data[storage.KeyFavorites] = `[{"id":603,"title":"The Matrix"},{"id":"bad","title":"Fight Club"}]`
	adapter := storage.NewAdapter(kv, nil)

	loaded := []models.MovieRef{{ID: 11, Title: "stale"}}
	if err := adapter.Load(storage.KeyFavorites, &loaded); err != nil {
		t.Fatalf("expected corrupt value to be swallowed, got error: %v", err)
	}

	if len(loaded) != 0 {
		t.Fatalf("expected empty collection after corruption, got %+v", loaded)
	}
	if adapter.Corruptions() != 1 {
		t.Fatalf("expected corruption counter at 1, got %d", adapter.Corruptions())
	}
	if _, ok := kv.data[storage.KeyFavorites]; ok {
		t.Fatalf("expected corrupt row to be deleted")
	}
}
