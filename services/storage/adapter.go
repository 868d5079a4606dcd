package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"sync/atomic"
)

// Persisted collection keys. The kv table is the namespace, so keys stay
// short and stable.
const (
	KeyFavorites   = "favorites"
	KeyWatchlist   = "watchlist"
	KeyHistory     = "history"
	KeySession     = "session"
	KeyRatings     = "ratings"
	KeyCollections = "collections"
)

// KV is the durable key-value surface the adapter writes through to.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// Adapter round-trips named collections as JSON. A missing key loads as the
// zero value; a corrupt stored value is reset to empty and counted rather
// than surfaced as a fault.
type Adapter struct {
	kv     KV
	logger *slog.Logger

	corruptions atomic.Uint64
}

// NewAdapter creates an adapter over the given key-value store.
func NewAdapter(kv KV, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{kv: kv, logger: logger}
}

// Load reads the collection stored under key into dest, which must be a
// pointer. When the key is absent dest is left untouched. When the stored
// value fails to decode the row is deleted, the corruption is logged and
// counted, and dest is reset to its zero value; no error is returned for
// either case.
func (a *Adapter) Load(key string, dest any) error {
	raw, ok, err := a.kv.Get(key)
	if err != nil {
		return fmt.Errorf("load %q: %w", key, err)
	}
	if !ok {
		return nil
	}

	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		a.corruptions.Add(1)
		a.logger.Warn("storage.corrupt_value_reset", "key", key, "error", err)

		// A type mismatch mid-document still populates the fields decoded
		// before the error, so zero dest rather than trust it.
		if v := reflect.ValueOf(dest); v.Kind() == reflect.Pointer && !v.IsNil() {
			v.Elem().Set(reflect.Zero(v.Elem().Type()))
		}

		if delErr := a.kv.Delete(key); delErr != nil {
			return fmt.Errorf("reset corrupt %q: %w", key, delErr)
		}
		return nil
	}
	return nil
}

// Save writes the collection synchronously. Load immediately after Save
// yields a value field-for-field equal to v.
func (a *Adapter) Save(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	if err := a.kv.Set(key, string(raw)); err != nil {
		return fmt.Errorf("save %q: %w", key, err)
	}
	return nil
}

// Corruptions reports how many stored values failed to decode and were
// reset since the adapter was created.
func (a *Adapter) Corruptions() uint64 {
	return a.corruptions.Load()
}
