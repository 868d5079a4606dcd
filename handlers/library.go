package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"kino/models"
	librarysvc "kino/services/library"
	recommendsvc "kino/services/recommend"
)

type libraryStore interface {
	Favorites() []models.MovieRef
	Watchlist() []models.WatchlistEntry
	History() []models.HistoryEntry
	IsFavorite(id int64) bool
	IsInWatchlist(id int64) bool
	IsInHistory(id int64) bool
	ToggleFavorite(movie models.CatalogMovie) error
	ToggleWatchlist(movie models.CatalogMovie) error
	MoveToHistory(movie models.CatalogMovie) error
	RemoveFromHistory(id int64) error
	Rating(id int64) int
	RateMovie(id int64, rating int) error
}

type recommender interface {
	Recommendations() []models.MovieRef
}

var (
	_ libraryStore = (*librarysvc.Store)(nil)
	_ recommender  = (*recommendsvc.Engine)(nil)
)

// LibraryHandler exposes the personal library collections and the
// recommendation list.
type LibraryHandler struct {
	Store  libraryStore
	Engine recommender
}

func NewLibraryHandler(store libraryStore, engine recommender) *LibraryHandler {
	return &LibraryHandler{Store: store, Engine: engine}
}

// Library returns all three collections plus membership helpers in one
// payload.
func (h *LibraryHandler) Library(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"favorites": h.Store.Favorites(),
		"watchlist": h.Store.Watchlist(),
		"history":   h.Store.History(),
	})
}

// ToggleFavorite flips favorites membership for the posted movie.
func (h *LibraryHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	movie, ok := decodeMovie(w, r)
	if !ok {
		return
	}
	if err := h.Store.ToggleFavorite(movie); err != nil {
		if !handleAuthErr(w, err) {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":       movie.ID,
		"favorite": h.Store.IsFavorite(movie.ID),
	})
}

// ToggleWatchlist flips watchlist membership for the posted movie.
func (h *LibraryHandler) ToggleWatchlist(w http.ResponseWriter, r *http.Request) {
	movie, ok := decodeMovie(w, r)
	if !ok {
		return
	}
	if err := h.Store.ToggleWatchlist(movie); err != nil {
		if !handleAuthErr(w, err) {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":          movie.ID,
		"inWatchlist": h.Store.IsInWatchlist(movie.ID),
	})
}

// MarkWatched moves the posted movie into history.
func (h *LibraryHandler) MarkWatched(w http.ResponseWriter, r *http.Request) {
	movie, ok := decodeMovie(w, r)
	if !ok {
		return
	}
	if err := h.Store.MoveToHistory(movie); err != nil {
		if !handleAuthErr(w, err) {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":      movie.ID,
		"watched": true,
	})
}

// RemoveFromHistory deletes a history entry by movie id.
func (h *LibraryHandler) RemoveFromHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := movieIDVar(w, r)
	if !ok {
		return
	}
	if err := h.Store.RemoveFromHistory(id); err != nil {
		if !handleAuthErr(w, err) {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Rate stores the user's 1..10 rating for a movie.
func (h *LibraryHandler) Rate(w http.ResponseWriter, r *http.Request) {
	id, ok := movieIDVar(w, r)
	if !ok {
		return
	}
	var request struct {
		Rating int `json:"rating"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Store.RateMovie(id, request.Rating); err != nil {
		if !handleAuthErr(w, err) {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":     id,
		"rating": h.Store.Rating(id),
	})
}

// Recommendations returns the currently published similar-movie list.
func (h *LibraryHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"results": h.Engine.Recommendations(),
	})
}

func decodeMovie(w http.ResponseWriter, r *http.Request) (models.CatalogMovie, bool) {
	var movie models.CatalogMovie
	if err := json.NewDecoder(r.Body).Decode(&movie); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return models.CatalogMovie{}, false
	}
	if movie.ID == 0 {
		writeMessage(w, http.StatusUnprocessableEntity, "movie id is required")
		return models.CatalogMovie{}, false
	}
	return movie, true
}

func movieIDVar(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid movie id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
