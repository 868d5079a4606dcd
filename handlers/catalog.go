package handlers

import (
	"context"
	"net/http"

	"kino/models"
	catalogsvc "kino/services/catalog"
)

type catalogClient interface {
	Trending(ctx context.Context) ([]models.CatalogMovie, error)
	Popular(ctx context.Context) ([]models.CatalogMovie, error)
	Search(ctx context.Context, query string) ([]models.CatalogMovie, error)
	Details(ctx context.Context, id int64) (*catalogsvc.MovieDetails, error)
	Credits(ctx context.Context, id int64) (*catalogsvc.Credits, error)
	Videos(ctx context.Context, id int64) ([]catalogsvc.Video, error)
	Similar(ctx context.Context, id int64) ([]models.CatalogMovie, error)
	Reviews(ctx context.Context, id int64) ([]catalogsvc.Review, error)
	Providers(ctx context.Context, id int64) (map[string]catalogsvc.RegionProviders, error)
	Genres(ctx context.Context) ([]catalogsvc.Genre, error)
	MoviesByGenre(ctx context.Context, genreID int64) ([]models.CatalogMovie, error)
}

var _ catalogClient = (*catalogsvc.Client)(nil)

// CatalogHandler proxies catalog browsing endpoints for the UI.
type CatalogHandler struct {
	Client catalogClient
}

func NewCatalogHandler(client catalogClient) *CatalogHandler {
	return &CatalogHandler{Client: client}
}

func (h *CatalogHandler) Trending(w http.ResponseWriter, r *http.Request) {
	h.respondList(w, r, func(ctx context.Context) ([]models.CatalogMovie, error) {
		return h.Client.Trending(ctx)
	})
}

func (h *CatalogHandler) Popular(w http.ResponseWriter, r *http.Request) {
	h.respondList(w, r, func(ctx context.Context) ([]models.CatalogMovie, error) {
		return h.Client.Popular(ctx)
	})
}

func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		writeMessage(w, http.StatusUnprocessableEntity, "query is required")
		return
	}
	h.respondList(w, r, func(ctx context.Context) ([]models.CatalogMovie, error) {
		return h.Client.Search(ctx, query)
	})
}

func (h *CatalogHandler) Details(w http.ResponseWriter, r *http.Request) {
	id, ok := movieIDVar(w, r)
	if !ok {
		return
	}
	details, err := h.Client.Details(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (h *CatalogHandler) Credits(w http.ResponseWriter, r *http.Request) {
	id, ok := movieIDVar(w, r)
	if !ok {
		return
	}
	credits, err := h.Client.Credits(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, credits)
}

func (h *CatalogHandler) Videos(w http.ResponseWriter, r *http.Request) {
	id, ok := movieIDVar(w, r)
	if !ok {
		return
	}
	videos, err := h.Client.Videos(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": videos,
		"trailer": catalogsvc.FirstTrailer(videos),
	})
}

func (h *CatalogHandler) Similar(w http.ResponseWriter, r *http.Request) {
	id, ok := movieIDVar(w, r)
	if !ok {
		return
	}
	h.respondList(w, r, func(ctx context.Context) ([]models.CatalogMovie, error) {
		return h.Client.Similar(ctx, id)
	})
}

func (h *CatalogHandler) Reviews(w http.ResponseWriter, r *http.Request) {
	id, ok := movieIDVar(w, r)
	if !ok {
		return
	}
	reviews, err := h.Client.Reviews(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": reviews})
}

func (h *CatalogHandler) Providers(w http.ResponseWriter, r *http.Request) {
	id, ok := movieIDVar(w, r)
	if !ok {
		return
	}
	providers, err := h.Client.Providers(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": providers})
}

func (h *CatalogHandler) Genres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.Client.Genres(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"genres": genres})
}

func (h *CatalogHandler) ByGenre(w http.ResponseWriter, r *http.Request) {
	id, ok := movieIDVar(w, r)
	if !ok {
		return
	}
	h.respondList(w, r, func(ctx context.Context) ([]models.CatalogMovie, error) {
		return h.Client.MoviesByGenre(ctx, id)
	})
}

func (h *CatalogHandler) respondList(w http.ResponseWriter, r *http.Request, fetch func(context.Context) ([]models.CatalogMovie, error)) {
	movies, err := fetch(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": movies})
}
