package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	imagecache "kino/internal/images"
)

type imageCache interface {
	Get(ctx context.Context, size, name string) ([]byte, string, error)
}

var _ imageCache = (*imagecache.Cache)(nil)

// ImagesHandler serves catalog images through the local cache.
type ImagesHandler struct {
	Cache imageCache
}

func NewImagesHandler(cache imageCache) *ImagesHandler {
	return &ImagesHandler{Cache: cache}
}

// Serve returns the cached image bytes for /api/images/{size}/{name}.
func (h *ImagesHandler) Serve(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	data, contentType, err := h.Cache.Get(r.Context(), vars["size"], vars["name"])
	if err != nil {
		if errors.Is(err, imagecache.ErrInvalidImagePath) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Write(data)
}
