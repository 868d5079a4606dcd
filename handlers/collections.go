package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"kino/models"
	collectionssvc "kino/services/collections"
)

type collectionService interface {
	List() []models.Collection
	Get(id string) (models.Collection, error)
	Create(name, description string, tags []string, privacy string, movies []models.MovieRef) (models.Collection, error)
	Delete(id string) error
	AddMovie(id string, movie models.MovieRef) error
	RemoveMovie(id string, movieID int64) error
}

var _ collectionService = (*collectionssvc.Service)(nil)

// CollectionsHandler exposes user-created collections.
type CollectionsHandler struct {
	Service collectionService
}

func NewCollectionsHandler(service collectionService) *CollectionsHandler {
	return &CollectionsHandler{Service: service}
}

func (h *CollectionsHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"collections": h.Service.List()})
}

func (h *CollectionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	collection, err := h.Service.Get(mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, collectionssvc.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "collection not found")
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, collection)
}

func (h *CollectionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Name        string            `json:"name"`
		Description string            `json:"description"`
		Tags        []string          `json:"tags"`
		Privacy     string            `json:"privacy"`
		Movies      []models.MovieRef `json:"movies"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	collection, err := h.Service.Create(request.Name, request.Description, request.Tags, request.Privacy, request.Movies)
	if err != nil {
		switch {
		case handleAuthErr(w, err):
		case errors.Is(err, collectionssvc.ErrInvalidName):
			writeMessage(w, http.StatusUnprocessableEntity, err.Error())
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusCreated, collection)
}

func (h *CollectionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.Service.Delete(mux.Vars(r)["id"])
	if err != nil {
		switch {
		case handleAuthErr(w, err):
		case errors.Is(err, collectionssvc.ErrNotFound):
			writeMessage(w, http.StatusNotFound, "collection not found")
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CollectionsHandler) AddMovie(w http.ResponseWriter, r *http.Request) {
	movie, ok := decodeMovie(w, r)
	if !ok {
		return
	}
	err := h.Service.AddMovie(mux.Vars(r)["id"], models.ProjectMovie(movie))
	if err != nil {
		switch {
		case handleAuthErr(w, err):
		case errors.Is(err, collectionssvc.ErrNotFound):
			writeMessage(w, http.StatusNotFound, "collection not found")
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CollectionsHandler) RemoveMovie(w http.ResponseWriter, r *http.Request) {
	movieID, ok := movieIDVar(w, r)
	if !ok {
		return
	}
	err := h.Service.RemoveMovie(mux.Vars(r)["collectionID"], movieID)
	if err != nil {
		switch {
		case handleAuthErr(w, err):
		case errors.Is(err, collectionssvc.ErrNotFound):
			writeMessage(w, http.StatusNotFound, "collection not found")
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
