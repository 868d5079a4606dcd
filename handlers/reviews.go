package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"kino/models"
	reviewssvc "kino/services/reviews"
)

type reviewService interface {
	Add(movieID int64, content string, rating int) (models.Review, error)
	ListByMovie(movieID int64) ([]models.Review, error)
	Delete(id int64) error
}

var _ reviewService = (*reviewssvc.Service)(nil)

// ReviewsHandler exposes locally authored reviews.
type ReviewsHandler struct {
	Service reviewService
}

func NewReviewsHandler(service reviewService) *ReviewsHandler {
	return &ReviewsHandler{Service: service}
}

// List returns local reviews for a movie.
func (h *ReviewsHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := movieIDVar(w, r)
	if !ok {
		return
	}
	reviews, err := h.Service.ListByMovie(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": reviews})
}

// Create stores a review for a movie.
func (h *ReviewsHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := movieIDVar(w, r)
	if !ok {
		return
	}
	var request struct {
		Content string `json:"content"`
		Rating  int    `json:"rating"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	review, err := h.Service.Add(id, request.Content, request.Rating)
	if err != nil {
		switch {
		case handleAuthErr(w, err):
		case errors.Is(err, reviewssvc.ErrInvalidRating), errors.Is(err, reviewssvc.ErrEmptyContent):
			writeMessage(w, http.StatusUnprocessableEntity, err.Error())
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

// Delete removes one of the caller's reviews.
func (h *ReviewsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	reviewID, err := strconv.ParseInt(mux.Vars(r)["reviewID"], 10, 64)
	if err != nil || reviewID <= 0 {
		http.Error(w, "invalid review id", http.StatusBadRequest)
		return
	}

	if err := h.Service.Delete(reviewID); err != nil {
		switch {
		case handleAuthErr(w, err):
		case errors.Is(err, reviewssvc.ErrNotFound):
			writeMessage(w, http.StatusNotFound, "review not found")
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
