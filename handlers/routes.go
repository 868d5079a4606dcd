package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Deps bundles the handlers wired by RegisterRoutes.
type Deps struct {
	Auth        *AuthHandler
	Library     *LibraryHandler
	Catalog     *CatalogHandler
	Collections *CollectionsHandler
	Reviews     *ReviewsHandler
	Images      *ImagesHandler
}

// RegisterRoutes attaches the API surface under /api.
func RegisterRoutes(r *mux.Router, deps Deps) {
	api := r.PathPrefix("/api").Subrouter()

	// auth
	api.HandleFunc("/register", deps.Auth.Register).Methods(http.MethodPost)
	api.HandleFunc("/login", deps.Auth.Login).Methods(http.MethodPost)
	api.HandleFunc("/logout", deps.Auth.Logout).Methods(http.MethodPost)
	api.HandleFunc("/user", deps.Auth.CurrentUser).Methods(http.MethodGet)
	api.HandleFunc("/user", deps.Auth.UpdateProfile).Methods(http.MethodPut)

	// catalog browsing
	api.HandleFunc("/movies/trending", deps.Catalog.Trending).Methods(http.MethodGet)
	api.HandleFunc("/movies/popular", deps.Catalog.Popular).Methods(http.MethodGet)
	api.HandleFunc("/movies/search", deps.Catalog.Search).Methods(http.MethodGet)
	api.HandleFunc("/movies/genres", deps.Catalog.Genres).Methods(http.MethodGet)
	api.HandleFunc("/movies/genre/{id:[0-9]+}", deps.Catalog.ByGenre).Methods(http.MethodGet)
	api.HandleFunc("/movies/{id:[0-9]+}", deps.Catalog.Details).Methods(http.MethodGet)
	api.HandleFunc("/movies/{id:[0-9]+}/credits", deps.Catalog.Credits).Methods(http.MethodGet)
	api.HandleFunc("/movies/{id:[0-9]+}/videos", deps.Catalog.Videos).Methods(http.MethodGet)
	api.HandleFunc("/movies/{id:[0-9]+}/similar", deps.Catalog.Similar).Methods(http.MethodGet)
	api.HandleFunc("/movies/{id:[0-9]+}/reviews", deps.Catalog.Reviews).Methods(http.MethodGet)
	api.HandleFunc("/movies/{id:[0-9]+}/providers", deps.Catalog.Providers).Methods(http.MethodGet)

	// personal library
	api.HandleFunc("/library", deps.Library.Library).Methods(http.MethodGet)
	api.HandleFunc("/library/favorites/toggle", deps.Library.ToggleFavorite).Methods(http.MethodPost)
	api.HandleFunc("/library/watchlist/toggle", deps.Library.ToggleWatchlist).Methods(http.MethodPost)
	api.HandleFunc("/library/history", deps.Library.MarkWatched).Methods(http.MethodPost)
	api.HandleFunc("/library/history/{id:[0-9]+}", deps.Library.RemoveFromHistory).Methods(http.MethodDelete)
	api.HandleFunc("/library/ratings/{id:[0-9]+}", deps.Library.Rate).Methods(http.MethodPut)
	api.HandleFunc("/recommendations", deps.Library.Recommendations).Methods(http.MethodGet)

	// user collections
	api.HandleFunc("/collections", deps.Collections.List).Methods(http.MethodGet)
	api.HandleFunc("/collections", deps.Collections.Create).Methods(http.MethodPost)
	api.HandleFunc("/collections/{id}", deps.Collections.Get).Methods(http.MethodGet)
	api.HandleFunc("/collections/{id}", deps.Collections.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/collections/{id}/movies", deps.Collections.AddMovie).Methods(http.MethodPost)
	api.HandleFunc("/collections/{collectionID}/movies/{id:[0-9]+}", deps.Collections.RemoveMovie).Methods(http.MethodDelete)

	// local reviews
	api.HandleFunc("/movies/{id:[0-9]+}/local-reviews", deps.Reviews.List).Methods(http.MethodGet)
	api.HandleFunc("/movies/{id:[0-9]+}/local-reviews", deps.Reviews.Create).Methods(http.MethodPost)
	api.HandleFunc("/local-reviews/{reviewID:[0-9]+}", deps.Reviews.Delete).Methods(http.MethodDelete)

	// cached catalog images
	api.HandleFunc("/images/{size}/{name:.+}", deps.Images.Serve).Methods(http.MethodGet)
}
