package models

import "time"

// MovieRef is the minimal persisted projection of a catalog movie record.
// ID is the sole identity key; every other field is display data and may be
// stale relative to the catalog.
type MovieRef struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	PosterPath   string  `json:"posterPath,omitempty"`
	BackdropPath string  `json:"backdropPath,omitempty"`
	ReleaseDate  string  `json:"releaseDate,omitempty"`
	VoteAverage  float64 `json:"voteAverage,omitempty"`
	Overview     string  `json:"overview,omitempty"`
}

// WatchlistEntry wraps a MovieRef with explicit insertion metadata. The
// sequence number identifies the most recently added entry even after
// unrelated removals reorder the slice positions.
type WatchlistEntry struct {
	MovieRef
	AddedAt  time.Time `json:"addedAt"`
	AddedSeq int64     `json:"addedSeq"`
}

// HistoryEntry records a watched movie. At most one entry exists per movie
// id; re-watching replaces the entry and overwrites DateWatched.
type HistoryEntry struct {
	MovieRef
	DateWatched time.Time `json:"dateWatched"`
}

// CatalogMovie mirrors the wire shape of a catalog API movie record.
// Optional fields are pointers so partially populated payloads decode
// without faulting.
type CatalogMovie struct {
	ID           int64    `json:"id"`
	Title        string   `json:"title"`
	PosterPath   *string  `json:"poster_path"`
	BackdropPath *string  `json:"backdrop_path"`
	ReleaseDate  *string  `json:"release_date"`
	VoteAverage  *float64 `json:"vote_average"`
	Overview     string   `json:"overview"`
}

// ProjectMovie reduces a catalog record to the persisted MovieRef shape.
// Missing optional fields resolve to zero values rather than faulting.
func ProjectMovie(m CatalogMovie) MovieRef {
	ref := MovieRef{
		ID:       m.ID,
		Title:    m.Title,
		Overview: m.Overview,
	}
	if m.PosterPath != nil {
		ref.PosterPath = *m.PosterPath
	}
	if m.BackdropPath != nil {
		ref.BackdropPath = *m.BackdropPath
	}
	if m.ReleaseDate != nil {
		ref.ReleaseDate = *m.ReleaseDate
	}
	if m.VoteAverage != nil {
		ref.VoteAverage = *m.VoteAverage
	}
	return ref
}
