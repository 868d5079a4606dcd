package models

import "time"

// Collection privacy values.
const (
	CollectionPublic  = "public"
	CollectionPrivate = "private"
)

// Collection is a user-created, named grouping of movies.
type Collection struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Privacy     string     `json:"privacy"`
	Movies      []MovieRef `json:"movies"`
	CreatedAt   time.Time  `json:"createdAt"`
}
