package models

import "time"

// Review is a locally authored movie review with a 1..5 star rating.
type Review struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"userId"`
	MovieID   int64     `json:"movieId"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"createdAt"`
}
