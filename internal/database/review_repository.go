package database

import (
	"database/sql"
	"fmt"
	"time"

	"kino/models"
)

// ReviewRepository persists locally authored movie reviews.
type ReviewRepository struct {
	conn *sql.DB
}

// NewReviewRepository creates a repository backed by the given connection.
func NewReviewRepository(conn *sql.DB) *ReviewRepository {
	return &ReviewRepository{conn: conn}
}

// Insert stores a review and returns it with the assigned id.
func (r *ReviewRepository) Insert(review models.Review) (models.Review, error) {
	res, err := r.conn.Exec(
		"INSERT INTO reviews (user_id, movie_id, author, content, rating, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		review.UserID, review.MovieID, review.Author, review.Content, review.Rating, review.CreatedAt.UTC())
	if err != nil {
		return models.Review{}, fmt.Errorf("insert review: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Review{}, fmt.Errorf("insert review: %w", err)
	}
	review.ID = id
	return review, nil
}

// ListByMovie returns reviews for a movie, newest first.
func (r *ReviewRepository) ListByMovie(movieID int64) ([]models.Review, error) {
	rows, err := r.conn.Query(
		"SELECT id, user_id, movie_id, author, content, rating, created_at FROM reviews WHERE movie_id = ? ORDER BY created_at DESC, id DESC",
		movieID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		var (
			review    models.Review
			createdAt time.Time
		)
		if err := rows.Scan(&review.ID, &review.UserID, &review.MovieID, &review.Author, &review.Content, &review.Rating, &createdAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		review.CreatedAt = createdAt
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

// Delete removes a review owned by the given user.
func (r *ReviewRepository) Delete(id int64, userID string) (bool, error) {
	res, err := r.conn.Exec("DELETE FROM reviews WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return false, fmt.Errorf("delete review: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete review: %w", err)
	}
	return affected > 0, nil
}
