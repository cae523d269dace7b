package domain

import "time"

// Review belongs to both a user and a tour; it is immutable once created.
type Review struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title,omitempty"`
	Text      string    `json:"reviewText"`
	Rating    float64   `json:"rating"`
	UserID    int64     `json:"user_id"`
	TourID    int64     `json:"tour_id"`
	Author    *User     `json:"user,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateReviewRequest struct {
	Title  string  `json:"title"`
	Text   string  `json:"reviewText" validate:"required"`
	Rating float64 `json:"rating" validate:"min=0,max=5"`
	UserID int64   `json:"-" validate:"required"`
	TourID int64   `json:"-" validate:"required"`
}
