package models

import "time"

// Rating is one user's review of a farmer. A user can rate a farmer once.
type Rating struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	FarmerID  int64     `json:"farmer_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// Favorite links a user to a bookmarked farmer. Each pair is unique.
type Favorite struct {
	UserID   int64 `json:"user_id"`
	FarmerID int64 `json:"farmer_id"`
}
