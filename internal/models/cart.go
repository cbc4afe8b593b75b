package models

import "time"

// Cart represents a user's shopping cart. Each user has at most one cart,
// created lazily on first access.
type Cart struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CartItem represents a single movie held in a cart. A movie can appear
// at most once per cart; items are consumed when an order is created.
type CartItem struct {
	ID      int       `json:"id" db:"id"`
	CartID  int       `json:"cart_id" db:"cart_id"`
	MovieID int       `json:"movie_id" db:"movie_id"`
	AddedAt time.Time `json:"added_at" db:"added_at"`
}
