package models

import "time"

// Movie represents a catalog entry. The catalog itself is managed
// elsewhere; this system only reads titles and current prices.
type Movie struct {
	ID        int       `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Price     int64     `json:"price" db:"price"` // Amount in cents
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PriceInCurrency returns the catalog price in the main currency as a float
func (m *Movie) PriceInCurrency() float64 {
	return float64(m.Price) / 100.0
}
