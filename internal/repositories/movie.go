package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"online-cinema/internal/models"
)

// MovieRepository reads the movie catalog. The catalog is written by an
// external service; this repository only looks up titles and prices.
type MovieRepository struct {
	db *sql.DB
}

// NewMovieRepository creates a new movie repository
func NewMovieRepository(db *sql.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

// GetByID retrieves a movie by ID
func (r *MovieRepository) GetByID(id int) (*models.Movie, error) {
	query := `
		SELECT id, title, price, created_at
		FROM movies
		WHERE id = $1`

	movie := &models.Movie{}
	err := r.db.QueryRow(query, id).Scan(
		&movie.ID,
		&movie.Title,
		&movie.Price,
		&movie.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrMovieNotFound
		}
		return nil, fmt.Errorf("failed to get movie: %w", err)
	}

	return movie, nil
}

// Create inserts a catalog entry. Used by seeding tools and tests; the
// production catalog is maintained elsewhere.
func (r *MovieRepository) Create(title string, price int64) (*models.Movie, error) {
	query := `
		INSERT INTO movies (title, price, created_at)
		VALUES ($1, $2, $3)
		RETURNING id, title, price, created_at`

	movie := &models.Movie{}
	err := r.db.QueryRow(query, title, price, time.Now()).Scan(
		&movie.ID,
		&movie.Title,
		&movie.Price,
		&movie.CreatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create movie: %w", err)
	}

	return movie, nil
}
