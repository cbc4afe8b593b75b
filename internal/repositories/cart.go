package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"online-cinema/internal/models"
)

// CartRepository handles shopping cart data operations
type CartRepository struct {
	db *sql.DB
}

// NewCartRepository creates a new cart repository
func NewCartRepository(db *sql.DB) *CartRepository {
	return &CartRepository{db: db}
}

// CartItemWithMovie represents a cart item with its movie details
type CartItemWithMovie struct {
	*models.CartItem
	MovieTitle string `json:"movie_title" db:"movie_title"`
	MoviePrice int64  `json:"movie_price" db:"movie_price"` // Current catalog price in cents
}

// GetOrCreateByUser returns the user's cart, creating it on first access
func (r *CartRepository) GetOrCreateByUser(userID int) (*models.Cart, error) {
	cart, err := r.getByUser(userID)
	if err == nil {
		return cart, nil
	}
	if err != models.ErrCartNotFound {
		return nil, err
	}

	query := `
		INSERT INTO carts (user_id, created_at)
		VALUES ($1, $2)
		RETURNING id, user_id, created_at`

	cart = &models.Cart{}
	err = r.db.QueryRow(query, userID, time.Now()).Scan(
		&cart.ID,
		&cart.UserID,
		&cart.CreatedAt,
	)

	if err != nil {
		// Lost a creation race; the unique constraint on user_id means the
		// cart now exists, so read it back.
		if isUniqueViolation(err) {
			return r.getByUser(userID)
		}
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	return cart, nil
}

func (r *CartRepository) getByUser(userID int) (*models.Cart, error) {
	query := `
		SELECT id, user_id, created_at
		FROM carts
		WHERE user_id = $1`

	cart := &models.Cart{}
	err := r.db.QueryRow(query, userID).Scan(
		&cart.ID,
		&cart.UserID,
		&cart.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	return cart, nil
}

// AddItem adds a movie to the user's cart. The movie must exist, must not
// already be in the cart, and must not already be owned by the user. All
// checks run in the same transaction as the insert.
func (r *CartRepository) AddItem(userID, movieID int) (*models.CartItem, error) {
	cart, err := r.GetOrCreateByUser(userID)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var movieExists bool
	err = tx.QueryRow("SELECT EXISTS(SELECT 1 FROM movies WHERE id = $1)", movieID).Scan(&movieExists)
	if err != nil {
		return nil, fmt.Errorf("failed to check movie: %w", err)
	}
	if !movieExists {
		return nil, models.ErrMovieNotFound
	}

	var inCart bool
	err = tx.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM cart_items WHERE cart_id = $1 AND movie_id = $2)",
		cart.ID, movieID,
	).Scan(&inCart)
	if err != nil {
		return nil, fmt.Errorf("failed to check cart item: %w", err)
	}
	if inCart {
		return nil, models.ErrMovieInCart
	}

	var purchased bool
	err = tx.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM purchased_movies WHERE user_id = $1 AND movie_id = $2)",
		userID, movieID,
	).Scan(&purchased)
	if err != nil {
		return nil, fmt.Errorf("failed to check purchase history: %w", err)
	}
	if purchased {
		return nil, models.ErrMoviePurchased
	}

	query := `
		INSERT INTO cart_items (cart_id, movie_id, added_at)
		VALUES ($1, $2, $3)
		RETURNING id, cart_id, movie_id, added_at`

	item := &models.CartItem{}
	err = tx.QueryRow(query, cart.ID, movieID, time.Now()).Scan(
		&item.ID,
		&item.CartID,
		&item.MovieID,
		&item.AddedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, models.ErrMovieInCart
		}
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit cart item: %w", err)
	}

	return item, nil
}

// RemoveItem removes a cart item, scoped to the caller's own cart
func (r *CartRepository) RemoveItem(userID, cartItemID int) error {
	query := `
		DELETE FROM cart_items
		WHERE id = $1
		  AND cart_id = (SELECT id FROM carts WHERE user_id = $2)`

	result, err := r.db.Exec(query, cartItemID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check removed rows: %w", err)
	}
	if rows == 0 {
		return models.ErrCartItemNotFound
	}

	return nil
}

// ListItems returns the user's cart contents with movie details
func (r *CartRepository) ListItems(userID int) ([]*CartItemWithMovie, error) {
	cart, err := r.GetOrCreateByUser(userID)
	if err != nil {
		return nil, err
	}

	return r.listItemsByCartID(cart.ID)
}

// ListItemsByCartID returns the contents of an arbitrary cart. Intended
// for moderator/admin views; callers enforce authorization.
func (r *CartRepository) ListItemsByCartID(cartID int) ([]*CartItemWithMovie, error) {
	var exists bool
	err := r.db.QueryRow("SELECT EXISTS(SELECT 1 FROM carts WHERE id = $1)", cartID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check cart: %w", err)
	}
	if !exists {
		return nil, models.ErrCartNotFound
	}

	return r.listItemsByCartID(cartID)
}

func (r *CartRepository) listItemsByCartID(cartID int) ([]*CartItemWithMovie, error) {
	query := `
		SELECT ci.id, ci.cart_id, ci.movie_id, ci.added_at, m.title, m.price
		FROM cart_items ci
		JOIN movies m ON ci.movie_id = m.id
		WHERE ci.cart_id = $1
		ORDER BY ci.added_at, ci.id`

	rows, err := r.db.Query(query, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	defer rows.Close()

	items := []*CartItemWithMovie{}
	for rows.Next() {
		item := &CartItemWithMovie{CartItem: &models.CartItem{}}
		err := rows.Scan(
			&item.ID,
			&item.CartID,
			&item.MovieID,
			&item.AddedAt,
			&item.MovieTitle,
			&item.MoviePrice,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// Clear removes every item from the user's cart
func (r *CartRepository) Clear(userID int) error {
	query := `
		DELETE FROM cart_items
		WHERE cart_id = (SELECT id FROM carts WHERE user_id = $1)`

	if _, err := r.db.Exec(query, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	return nil
}
