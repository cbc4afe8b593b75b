package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"online-cinema/internal/models"
)

// OrderRepository handles order data operations
type OrderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// OrderSearchFilters represents filters for order search
type OrderSearchFilters struct {
	UserID   int                // Filter by user (0 = all users)
	Status   models.OrderStatus // Filter by status
	DateFrom *time.Time         // Filter orders created from this date
	DateTo   *time.Time         // Filter orders created before this date
	Limit    int                // Number of results to return
	Offset   int                // Number of results to skip
	SortBy   string             // "created_at", "total_amount", "status"
	SortDesc bool               // Sort in descending order
}

type cartLine struct {
	cartItemID int
	movieID    int
	title      string
	price      int64
}

// CreateFromCartItems converts the given cart items into a pending order.
// Every check and write happens inside one transaction: ownership of the
// cart items, the no-double-purchase rule, the single-pending-order-per-
// movie rule, the price freeze, and the deletion of the consumed items.
// On any failure the whole operation rolls back and no partial order exists.
func (r *OrderRepository) CreateFromCartItems(userID int, cartItemIDs []int) (*models.Order, error) {
	if len(cartItemIDs) == 0 {
		return nil, models.ErrEmptyOrder
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var cartID int
	err = tx.QueryRow("SELECT id FROM carts WHERE user_id = $1", userID).Scan(&cartID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrCartItemNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	lines, err := loadCartLines(tx, cartID, cartItemIDs)
	if err != nil {
		return nil, err
	}

	// A cart item can only be loaded once, so a count mismatch also catches
	// duplicate ids in the request.
	if len(lines) != len(cartItemIDs) {
		return nil, models.ErrCartItemNotFound
	}

	if err := checkNotPurchased(tx, userID, lines); err != nil {
		return nil, err
	}

	if err := checkNoPendingOrder(tx, userID, lines); err != nil {
		return nil, err
	}

	// Prices are frozen here; later catalog changes must not affect the order.
	var totalAmount int64
	for _, line := range lines {
		totalAmount += line.price
	}

	order := &models.Order{}
	err = tx.QueryRow(`
		INSERT INTO orders (user_id, status, total_amount, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, status, total_amount, created_at`,
		userID, models.OrderPending, totalAmount, time.Now(),
	).Scan(
		&order.ID,
		&order.UserID,
		&order.Status,
		&order.TotalAmount,
		&order.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	for _, line := range lines {
		item := &models.OrderItem{}
		err = tx.QueryRow(`
			INSERT INTO order_items (order_id, movie_id, price_at_order)
			VALUES ($1, $2, $3)
			RETURNING id, order_id, movie_id, price_at_order`,
			order.ID, line.movieID, line.price,
		).Scan(
			&item.ID,
			&item.OrderID,
			&item.MovieID,
			&item.PriceAtOrder,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return nil, &models.PendingOrderError{Title: line.title}
			}
			return nil, fmt.Errorf("failed to create order item: %w", err)
		}
		item.MovieTitle = line.title
		order.Items = append(order.Items, item)

		// The hold row is the storage-layer twin of checkNoPendingOrder:
		// its UNIQUE (user_id, movie_id) stops two racing transactions
		// from both committing a pending order for the same movie.
		_, err = tx.Exec(`
			INSERT INTO pending_movie_holds (order_id, user_id, movie_id)
			VALUES ($1, $2, $3)`,
			order.ID, userID, line.movieID,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return nil, &models.PendingOrderError{Title: line.title}
			}
			return nil, fmt.Errorf("failed to hold movie for order: %w", err)
		}
	}

	// Consume the cart items that became order lines
	result, err := tx.Exec(
		fmt.Sprintf("DELETE FROM cart_items WHERE cart_id = $1 AND id IN (%s)", placeholders(2, len(cartItemIDs))),
		args(cartID, cartItemIDs)...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to consume cart items: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check consumed cart items: %w", err)
	}
	if int(deleted) != len(cartItemIDs) {
		return nil, models.ErrCartItemNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order creation: %w", err)
	}

	return order, nil
}

func loadCartLines(tx *sql.Tx, cartID int, cartItemIDs []int) ([]cartLine, error) {
	query := fmt.Sprintf(`
		SELECT ci.id, ci.movie_id, m.title, m.price
		FROM cart_items ci
		JOIN movies m ON ci.movie_id = m.id
		WHERE ci.cart_id = $1 AND ci.id IN (%s)
		ORDER BY ci.id`, placeholders(2, len(cartItemIDs)))

	rows, err := tx.Query(query, args(cartID, cartItemIDs)...)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart items: %w", err)
	}
	defer rows.Close()

	var lines []cartLine
	for rows.Next() {
		var line cartLine
		if err := rows.Scan(&line.cartItemID, &line.movieID, &line.title, &line.price); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		lines = append(lines, line)
	}

	return lines, rows.Err()
}

// checkNotPurchased rejects the whole request if any requested movie is
// already owned, naming every offending title.
func checkNotPurchased(tx *sql.Tx, userID int, lines []cartLine) error {
	movieIDs := make([]interface{}, 0, len(lines)+1)
	movieIDs = append(movieIDs, userID)
	for _, line := range lines {
		movieIDs = append(movieIDs, line.movieID)
	}

	query := fmt.Sprintf(`
		SELECT m.title
		FROM purchased_movies pm
		JOIN movies m ON pm.movie_id = m.id
		WHERE pm.user_id = $1 AND pm.movie_id IN (%s)
		ORDER BY m.title`, placeholders(2, len(lines)))

	rows, err := tx.Query(query, movieIDs...)
	if err != nil {
		return fmt.Errorf("failed to check purchase history: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return fmt.Errorf("failed to scan purchased title: %w", err)
		}
		titles = append(titles, title)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if len(titles) > 0 {
		return &models.AlreadyPurchasedError{Titles: titles}
	}

	return nil
}

// checkNoPendingOrder rejects the request if any requested movie already
// sits in another pending order for this user.
func checkNoPendingOrder(tx *sql.Tx, userID int, lines []cartLine) error {
	queryArgs := make([]interface{}, 0, len(lines)+2)
	queryArgs = append(queryArgs, userID, models.OrderPending)
	for _, line := range lines {
		queryArgs = append(queryArgs, line.movieID)
	}

	query := fmt.Sprintf(`
		SELECT m.title
		FROM order_items oi
		JOIN orders o ON oi.order_id = o.id
		JOIN movies m ON oi.movie_id = m.id
		WHERE o.user_id = $1 AND o.status = $2 AND oi.movie_id IN (%s)
		ORDER BY m.title
		LIMIT 1`, placeholders(3, len(lines)))

	var title string
	err := tx.QueryRow(query, queryArgs...).Scan(&title)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check pending orders: %w", err)
	}

	return &models.PendingOrderError{Title: title}
}

func args(first int, rest []int) []interface{} {
	out := make([]interface{}, 0, len(rest)+1)
	out = append(out, first)
	for _, id := range rest {
		out = append(out, id)
	}
	return out
}

// GetByID retrieves an order with its items
func (r *OrderRepository) GetByID(id int) (*models.Order, error) {
	query := `
		SELECT id, user_id, status, total_amount, created_at
		FROM orders
		WHERE id = $1`

	order := &models.Order{}
	err := r.db.QueryRow(query, id).Scan(
		&order.ID,
		&order.UserID,
		&order.Status,
		&order.TotalAmount,
		&order.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order.Items, err = r.loadItems(order.ID); err != nil {
		return nil, err
	}

	return order, nil
}

func (r *OrderRepository) loadItems(orderID int) ([]*models.OrderItem, error) {
	query := `
		SELECT oi.id, oi.order_id, oi.movie_id, oi.price_at_order, m.title
		FROM order_items oi
		JOIN movies m ON oi.movie_id = m.id
		WHERE oi.order_id = $1
		ORDER BY oi.id`

	rows, err := r.db.Query(query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	items := []*models.OrderItem{}
	for rows.Next() {
		item := &models.OrderItem{}
		err := rows.Scan(&item.ID, &item.OrderID, &item.MovieID, &item.PriceAtOrder, &item.MovieTitle)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// UpdateStatus moves an order from one status to another. The current
// status is part of the predicate so concurrent transitions cannot both
// succeed.
func (r *OrderRepository) UpdateStatus(id int, from, to models.OrderStatus) error {
	if err := models.ValidateOrderStatus(to); err != nil {
		return err
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		"UPDATE orders SET status = $1 WHERE id = $2 AND status = $3",
		to, id, from,
	)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}
	if rows == 0 {
		return models.ErrOrderNotPending
	}

	// Leaving pending frees the order's movies for future orders
	if from == models.OrderPending {
		if _, err := tx.Exec("DELETE FROM pending_movie_holds WHERE order_id = $1", id); err != nil {
			return fmt.Errorf("failed to release movie holds: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit status update: %w", err)
	}

	return nil
}

// UpdateTotalAmount refreshes the stored total, which is a cache of the
// order-item price sum
func (r *OrderRepository) UpdateTotalAmount(id int, totalAmount int64) error {
	result, err := r.db.Exec("UPDATE orders SET total_amount = $1 WHERE id = $2", totalAmount, id)
	if err != nil {
		return fmt.Errorf("failed to update order total: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}
	if rows == 0 {
		return models.ErrOrderNotFound
	}

	return nil
}

// Search retrieves orders matching the filters along with the total count
func (r *OrderRepository) Search(filters OrderSearchFilters) ([]*models.Order, int, error) {
	where, whereArgs := buildOrderFilters(filters)

	countQuery := "SELECT COUNT(*) FROM orders" + where
	var total int
	if err := r.db.QueryRow(countQuery, whereArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}
	if total == 0 {
		return []*models.Order{}, 0, nil
	}

	query := "SELECT id, user_id, status, total_amount, created_at FROM orders" + where

	sortBy := "created_at"
	switch filters.SortBy {
	case "created_at", "total_amount", "status":
		sortBy = filters.SortBy
	}
	direction := "ASC"
	if filters.SortDesc {
		direction = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s", sortBy, direction)

	if filters.Limit > 0 {
		whereArgs = append(whereArgs, filters.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(whereArgs))
	}
	if filters.Offset > 0 {
		whereArgs = append(whereArgs, filters.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(whereArgs))
	}

	rows, err := r.db.Query(query, whereArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search orders: %w", err)
	}
	defer rows.Close()

	orders := []*models.Order{}
	for rows.Next() {
		order := &models.Order{}
		err := rows.Scan(&order.ID, &order.UserID, &order.Status, &order.TotalAmount, &order.CreatedAt)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for _, order := range orders {
		if order.Items, err = r.loadItems(order.ID); err != nil {
			return nil, 0, err
		}
	}

	return orders, total, nil
}

func buildOrderFilters(filters OrderSearchFilters) (string, []interface{}) {
	var conditions []string
	var whereArgs []interface{}

	add := func(condition string, value interface{}) {
		whereArgs = append(whereArgs, value)
		conditions = append(conditions, fmt.Sprintf(condition, len(whereArgs)))
	}

	if filters.UserID > 0 {
		add("user_id = $%d", filters.UserID)
	}
	if filters.Status != "" {
		add("status = $%d", filters.Status)
	}
	if filters.DateFrom != nil {
		add("created_at >= $%d", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		add("created_at <= $%d", *filters.DateTo)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), whereArgs
}
