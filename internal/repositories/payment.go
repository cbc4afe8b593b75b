package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"online-cinema/internal/models"
)

// PaymentRepository handles payment data operations
type PaymentRepository struct {
	db *sql.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// PaymentSearchFilters represents filters for payment search
type PaymentSearchFilters struct {
	UserID   int                  // Filter by user (0 = all users)
	OrderID  int                  // Filter by order (0 = all orders)
	Status   models.PaymentStatus // Filter by status
	DateFrom *time.Time           // Filter payments created from this date
	DateTo   *time.Time           // Filter payments created before this date
	Limit    int                  // Number of results to return
	Offset   int                  // Number of results to skip
}

// ApplyPayment records a captured payment against a pending order in one
// transaction: the payment row, its per-item snapshot, the order's move to
// paid, and the purchase grants all land together or not at all.
//
// A repeated external payment id returns models.ErrDuplicateEntry, and an
// order that is no longer pending returns models.ErrOrderNotPending; both
// leave the database untouched.
func (r *PaymentRepository) ApplyPayment(order *models.Order, externalPaymentID string, amount int64) (*models.Payment, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// The status predicate makes this the gate for concurrent captures:
	// only one transaction can move the order out of pending.
	result, err := tx.Exec(
		"UPDATE orders SET status = $1 WHERE id = $2 AND status = $3",
		models.OrderPaid, order.ID, models.OrderPending,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to mark order paid: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check updated rows: %w", err)
	}
	if rows == 0 {
		return nil, models.ErrOrderNotPending
	}

	// The order left pending, so its movie holds are released with it
	if _, err := tx.Exec("DELETE FROM pending_movie_holds WHERE order_id = $1", order.ID); err != nil {
		return nil, fmt.Errorf("failed to release movie holds: %w", err)
	}

	payment := &models.Payment{}
	err = tx.QueryRow(`
		INSERT INTO payments (user_id, order_id, status, amount, external_payment_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, user_id, order_id, status, amount, external_payment_id, created_at`,
		order.UserID, order.ID, models.PaymentSuccessful, amount, externalPaymentID, time.Now(),
	).Scan(
		&payment.ID,
		&payment.UserID,
		&payment.OrderID,
		&payment.Status,
		&payment.Amount,
		&payment.ExternalPaymentID,
		&payment.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, models.ErrDuplicateEntry
		}
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	for _, orderItem := range order.Items {
		item := &models.PaymentItem{}
		err = tx.QueryRow(`
			INSERT INTO payment_items (payment_id, order_item_id, price_at_payment)
			VALUES ($1, $2, $3)
			RETURNING id, payment_id, order_item_id, price_at_payment`,
			payment.ID, orderItem.ID, orderItem.PriceAtOrder,
		).Scan(
			&item.ID,
			&item.PaymentID,
			&item.OrderItemID,
			&item.PriceAtPayment,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create payment item: %w", err)
		}
		payment.Items = append(payment.Items, item)
	}

	for _, orderItem := range order.Items {
		_, err = tx.Exec(`
			INSERT INTO purchased_movies (user_id, movie_id, purchased_at)
			VALUES ($1, $2, $3)`,
			order.UserID, orderItem.MovieID, time.Now(),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return nil, models.ErrMoviePurchased
			}
			return nil, fmt.Errorf("failed to grant purchase: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit payment: %w", err)
	}

	return payment, nil
}

// GetByID retrieves a payment with its items
func (r *PaymentRepository) GetByID(id int) (*models.Payment, error) {
	query := `
		SELECT id, user_id, order_id, status, amount, external_payment_id, created_at
		FROM payments
		WHERE id = $1`

	payment := &models.Payment{}
	err := r.db.QueryRow(query, id).Scan(
		&payment.ID,
		&payment.UserID,
		&payment.OrderID,
		&payment.Status,
		&payment.Amount,
		&payment.ExternalPaymentID,
		&payment.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	if payment.Items, err = r.loadItems(payment.ID); err != nil {
		return nil, err
	}

	return payment, nil
}

// GetSuccessfulByOrder retrieves the successful payment for an order
func (r *PaymentRepository) GetSuccessfulByOrder(orderID int) (*models.Payment, error) {
	query := `
		SELECT id, user_id, order_id, status, amount, external_payment_id, created_at
		FROM payments
		WHERE order_id = $1 AND status = $2`

	payment := &models.Payment{}
	err := r.db.QueryRow(query, orderID, models.PaymentSuccessful).Scan(
		&payment.ID,
		&payment.UserID,
		&payment.OrderID,
		&payment.Status,
		&payment.Amount,
		&payment.ExternalPaymentID,
		&payment.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment for order: %w", err)
	}

	if payment.Items, err = r.loadItems(payment.ID); err != nil {
		return nil, err
	}

	return payment, nil
}

func (r *PaymentRepository) loadItems(paymentID int) ([]*models.PaymentItem, error) {
	query := `
		SELECT id, payment_id, order_item_id, price_at_payment
		FROM payment_items
		WHERE payment_id = $1
		ORDER BY id`

	rows, err := r.db.Query(query, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment items: %w", err)
	}
	defer rows.Close()

	items := []*models.PaymentItem{}
	for rows.Next() {
		item := &models.PaymentItem{}
		err := rows.Scan(&item.ID, &item.PaymentID, &item.OrderItemID, &item.PriceAtPayment)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// MarkRefunded reverses a captured payment in one transaction: the payment
// moves to refunded, its order moves to canceled, and the purchase grants
// for the order's movies are revoked.
func (r *PaymentRepository) MarkRefunded(paymentID, orderID int) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		"UPDATE payments SET status = $1 WHERE id = $2 AND status = $3",
		models.PaymentRefunded, paymentID, models.PaymentSuccessful,
	)
	if err != nil {
		return fmt.Errorf("failed to mark payment refunded: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}
	if rows == 0 {
		return models.ErrPaymentNotFound
	}

	result, err = tx.Exec(
		"UPDATE orders SET status = $1 WHERE id = $2 AND status = $3",
		models.OrderCanceled, orderID, models.OrderPaid,
	)
	if err != nil {
		return fmt.Errorf("failed to cancel order: %w", err)
	}
	rows, err = result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}
	if rows == 0 {
		return models.ErrOrderNotPending
	}

	_, err = tx.Exec(`
		DELETE FROM purchased_movies
		WHERE user_id = (SELECT user_id FROM orders WHERE id = $1)
		AND movie_id IN (SELECT movie_id FROM order_items WHERE order_id = $1)`,
		orderID,
	)
	if err != nil {
		return fmt.Errorf("failed to revoke purchases: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit refund: %w", err)
	}

	return nil
}

// Search retrieves payments matching the filters along with the total count
func (r *PaymentRepository) Search(filters PaymentSearchFilters) ([]*models.Payment, int, error) {
	where, whereArgs := buildPaymentFilters(filters)

	countQuery := "SELECT COUNT(*) FROM payments" + where
	var total int
	if err := r.db.QueryRow(countQuery, whereArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}
	if total == 0 {
		return []*models.Payment{}, 0, nil
	}

	query := `SELECT id, user_id, order_id, status, amount, external_payment_id, created_at
		FROM payments` + where + " ORDER BY created_at DESC, id DESC"

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
		return nil, 0, fmt.Errorf("failed to search payments: %w", err)
	}
	defer rows.Close()

	payments := []*models.Payment{}
	for rows.Next() {
		payment := &models.Payment{}
		err := rows.Scan(
			&payment.ID,
			&payment.UserID,
			&payment.OrderID,
			&payment.Status,
			&payment.Amount,
			&payment.ExternalPaymentID,
			&payment.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for _, payment := range payments {
		if payment.Items, err = r.loadItems(payment.ID); err != nil {
			return nil, 0, err
		}
	}

	return payments, total, nil
}

func buildPaymentFilters(filters PaymentSearchFilters) (string, []interface{}) {
	var conditions []string
	var whereArgs []interface{}

	add := func(condition string, value interface{}) {
		whereArgs = append(whereArgs, value)
		conditions = append(conditions, fmt.Sprintf(condition, len(whereArgs)))
	}

	if filters.UserID > 0 {
		add("user_id = $%d", filters.UserID)
	}
	if filters.OrderID > 0 {
		add("order_id = $%d", filters.OrderID)
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
