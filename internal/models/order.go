package models

import (
	"errors"
	"time"
)

// OrderStatus represents the status of an order
type OrderStatus string

const (
	OrderPending  OrderStatus = "pending"
	OrderPaid     OrderStatus = "paid"
	OrderCanceled OrderStatus = "canceled"
)

// Order represents an order in the system. Once created an order is
// immutable apart from its status; line-item prices are frozen at
// creation time and never re-read from the catalog.
type Order struct {
	ID          int         `json:"id" db:"id"`
	UserID      int         `json:"user_id" db:"user_id"`
	Status      OrderStatus `json:"status" db:"status"`
	TotalAmount int64       `json:"total_amount" db:"total_amount"` // Amount in cents
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	Items       []*OrderItem `json:"items,omitempty"`
}

// OrderItem snapshots one movie and its price at the moment of ordering
type OrderItem struct {
	ID           int    `json:"id" db:"id"`
	OrderID      int    `json:"order_id" db:"order_id"`
	MovieID      int    `json:"movie_id" db:"movie_id"`
	PriceAtOrder int64  `json:"price_at_order" db:"price_at_order"` // Amount in cents
	MovieTitle   string `json:"movie_title,omitempty" db:"movie_title"`
}

// Validate validates the order data
func (o *Order) Validate() error {
	if err := validateOrderTotalAmount(o.TotalAmount); err != nil {
		return err
	}
	return ValidateOrderStatus(o.Status)
}

// validateOrderTotalAmount validates an order total amount
func validateOrderTotalAmount(totalAmount int64) error {
	if totalAmount < 0 {
		return errors.New("total amount cannot be negative")
	}

	// Maximum order amount of $100,000 (10,000,000 cents)
	if totalAmount > 10000000 {
		return errors.New("total amount cannot exceed $100,000")
	}

	return nil
}

// ValidateOrderStatus validates an order status
func ValidateOrderStatus(status OrderStatus) error {
	switch status {
	case OrderPending, OrderPaid, OrderCanceled:
		return nil
	default:
		return errors.New("invalid order status")
	}
}

// IsPending returns true if the order is pending
func (o *Order) IsPending() bool {
	return o.Status == OrderPending
}

// IsPaid returns true if the order is paid
func (o *Order) IsPaid() bool {
	return o.Status == OrderPaid
}

// IsCanceled returns true if the order is canceled
func (o *Order) IsCanceled() bool {
	return o.Status == OrderCanceled
}

// CanBeCanceled returns true if the order can be canceled directly.
// Paid orders can only be reversed through the refund path.
func (o *Order) CanBeCanceled() bool {
	return o.Status == OrderPending
}

// CanBePaid returns true if a payment may be applied to the order
func (o *Order) CanBePaid() bool {
	return o.Status == OrderPending
}

// CanBeRefunded returns true if the order can be refunded
func (o *Order) CanBeRefunded() bool {
	return o.Status == OrderPaid
}

// ItemsTotal returns the sum of the frozen line-item prices in cents
func (o *Order) ItemsTotal() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.PriceAtOrder
	}
	return total
}

// TotalInCurrency returns the total amount in the main currency as a float
func (o *Order) TotalInCurrency() float64 {
	return float64(o.TotalAmount) / 100.0
}

// GetStatusDisplayName returns a human-readable status name
func (o *Order) GetStatusDisplayName() string {
	switch o.Status {
	case OrderPending:
		return "Pending Payment"
	case OrderPaid:
		return "Paid"
	case OrderCanceled:
		return "Canceled"
	default:
		return string(o.Status)
	}
}
