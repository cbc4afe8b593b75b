package models

import (
	"errors"
	"time"
)

// PaymentStatus represents the status of a payment
type PaymentStatus string

const (
	PaymentSuccessful PaymentStatus = "successful"
	PaymentCanceled   PaymentStatus = "canceled"
	PaymentRefunded   PaymentStatus = "refunded"
)

// Payment represents a successfully captured transaction against one
// order. Failed attempts never materialize a Payment row, so SUCCESSFUL
// is the only initial status.
type Payment struct {
	ID                int           `json:"id" db:"id"`
	UserID            int           `json:"user_id" db:"user_id"`
	OrderID           int           `json:"order_id" db:"order_id"`
	Status            PaymentStatus `json:"status" db:"status"`
	Amount            int64         `json:"amount" db:"amount"` // Amount in cents
	ExternalPaymentID string        `json:"external_payment_id" db:"external_payment_id"`
	CreatedAt         time.Time     `json:"created_at" db:"created_at"`
	Items             []*PaymentItem `json:"items,omitempty"`
}

// PaymentItem snapshots the price of one order line at the moment the
// payment was captured, independent of later order or catalog mutation.
type PaymentItem struct {
	ID             int   `json:"id" db:"id"`
	PaymentID      int   `json:"payment_id" db:"payment_id"`
	OrderItemID    int   `json:"order_item_id" db:"order_item_id"`
	PriceAtPayment int64 `json:"price_at_payment" db:"price_at_payment"` // Amount in cents
}

// Validate validates the payment data
func (p *Payment) Validate() error {
	if p.Amount < 0 {
		return errors.New("payment amount cannot be negative")
	}

	if p.ExternalPaymentID == "" {
		return errors.New("external payment id is required")
	}

	return ValidatePaymentStatus(p.Status)
}

// ValidatePaymentStatus validates a payment status
func ValidatePaymentStatus(status PaymentStatus) error {
	switch status {
	case PaymentSuccessful, PaymentCanceled, PaymentRefunded:
		return nil
	default:
		return errors.New("invalid payment status")
	}
}

// IsSuccessful returns true if the payment is in its captured state
func (p *Payment) IsSuccessful() bool {
	return p.Status == PaymentSuccessful
}

// CanBeRefunded returns true if the payment can be refunded
func (p *Payment) CanBeRefunded() bool {
	return p.Status == PaymentSuccessful
}

// AmountInCurrency returns the captured amount in the main currency as a float
func (p *Payment) AmountInCurrency() float64 {
	return float64(p.Amount) / 100.0
}
