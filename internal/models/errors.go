package models

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors used throughout the application
var (
	ErrMovieNotFound    = errors.New("movie not found")
	ErrCartNotFound     = errors.New("cart not found")
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrMovieInCart      = errors.New("movie is already in the cart")
	ErrMoviePurchased   = errors.New("movie has already been purchased")
	ErrEmptyOrder       = errors.New("cart is empty, cannot create order")
	ErrOrderNotPending  = errors.New("order is not in pending status")
	ErrOrderPaid        = errors.New("paid orders can only be canceled via refund")
	ErrOrderCanceled    = errors.New("order is already canceled")
	ErrAmountMismatch   = errors.New("payment amount does not match order total")
	ErrRefundTooLarge   = errors.New("refund amount exceeds captured payment amount")
	ErrDuplicateEntry   = errors.New("duplicate entry")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrInvalidInput     = errors.New("invalid input")
)

// AlreadyPurchasedError reports the movies in a request that the user
// already owns. The whole request is rejected, never partially applied.
type AlreadyPurchasedError struct {
	Titles []string
}

func (e *AlreadyPurchasedError) Error() string {
	return fmt.Sprintf("movies already purchased: %s", strings.Join(e.Titles, ", "))
}

// PendingOrderError reports a movie that already sits in another pending
// order for the same user.
type PendingOrderError struct {
	Title string
}

func (e *PendingOrderError) Error() string {
	return fmt.Sprintf("movie %q is already in a pending order", e.Title)
}
