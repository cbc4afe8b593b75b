package services

import (
	"online-cinema/internal/models"
	"online-cinema/internal/repositories"
)

// CartServiceInterface defines the interface for cart services
type CartServiceInterface interface {
	GetCart(userID int) (*CartView, error)
	GetCartByID(cartID int) (*CartView, error)
	AddMovie(userID, movieID int) (*models.CartItem, error)
	RemoveItem(userID, cartItemID int) error
	Clear(userID int) error
	Checkout(userID int) (*models.Order, error)
}

// OrderServiceInterface defines the interface for order services
type OrderServiceInterface interface {
	CreateOrder(userID int, cartItemIDs []int) (*models.Order, error)
	GetOrder(orderID, requestingUserID int) (*models.Order, error)
	ListUserOrders(userID, limit, offset int) ([]*models.Order, int, error)
	CancelOrder(orderID, requestingUserID int) error

	// Admin-specific methods
	ListAllOrders(filters repositories.OrderSearchFilters) ([]*models.Order, int, error)
}

// PaymentServiceInterface defines the interface for payment services
type PaymentServiceInterface interface {
	CreateIntent(orderID, userID int, userEmail string) (*PaymentIntent, error)
	CreateCheckoutSession(orderID, userID int, userEmail, successURL, cancelURL string) (*CheckoutSession, error)
	ConfirmPayment(userID int, intentID string) (*models.Payment, error)
	HandleWebhook(payload []byte, signature string) error
	GetPayment(paymentID, requestingUserID int) (*models.Payment, error)
	ListUserPayments(userID, limit, offset int) ([]*models.Payment, int, error)

	// Admin-specific methods
	ListAllPayments(filters repositories.PaymentSearchFilters) ([]*models.Payment, int, error)
}

// RefundServiceInterface defines the interface for refund services
type RefundServiceInterface interface {
	RefundOrder(orderID int, amount int64, reason string) (*models.Payment, error)
}
