package handlers

import (
	"online-cinema/internal/models"
	"online-cinema/internal/repositories"
	"online-cinema/internal/services"
)

// Canned-response service stubs. Each stub returns its err when set and
// its fixed values otherwise, recording the arguments it saw.

type stubCartService struct {
	view  *services.CartView
	item  *models.CartItem
	order *models.Order
	err   error

	clearedFor  int
	removedItem int
}

func (s *stubCartService) GetCart(userID int) (*services.CartView, error) {
	return s.view, s.err
}

func (s *stubCartService) GetCartByID(cartID int) (*services.CartView, error) {
	return s.view, s.err
}

func (s *stubCartService) AddMovie(userID, movieID int) (*models.CartItem, error) {
	return s.item, s.err
}

func (s *stubCartService) RemoveItem(userID, cartItemID int) error {
	s.removedItem = cartItemID
	return s.err
}

func (s *stubCartService) Clear(userID int) error {
	s.clearedFor = userID
	return s.err
}

func (s *stubCartService) Checkout(userID int) (*models.Order, error) {
	return s.order, s.err
}

type stubOrderService struct {
	order  *models.Order
	orders []*models.Order
	total  int
	err    error

	canceledOrder int
	gotFilters    repositories.OrderSearchFilters
}

func (s *stubOrderService) CreateOrder(userID int, cartItemIDs []int) (*models.Order, error) {
	return s.order, s.err
}

func (s *stubOrderService) GetOrder(orderID, requestingUserID int) (*models.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.order, nil
}

func (s *stubOrderService) ListUserOrders(userID, limit, offset int) ([]*models.Order, int, error) {
	return s.orders, s.total, s.err
}

func (s *stubOrderService) CancelOrder(orderID, requestingUserID int) error {
	s.canceledOrder = orderID
	return s.err
}

func (s *stubOrderService) ListAllOrders(filters repositories.OrderSearchFilters) ([]*models.Order, int, error) {
	s.gotFilters = filters
	return s.orders, s.total, s.err
}

type stubPaymentService struct {
	intent   *services.PaymentIntent
	session  *services.CheckoutSession
	payment  *models.Payment
	payments []*models.Payment
	total    int
	err      error

	gotSignature  string
	gotPayload    []byte
	gotSuccessURL string
	gotCancelURL  string
}

func (s *stubPaymentService) CreateIntent(orderID, userID int, userEmail string) (*services.PaymentIntent, error) {
	return s.intent, s.err
}

func (s *stubPaymentService) CreateCheckoutSession(orderID, userID int, userEmail, successURL, cancelURL string) (*services.CheckoutSession, error) {
	s.gotSuccessURL = successURL
	s.gotCancelURL = cancelURL
	return s.session, s.err
}

func (s *stubPaymentService) ConfirmPayment(userID int, intentID string) (*models.Payment, error) {
	return s.payment, s.err
}

func (s *stubPaymentService) HandleWebhook(payload []byte, signature string) error {
	s.gotPayload = payload
	s.gotSignature = signature
	return s.err
}

func (s *stubPaymentService) GetPayment(paymentID, requestingUserID int) (*models.Payment, error) {
	return s.payment, s.err
}

func (s *stubPaymentService) ListUserPayments(userID, limit, offset int) ([]*models.Payment, int, error) {
	return s.payments, s.total, s.err
}

func (s *stubPaymentService) ListAllPayments(filters repositories.PaymentSearchFilters) ([]*models.Payment, int, error) {
	return s.payments, s.total, s.err
}

type stubRefundService struct {
	payment *models.Payment
	err     error

	gotOrderID int
	gotAmount  int64
	gotReason  string
}

func (s *stubRefundService) RefundOrder(orderID int, amount int64, reason string) (*models.Payment, error) {
	s.gotOrderID = orderID
	s.gotAmount = amount
	s.gotReason = reason
	return s.payment, s.err
}
