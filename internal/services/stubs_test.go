package services

import (
	"fmt"

	"online-cinema/internal/models"
	"online-cinema/internal/repositories"
)

// stubOrderRepo is an in-memory OrderRepository for service tests
type stubOrderRepo struct {
	orders       map[int]*models.Order
	totalUpdates []int64
}

func newStubOrderRepo(orders ...*models.Order) *stubOrderRepo {
	repo := &stubOrderRepo{orders: make(map[int]*models.Order)}
	for _, order := range orders {
		repo.orders[order.ID] = order
	}
	return repo
}

func (r *stubOrderRepo) CreateFromCartItems(userID int, cartItemIDs []int) (*models.Order, error) {
	return nil, fmt.Errorf("not supported in stub")
}

func (r *stubOrderRepo) GetByID(id int) (*models.Order, error) {
	order, ok := r.orders[id]
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	return order, nil
}

func (r *stubOrderRepo) UpdateStatus(id int, from, to models.OrderStatus) error {
	order, ok := r.orders[id]
	if !ok || order.Status != from {
		return models.ErrOrderNotPending
	}
	order.Status = to
	return nil
}

func (r *stubOrderRepo) UpdateTotalAmount(id int, totalAmount int64) error {
	order, ok := r.orders[id]
	if !ok {
		return models.ErrOrderNotFound
	}
	order.TotalAmount = totalAmount
	r.totalUpdates = append(r.totalUpdates, totalAmount)
	return nil
}

func (r *stubOrderRepo) Search(filters repositories.OrderSearchFilters) ([]*models.Order, int, error) {
	var matched []*models.Order
	for _, order := range r.orders {
		if filters.UserID > 0 && order.UserID != filters.UserID {
			continue
		}
		if filters.Status != "" && order.Status != filters.Status {
			continue
		}
		matched = append(matched, order)
	}
	return matched, len(matched), nil
}

// stubPaymentRepo is an in-memory PaymentRepository for service tests
type stubPaymentRepo struct {
	payments   map[int]*models.Payment
	byExternal map[string]int
	nextID     int
}

func newStubPaymentRepo() *stubPaymentRepo {
	return &stubPaymentRepo{
		payments:   make(map[int]*models.Payment),
		byExternal: make(map[string]int),
		nextID:     1,
	}
}

func (r *stubPaymentRepo) ApplyPayment(order *models.Order, externalPaymentID string, amount int64) (*models.Payment, error) {
	if _, taken := r.byExternal[externalPaymentID]; taken {
		return nil, models.ErrDuplicateEntry
	}
	if !order.IsPending() {
		return nil, models.ErrOrderNotPending
	}
	order.Status = models.OrderPaid

	payment := &models.Payment{
		ID:                r.nextID,
		UserID:            order.UserID,
		OrderID:           order.ID,
		Status:            models.PaymentSuccessful,
		Amount:            amount,
		ExternalPaymentID: externalPaymentID,
	}
	r.payments[payment.ID] = payment
	r.byExternal[externalPaymentID] = payment.ID
	r.nextID++
	return payment, nil
}

func (r *stubPaymentRepo) GetByID(id int) (*models.Payment, error) {
	payment, ok := r.payments[id]
	if !ok {
		return nil, models.ErrPaymentNotFound
	}
	return payment, nil
}

func (r *stubPaymentRepo) GetSuccessfulByOrder(orderID int) (*models.Payment, error) {
	for _, payment := range r.payments {
		if payment.OrderID == orderID && payment.Status == models.PaymentSuccessful {
			return payment, nil
		}
	}
	return nil, models.ErrPaymentNotFound
}

func (r *stubPaymentRepo) MarkRefunded(paymentID, orderID int) error {
	payment, ok := r.payments[paymentID]
	if !ok || payment.Status != models.PaymentSuccessful {
		return models.ErrPaymentNotFound
	}
	payment.Status = models.PaymentRefunded
	return nil
}

func (r *stubPaymentRepo) Search(filters repositories.PaymentSearchFilters) ([]*models.Payment, int, error) {
	var matched []*models.Payment
	for _, payment := range r.payments {
		if filters.UserID > 0 && payment.UserID != filters.UserID {
			continue
		}
		if filters.OrderID > 0 && payment.OrderID != filters.OrderID {
			continue
		}
		if filters.Status != "" && payment.Status != filters.Status {
			continue
		}
		matched = append(matched, payment)
	}
	return matched, len(matched), nil
}

func pendingOrder(id, userID int, prices ...int64) *models.Order {
	order := &models.Order{
		ID:     id,
		UserID: userID,
		Status: models.OrderPending,
	}
	for i, price := range prices {
		order.Items = append(order.Items, &models.OrderItem{
			ID:           id*100 + i,
			OrderID:      id,
			MovieID:      i + 1,
			PriceAtOrder: price,
			MovieTitle:   fmt.Sprintf("Movie %d", i+1),
		})
		order.TotalAmount += price
	}
	return order
}
