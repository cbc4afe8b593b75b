package services

import (
	"online-cinema/internal/models"
	"online-cinema/internal/repositories"
)

// OrderService handles order-related business logic
type OrderService struct {
	orderRepo OrderRepository
}

// OrderRepository interface for order data operations
type OrderRepository interface {
	CreateFromCartItems(userID int, cartItemIDs []int) (*models.Order, error)
	GetByID(id int) (*models.Order, error)
	UpdateStatus(id int, from, to models.OrderStatus) error
	UpdateTotalAmount(id int, totalAmount int64) error
	Search(filters repositories.OrderSearchFilters) ([]*models.Order, int, error)
}

// NewOrderService creates a new order service
func NewOrderService(orderRepo OrderRepository) *OrderService {
	return &OrderService{orderRepo: orderRepo}
}

// CreateOrder turns the selected cart items into a pending order
func (s *OrderService) CreateOrder(userID int, cartItemIDs []int) (*models.Order, error) {
	return s.orderRepo.CreateFromCartItems(userID, cartItemIDs)
}

// GetOrder returns an order, restricted to its owner
func (s *OrderService) GetOrder(orderID, requestingUserID int) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != requestingUserID {
		return nil, models.ErrUnauthorized
	}

	return order, nil
}

// ListUserOrders returns the user's orders, newest first
func (s *OrderService) ListUserOrders(userID, limit, offset int) ([]*models.Order, int, error) {
	return s.orderRepo.Search(repositories.OrderSearchFilters{
		UserID:   userID,
		Limit:    limit,
		Offset:   offset,
		SortBy:   "created_at",
		SortDesc: true,
	})
}

// ListAllOrders returns orders across all users for admin views
func (s *OrderService) ListAllOrders(filters repositories.OrderSearchFilters) ([]*models.Order, int, error) {
	return s.orderRepo.Search(filters)
}

// CancelOrder cancels a pending order. A paid order cannot be canceled
// directly; it has to go through a refund.
func (s *OrderService) CancelOrder(orderID, requestingUserID int) error {
	order, err := s.GetOrder(orderID, requestingUserID)
	if err != nil {
		return err
	}

	switch {
	case order.IsPaid():
		return models.ErrOrderPaid
	case order.IsCanceled():
		return models.ErrOrderCanceled
	}

	return s.orderRepo.UpdateStatus(orderID, models.OrderPending, models.OrderCanceled)
}
