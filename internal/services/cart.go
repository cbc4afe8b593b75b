package services

import (
	"fmt"

	"online-cinema/internal/models"
	"online-cinema/internal/repositories"
)

// CartService handles cart-related business logic
type CartService struct {
	cartRepo  CartRepository
	orderRepo OrderRepository
}

// CartRepository interface for cart data operations
type CartRepository interface {
	GetOrCreateByUser(userID int) (*models.Cart, error)
	AddItem(userID, movieID int) (*models.CartItem, error)
	RemoveItem(userID, cartItemID int) error
	ListItems(userID int) ([]*repositories.CartItemWithMovie, error)
	ListItemsByCartID(cartID int) ([]*repositories.CartItemWithMovie, error)
	Clear(userID int) error
}

// NewCartService creates a new cart service
func NewCartService(cartRepo CartRepository, orderRepo OrderRepository) *CartService {
	return &CartService{
		cartRepo:  cartRepo,
		orderRepo: orderRepo,
	}
}

// CartView is a cart's contents together with the running total
type CartView struct {
	Items       []*repositories.CartItemWithMovie `json:"items"`
	TotalAmount int64                             `json:"total_amount"`
}

// GetCart returns the user's cart contents, creating the cart on first use
func (s *CartService) GetCart(userID int) (*CartView, error) {
	items, err := s.cartRepo.ListItems(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	return newCartView(items), nil
}

// GetCartByID returns an arbitrary cart's contents for moderation views
func (s *CartService) GetCartByID(cartID int) (*CartView, error) {
	items, err := s.cartRepo.ListItemsByCartID(cartID)
	if err != nil {
		return nil, err
	}

	return newCartView(items), nil
}

// AddMovie puts a movie into the user's cart
func (s *CartService) AddMovie(userID, movieID int) (*models.CartItem, error) {
	return s.cartRepo.AddItem(userID, movieID)
}

// RemoveItem takes a cart item out of the user's cart
func (s *CartService) RemoveItem(userID, cartItemID int) error {
	return s.cartRepo.RemoveItem(userID, cartItemID)
}

// Clear empties the user's cart
func (s *CartService) Clear(userID int) error {
	return s.cartRepo.Clear(userID)
}

// Checkout converts the entire cart into a pending order
func (s *CartService) Checkout(userID int) (*models.Order, error) {
	items, err := s.cartRepo.ListItems(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(items) == 0 {
		return nil, models.ErrEmptyOrder
	}

	cartItemIDs := make([]int, 0, len(items))
	for _, item := range items {
		cartItemIDs = append(cartItemIDs, item.ID)
	}

	return s.orderRepo.CreateFromCartItems(userID, cartItemIDs)
}

func newCartView(items []*repositories.CartItemWithMovie) *CartView {
	view := &CartView{Items: items}
	for _, item := range items {
		view.TotalAmount += item.MoviePrice
	}
	return view
}
