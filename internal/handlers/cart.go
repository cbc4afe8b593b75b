package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"online-cinema/internal/middleware"
	"online-cinema/internal/services"
)

// CartHandler serves the cart endpoints
type CartHandler struct {
	cartService services.CartServiceInterface
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService services.CartServiceInterface) *CartHandler {
	return &CartHandler{cartService: cartService}
}

type addItemRequest struct {
	MovieID int `json:"movie_id"`
}

// GetCart handles GET /api/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	view, err := h.cartService.GetCart(user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// AddItem handles POST /api/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.MovieID <= 0 {
		writeError(w, http.StatusBadRequest, "movie_id is required")
		return
	}

	item, err := h.cartService.AddMovie(user.ID, req.MovieID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

// RemoveItem handles DELETE /api/cart/items/{id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	cartItemID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid cart item id")
		return
	}

	if err := h.cartService.RemoveItem(user.ID, cartItemID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Clear handles DELETE /api/cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	if err := h.cartService.Clear(user.ID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Checkout handles POST /api/cart/checkout
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	order, err := h.cartService.Checkout(user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}
