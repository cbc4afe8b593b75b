package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"online-cinema/internal/middleware"
	"online-cinema/internal/models"
	"online-cinema/internal/services"
)

// OrderHandler serves the order endpoints
type OrderHandler struct {
	orderService  services.OrderServiceInterface
	refundService services.RefundServiceInterface
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService services.OrderServiceInterface, refundService services.RefundServiceInterface) *OrderHandler {
	return &OrderHandler{
		orderService:  orderService,
		refundService: refundService,
	}
}

type createOrderRequest struct {
	CartItemIDs []int `json:"cart_item_ids"`
}

type refundRequest struct {
	Reason string `json:"reason"`
	Amount int64  `json:"amount,omitempty"`
}

type listResponse struct {
	Items interface{} `json:"items"`
	Total int         `json:"total"`
}

// CreateOrder handles POST /api/orders
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.CartItemIDs) == 0 {
		writeError(w, http.StatusBadRequest, "cart_item_ids is required")
		return
	}

	order, err := h.orderService.CreateOrder(user.ID, req.CartItemIDs)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// ListOrders handles GET /api/orders
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	limit, offset := parsePagination(r)

	orders, total, err := h.orderService.ListUserOrders(user.ID, limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse{Items: orders, Total: total})
}

// GetOrder handles GET /api/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	orderID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.orderService.GetOrder(orderID, user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// CancelOrder handles DELETE /api/orders/{id}
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	orderID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	if err := h.orderService.CancelOrder(orderID, user.ID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RefundOrder handles POST /api/orders/{id}/refund
func (h *OrderHandler) RefundOrder(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	orderID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req refundRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Amount < 0 {
		writeError(w, http.StatusBadRequest, "amount must not be negative")
		return
	}

	// Ownership gate; the refund service itself is caller-agnostic
	if _, err := h.orderService.GetOrder(orderID, user.ID); err != nil {
		writeServiceError(w, err)
		return
	}

	payment, err := h.refundService.RefundOrder(orderID, req.Amount, req.Reason)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	log.Printf("Refund: order %d refunded for user %d, reason: %q", orderID, user.ID, req.Reason)
	writeJSON(w, http.StatusOK, payment)
}

func parsePagination(r *http.Request) (limit, offset int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	return perPage, (page - 1) * perPage
}

func parseOrderStatus(value string) (models.OrderStatus, bool) {
	if value == "" {
		return "", true
	}
	status := models.OrderStatus(value)
	if err := models.ValidateOrderStatus(status); err != nil {
		return "", false
	}
	return status, true
}
