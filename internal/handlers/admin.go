package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"online-cinema/internal/models"
	"online-cinema/internal/repositories"
	"online-cinema/internal/services"
)

// AdminHandler serves the admin endpoints
type AdminHandler struct {
	orderService   services.OrderServiceInterface
	paymentService services.PaymentServiceInterface
	cartService    services.CartServiceInterface
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	orderService services.OrderServiceInterface,
	paymentService services.PaymentServiceInterface,
	cartService services.CartServiceInterface,
) *AdminHandler {
	return &AdminHandler{
		orderService:   orderService,
		paymentService: paymentService,
		cartService:    cartService,
	}
}

// ListOrders handles GET /api/admin/orders
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	status, ok := parseOrderStatus(r.URL.Query().Get("status"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid status filter")
		return
	}

	from, ok := parseDateFilter(r.URL.Query().Get("from"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid from date")
		return
	}
	to, ok := parseDateFilter(r.URL.Query().Get("to"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid to date")
		return
	}

	limit, offset := parsePagination(r)
	userID, _ := strconv.Atoi(r.URL.Query().Get("user_id"))

	orders, total, err := h.orderService.ListAllOrders(repositories.OrderSearchFilters{
		UserID:   userID,
		Status:   status,
		DateFrom: from,
		DateTo:   to,
		Limit:    limit,
		Offset:   offset,
		SortBy:   "created_at",
		SortDesc: true,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse{Items: orders, Total: total})
}

// ListPayments handles GET /api/admin/payments
func (h *AdminHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	statusParam := r.URL.Query().Get("status")
	status := models.PaymentStatus(statusParam)
	if statusParam != "" {
		if err := models.ValidatePaymentStatus(status); err != nil {
			writeError(w, http.StatusBadRequest, "invalid status filter")
			return
		}
	}

	limit, offset := parsePagination(r)
	userID, _ := strconv.Atoi(r.URL.Query().Get("user_id"))

	payments, total, err := h.paymentService.ListAllPayments(repositories.PaymentSearchFilters{
		UserID: userID,
		Status: status,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse{Items: payments, Total: total})
}

// GetCart handles GET /api/admin/carts/{id}
func (h *AdminHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cartID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid cart id")
		return
	}

	view, err := h.cartService.GetCartByID(cartID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func parseDateFilter(value string) (*time.Time, bool) {
	if value == "" {
		return nil, true
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return &parsed, true
		}
	}
	return nil, false
}
