package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"online-cinema/internal/middleware"
	"online-cinema/internal/services"
)

// Provider webhook payloads are small; anything bigger is hostile.
const maxWebhookBodySize = 64 * 1024

// PaymentHandler serves the payment endpoints
type PaymentHandler struct {
	paymentService services.PaymentServiceInterface
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService services.PaymentServiceInterface) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

type createIntentRequest struct {
	OrderID int `json:"order_id"`
}

type createIntentResponse struct {
	PaymentIntentID string `json:"payment_intent_id"`
	ClientSecret    string `json:"client_secret"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
}

type processPaymentRequest struct {
	PaymentIntentID string `json:"payment_intent_id"`
}

type checkoutSessionRequest struct {
	OrderID    int    `json:"order_id"`
	SuccessURL string `json:"success_url"`
	CancelURL  string `json:"cancel_url"`
}

type checkoutSessionResponse struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	AmountTotal int64  `json:"amount_total"`
}

// CreateIntent handles POST /api/payments/create-intent
func (h *PaymentHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var req createIntentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OrderID <= 0 {
		writeError(w, http.StatusBadRequest, "order_id is required")
		return
	}

	intent, err := h.paymentService.CreateIntent(req.OrderID, user.ID, user.Email)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, createIntentResponse{
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		Amount:          intent.Amount,
		Currency:        intent.Currency,
	})
}

// CreateCheckoutSession handles POST /api/payments/checkout-session. It
// is the redirect-based alternative to the intent flow: the response URL
// sends the customer to the provider's hosted payment page.
func (h *PaymentHandler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var req checkoutSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OrderID <= 0 {
		writeError(w, http.StatusBadRequest, "order_id is required")
		return
	}
	if req.SuccessURL == "" || req.CancelURL == "" {
		writeError(w, http.StatusBadRequest, "success_url and cancel_url are required")
		return
	}

	session, err := h.paymentService.CreateCheckoutSession(req.OrderID, user.ID, user.Email, req.SuccessURL, req.CancelURL)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, checkoutSessionResponse{
		ID:          session.ID,
		URL:         session.URL,
		AmountTotal: session.Amount,
	})
}

// ProcessPayment handles POST /api/payments/process
func (h *PaymentHandler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var req processPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PaymentIntentID == "" {
		writeError(w, http.StatusBadRequest, "payment_intent_id is required")
		return
	}

	payment, err := h.paymentService.ConfirmPayment(user.ID, req.PaymentIntentID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, payment)
}

// ListPayments handles GET /api/payments
func (h *PaymentHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	limit, offset := parsePagination(r)

	payments, total, err := h.paymentService.ListUserPayments(user.ID, limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse{Items: payments, Total: total})
}

// GetPayment handles GET /api/payments/{id}
func (h *PaymentHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	paymentID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid payment id")
		return
	}

	payment, err := h.paymentService.GetPayment(paymentID, user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, payment)
}

// Webhook handles POST /api/payments/webhook. It is unauthenticated; the
// provider signature is the only credential.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read payload")
		return
	}

	signature := r.Header.Get("Stripe-Signature")
	if signature == "" {
		signature = r.Header.Get("Webhook-Signature")
	}

	if err := h.paymentService.HandleWebhook(payload, signature); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "received"})
}
