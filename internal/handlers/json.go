package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"online-cinema/internal/models"
	"online-cinema/internal/services"
)

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("Failed to encode response: %v", err)
		}
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeServiceError maps domain errors onto HTTP status codes. Anything
// unrecognized is a 500 with a generic body; the detail goes to the log
// only.
func writeServiceError(w http.ResponseWriter, err error) {
	var purchased *models.AlreadyPurchasedError
	var pending *models.PendingOrderError
	var gatewayErr *services.GatewayError

	switch {
	case errors.Is(err, models.ErrMovieNotFound),
		errors.Is(err, models.ErrCartNotFound),
		errors.Is(err, models.ErrCartItemNotFound),
		errors.Is(err, models.ErrOrderNotFound),
		errors.Is(err, models.ErrPaymentNotFound),
		errors.Is(err, models.ErrUnauthorized):
		// Ownership failures read as not-found so ids stay unguessable
		writeError(w, http.StatusNotFound, notFoundMessage(err))
	case errors.As(err, &purchased),
		errors.As(err, &pending),
		errors.Is(err, models.ErrMovieInCart),
		errors.Is(err, models.ErrMoviePurchased),
		errors.Is(err, models.ErrDuplicateEntry):
		writeError(w, http.StatusConflict, conflictMessage(err))
	case errors.Is(err, models.ErrEmptyOrder),
		errors.Is(err, models.ErrOrderNotPending),
		errors.Is(err, models.ErrOrderPaid),
		errors.Is(err, models.ErrOrderCanceled),
		errors.Is(err, models.ErrAmountMismatch),
		errors.Is(err, models.ErrRefundTooLarge),
		errors.Is(err, models.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &gatewayErr):
		writeError(w, http.StatusBadRequest, "payment provider rejected the request")
	default:
		log.Printf("Internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func notFoundMessage(err error) string {
	if errors.Is(err, models.ErrUnauthorized) {
		return "not found"
	}
	return err.Error()
}

func conflictMessage(err error) string {
	if errors.Is(err, models.ErrDuplicateEntry) {
		return "payment already recorded"
	}
	return err.Error()
}

func decodeJSON(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return err
	}
	return nil
}
