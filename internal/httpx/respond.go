package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bookmarket/bookmarket-api/internal/auth"
	"github.com/bookmarket/bookmarket-api/internal/books"
	"github.com/bookmarket/bookmarket-api/internal/cart"
	"github.com/bookmarket/bookmarket-api/internal/checkout"
	"github.com/bookmarket/bookmarket-api/internal/orders"
	"github.com/bookmarket/bookmarket-api/internal/postgres"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"message": msg})
}

// writeError maps domain failures onto HTTP statuses. Anything unmapped is an
// opaque server error; the handler logs it, the client gets no internals.
func writeError(w http.ResponseWriter, err error) {
	var stockErr *checkout.InsufficientStockError
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &stockErr):
		writeMessage(w, http.StatusConflict, stockErr.Error())
	case errors.Is(err, postgres.ErrStorageUnavailable):
		writeMessage(w, http.StatusServiceUnavailable, "storage unavailable, try again later")
	case errors.Is(err, orders.ErrNotFound),
		errors.Is(err, cart.ErrLineNotFound),
		errors.Is(err, books.ErrNotFound),
		errors.Is(err, auth.ErrUserNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, orders.ErrInvalidTransition),
		errors.Is(err, cart.ErrBookUnavailable),
		errors.Is(err, cart.ErrNotEnoughStock),
		errors.Is(err, cart.ErrInvalidQuantity):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, auth.ErrEmailTaken):
		writeMessage(w, http.StatusConflict, err.Error())
	default:
		writeMessage(w, http.StatusInternalServerError, "server error")
	}
}
