package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookmarket/bookmarket-api/internal/auth"
	"github.com/bookmarket/bookmarket-api/internal/checkout"
	"github.com/bookmarket/bookmarket-api/internal/postgres"
)

type stubCheckout struct {
	orderIDs []string
	err      error
	gotBuyer string
}

func (s *stubCheckout) CreateOrder(ctx context.Context, buyerID string) ([]string, error) {
	s.gotBuyer = buyerID
	return s.orderIDs, s.err
}

func doCheckout(t *testing.T, stub *stubCheckout) *httptest.ResponseRecorder {
	t.Helper()
	h := &OrdersHandler{Checkout: stub}

	req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
	buyer := &auth.User{ID: "buyer-1", Role: auth.RoleBuyer}
	req = req.WithContext(auth.WithUser(req.Context(), buyer))

	rec := httptest.NewRecorder()
	h.create(rec, req)
	return rec
}

func TestCreateOrderReturnsOrderIDs(t *testing.T) {
	stub := &stubCheckout{orderIDs: []string{"o1", "o2"}}

	rec := doCheckout(t, stub)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "buyer-1", stub.gotBuyer)

	var body createOrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"o1", "o2"}, body.OrderIDs)
}

func TestCreateOrderErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"empty cart", checkout.ErrEmptyCart, http.StatusBadRequest},
		{"insufficient stock", &checkout.InsufficientStockError{Title: "Dune"}, http.StatusConflict},
		{"storage unavailable", &postgres.StorageUnavailableError{Attempts: 3}, http.StatusServiceUnavailable},
		{"unexpected", assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doCheckout(t, &stubCheckout{err: tt.err})
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestCreateOrderInsufficientStockNamesTheBook(t *testing.T) {
	rec := doCheckout(t, &stubCheckout{err: &checkout.InsufficientStockError{Title: "Hyperion"}})

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not enough stock for Hyperion", body["message"])
}
