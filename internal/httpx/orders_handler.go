package httpx

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bookmarket/bookmarket-api/internal/auth"
	"github.com/bookmarket/bookmarket-api/internal/orders"
)

// CheckoutService converts a buyer's cart into orders; see internal/checkout.
type CheckoutService interface {
	CreateOrder(ctx context.Context, buyerID string) ([]string, error)
}

type OrdersHandler struct {
	Checkout CheckoutService
	Repo     *orders.Repo
	Logger   *zap.Logger
}

func (h *OrdersHandler) Register(r chi.Router, authed, buyerOnly, sellerOnly func(http.Handler) http.Handler) {
	r.Route("/orders", func(r chi.Router) {
		r.Use(authed)
		r.With(buyerOnly).Post("/", h.create)
		r.With(buyerOnly).Get("/", h.listBuyer)
		r.With(sellerOnly).Get("/seller", h.listSeller)
		r.Get("/{id}", h.get)
		r.With(sellerOnly).Put("/{id}/status", h.updateStatus)
	})
}

type createOrderResponse struct {
	Message  string   `json:"message"`
	OrderIDs []string `json:"order_ids"`
}

func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())

	orderIDs, err := h.Checkout.CreateOrder(r.Context(), u.ID)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("checkout failed", zap.String("buyer_id", u.ID), zap.Error(err))
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createOrderResponse{
		Message:  "order created successfully",
		OrderIDs: orderIDs,
	})
}

func (h *OrdersHandler) listBuyer(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	out, err := h.Repo.ListForBuyer(r.Context(), u.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	if out == nil {
		out = []orders.OrderWithLines{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) listSeller(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	out, err := h.Repo.ListForSeller(r.Context(), u.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	if out == nil {
		out = []orders.OrderWithLines{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	o, err := h.Repo.GetForUser(r.Context(), chi.URLParam(r, "id"), u.ID, u.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())

	var in struct {
		Status orders.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return
	}

	o, err := h.Repo.UpdateStatus(r.Context(), chi.URLParam(r, "id"), u.ID, in.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
