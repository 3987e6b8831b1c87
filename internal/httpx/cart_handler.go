package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bookmarket/bookmarket-api/internal/auth"
	"github.com/bookmarket/bookmarket-api/internal/cart"
)

type CartHandler struct {
	Repo *cart.Repo
}

func (h *CartHandler) Register(r chi.Router, authed, buyerOnly func(http.Handler) http.Handler) {
	r.Route("/cart", func(r chi.Router) {
		r.Use(authed, buyerOnly)
		r.Get("/", h.view)
		r.Post("/", h.add)
		r.Put("/{id}", h.updateQuantity)
		r.Delete("/{id}", h.remove)
		r.Delete("/", h.clear)
	})
}

func (h *CartHandler) view(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	v, err := h.Repo.View(r.Context(), u.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *CartHandler) add(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())

	var in struct {
		BookID   string `json:"book_id"`
		Quantity int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return
	}
	if in.BookID == "" {
		writeMessage(w, http.StatusBadRequest, "book_id is required")
		return
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}

	line, err := h.Repo.Add(r.Context(), u.ID, in.BookID, in.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, line)
}

func (h *CartHandler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())

	var in struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return
	}

	line, err := h.Repo.UpdateQuantity(r.Context(), chi.URLParam(r, "id"), u.ID, in.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, line)
}

func (h *CartHandler) remove(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	if err := h.Repo.Remove(r.Context(), chi.URLParam(r, "id"), u.ID); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "item removed from cart")
}

func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	if err := h.Repo.Clear(r.Context(), u.ID); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "cart cleared")
}
