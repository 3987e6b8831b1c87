package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/bookmarket/bookmarket-api/internal/auth"
	"github.com/bookmarket/bookmarket-api/internal/books"
	"github.com/bookmarket/bookmarket-api/internal/redisx"
)

type BooksHandler struct {
	Repo   *books.Repo
	Redis  *redis.Client
	Logger *zap.Logger
}

func (h *BooksHandler) Register(r chi.Router, authed, sellerOnly func(http.Handler) http.Handler) {
	r.Route("/books", func(r chi.Router) {
		r.Get("/", h.list)
		r.With(authed, sellerOnly).Get("/seller/me", h.mine)
		r.Get("/{id}", h.get)
		r.With(authed, sellerOnly).Post("/", h.create)
		r.With(authed, sellerOnly).Put("/{id}", h.update)
		r.With(authed, sellerOnly).Delete("/{id}", h.remove)
	})
}

func (h *BooksHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("search")
	page := atoiDefault(r.URL.Query().Get("page"), 1)
	limit := atoiDefault(r.URL.Query().Get("limit"), 10)

	out, err := h.Repo.Search(r.Context(), q, page, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if out == nil {
		out = []books.Book{}
	}
	writeJSON(w, http.StatusOK, out)
}

// get serves reads through the Redis cache; the cache holds the serialized
// book and is dropped on every write.
func (h *BooksHandler) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	key := fmt.Sprintf(redisx.KeyBook, id)

	if h.Redis != nil {
		if raw, err := h.Redis.Get(r.Context(), key).Result(); err == nil && raw != "" {
			writeJSON(w, http.StatusOK, json.RawMessage(raw))
			return
		}
	}

	b, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if h.Redis != nil {
		if raw, err := json.Marshal(b); err == nil {
			_ = h.Redis.Set(r.Context(), key, raw, redisx.TTLBookCache).Err()
		}
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BooksHandler) create(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())

	var in books.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return
	}
	if in.Title == "" {
		writeMessage(w, http.StatusBadRequest, "title is required")
		return
	}
	if in.PriceCents < 0 || in.Stock < 0 {
		writeMessage(w, http.StatusBadRequest, "price and stock must be non-negative")
		return
	}

	b, err := h.Repo.Create(r.Context(), u.ID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *BooksHandler) update(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var in books.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return
	}
	if in.PriceCents < 0 || in.Stock < 0 {
		writeMessage(w, http.StatusBadRequest, "price and stock must be non-negative")
		return
	}

	b, err := h.Repo.Update(r.Context(), id, u.ID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	h.invalidate(r, id)
	writeJSON(w, http.StatusOK, b)
}

func (h *BooksHandler) remove(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.Repo.Deactivate(r.Context(), id, u.ID); err != nil {
		writeError(w, err)
		return
	}
	h.invalidate(r, id)
	writeMessage(w, http.StatusOK, "book removed")
}

func (h *BooksHandler) mine(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	page := atoiDefault(r.URL.Query().Get("page"), 1)
	limit := atoiDefault(r.URL.Query().Get("limit"), 10)

	out, err := h.Repo.ListBySeller(r.Context(), u.ID, page, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if out == nil {
		out = []books.Book{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *BooksHandler) invalidate(r *http.Request, id string) {
	if h.Redis == nil {
		return
	}
	if err := h.Redis.Del(r.Context(), fmt.Sprintf(redisx.KeyBook, id)).Err(); err != nil && h.Logger != nil {
		h.Logger.Warn("book cache invalidation failed", zap.String("book_id", id), zap.Error(err))
	}
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}
