package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bookmarket/bookmarket-api/internal/auth"
)

type AuthHandler struct {
	Svc *auth.Service
}

func (h *AuthHandler) Register(r chi.Router, authed func(http.Handler) http.Handler) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
		r.With(authed).Get("/me", h.me)
	})
}

type authResponse struct {
	User  *auth.User `json:"user"`
	Token string     `json:"token"`
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var in auth.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return
	}
	if in.Name == "" || in.Email == "" {
		writeMessage(w, http.StatusBadRequest, "name and email are required")
		return
	}
	if len(in.Password) < 6 {
		writeMessage(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}
	if !auth.ValidRole(in.Role) {
		writeMessage(w, http.StatusBadRequest, "role must be buyer or seller")
		return
	}

	u, token, err := h.Svc.Register(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{User: u, Token: token})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json")
		return
	}

	u, token, err := h.Svc.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{User: u, Token: token})
}

func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	writeJSON(w, http.StatusOK, u)
}
