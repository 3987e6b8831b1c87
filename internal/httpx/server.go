package httpx

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/bookmarket/bookmarket-api/internal/auth"
)

type Deps struct {
	Logger *zap.Logger
	Issuer auth.TokenIssuer
	Users  *auth.Repo
	Auth   *AuthHandler
	Books  *BooksHandler
	Cart   *CartHandler
	Orders *OrdersHandler
}

func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP)
	r.Use(requestLogger(d.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	unauthorized := func(w http.ResponseWriter, msg string) { writeMessage(w, http.StatusUnauthorized, msg) }
	forbidden := func(w http.ResponseWriter, msg string) { writeMessage(w, http.StatusForbidden, msg) }

	authed := auth.RequireAuth(d.Issuer, d.Users, unauthorized)
	buyerOnly := auth.RequireRole(auth.RoleBuyer, forbidden)
	sellerOnly := auth.RequireRole(auth.RoleSeller, forbidden)

	r.Route("/api", func(r chi.Router) {
		d.Auth.Register(r, authed)
		d.Books.Register(r, authed, sellerOnly)
		d.Cart.Register(r, authed, buyerOnly)
		d.Orders.Register(r, authed, buyerOnly, sellerOnly)
	})

	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			}
			switch {
			case ww.Status() >= 500:
				logger.Error("http_request", fields...)
			case ww.Status() >= 400:
				logger.Warn("http_request", fields...)
			default:
				logger.Info("http_request", fields...)
			}
		})
	}
}
