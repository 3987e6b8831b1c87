package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/bookmarket/bookmarket-api/internal/auth"
	"github.com/bookmarket/bookmarket-api/internal/books"
	"github.com/bookmarket/bookmarket-api/internal/cart"
	"github.com/bookmarket/bookmarket-api/internal/checkout"
	"github.com/bookmarket/bookmarket-api/internal/config"
	"github.com/bookmarket/bookmarket-api/internal/httpx"
	kafkax "github.com/bookmarket/bookmarket-api/internal/kafka"
	"github.com/bookmarket/bookmarket-api/internal/logging"
	"github.com/bookmarket/bookmarket-api/internal/orders"
	"github.com/bookmarket/bookmarket-api/internal/postgres"
	"github.com/bookmarket/bookmarket-api/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger, err := logging.New(cfg.Env, cfg.ServiceName)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer for checkout events
	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicCheckoutCompleted, 1024, logger)
	prod.Start(ctx)

	policy := postgres.DefaultPolicy()
	issuer := auth.TokenIssuer{Secret: []byte(cfg.JWTSecret), TTL: cfg.TokenTTL}

	userRepo := &auth.Repo{DB: db, Policy: policy}
	bookRepo := &books.Repo{DB: db}
	cartRepo := &cart.Repo{DB: db}
	orderRepo := &orders.Repo{DB: db}

	checkoutSvc := &checkout.Service{
		DB:          db,
		Policy:      policy,
		Logger:      logger,
		Producer:    prod,
		ServiceName: cfg.ServiceName,
	}

	router := httpx.NewRouter(httpx.Deps{
		Logger: logger,
		Issuer: issuer,
		Users:  userRepo,
		Auth:   &httpx.AuthHandler{Svc: &auth.Service{Repo: userRepo, Issuer: issuer}},
		Books:  &httpx.BooksHandler{Repo: bookRepo, Redis: rdb, Logger: logger},
		Cart:   &httpx.CartHandler{Repo: cartRepo},
		Orders: &httpx.OrdersHandler{Checkout: checkoutSvc, Repo: orderRepo, Logger: logger},
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		logger.Info("http listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)

	prod.Close()
	cancel()
	prod.WaitClosed()
}
