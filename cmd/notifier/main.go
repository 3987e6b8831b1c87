package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/bookmarket/bookmarket-api/internal/config"
	kafkax "github.com/bookmarket/bookmarket-api/internal/kafka"
	"github.com/bookmarket/bookmarket-api/internal/logging"
	"github.com/bookmarket/bookmarket-api/internal/notify"
	"github.com/bookmarket/bookmarket-api/internal/orders"
	"github.com/bookmarket/bookmarket-api/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger, err := logging.New(cfg.Env, cfg.ServiceName+"-notifier")
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &notify.Service{
		Redis:       rdb,
		Logger:      logger,
		ServiceName: cfg.ServiceName + "-notifier",
	}

	group := getenv("NOTIFIER_GROUP", "notifier-svc")
	workers := atoiDefault(os.Getenv("NOTIFIER_WORKERS"), 4)
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, orders.TopicCheckoutCompleted, workers, logger)

	go func() {
		logger.Info("notifier consumer started",
			zap.String("group", group),
			zap.String("topic", orders.TopicCheckoutCompleted),
			zap.Int("workers", workers),
		)
		if err := cons.Start(ctx, svc.HandleCheckoutCompleted); err != nil {
			logger.Error("consumer exit", zap.Error(err))
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
		logger.Info("shutting down consumer")
	case <-ctx.Done():
	}
	cancel()
	time.Sleep(500 * time.Millisecond)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
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
