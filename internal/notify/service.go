package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkax "github.com/bookmarket/bookmarket-api/internal/kafka"
	"github.com/bookmarket/bookmarket-api/internal/orders"
	"github.com/bookmarket/bookmarket-api/internal/redisx"
)

// Service consumes checkout events and records the notification intent.
// Delivery channels (email, push) hang off this point; today it logs.
type Service struct {
	Redis       *redis.Client
	Logger      *zap.Logger
	ServiceName string
}

func (s *Service) HandleCheckoutCompleted(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventCheckoutCompleted {
		return nil
	}

	// at-least-once delivery; dedup by event id
	dkey := fmt.Sprintf(redisx.KeyDedup, "notify", env.EventID)
	if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	p, err := kafkax.UnwrapPayload[orders.CheckoutCompletedPayload](env.Payload)
	if err != nil {
		return err
	}

	for _, orderID := range p.OrderIDs {
		s.Logger.Info("order confirmation queued",
			zap.String("buyer_id", p.BuyerID),
			zap.String("order_id", orderID),
			zap.String("event_id", env.EventID),
		)
	}
	return nil
}
