package checkout

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkax "github.com/bookmarket/bookmarket-api/internal/kafka"
	"github.com/bookmarket/bookmarket-api/internal/orders"
	"github.com/bookmarket/bookmarket-api/internal/postgres"
)

// Publisher is the slice of the Kafka producer the checkout needs.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Service owns the only lifecycle transition from cart lines to orders.
type Service struct {
	DB          postgres.DB
	Policy      postgres.Policy
	Logger      *zap.Logger
	Producer    Publisher // optional; the DB is the source of truth
	ServiceName string
}

// CreateOrder converts the buyer's entire cart into one pending order per
// seller, snapshotting prices and decrementing stock, all inside a single
// transaction. The transaction is retried as a whole on transient storage
// failures; each attempt re-reads the cart, so stock is re-validated against
// whatever is current by then.
func (s *Service) CreateOrder(ctx context.Context, buyerID string) ([]string, error) {
	var orderIDs []string

	err := postgres.RunInTx(ctx, s.DB, s.Policy, func(tx pgx.Tx) error {
		orderIDs = orderIDs[:0]

		lines, err := readSnapshot(ctx, tx, buyerID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}
		if err := validateStock(lines); err != nil {
			return err
		}

		for _, group := range partitionBySeller(lines) {
			id, err := materializeOrder(ctx, tx, buyerID, group)
			if err != nil {
				return err
			}
			orderIDs = append(orderIDs, id)
		}

		_, err = tx.Exec(ctx, `DELETE FROM cart_lines WHERE buyer_id = $1`, buyerID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log().Info("checkout committed",
		zap.String("buyer_id", buyerID),
		zap.Strings("order_ids", orderIDs),
	)
	s.publishCompleted(buyerID, orderIDs)

	return orderIDs, nil
}

func (s *Service) publishCompleted(buyerID string, orderIDs []string) {
	if s.Producer == nil || len(orderIDs) == 0 {
		return
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventCheckoutCompleted,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		CorrelationID: orderIDs[0],
		Payload: kafkax.MustMarshal(orders.CheckoutCompletedPayload{
			BuyerID:  buyerID,
			OrderIDs: orderIDs,
		}),
	}
	s.Producer.Publish(orders.PartitionKey(orderIDs[0]), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventCheckoutCompleted)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (s *Service) log() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.NewNop()
}
