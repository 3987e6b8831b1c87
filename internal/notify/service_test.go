package notify

import (
	"context"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	kafkax "github.com/bookmarket/bookmarket-api/internal/kafka"
	"github.com/bookmarket/bookmarket-api/internal/orders"
)

func TestHandleCheckoutCompletedIgnoresOtherEventTypes(t *testing.T) {
	svc := &Service{Logger: zap.NewNop(), ServiceName: "test"}

	env := orders.Envelope{
		EventID:   "ev-1",
		EventType: orders.EventOrderStatusMoved,
	}
	err := svc.HandleCheckoutCompleted(context.Background(), kafkago.Message{
		Value: kafkax.MustMarshal(env),
	})
	assert.NoError(t, err)
}

func TestHandleCheckoutCompletedRejectsMalformedEnvelope(t *testing.T) {
	svc := &Service{Logger: zap.NewNop(), ServiceName: "test"}

	err := svc.HandleCheckoutCompleted(context.Background(), kafkago.Message{
		Value: []byte("{not json"),
	})
	assert.Error(t, err)
}
