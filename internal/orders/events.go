package orders

import (
	"encoding/json"
	"time"
)

const (
	EventCheckoutCompleted = "CheckoutCompleted"
	EventOrderStatusMoved  = "OrderStatusMoved"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type CheckoutCompletedPayload struct {
	BuyerID  string   `json:"buyer_id"`
	OrderIDs []string `json:"order_ids"`
}

type OrderStatusMovedPayload struct {
	OrderID string `json:"order_id"`
	From    Status `json:"from"`
	To      Status `json:"to"`
}
