package orders

const (
	TopicCheckoutCompleted = "order.checkout.completed"
	TopicOrderStatusMoved  = "order.status.moved"
)

// Partition by order id so events for one order stay ordered.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
