package orders

import "time"

type Order struct {
	ID         string    `json:"id"`
	BuyerID    string    `json:"buyer_id"`
	SellerID   string    `json:"seller_id"`
	Status     Status    `json:"status"`
	TotalCents int64     `json:"total_cents"`
	CreatedAt  time.Time `json:"created_at"`
}

// OrderLine carries the price snapshotted at purchase time. Later edits to
// the book's price never touch it.
type OrderLine struct {
	ID         string `json:"id"`
	OrderID    string `json:"order_id"`
	BookID     string `json:"book_id"`
	Title      string `json:"title"`
	Quantity   int    `json:"quantity"`
	PriceCents int64  `json:"price_cents"`
}

type OrderWithLines struct {
	Order
	Lines []OrderLine `json:"lines"`
}
