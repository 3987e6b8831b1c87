package cart

import "time"

// Line is unique per (buyer, book); adding a book already in the cart
// increments the existing line instead of inserting a second one.
type Line struct {
	ID        string    `json:"id"`
	BuyerID   string    `json:"buyer_id"`
	BookID    string    `json:"book_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

// Item is a cart line joined with its book for display.
type Item struct {
	LineID     string `json:"line_id"`
	BookID     string `json:"book_id"`
	SellerID   string `json:"seller_id"`
	Title      string `json:"title"`
	PriceCents int64  `json:"price_cents"`
	Quantity   int    `json:"quantity"`
	Stock      int    `json:"stock"`
}

type View struct {
	Items      []Item `json:"items"`
	TotalCents int64  `json:"total_cents"`
}
