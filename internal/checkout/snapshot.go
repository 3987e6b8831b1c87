package checkout

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// SnapshotLine is one cart line joined with the live book row, read under
// the checkout transaction. Stock here is the value that gets validated and
// decremented in the same atomic unit.
type SnapshotLine struct {
	CartLineID string
	BookID     string
	SellerID   string
	Title      string
	PriceCents int64
	Quantity   int
	Stock      int
}

// readSnapshot locks the referenced book rows so no concurrent checkout can
// decrement stock between this read and our write.
func readSnapshot(ctx context.Context, tx pgx.Tx, buyerID string) ([]SnapshotLine, error) {
	rows, err := tx.Query(ctx, `
		SELECT c.id, b.id, b.seller_id, b.title, b.price_cents, c.quantity, b.stock
		FROM cart_lines c
		JOIN books b ON b.id = c.book_id
		WHERE c.buyer_id = $1
		ORDER BY c.created_at, c.id
		FOR UPDATE OF b`, buyerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SnapshotLine
	for rows.Next() {
		var l SnapshotLine
		if err := rows.Scan(&l.CartLineID, &l.BookID, &l.SellerID, &l.Title, &l.PriceCents, &l.Quantity, &l.Stock); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
