package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// materializeOrder turns one seller group into a pending order: order row
// with the group total, one order line per book with the price snapshotted,
// and the matching stock decrements. Runs inside the orchestrator's
// transaction; any error unwinds everything, including groups materialized
// before this one.
func materializeOrder(ctx context.Context, tx pgx.Tx, buyerID string, group SellerGroup) (string, error) {
	var total int64
	for _, l := range group.Lines {
		total += l.PriceCents * int64(l.Quantity)
	}

	orderID := uuid.NewString()
	_, err := tx.Exec(ctx, `
		INSERT INTO orders (id, buyer_id, seller_id, status, total_cents)
		VALUES ($1, $2, $3, 'pending', $4)`,
		orderID, buyerID, group.SellerID, total)
	if err != nil {
		return "", err
	}

	for _, l := range group.Lines {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_lines (id, order_id, book_id, quantity, price_cents)
			VALUES ($1, $2, $3, $4, $5)`,
			uuid.NewString(), orderID, l.BookID, l.Quantity, l.PriceCents); err != nil {
			return "", err
		}

		ct, err := tx.Exec(ctx, `
			UPDATE books SET stock = stock - $2, updated_at = now()
			WHERE id = $1 AND stock >= $2`,
			l.BookID, l.Quantity)
		if err != nil {
			return "", err
		}
		if ct.RowsAffected() != 1 {
			// unreachable after validation under FOR UPDATE, but a stock
			// underflow must never commit
			return "", fmt.Errorf("stock decrement affected %d rows for book %s", ct.RowsAffected(), l.BookID)
		}
	}

	return orderID, nil
}
