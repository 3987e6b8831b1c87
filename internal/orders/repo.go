package orders

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) ListForBuyer(ctx context.Context, buyerID string) ([]OrderWithLines, error) {
	return r.list(ctx, `buyer_id`, buyerID)
}

func (r *Repo) ListForSeller(ctx context.Context, sellerID string) ([]OrderWithLines, error) {
	return r.list(ctx, `seller_id`, sellerID)
}

func (r *Repo) list(ctx context.Context, column, userID string) ([]OrderWithLines, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, buyer_id, seller_id, status, total_cents, created_at
		FROM orders WHERE `+column+` = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrderWithLines
	for rows.Next() {
		var o OrderWithLines
		if err := rows.Scan(&o.ID, &o.BuyerID, &o.SellerID, &o.Status, &o.TotalCents, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		lines, err := r.linesFor(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Lines = lines
	}
	return out, nil
}

// GetForUser scopes the lookup to the requesting party: buyers see their own
// orders, sellers theirs.
func (r *Repo) GetForUser(ctx context.Context, orderID, userID, role string) (*OrderWithLines, error) {
	column := `buyer_id`
	if role == "seller" {
		column = `seller_id`
	}

	var o OrderWithLines
	err := r.DB.QueryRow(ctx, `
		SELECT id, buyer_id, seller_id, status, total_cents, created_at
		FROM orders WHERE id = $1 AND `+column+` = $2`, orderID, userID).
		Scan(&o.ID, &o.BuyerID, &o.SellerID, &o.Status, &o.TotalCents, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	o.Lines, err = r.linesFor(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateStatus moves a seller's order along pending -> shipped -> delivered
// (cancelled only from pending). The current status is read and checked in
// the same transaction as the write.
func (r *Repo) UpdateStatus(ctx context.Context, orderID, sellerID string, to Status) (*OrderWithLines, error) {
	if !to.Valid() {
		return nil, ErrInvalidTransition
	}

	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var from Status
	err = tx.QueryRow(ctx, `
		SELECT status FROM orders WHERE id = $1 AND seller_id = $2 FOR UPDATE`,
		orderID, sellerID).Scan(&from)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !CanTransition(from, to) {
		return nil, ErrInvalidTransition
	}

	if _, err := tx.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, orderID, to); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return r.GetForUser(ctx, orderID, sellerID, "seller")
}

func (r *Repo) linesFor(ctx context.Context, orderID string) ([]OrderLine, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT l.id, l.order_id, l.book_id, b.title, l.quantity, l.price_cents
		FROM order_lines l
		JOIN books b ON b.id = l.book_id
		WHERE l.order_id = $1`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrderLine
	for rows.Next() {
		var l OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.BookID, &l.Title, &l.Quantity, &l.PriceCents); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
