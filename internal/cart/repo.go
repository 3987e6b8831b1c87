package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrLineNotFound    = errors.New("cart item not found")
	ErrBookUnavailable = errors.New("book not available")
	ErrNotEnoughStock  = errors.New("not enough stock available")
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) View(ctx context.Context, buyerID string) (*View, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT c.id, b.id, b.seller_id, b.title, b.price_cents, c.quantity, b.stock
		FROM cart_lines c
		JOIN books b ON b.id = c.book_id
		WHERE c.buyer_id = $1
		ORDER BY c.created_at, c.id`, buyerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	v := &View{Items: []Item{}}
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.LineID, &it.BookID, &it.SellerID, &it.Title, &it.PriceCents, &it.Quantity, &it.Stock); err != nil {
			return nil, err
		}
		v.Items = append(v.Items, it)
		v.TotalCents += it.PriceCents * int64(it.Quantity)
	}
	return v, rows.Err()
}

// Add puts qty of a book into the buyer's cart, merging into the existing
// line if one exists for that book.
func (r *Repo) Add(ctx context.Context, buyerID, bookID string, qty int) (*Line, error) {
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}

	var available int
	err := r.DB.QueryRow(ctx, `SELECT stock FROM books WHERE id = $1 AND active AND stock > 0`, bookID).
		Scan(&available)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBookUnavailable
	}
	if err != nil {
		return nil, err
	}

	var line Line
	err = r.DB.QueryRow(ctx, `
		INSERT INTO cart_lines (id, buyer_id, book_id, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (buyer_id, book_id)
		DO UPDATE SET quantity = cart_lines.quantity + EXCLUDED.quantity
		RETURNING id, buyer_id, book_id, quantity, created_at`,
		uuid.NewString(), buyerID, bookID, qty).
		Scan(&line.ID, &line.BuyerID, &line.BookID, &line.Quantity, &line.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *Repo) UpdateQuantity(ctx context.Context, lineID, buyerID string, qty int) (*Line, error) {
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}

	var bookID string
	err := r.DB.QueryRow(ctx, `SELECT book_id FROM cart_lines WHERE id = $1 AND buyer_id = $2`, lineID, buyerID).
		Scan(&bookID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLineNotFound
	}
	if err != nil {
		return nil, err
	}

	// advisory check only; checkout re-validates under lock
	var ok bool
	if err := r.DB.QueryRow(ctx, `SELECT stock >= $2 FROM books WHERE id = $1`, bookID, qty).Scan(&ok); err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotEnoughStock
	}

	var line Line
	err = r.DB.QueryRow(ctx, `
		UPDATE cart_lines SET quantity = $3
		WHERE id = $1 AND buyer_id = $2
		RETURNING id, buyer_id, book_id, quantity, created_at`,
		lineID, buyerID, qty).
		Scan(&line.ID, &line.BuyerID, &line.BookID, &line.Quantity, &line.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *Repo) Remove(ctx context.Context, lineID, buyerID string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM cart_lines WHERE id = $1 AND buyer_id = $2`, lineID, buyerID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrLineNotFound
	}
	return nil
}

func (r *Repo) Clear(ctx context.Context, buyerID string) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM cart_lines WHERE buyer_id = $1`, buyerID)
	return err
}
