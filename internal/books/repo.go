package books

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("book not found")

type Repo struct{ DB *pgxpool.Pool }

const bookColumns = `id, seller_id, title, description, price_cents, stock, active, created_at, updated_at`

// Search lists active books matching q against title or description, newest
// first. Page is 1-based.
func (r *Repo) Search(ctx context.Context, q string, page, limit int) ([]Book, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	rows, err := r.DB.Query(ctx, `
		SELECT `+bookColumns+`
		FROM books
		WHERE (title ILIKE $1 OR description ILIKE $1) AND active
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, "%"+q+"%", limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBooks(rows)
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Book, error) {
	var b Book
	err := r.DB.QueryRow(ctx, `SELECT `+bookColumns+` FROM books WHERE id = $1`, id).
		Scan(&b.ID, &b.SellerID, &b.Title, &b.Description, &b.PriceCents, &b.Stock, &b.Active, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *Repo) Create(ctx context.Context, sellerID string, in CreateInput) (*Book, error) {
	id := uuid.NewString()
	_, err := r.DB.Exec(ctx, `
		INSERT INTO books (id, seller_id, title, description, price_cents, stock)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		id, sellerID, in.Title, in.Description, in.PriceCents, in.Stock)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Update is owner-scoped: a seller can only touch their own active books.
func (r *Repo) Update(ctx context.Context, id, sellerID string, in UpdateInput) (*Book, error) {
	ct, err := r.DB.Exec(ctx, `
		UPDATE books
		SET title = $3, description = $4, price_cents = $5, stock = $6, updated_at = now()
		WHERE id = $1 AND seller_id = $2 AND active`,
		id, sellerID, in.Title, in.Description, in.PriceCents, in.Stock)
	if err != nil {
		return nil, err
	}
	if ct.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// Deactivate soft-deletes: the book disappears from search but historical
// order lines keep joining against it.
func (r *Repo) Deactivate(ctx context.Context, id, sellerID string) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE books SET active = false, updated_at = now()
		WHERE id = $1 AND seller_id = $2 AND active`, id, sellerID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) ListBySeller(ctx context.Context, sellerID string, page, limit int) ([]Book, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	rows, err := r.DB.Query(ctx, `
		SELECT `+bookColumns+`
		FROM books
		WHERE seller_id = $1 AND active
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, sellerID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBooks(rows)
}

func scanBooks(rows pgx.Rows) ([]Book, error) {
	var out []Book
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ID, &b.SellerID, &b.Title, &b.Description, &b.PriceCents, &b.Stock, &b.Active, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
