package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bookmarket/bookmarket-api/internal/postgres"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

// Repo wraps its reads in the retry policy: token verification runs on every
// authenticated request and should ride out a flaky connection.
type Repo struct {
	DB     *pgxpool.Pool
	Policy postgres.Policy
}

func (r *Repo) Create(ctx context.Context, name, email, passwordHash, role string) (*User, error) {
	id := uuid.NewString()
	_, err := r.DB.Exec(ctx, `
		INSERT INTO users (id, name, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)`,
		id, name, email, passwordHash, role)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *Repo) GetByID(ctx context.Context, id string) (*User, error) {
	var u User
	err := postgres.Retry(ctx, r.Policy, func(ctx context.Context) error {
		return r.DB.QueryRow(ctx, `
			SELECT id, name, email, role, created_at FROM users WHERE id = $1`, id).
			Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.CreatedAt)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (*User, string, error) {
	var (
		u    User
		hash string
	)
	err := postgres.Retry(ctx, r.Policy, func(ctx context.Context) error {
		return r.DB.QueryRow(ctx, `
			SELECT id, name, email, password_hash, role, created_at
			FROM users WHERE email = $1`, email).
			Scan(&u.ID, &u.Name, &u.Email, &hash, &u.Role, &u.CreatedAt)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, "", ErrUserNotFound
	}
	if err != nil {
		return nil, "", err
	}
	return &u, hash, nil
}
