package postgres

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrStorageUnavailable marks retry exhaustion. Match with errors.Is; the
// concrete *StorageUnavailableError carries the last underlying failure.
var ErrStorageUnavailable = errors.New("storage unavailable")

type StorageUnavailableError struct {
	Attempts int
	Last     error
}

func (e *StorageUnavailableError) Error() string {
	return fmt.Sprintf("storage unavailable after %d attempts: %v", e.Attempts, e.Last)
}

func (e *StorageUnavailableError) Unwrap() error { return e.Last }

func (e *StorageUnavailableError) Is(target error) bool { return target == ErrStorageUnavailable }

// Policy drives the retry loop: up to MaxAttempts tries, sleeping
// BaseDelay<<(n-1) after failed attempt n (1s then 2s with the defaults).
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: time.Second}
}

// Transient reports whether err is a storage-level failure worth retrying:
// lost or refused connections, pool acquisition problems, and lock/serialization
// aborts that a fresh transaction resolves. Logical failures (constraint
// violations, business errors) always return false.
func Transient(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// serialization_failure, deadlock_detected
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	return false
}

// Retry runs op up to p.MaxAttempts times, backing off exponentially between
// attempts. Non-transient errors are returned as-is on the first occurrence;
// exhaustion wraps the last transient failure in *StorageUnavailableError.
func Retry(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	var last error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.BaseDelay << (attempt - 2)):
			}
		}
		err := op(ctx)
		if err == nil {
			return nil
		}
		if !Transient(err) {
			return err
		}
		last = err
	}
	return &StorageUnavailableError{Attempts: p.MaxAttempts, Last: last}
}

// DB is the subset of *pgxpool.Pool the transaction runner needs.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// RunInTx executes fn inside a transaction, retrying the whole unit on
// transient failures. Every attempt begins fresh: a failed attempt is rolled
// back in full before the next one starts, so fn must be safe to re-run from
// the top (reads included).
func RunInTx(ctx context.Context, db DB, p Policy, fn func(tx pgx.Tx) error) error {
	return Retry(ctx, p, func(ctx context.Context) error {
		tx, err := db.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		if err := fn(tx); err != nil {
			return err
		}
		return tx.Commit(ctx)
	})
}
