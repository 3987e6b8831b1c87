package postgres

import (
	"context"
	"errors"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dialError mimics the net.OpError a dying database actually produces.
type dialError struct{}

func (e *dialError) Error() string   { return "dial tcp 127.0.0.1:5432: connect: connection refused" }
func (e *dialError) Unwrap() error   { return syscall.ECONNREFUSED }
func (e *dialError) Timeout() bool   { return false }
func (e *dialError) Temporary() bool { return true }

var errConnRefused = &dialError{}

func testPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: time.Millisecond}
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), testPolicy(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errConnRefused
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryExhaustionSurfacesStorageUnavailable(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), testPolicy(), func(ctx context.Context) error {
		calls++
		return errConnRefused
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, ErrStorageUnavailable)

	var su *StorageUnavailableError
	require.ErrorAs(t, err, &su)
	assert.Equal(t, 3, su.Attempts)
	assert.ErrorIs(t, su.Last, syscall.ECONNREFUSED)
}

func TestRetryDoesNotRetryLogicalErrors(t *testing.T) {
	logical := errors.New("not enough stock for Dune")
	calls := 0
	err := Retry(context.Background(), testPolicy(), func(ctx context.Context) error {
		calls++
		return logical
	})
	assert.Equal(t, 1, calls)
	assert.Same(t, logical, err)
	assert.NotErrorIs(t, err, ErrStorageUnavailable)
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Retry(ctx, Policy{MaxAttempts: 3, BaseDelay: time.Hour}, func(ctx context.Context) error {
		calls++
		cancel()
		return errConnRefused
	})
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetryBacksOffExponentially(t *testing.T) {
	p := Policy{MaxAttempts: 3, BaseDelay: 10 * time.Millisecond}
	start := time.Now()
	_ = Retry(context.Background(), p, func(ctx context.Context) error {
		return errConnRefused
	})
	// two waits: base and 2*base
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestTransientClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"connection refused", errConnRefused, true},
		{"connection reset", syscall.ECONNRESET, true},
		{"plain business error", errors.New("cart is empty"), false},
		{"wrapped transient", errors.Join(errors.New("acquire"), errConnRefused), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Transient(tt.err))
		})
	}
}
