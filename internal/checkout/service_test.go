package checkout

import (
	"context"
	"errors"
	"syscall"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookmarket/bookmarket-api/internal/postgres"
)

const buyerID = "buyer-1"

// dialError mimics the net error a lost database connection produces.
type dialError struct{}

func (e *dialError) Error() string   { return "dial tcp: connect: connection refused" }
func (e *dialError) Unwrap() error   { return syscall.ECONNREFUSED }
func (e *dialError) Timeout() bool   { return false }
func (e *dialError) Temporary() bool { return true }

func newService(t *testing.T) (*Service, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	svc := &Service{
		DB:     mock,
		Policy: postgres.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond},
	}
	return svc, mock
}

func snapshotRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "book_id", "seller_id", "title", "price_cents", "quantity", "stock"})
}

// expectHappyPath sets up a two-seller cart: alice sells Dune (2 x 10.00)
// and Hyperion (1 x 5.00), bob sells Solaris (3 x 7.50).
func expectHappyPath(mock pgxmock.PgxPoolIface) {
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT c\.id, b\.id, b\.seller_id`).
		WithArgs(buyerID).
		WillReturnRows(snapshotRows().
			AddRow("c1", "book-dune", "alice", "Dune", int64(1000), 2, 5).
			AddRow("c2", "book-hyperion", "alice", "Hyperion", int64(500), 1, 1).
			AddRow("c3", "book-solaris", "bob", "Solaris", int64(750), 3, 3))

	// alice's order: 2*1000 + 1*500
	mock.ExpectExec(`INSERT INTO orders`).
		WithArgs(pgxmock.AnyArg(), buyerID, "alice", int64(2500)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO order_lines`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "book-dune", 2, int64(1000)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`UPDATE books SET stock`).
		WithArgs("book-dune", 2).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`INSERT INTO order_lines`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "book-hyperion", 1, int64(500)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`UPDATE books SET stock`).
		WithArgs("book-hyperion", 1).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	// bob's order: 3*750
	mock.ExpectExec(`INSERT INTO orders`).
		WithArgs(pgxmock.AnyArg(), buyerID, "bob", int64(2250)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO order_lines`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "book-solaris", 3, int64(750)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`UPDATE books SET stock`).
		WithArgs("book-solaris", 3).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	mock.ExpectExec(`DELETE FROM cart_lines`).
		WithArgs(buyerID).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectCommit()
}

func TestCreateOrderOneOrderPerSeller(t *testing.T) {
	svc, mock := newService(t)
	expectHappyPath(mock)

	orderIDs, err := svc.CreateOrder(context.Background(), buyerID)

	require.NoError(t, err)
	assert.Len(t, orderIDs, 2)
	assert.NotEqual(t, orderIDs[0], orderIDs[1])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderEmptyCart(t *testing.T) {
	svc, mock := newService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT c\.id, b\.id, b\.seller_id`).
		WithArgs(buyerID).
		WillReturnRows(snapshotRows())
	mock.ExpectRollback()

	orderIDs, err := svc.CreateOrder(context.Background(), buyerID)

	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Nil(t, orderIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderInsufficientStockRollsBackWholeCheckout(t *testing.T) {
	svc, mock := newService(t)

	// Dune is satisfiable, Hyperion is not: nothing may be written for
	// either seller.
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT c\.id, b\.id, b\.seller_id`).
		WithArgs(buyerID).
		WillReturnRows(snapshotRows().
			AddRow("c1", "book-dune", "alice", "Dune", int64(1000), 2, 5).
			AddRow("c2", "book-hyperion", "bob", "Hyperion", int64(500), 1, 0))
	mock.ExpectRollback()

	orderIDs, err := svc.CreateOrder(context.Background(), buyerID)

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Hyperion", stockErr.Title)
	assert.Nil(t, orderIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderMaterializationFailureRollsBackEarlierSellers(t *testing.T) {
	svc, mock := newService(t)
	boom := errors.New("order_lines violates foreign key")

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT c\.id, b\.id, b\.seller_id`).
		WithArgs(buyerID).
		WillReturnRows(snapshotRows().
			AddRow("c1", "book-dune", "alice", "Dune", int64(1000), 1, 5).
			AddRow("c2", "book-solaris", "bob", "Solaris", int64(750), 1, 3))

	// alice materializes fine
	mock.ExpectExec(`INSERT INTO orders`).
		WithArgs(pgxmock.AnyArg(), buyerID, "alice", int64(1000)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO order_lines`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "book-dune", 1, int64(1000)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`UPDATE books SET stock`).
		WithArgs("book-dune", 1).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	// bob's order insert blows up; the whole tx unwinds
	mock.ExpectExec(`INSERT INTO orders`).
		WithArgs(pgxmock.AnyArg(), buyerID, "bob", int64(750)).
		WillReturnError(boom)
	mock.ExpectRollback()

	orderIDs, err := svc.CreateOrder(context.Background(), buyerID)

	assert.ErrorIs(t, err, boom)
	assert.Nil(t, orderIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderRetriesTransientFailuresTransparently(t *testing.T) {
	svc, mock := newService(t)

	// first two attempts die before the transaction starts, the third runs
	// clean; the caller sees a normal result and exactly one set of orders
	mock.ExpectBegin().WillReturnError(&dialError{})
	mock.ExpectBegin().WillReturnError(&dialError{})
	expectHappyPath(mock)

	orderIDs, err := svc.CreateOrder(context.Background(), buyerID)

	require.NoError(t, err)
	assert.Len(t, orderIDs, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderSurfacesStorageUnavailableAfterExhaustion(t *testing.T) {
	svc, mock := newService(t)

	mock.ExpectBegin().WillReturnError(&dialError{})
	mock.ExpectBegin().WillReturnError(&dialError{})
	mock.ExpectBegin().WillReturnError(&dialError{})

	orderIDs, err := svc.CreateOrder(context.Background(), buyerID)

	assert.ErrorIs(t, err, postgres.ErrStorageUnavailable)
	assert.Nil(t, orderIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderDoesNotRetryLogicalFailures(t *testing.T) {
	svc, mock := newService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT c\.id, b\.id, b\.seller_id`).
		WithArgs(buyerID).
		WillReturnRows(snapshotRows().
			AddRow("c1", "book-dune", "alice", "Dune", int64(1000), 9, 1))
	mock.ExpectRollback()

	_, err := svc.CreateOrder(context.Background(), buyerID)

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	// a second attempt would have tripped an unfulfilled Begin expectation
	assert.NoError(t, mock.ExpectationsWereMet())
}
