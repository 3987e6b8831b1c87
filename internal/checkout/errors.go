package checkout

import (
	"errors"
	"fmt"
)

// ErrEmptyCart means there was nothing to check out. No writes are issued.
var ErrEmptyCart = errors.New("no items in cart")

// InsufficientStockError aborts the whole checkout: no order is created for
// any seller, even those whose lines could be satisfied.
type InsufficientStockError struct {
	Title string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock for %s", e.Title)
}
