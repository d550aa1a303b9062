package checkout

import (
	"errors"

	"github.com/joaocamilod/catalogo-online/internal/sellergate"
)

var (
	ErrEmptyCart            = errors.New("cart is empty, nothing to checkout")
	ErrSubmissionInProgress = errors.New("a submission is already in progress")
	ErrIllegalTransition    = errors.New("illegal transition of submission state")
)

// PersistenceError means the order was not stored. The shopper may try again.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return "order was not placed: " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err comes from infrastructure that may recover on a
// fresh attempt, as opposed to something the shopper has to fix.
func IsRetryable(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe) || errors.Is(err, sellergate.ErrSellersUnavailable)
}
