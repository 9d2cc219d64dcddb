package ledger

import "errors"

// ErrNotFound is returned when a transaction id does not exist so HTTP handlers can respond with 404.
var ErrNotFound = errors.New("transaction not found")

// ErrInsufficientStock rejects withdrawals larger than the stock on hand plus the same entry's deposit.
var ErrInsufficientStock error = validationError{message: "insufficient stock for withdrawal"}

// validationError communicates rule violations back to HTTP handlers.
type validationError struct {
	message string
}

func (e validationError) Error() string { return e.message }

func newValidationError(msg string) error {
	return validationError{message: msg}
}

// IsValidation helps callers distinguish between business and infrastructure failures.
func IsValidation(err error) bool {
	var v validationError
	return errors.As(err, &v)
}
