package forecast

import (
	"errors"
	"fmt"
)

var ErrInvalidTimestamp = errors.New("invalid transaction timestamp")

// TimestampError identifies the transaction whose timestamp could not be
// placed in a calendar month.
type TimestampError struct {
	TransactionID string
	Raw           string
}

func (e *TimestampError) Error() string {
	if e.Raw == "" {
		return fmt.Sprintf("transaction %q: missing timestamp", e.TransactionID)
	}
	return fmt.Sprintf("transaction %q: unparseable timestamp %q", e.TransactionID, e.Raw)
}

func (e *TimestampError) Unwrap() error {
	return ErrInvalidTimestamp
}
