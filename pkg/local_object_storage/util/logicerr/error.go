package logicerr

import (
	"errors"
	"fmt"
)

// Error is wrapped to highlight the business logic errors: failures caused by
// the request itself rather than by the underlying storage.
var Error = errors.New("logical error")

// New returns simple error with a provided error message.
func New(msg string) error {
	return Wrap(errors.New(msg))
}

// Wrap wraps arbitrary error into a logical one.
func Wrap(err error) error {
	return fmt.Errorf("%w: %w", Error, err)
}

// Is checks whether err is a logical error.
func Is(err error) bool {
	return errors.Is(err, Error)
}
