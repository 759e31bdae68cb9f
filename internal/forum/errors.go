package forum

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated is returned when an operation needs a session and has none.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrUnauthorized is returned when the session user does not own the record.
	ErrUnauthorized = errors.New("not authorized")
	// ErrNotFound is returned when a referenced id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrTransactionFailed wraps store failures that survived the retry policy.
	ErrTransactionFailed = errors.New("transaction failed")
	// ErrConflict marks a transient store conflict (serialization failure,
	// deadlock, racing insert). Stores wrap driver errors with it.
	ErrConflict = errors.New("transient conflict")
	// ErrInvalidInput is returned for malformed or rejected input.
	ErrInvalidInput = errors.New("invalid input")
)

// InputError describes a rejected input field.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *InputError) Unwrap() error { return ErrInvalidInput }

func invalid(field, message string) error {
	return &InputError{Field: field, Message: message}
}

// storeFailure wraps err as ErrTransactionFailed unless it already carries a
// domain meaning the caller should see directly.
func storeFailure(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrUnauthenticated),
		errors.Is(err, ErrInvalidInput):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrTransactionFailed, err)
	}
}
