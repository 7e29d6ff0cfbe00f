package service

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned before any remote call when user input is rejected.
	ErrValidation = errors.New("validation error")
	// ErrUnauthorized means the operation needs an authenticated user and there is none.
	ErrUnauthorized = errors.New("not authenticated")
	// ErrNotFound covers missing rows and rows owned by someone else.
	ErrNotFound = errors.New("not found")
	// ErrRemote wraps failures of the row store, blob storage or identity backend.
	ErrRemote = errors.New("remote failure")
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func remoteFailure(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrRemote, err)
}
