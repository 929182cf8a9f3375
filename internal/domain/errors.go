package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrEmptyCart    = errors.New("cart is empty")
	ErrNotConnected = errors.New("remote store not connected")
	ErrStaleEpoch   = errors.New("sync cycle superseded")
	ErrUnauthorized = errors.New("unauthorized")
	ErrOrderState   = errors.New("order is not pending")
)

// ValidationError names the offending field. It matches ErrValidation with errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
