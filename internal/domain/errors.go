package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidOTP         = errors.New("invalid or expired OTP")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrDuplicate          = errors.New("already exists")
	ErrRateLimited        = errors.New("too many failed attempts, try again later")
	ErrDelivery           = errors.New("failed to send OTP")
	ErrStore              = errors.New("storage failure")
)

// ValidationError is a user-fixable input problem.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string { return e.Reason }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// DuplicateError reports a uniqueness violation on Field.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string { return e.Field + " already registered" }

func (e *DuplicateError) Is(target error) bool { return target == ErrDuplicate }

// StoreError wraps a persistence failure that has no more specific meaning.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("store: %s: %v", e.Op, e.Err) }

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrStore }

// DeliveryError wraps a failure reported by the SMS gateway.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string { return fmt.Sprintf("%s: %v", ErrDelivery, e.Err) }

func (e *DeliveryError) Unwrap() error { return e.Err }

func (e *DeliveryError) Is(target error) bool { return target == ErrDelivery }
