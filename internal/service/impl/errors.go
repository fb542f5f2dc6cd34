package impl

import (
	"errors"

	"auth/internal/domain"
)

var domainSentinels = []error{
	domain.ErrValidation,
	domain.ErrInvalidOTP,
	domain.ErrInvalidCredentials,
	domain.ErrDuplicate,
	domain.ErrRateLimited,
	domain.ErrDelivery,
	domain.ErrStore,
}

// storeError wraps err as a domain.StoreError unless it already carries a
// domain meaning.
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, sentinel := range domainSentinels {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	return &domain.StoreError{Op: op, Err: err}
}
