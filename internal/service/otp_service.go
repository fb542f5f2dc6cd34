package service

import (
	"auth/internal/domain"
	"context"
)

type OTPService interface {
	Issue(ctx context.Context, phone string) (string, error)
	Verify(ctx context.Context, in domain.VerifyInput) (*domain.AuthResult, error)
}

// SMSSender delivers a text message to a phone number.
type SMSSender interface {
	Send(ctx context.Context, phone, message string) error
}
