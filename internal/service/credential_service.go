package service

import (
	"auth/internal/domain"
	"context"
)

type CredentialService interface {
	RegisterEmailUser(ctx context.Context, email, password, name, appName string) (*domain.AuthResult, error)
	AuthenticateEmailUser(ctx context.Context, email, password, ip, appName string) (*domain.AuthResult, error)
}
