package service

import (
	"auth/internal/domain"
	"time"
)

type TokenService interface {
	Issue(userID domain.UserID, authType domain.AuthType) (token string, expiresAt time.Time, err error)
	Parse(token string) (domain.UserID, error)
}
