package service

import (
	"auth/internal/domain"
	"auth/internal/dto"
	"context"
)

type AuthService interface {
	RegisterPhone(ctx context.Context, r dto.PhoneRegisterRequest) (*dto.StatusResponse, error)
	VerifyOTP(ctx context.Context, r dto.VerifyOTPRequest, ip string) (*dto.AuthResponse, error)
	RegisterEmail(ctx context.Context, r dto.EmailRegisterRequest, ip string) (*dto.AuthResponse, error)
	LoginEmail(ctx context.Context, r dto.EmailLoginRequest, ip string) (*dto.AuthResponse, error)
	Me(ctx context.Context, userID domain.UserID) (*dto.UserView, error)
}
