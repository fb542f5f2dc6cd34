package service

import (
	"auth/internal/domain"
	"context"
)

type RateLimiter interface {
	CheckAndAdmit(ctx context.Context, identifier, ip string) (bool, error)
	Record(ctx context.Context, attempt *domain.LoginAttempt) error
}

type AppUsageService interface {
	RecordAppUsage(ctx context.Context, userID domain.UserID, appName string) error
}
