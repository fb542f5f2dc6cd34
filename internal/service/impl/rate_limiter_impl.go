package impl

import (
	"context"
	"strings"
	"time"

	"auth/internal/domain"
	"auth/internal/service"
)

var _ service.RateLimiter = (*RateLimiterImpl)(nil)

const (
	defaultLoginWindow     = 15 * time.Minute
	defaultMaxFailedLogins = 5
)

// RateLimiterImpl admits an authentication attempt while fewer than
// MaxFailures failed attempts share its identifier or IP inside Window.
type RateLimiterImpl struct {
	Store       dataStore
	Window      time.Duration
	MaxFailures int
	now         func() time.Time
}

func NewRateLimiterImpl(st dataStore, window time.Duration, maxFailures int) *RateLimiterImpl {
	return &RateLimiterImpl{Store: st, Window: window, MaxFailures: maxFailures, now: time.Now}
}

func (r *RateLimiterImpl) CheckAndAdmit(ctx context.Context, identifier, ip string) (bool, error) {
	since := r.clock().Add(-r.window())
	n, err := r.Store.LoginAttempts().CountRecentFailures(ctx, strings.TrimSpace(identifier), normalizeIP(ip), since)
	if err != nil {
		return false, storeError("count login attempts", err)
	}
	return n < int64(r.maxFailures()), nil
}

func (r *RateLimiterImpl) Record(ctx context.Context, attempt *domain.LoginAttempt) error {
	return r.recordOn(ctx, r.Store, attempt)
}

func (r *RateLimiterImpl) recordOn(ctx context.Context, tx storeTx, attempt *domain.LoginAttempt) error {
	if attempt.AttemptTime.IsZero() {
		attempt.AttemptTime = r.clock()
	}
	attempt.IPAddress = normalizeIP(attempt.IPAddress)
	if err := tx.LoginAttempts().Create(ctx, attempt); err != nil {
		return storeError("record login attempt", err)
	}
	return nil
}

func (r *RateLimiterImpl) clock() time.Time {
	if r.now == nil {
		return time.Now().UTC()
	}
	return r.now().UTC()
}

func (r *RateLimiterImpl) window() time.Duration {
	if r.Window <= 0 {
		return defaultLoginWindow
	}
	return r.Window
}

func (r *RateLimiterImpl) maxFailures() int {
	if r.MaxFailures <= 0 {
		return defaultMaxFailedLogins
	}
	return r.MaxFailures
}

func emailAttempt(email, ip string, success bool) *domain.LoginAttempt {
	return &domain.LoginAttempt{Email: &email, IPAddress: ip, Success: success}
}

func phoneAttempt(phone, ip string, success bool) *domain.LoginAttempt {
	return &domain.LoginAttempt{PhoneNumber: &phone, IPAddress: ip, Success: success}
}
