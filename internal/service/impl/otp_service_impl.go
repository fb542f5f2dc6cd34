package impl

import (
	"context"
	"crypto/rand"
	"errors"
	"log/slog"
	"math/big"
	"strconv"
	"strings"
	"time"

	"auth/internal/domain"
	"auth/internal/observability/metrics"
	"auth/internal/observability/middleware"
	"auth/internal/service"
)

const (
	otpMin = 100000
	otpMax = 999999
)

type OTPServiceImpl struct {
	Store   dataStore
	Sender  service.SMSSender
	Tokens  service.TokenService
	Apps    *AppUsageServiceImpl
	Limiter *RateLimiterImpl
	// TTL bounds the age of a matchable code. Zero means codes never expire.
	TTL time.Duration
	now func() time.Time
}

func NewOTPServiceImpl(st dataStore, sender service.SMSSender, tokens service.TokenService, apps *AppUsageServiceImpl, limiter *RateLimiterImpl, ttl time.Duration) *OTPServiceImpl {
	return &OTPServiceImpl{
		Store:   st,
		Sender:  sender,
		Tokens:  tokens,
		Apps:    apps,
		Limiter: limiter,
		TTL:     ttl,
		now:     time.Now,
	}
}

// Issue stores a fresh code for phone and sends it by SMS. The record is
// committed before delivery, so a failed send leaves an unused code behind.
func (o *OTPServiceImpl) Issue(ctx context.Context, phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", domain.NewValidationError("phone_number", "phone number is required")
	}

	code, err := generateOTP()
	if err != nil {
		return "", err
	}
	rec := &domain.OtpRecord{PhoneNumber: phone, Code: code, SentAt: o.clock()}
	if err := o.Store.Otps().Create(ctx, rec); err != nil {
		return "", storeError("create otp", err)
	}

	if err := o.Sender.Send(ctx, phone, "Your OTP is "+code); err != nil {
		metrics.OTPSentTotal.WithLabelValues("failure").Inc()
		slog.Error("otp delivery failed", "otp_id", rec.ID, "error", err,
			"request_id", middleware.RequestIDFromContext(ctx), "trace_id", middleware.TraceIDFromContext(ctx))
		return "", &domain.DeliveryError{Err: err}
	}
	metrics.OTPSentTotal.WithLabelValues("success").Inc()
	return code, nil
}

// Verify consumes a matching unverified code and resolves the phone to a
// user, creating one on first use.
func (o *OTPServiceImpl) Verify(ctx context.Context, in domain.VerifyInput) (*domain.AuthResult, error) {
	phone := strings.TrimSpace(in.PhoneNumber)
	code := strings.TrimSpace(in.Code)
	if phone == "" || code == "" {
		return nil, domain.NewValidationError("otp", "phone number and OTP are required")
	}

	admitted, err := o.Limiter.CheckAndAdmit(ctx, phone, in.IP)
	if err != nil {
		return nil, err
	}
	if !admitted {
		metrics.RateLimitedTotal.WithLabelValues("phone").Inc()
		return nil, domain.ErrRateLimited
	}

	now := o.clock()
	var notBefore time.Time
	if o.TTL > 0 {
		notBefore = now.Add(-o.TTL)
	}

	var out domain.AuthResult
	err = o.Store.WithTx(ctx, func(tx storeTx) error {
		ok, err := tx.Otps().Consume(ctx, phone, code, notBefore)
		if err != nil {
			return storeError("consume otp", err)
		}
		if !ok {
			return domain.ErrInvalidOTP
		}

		user, created, err := tx.Users().CreateOrGetByPhone(ctx, &domain.User{
			PhoneNumber: &phone,
			Name:        strings.TrimSpace(in.Name),
			AuthType:    domain.AuthTypePhone,
			CreatedAt:   now,
		})
		if err != nil {
			return storeError("resolve phone user", err)
		}

		if err := o.Apps.recordOn(ctx, tx, user.ID, in.AppName); err != nil {
			return err
		}
		if err := o.Limiter.recordOn(ctx, tx, phoneAttempt(phone, in.IP, true)); err != nil {
			return err
		}

		token, exp, err := o.Tokens.Issue(user.ID, user.AuthType)
		if err != nil {
			return err
		}
		out = domain.AuthResult{User: user, Token: token, ExpiresAt: exp, Created: created}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidOTP) {
			if rerr := o.Limiter.Record(ctx, phoneAttempt(phone, in.IP, false)); rerr != nil {
				slog.Error("record failed otp attempt", "error", rerr,
					"request_id", middleware.RequestIDFromContext(ctx), "trace_id", middleware.TraceIDFromContext(ctx))
			}
		}
		return nil, err
	}
	return &out, nil
}

func (o *OTPServiceImpl) clock() time.Time {
	if o.now == nil {
		return time.Now().UTC()
	}
	return o.now().UTC()
}

// generateOTP returns a uniformly distributed six digit code.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+otpMin, 10), nil
}
