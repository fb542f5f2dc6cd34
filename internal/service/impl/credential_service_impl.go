package impl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"auth/internal/domain"
	"auth/internal/observability/metrics"
	"auth/internal/observability/middleware"
	"auth/internal/service"
	"auth/internal/store"
	"auth/internal/validation"
)

const defaultMinPasswordLength = 6

// dummyPasswordHash is verified against when the email is unknown so that
// both failure paths pay for one argon2id derivation.
var dummyPasswordHash = encodeArgon2id(DefaultArgon2Params,
	make([]byte, DefaultArgon2Params.SaltLen), make([]byte, DefaultArgon2Params.KeyLen))

type CredentialServiceImpl struct {
	Store             dataStore
	PasswordService   service.PasswordService
	Tokens            service.TokenService
	Apps              *AppUsageServiceImpl
	Limiter           *RateLimiterImpl
	MinPasswordLength int
	now               func() time.Time
}

func NewCredentialServiceImpl(st dataStore, passwords service.PasswordService, tokens service.TokenService, apps *AppUsageServiceImpl, limiter *RateLimiterImpl, minPasswordLength int) *CredentialServiceImpl {
	return &CredentialServiceImpl{
		Store:             st,
		PasswordService:   passwords,
		Tokens:            tokens,
		Apps:              apps,
		Limiter:           limiter,
		MinPasswordLength: minPasswordLength,
		now:               time.Now,
	}
}

func (c *CredentialServiceImpl) RegisterEmailUser(ctx context.Context, email, password, name, appName string) (*domain.AuthResult, error) {
	email = normalizeEmail(email)
	if err := validation.Email(email); err != nil {
		return nil, err
	}
	if minLen := c.minPasswordLength(); utf8.RuneCountInString(password) < minLen {
		return nil, domain.NewValidationError("password", fmt.Sprintf("password must be at least %d characters", minLen))
	}

	hash, err := c.PasswordService.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var out domain.AuthResult
	err = c.Store.WithTx(ctx, func(tx storeTx) error {
		u := &domain.User{
			Email:        &email,
			PasswordHash: &hash,
			Name:         strings.TrimSpace(name),
			AuthType:     domain.AuthTypeEmail,
			CreatedAt:    c.clock(),
		}
		if err := tx.Users().Create(ctx, u); err != nil {
			if errors.Is(err, store.ErrDuplicateKey) {
				return &domain.DuplicateError{Field: "email"}
			}
			return storeError("create user", err)
		}
		if err := c.Apps.recordOn(ctx, tx, u.ID, appName); err != nil {
			return err
		}
		token, exp, err := c.Tokens.Issue(u.ID, u.AuthType)
		if err != nil {
			return err
		}
		out = domain.AuthResult{User: u, Token: token, ExpiresAt: exp, Created: true}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// AuthenticateEmailUser checks the password for email. Unknown addresses
// and wrong passwords produce the same error and are both recorded as
// failed attempts.
func (c *CredentialServiceImpl) AuthenticateEmailUser(ctx context.Context, email, password, ip, appName string) (*domain.AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.NewValidationError("email", "email and password are required")
	}

	admitted, err := c.Limiter.CheckAndAdmit(ctx, email, ip)
	if err != nil {
		return nil, err
	}
	if !admitted {
		metrics.RateLimitedTotal.WithLabelValues("email").Inc()
		return nil, domain.ErrRateLimited
	}

	user, err := c.Store.Users().GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, store.ErrRecordNotFound) {
		return nil, storeError("get user by email", err)
	}

	var rehash, valid bool
	if user != nil && user.PasswordHash != nil {
		rehash, valid = c.PasswordService.Verify(password, *user.PasswordHash)
	} else {
		_, _ = c.PasswordService.Verify(password, dummyPasswordHash)
	}
	if !valid {
		if rerr := c.Limiter.Record(ctx, emailAttempt(email, ip, false)); rerr != nil {
			slog.Error("record failed login attempt", "error", rerr,
				"request_id", middleware.RequestIDFromContext(ctx), "trace_id", middleware.TraceIDFromContext(ctx))
		}
		return nil, domain.ErrInvalidCredentials
	}

	var out domain.AuthResult
	err = c.Store.WithTx(ctx, func(tx storeTx) error {
		if rehash {
			newHash, err := c.PasswordService.Hash(password)
			if err != nil {
				return fmt.Errorf("rehash password: %w", err)
			}
			if err := tx.Users().UpdatePasswordHash(ctx, user.ID, newHash); err != nil {
				return storeError("update password hash", err)
			}
			user.PasswordHash = &newHash
		}
		if err := c.Apps.recordOn(ctx, tx, user.ID, appName); err != nil {
			return err
		}
		if err := c.Limiter.recordOn(ctx, tx, emailAttempt(email, ip, true)); err != nil {
			return err
		}
		token, exp, err := c.Tokens.Issue(user.ID, user.AuthType)
		if err != nil {
			return err
		}
		out = domain.AuthResult{User: user, Token: token, ExpiresAt: exp}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *CredentialServiceImpl) minPasswordLength() int {
	if c.MinPasswordLength <= 0 {
		return defaultMinPasswordLength
	}
	return c.MinPasswordLength
}

func (c *CredentialServiceImpl) clock() time.Time {
	if c.now == nil {
		return time.Now().UTC()
	}
	return c.now().UTC()
}
