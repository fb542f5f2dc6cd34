package impl

import (
	"errors"
	"time"

	"auth/internal/domain"
	"auth/internal/observability/metrics"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// ====== Config ======

type TokenConfig struct {
	Issuer     string        // e.g. "auth"
	AccessTTL  time.Duration // e.g. 30 * 24h
	SigningKey []byte        // HS256 secret
}

// ====== Claims ======

type AccessClaims struct {
	AuthType string `json:"auth_type,omitempty"`
	jwt.RegisteredClaims
}

// ====== Service ======

type TokenServiceImpl struct {
	cfg TokenConfig
	now func() time.Time
}

func NewTokenServiceHS256(cfg TokenConfig) *TokenServiceImpl {
	return &TokenServiceImpl{cfg: cfg, now: time.Now}
}

// Issue signs a bearer token for userID. There is no server-side session;
// the token is valid until its exp claim.
func (t *TokenServiceImpl) Issue(userID domain.UserID, authType domain.AuthType) (string, time.Time, error) {
	result := "success"
	defer func() {
		metrics.TokensIssuedTotal.WithLabelValues(result).Inc()
	}()

	now := t.now().UTC()
	exp := now.Add(t.cfg.AccessTTL)
	claims := AccessClaims{
		AuthType: string(authType),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.cfg.Issuer,
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.cfg.SigningKey)
	if err != nil {
		result = "failure"
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Parse validates signature, algorithm, issuer and expiry and returns the
// token subject.
func (t *TokenServiceImpl) Parse(tokenStr string) (domain.UserID, error) {
	claims := &AccessClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	tok, err := parser.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return t.cfg.SigningKey, nil
	})
	if err != nil || !tok.Valid {
		return uuid.Nil, ErrInvalidToken
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return id, nil
}
