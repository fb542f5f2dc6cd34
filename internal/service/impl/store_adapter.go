package impl

import (
	"context"
	"errors"
	"time"

	"auth/internal/domain"
	"auth/internal/store"

	"github.com/google/uuid"
)

type dataStore interface {
	storeTx
	WithTx(ctx context.Context, fn func(tx storeTx) error) error
}

type storeTx interface {
	Users() userStore
	Otps() otpStore
	LoginAttempts() loginAttemptStore
	UserApps() userAppStore
}

type userStore interface {
	Create(ctx context.Context, usr *domain.User) error
	CreateOrGetByPhone(ctx context.Context, usr *domain.User) (*domain.User, bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdatePasswordHash(ctx context.Context, userID uuid.UUID, hash string) error
}

type otpStore interface {
	Create(ctx context.Context, rec *domain.OtpRecord) error
	Consume(ctx context.Context, phone, code string, notBefore time.Time) (bool, error)
}

type loginAttemptStore interface {
	Create(ctx context.Context, a *domain.LoginAttempt) error
	CountRecentFailures(ctx context.Context, identifier, ip string, since time.Time) (int64, error)
}

type userAppStore interface {
	Upsert(ctx context.Context, userID uuid.UUID, appName string, at time.Time) error
}

type gormStoreAdapter struct {
	store *store.Store
}

func newStoreAdapter(st *store.Store) gormStoreAdapter { return gormStoreAdapter{store: st} }

func (g gormStoreAdapter) WithTx(ctx context.Context, fn func(tx storeTx) error) error {
	if g.store == nil {
		return errors.New("nil store")
	}
	return g.store.WithTx(ctx, func(tx *store.Store) error {
		return fn(gormStoreAdapter{store: tx})
	})
}

func (g gormStoreAdapter) Users() userStore { return g.store.Users() }

func (g gormStoreAdapter) Otps() otpStore { return g.store.Otps() }

func (g gormStoreAdapter) LoginAttempts() loginAttemptStore { return g.store.LoginAttempts() }

func (g gormStoreAdapter) UserApps() userAppStore { return g.store.UserApps() }
