package store

import (
	"context"

	"auth/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserStore struct{ db *gorm.DB }

func (s *Store) Users() *UserStore { return &UserStore{db: s.DB} }

func (u *UserStore) Create(ctx context.Context, usr *domain.User) error {
	if usr.ID == uuid.Nil {
		usr.ID = uuid.New()
	}
	return translateError(u.db.WithContext(ctx).Create(usr).Error)
}

// CreateOrGetByPhone inserts usr unless a user with the same phone number
// already exists, in which case the existing row is returned. The insert
// uses ON CONFLICT DO NOTHING so concurrent callers converge on one row.
func (u *UserStore) CreateOrGetByPhone(ctx context.Context, usr *domain.User) (*domain.User, bool, error) {
	if usr.PhoneNumber == nil {
		return nil, false, ErrRecordNotFound
	}
	if usr.ID == uuid.Nil {
		usr.ID = uuid.New()
	}
	res := u.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "phone_number"}},
			DoNothing: true,
		}).
		Create(usr)
	if res.Error != nil {
		return nil, false, translateError(res.Error)
	}
	if res.RowsAffected == 1 {
		return usr, true, nil
	}
	existing, err := u.GetByPhone(ctx, *usr.PhoneNumber)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (u *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	if err := u.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (u *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := u.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (u *UserStore) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	var user domain.User
	if err := u.db.WithContext(ctx).First(&user, "phone_number = ?", phone).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (u *UserStore) UpdatePasswordHash(ctx context.Context, userID uuid.UUID, hash string) error {
	return translateError(u.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", userID).
		Update("password_hash", hash).Error)
}
