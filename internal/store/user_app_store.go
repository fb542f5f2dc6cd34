package store

import (
	"context"
	"time"

	"auth/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserAppStore struct{ db *gorm.DB }

func (s *Store) UserApps() *UserAppStore { return &UserAppStore{db: s.DB} }

// Upsert records that userID authenticated from appName. An existing row only
// has its updated_at refreshed.
func (ua *UserAppStore) Upsert(ctx context.Context, userID uuid.UUID, appName string, at time.Time) error {
	row := &domain.UserApp{
		UserID:    userID,
		AppName:   appName,
		CreatedAt: at,
		UpdatedAt: at,
	}
	// Requires the (user_id, app_name) primary key (see domain tag).
	return translateError(ua.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "app_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"updated_at"}),
	}).Create(row).Error)
}

func (ua *UserAppStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.UserApp, error) {
	var apps []domain.UserApp
	if err := ua.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("app_name").
		Find(&apps).Error; err != nil {
		return nil, translateError(err)
	}
	return apps, nil
}
