package store

import (
	"context"
	"strings"
	"time"

	"auth/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LoginAttemptStore struct{ db *gorm.DB }

func (s *Store) LoginAttempts() *LoginAttemptStore { return &LoginAttemptStore{db: s.DB} }

func (l *LoginAttemptStore) Create(ctx context.Context, a *domain.LoginAttempt) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.AttemptTime.IsZero() {
		a.AttemptTime = time.Now().UTC()
	}
	return translateError(l.db.WithContext(ctx).Create(a).Error)
}

// CountRecentFailures counts failed attempts since the given instant whose
// email or phone equals identifier, or whose ip equals ip. Blank inputs do
// not take part in the match.
func (l *LoginAttemptStore) CountRecentFailures(ctx context.Context, identifier, ip string, since time.Time) (int64, error) {
	var (
		conds []string
		args  []any
	)
	if identifier != "" {
		conds = append(conds, "email = ?", "phone_number = ?")
		args = append(args, identifier, identifier)
	}
	if ip != "" {
		conds = append(conds, "ip_address = ?")
		args = append(args, ip)
	}
	if len(conds) == 0 {
		return 0, nil
	}

	var total int64
	err := l.db.WithContext(ctx).
		Model(&domain.LoginAttempt{}).
		Where("("+strings.Join(conds, " OR ")+")", args...).
		Where("success = ? AND attempt_time > ?", false, since).
		Count(&total).Error
	if err != nil {
		return 0, translateError(err)
	}
	return total, nil
}
