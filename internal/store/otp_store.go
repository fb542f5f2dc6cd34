package store

import (
	"context"
	"time"

	"auth/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OtpStore struct{ db *gorm.DB }

func (s *Store) Otps() *OtpStore { return &OtpStore{db: s.DB} }

func (o *OtpStore) Create(ctx context.Context, rec *domain.OtpRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.SentAt.IsZero() {
		rec.SentAt = time.Now().UTC()
	}
	return translateError(o.db.WithContext(ctx).Create(rec).Error)
}

// Consume flips every unverified record matching (phone, code) to verified
// and reports whether any row changed. Records sent before notBefore are
// ignored; a zero notBefore disables the age check. The conditional update
// makes consumption single-use even under concurrent verification.
func (o *OtpStore) Consume(ctx context.Context, phone, code string, notBefore time.Time) (bool, error) {
	q := o.db.WithContext(ctx).
		Model(&domain.OtpRecord{}).
		Where("phone_number = ? AND otp = ? AND verified = ?", phone, code, false)
	if !notBefore.IsZero() {
		q = q.Where("sent_at >= ?", notBefore)
	}
	res := q.Update("verified", true)
	if res.Error != nil {
		return false, translateError(res.Error)
	}
	return res.RowsAffected > 0, nil
}
