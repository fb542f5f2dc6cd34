package domain

import "time"

// LoginAttempt is an immutable audit row. Exactly one of Email and
// PhoneNumber is set.
type LoginAttempt struct {
	ID          AttemptID `gorm:"type:uuid;primaryKey" db:"id"`
	Email       *string   `gorm:"type:text;index" db:"email"`
	PhoneNumber *string   `gorm:"type:text;index" db:"phone_number"`
	IPAddress   string    `gorm:"type:text;not null;default:'';index" db:"ip_address"`
	Success     bool      `gorm:"not null" db:"success"`
	AttemptTime time.Time `gorm:"not null;index" db:"attempt_time"`
}

func (LoginAttempt) TableName() string { return "login_attempts" }
