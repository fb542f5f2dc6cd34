package domain

import "time"

// User is the identity record. PhoneNumber and Email are nullable so that
// the unique indexes only constrain rows that actually carry a value.
type User struct {
	ID           UserID    `gorm:"type:uuid;primaryKey" db:"id" json:"id"`
	PhoneNumber  *string   `gorm:"type:text;uniqueIndex:ux_users_phone_number" db:"phone_number" json:"phone_number,omitempty"`
	Email        *string   `gorm:"type:text;uniqueIndex:ux_users_email" db:"email" json:"email,omitempty"`
	PasswordHash *string   `gorm:"type:text" db:"password_hash" json:"-"`
	Name         string    `gorm:"type:text;not null;default:''" db:"name" json:"name"`
	AuthType     AuthType  `gorm:"type:text;not null" db:"auth_type" json:"auth_type"`
	CreatedAt    time.Time `gorm:"not null" db:"created_at" json:"created_at"`
}

func (User) TableName() string { return "users" }

// Valid reports whether the row satisfies the identity invariants:
// at least one of phone/email, and a password hash iff auth type is email.
func (u *User) Valid() bool {
	if u.PhoneNumber == nil && u.Email == nil {
		return false
	}
	hasHash := u.PasswordHash != nil && *u.PasswordHash != ""
	return hasHash == (u.AuthType == AuthTypeEmail)
}
