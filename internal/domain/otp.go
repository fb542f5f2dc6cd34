package domain

import "time"

// OtpRecord is a pending or consumed passcode sent to a phone number.
type OtpRecord struct {
	ID          OtpID     `gorm:"type:uuid;primaryKey" db:"id"`
	PhoneNumber string    `gorm:"type:text;not null;index:ix_sms_logs_phone_otp,priority:1" db:"phone_number"`
	Code        string    `gorm:"column:otp;type:text;not null;index:ix_sms_logs_phone_otp,priority:2" db:"otp"`
	Verified    bool      `gorm:"not null;default:false" db:"verified"`
	SentAt      time.Time `gorm:"not null" db:"sent_at"`
}

func (OtpRecord) TableName() string { return "sms_logs" }
