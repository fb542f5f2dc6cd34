package domain

import "time"

// AuthResult is the outcome of a successful registration, login or OTP
// verification.
type AuthResult struct {
	User      *User
	Token     string
	ExpiresAt time.Time
	Created   bool
}

// VerifyInput carries a phone verification attempt.
type VerifyInput struct {
	PhoneNumber string
	Code        string
	Name        string
	AppName     string
	IP          string
}
