package dto

import (
	"time"

	"auth/internal/domain"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type AuthResponse struct {
	Status      string    `json:"status"`
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        *UserView `json:"user,omitempty"`
}

type UserResponse struct {
	Status string    `json:"status"`
	User   *UserView `json:"user"`
}

type UserView struct {
	ID          string    `json:"id"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	Email       string    `json:"email,omitempty"`
	Name        string    `json:"name"`
	AuthType    string    `json:"auth_type"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewUserView(u *domain.User) *UserView {
	if u == nil {
		return nil
	}
	v := &UserView{
		ID:        u.ID.String(),
		Name:      u.Name,
		AuthType:  string(u.AuthType),
		CreatedAt: u.CreatedAt,
	}
	if u.PhoneNumber != nil {
		v.PhoneNumber = *u.PhoneNumber
	}
	if u.Email != nil {
		v.Email = *u.Email
	}
	return v
}
