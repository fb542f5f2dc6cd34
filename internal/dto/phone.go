package dto

type PhoneRegisterRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required"`
	Name        string `json:"name,omitempty"`
	AppName     string `json:"app_name,omitempty"`
}

type VerifyOTPRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required"`
	OTP         string `json:"otp" validate:"required"`
	Name        string `json:"name,omitempty"`
	AppName     string `json:"app_name,omitempty"`
}
