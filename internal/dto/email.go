package dto

type EmailRegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name,omitempty"`
	AppName  string `json:"app_name,omitempty"`
}

type EmailLoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	AppName  string `json:"app_name,omitempty"`
}
