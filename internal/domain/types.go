package domain

import "github.com/google/uuid"

type UserID = uuid.UUID
type OtpID = uuid.UUID
type AttemptID = uuid.UUID

type AuthType string

const (
	AuthTypePhone AuthType = "phone"
	AuthTypeEmail AuthType = "email"
)
