package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is the resolved role/tenant binding for an authenticated
// identity. It is derived from the directory, never from client input,
// and only ever exists for active accounts.
type Session struct {
	UserID      uuid.UUID  `json:"user_id"`
	Email       string     `json:"email"`
	Role        Role       `json:"role"`
	InstituteID *uuid.UUID `json:"institute_id"`
	ResolvedAt  time.Time  `json:"resolved_at"`
}

// TokenResponse is the payload returned on login and refresh.
type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	RefreshToken string    `json:"refresh_token"`
	UserID       string    `json:"user_id"`
	Role         string    `json:"role"`
	IssuedAt     time.Time `json:"issued_at"`
}
