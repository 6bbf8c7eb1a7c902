package auth

import (
	"fmt"
	"time"

	"github.com/avatarctic/auth-workflow/internal/core/domain/token"
	"github.com/avatarctic/auth-workflow/internal/core/domain/user"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// LoginRequest represents the login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest is shared by logout and token refresh
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"-" validate:"required"`
	Password string `json:"password" validate:"required,password"`
}

type VerifyEmailRequest struct {
	Token string `json:"-" validate:"required"`
}

// TokenInfo is one issued token and its expiry
type TokenInfo struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// AuthTokens represents the authentication tokens
type AuthTokens struct {
	Access  TokenInfo `json:"access"`
	Refresh TokenInfo `json:"refresh"`
}

// AuthResult is returned by operations that authenticate a user
type AuthResult struct {
	User   *user.User  `json:"user"`
	Tokens *AuthTokens `json:"tokens"`
}

// Claims represents the JWT payload for every token type
type Claims struct {
	Type token.Type `json:"type"`

	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid subject claim: %w", err)
	}
	return id, nil
}
