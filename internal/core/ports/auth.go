package ports

import (
	"context"
	"time"

	"github.com/avatarctic/auth-workflow/internal/core/domain/auth"
	"github.com/avatarctic/auth-workflow/internal/core/domain/token"
	"github.com/avatarctic/auth-workflow/internal/core/domain/user"
	"github.com/google/uuid"
)

// AuthService defines the interface for the authentication workflow.
// Every failure is reported as an *auth.Error.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*user.User, error)
	Logout(ctx context.Context, refreshToken string) error
	RefreshAuth(ctx context.Context, refreshToken string) (*auth.AuthResult, error)
	ResetPassword(ctx context.Context, resetPasswordToken, newPassword string) error
	VerifyEmail(ctx context.Context, verifyEmailToken string) (*user.User, error)
}

// TokenRepository defines the interface for token storage operations
type TokenRepository interface {
	Create(ctx context.Context, t *token.Token) error
	FindOne(ctx context.Context, filter token.Filter) (*token.Token, error)
	DeleteOne(ctx context.Context, id uuid.UUID) error
	DeleteMany(ctx context.Context, filter token.Filter) (int64, error)

	// Cleanup method for periodic maintenance
	DeleteExpired(ctx context.Context) (int64, error)
}

// TokenService issues, persists and verifies signed tokens
type TokenService interface {
	GenerateToken(userID uuid.UUID, expires time.Time, tokenType token.Type) (string, error)
	SaveToken(ctx context.Context, value string, userID uuid.UUID, expires time.Time, tokenType token.Type, blacklisted bool) (*token.Token, error)
	VerifyToken(ctx context.Context, value string, tokenType token.Type) (*token.Token, error)
	GenerateAuthTokens(ctx context.Context, u *user.User) (*auth.AuthTokens, error)
	GenerateResetPasswordToken(ctx context.Context, email string) (string, error)
	GenerateVerifyEmailToken(ctx context.Context, u *user.User) (string, error)
	ParseAccessToken(value string) (*auth.Claims, error)
	StartCleanup(ctx context.Context, interval time.Duration)
}

// Transactor runs fn so that every repository call made with the context
// it receives shares one transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
