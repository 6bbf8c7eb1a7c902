package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	config "github.com/avatarctic/auth-workflow/configs"
	"github.com/avatarctic/auth-workflow/internal/core/domain/auth"
	"github.com/avatarctic/auth-workflow/internal/core/domain/token"
	"github.com/avatarctic/auth-workflow/internal/core/domain/user"
	"github.com/avatarctic/auth-workflow/internal/core/ports"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type TokenService struct {
	repo      ports.TokenRepository
	users     ports.UserService
	jwtConfig *config.JWTConfig
	logger    *logrus.Logger
	now       func() time.Time
}

func NewTokenService(repo ports.TokenRepository, users ports.UserService, jwtConfig *config.JWTConfig, logger *logrus.Logger) ports.TokenService {
	return &TokenService{
		repo:      repo,
		users:     users,
		jwtConfig: jwtConfig,
		logger:    logger,
		now:       time.Now,
	}
}

// GenerateToken signs a token of the given type for userID.
func (s *TokenService) GenerateToken(userID uuid.UUID, expires time.Time, tokenType token.Type) (string, error) {
	if !tokenType.IsValid() {
		return "", fmt.Errorf("unknown token type %q", tokenType)
	}

	claims := &auth.Claims{
		Type: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(s.now()),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtConfig.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

func (s *TokenService) SaveToken(ctx context.Context, value string, userID uuid.UUID, expires time.Time, tokenType token.Type, blacklisted bool) (*token.Token, error) {
	t := &token.Token{
		ID:          uuid.New(),
		Value:       value,
		Hash:        token.HashValue(value),
		UserID:      userID,
		Type:        tokenType,
		ExpiresAt:   expires,
		Blacklisted: blacklisted,
		CreatedAt:   s.now(),
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to save %s token: %w", tokenType, err)
	}
	return t, nil
}

// VerifyToken checks the signature, expiry and type of value and returns the
// matching non-blacklisted record from the store.
func (s *TokenService) VerifyToken(ctx context.Context, value string, tokenType token.Type) (*token.Token, error) {
	claims, err := s.parse(value)
	if err != nil {
		return nil, err
	}
	if claims.Type != tokenType {
		return nil, fmt.Errorf("%w: expected %s token, got %s", token.ErrInvalid, tokenType, claims.Type)
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", token.ErrInvalid, err)
	}

	found, err := s.repo.FindOne(ctx, token.Filter{
		Value:       value,
		Type:        tokenType,
		UserID:      userID,
		Blacklisted: token.Blacklisted(false),
	})
	if err != nil {
		return nil, err
	}
	found.Value = value
	return found, nil
}

func (s *TokenService) GenerateAuthTokens(ctx context.Context, u *user.User) (*auth.AuthTokens, error) {
	now := s.now()

	accessExpires := now.Add(s.jwtConfig.AccessTokenTTL)
	accessToken, err := s.GenerateToken(u.ID, accessExpires, token.TypeAccess)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshExpires := now.Add(s.jwtConfig.RefreshTokenTTL)
	refreshToken, err := s.GenerateToken(u.ID, refreshExpires, token.TypeRefresh)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	if _, err := s.SaveToken(ctx, refreshToken, u.ID, refreshExpires, token.TypeRefresh, false); err != nil {
		return nil, err
	}

	return &auth.AuthTokens{
		Access:  auth.TokenInfo{Token: accessToken, Expires: accessExpires},
		Refresh: auth.TokenInfo{Token: refreshToken, Expires: refreshExpires},
	}, nil
}

// GenerateResetPasswordToken returns user.ErrNotFound when no account uses email.
func (s *TokenService) GenerateResetPasswordToken(ctx context.Context, email string) (string, error) {
	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	expires := s.now().Add(s.jwtConfig.ResetPasswordTTL)
	value, err := s.GenerateToken(u.ID, expires, token.TypeResetPassword)
	if err != nil {
		return "", err
	}
	if _, err := s.SaveToken(ctx, value, u.ID, expires, token.TypeResetPassword, false); err != nil {
		return "", err
	}
	return value, nil
}

func (s *TokenService) GenerateVerifyEmailToken(ctx context.Context, u *user.User) (string, error) {
	expires := s.now().Add(s.jwtConfig.VerifyEmailTTL)
	value, err := s.GenerateToken(u.ID, expires, token.TypeVerifyEmail)
	if err != nil {
		return "", err
	}
	if _, err := s.SaveToken(ctx, value, u.ID, expires, token.TypeVerifyEmail, false); err != nil {
		return "", err
	}
	return value, nil
}

// ParseAccessToken validates a bearer token without touching the store.
func (s *TokenService) ParseAccessToken(value string) (*auth.Claims, error) {
	claims, err := s.parse(value)
	if err != nil {
		return nil, err
	}
	if claims.Type != token.TypeAccess {
		return nil, fmt.Errorf("%w: not an access token", token.ErrInvalid)
	}
	return claims, nil
}

// StartCleanup deletes expired token rows every interval until ctx is done.
func (s *TokenService) StartCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanupOnce(ctx)
		}
	}
}

func (s *TokenService) cleanupOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	deleted, err := s.repo.DeleteExpired(ctx)
	if s.logger == nil {
		return
	}
	if err != nil {
		s.logger.WithError(err).Error("failed to cleanup expired tokens")
		return
	}
	s.logger.WithFields(logrus.Fields{"deleted": deleted}).Debug("expired tokens cleaned up")
}

func (s *TokenService) parse(value string) (*auth.Claims, error) {
	parsed, err := jwt.ParseWithClaims(value, &auth.Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Ensure the token's signing method is HMAC (prevent alg confusion)
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.jwtConfig.Secret), nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, errors.Join(token.ErrInvalid, err)
	}

	claims, ok := parsed.Claims.(*auth.Claims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", token.ErrInvalid)
	}
	return claims, nil
}
