package services

import (
	"context"
	"errors"

	"github.com/avatarctic/auth-workflow/internal/core/domain/auth"
	"github.com/avatarctic/auth-workflow/internal/core/domain/token"
	"github.com/avatarctic/auth-workflow/internal/core/domain/user"
	"github.com/avatarctic/auth-workflow/internal/core/ports"
	"github.com/sirupsen/logrus"
)

// AuthService coordinates the user directory and the token store for the
// login, logout, refresh, password reset and email verification flows.
type AuthService struct {
	users  ports.UserService
	tokens ports.TokenService
	store  ports.TokenRepository
	tx     ports.Transactor
	logger *logrus.Logger
}

// NewAuthService builds the workflow. tx may be nil, in which case the
// multi-step operations run without a surrounding transaction.
func NewAuthService(users ports.UserService, tokens ports.TokenService, store ports.TokenRepository, tx ports.Transactor, logger *logrus.Logger) ports.AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		store:  store,
		tx:     tx,
		logger: logger,
	}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*user.User, error) {
	found, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, s.fail("login", err, auth.Unauthenticated(auth.MsgIncorrectCredentials))
	}
	if found == nil || !found.IsPasswordMatch(password) {
		return nil, s.fail("login", nil, auth.Unauthenticated(auth.MsgIncorrectCredentials))
	}
	return found, nil
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return s.fail("logout", token.ErrNotFound, auth.NotFound(auth.MsgNotFound))
	}
	stored, err := s.store.FindOne(ctx, token.Filter{
		Value:       refreshToken,
		Type:        token.TypeRefresh,
		Blacklisted: token.Blacklisted(false),
	})
	if err != nil {
		return s.fail("logout", err, auth.NotFound(auth.MsgNotFound))
	}
	if err := s.store.DeleteOne(ctx, stored.ID); err != nil {
		return s.fail("logout", err, auth.NotFound(auth.MsgNotFound))
	}
	return nil
}

func (s *AuthService) RefreshAuth(ctx context.Context, refreshToken string) (*auth.AuthResult, error) {
	var result *auth.AuthResult
	err := s.withinTx(ctx, func(ctx context.Context) error {
		stored, err := s.tokens.VerifyToken(ctx, refreshToken, token.TypeRefresh)
		if err != nil {
			return err
		}
		u, err := s.users.GetUser(ctx, stored.UserID)
		if err != nil {
			return err
		}
		if u == nil {
			return user.ErrNotFound
		}
		if err := s.store.DeleteOne(ctx, stored.ID); err != nil {
			return err
		}
		tokens, err := s.tokens.GenerateAuthTokens(ctx, u)
		if err != nil {
			return err
		}
		result = &auth.AuthResult{User: u, Tokens: tokens}
		return nil
	})
	if err != nil {
		return nil, s.fail("refresh_auth", err, auth.Unauthenticated(auth.MsgPleaseAuthenticate))
	}
	return result, nil
}

func (s *AuthService) ResetPassword(ctx context.Context, resetPasswordToken, newPassword string) error {
	err := s.withinTx(ctx, func(ctx context.Context) error {
		stored, err := s.tokens.VerifyToken(ctx, resetPasswordToken, token.TypeResetPassword)
		if err != nil {
			return err
		}
		u, err := s.users.GetUser(ctx, stored.UserID)
		if err != nil {
			return err
		}
		if u == nil {
			return user.ErrNotFound
		}
		if _, err := s.store.DeleteMany(ctx, token.Filter{UserID: u.ID, Type: token.TypeResetPassword}); err != nil {
			return err
		}
		_, err = s.users.UpdateUser(ctx, u.ID, &user.UpdateUserRequest{Password: &newPassword})
		return err
	})
	if err != nil {
		return s.fail("reset_password", err, auth.Unauthenticated(auth.MsgPasswordResetFailed))
	}
	return nil
}

func (s *AuthService) VerifyEmail(ctx context.Context, verifyEmailToken string) (*user.User, error) {
	var verified *user.User
	err := s.withinTx(ctx, func(ctx context.Context) error {
		stored, err := s.tokens.VerifyToken(ctx, verifyEmailToken, token.TypeVerifyEmail)
		if err != nil {
			return err
		}
		u, err := s.users.GetUser(ctx, stored.UserID)
		if err != nil {
			return err
		}
		if u == nil {
			return user.ErrNotFound
		}
		if _, err := s.store.DeleteMany(ctx, token.Filter{UserID: u.ID, Type: token.TypeVerifyEmail}); err != nil {
			return err
		}
		emailVerified := true
		verified, err = s.users.UpdateUser(ctx, u.ID, &user.UpdateUserRequest{EmailVerified: &emailVerified})
		return err
	})
	if err != nil {
		return nil, s.fail("verify_email", err, auth.Unauthenticated(auth.MsgEmailVerificationFailed))
	}
	return verified, nil
}

func (s *AuthService) withinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return s.tx.WithinTx(ctx, fn)
}

// fail logs cause and returns the collapsed error the caller sees.
func (s *AuthService) fail(operation string, cause error, collapsed error) error {
	if s.logger == nil {
		return collapsed
	}
	entry := s.logger.WithFields(logrus.Fields{"operation": operation})
	if cause == nil {
		entry.Debug(collapsed.Error())
		return collapsed
	}
	entry = entry.WithError(cause)
	if isExpectedFailure(cause) {
		entry.Debug(collapsed.Error())
	} else {
		entry.Warn(collapsed.Error())
	}
	return collapsed
}

func isExpectedFailure(err error) bool {
	return errors.Is(err, user.ErrNotFound) ||
		errors.Is(err, token.ErrNotFound) ||
		errors.Is(err, token.ErrInvalid)
}
