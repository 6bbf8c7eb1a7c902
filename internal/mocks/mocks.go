package mocks

import (
	"context"
	"time"

	"github.com/avatarctic/auth-workflow/internal/core/domain/auth"
	"github.com/avatarctic/auth-workflow/internal/core/domain/token"
	"github.com/avatarctic/auth-workflow/internal/core/domain/user"
	"github.com/google/uuid"
)

// TokenRepositoryMock is a lightweight mock for TokenRepository
type TokenRepositoryMock struct {
	CreateFn        func(ctx context.Context, t *token.Token) error
	FindOneFn       func(ctx context.Context, filter token.Filter) (*token.Token, error)
	DeleteOneFn     func(ctx context.Context, id uuid.UUID) error
	DeleteManyFn    func(ctx context.Context, filter token.Filter) (int64, error)
	DeleteExpiredFn func(ctx context.Context) (int64, error)
}

func (m *TokenRepositoryMock) Create(ctx context.Context, t *token.Token) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, t)
	}
	return nil
}
func (m *TokenRepositoryMock) FindOne(ctx context.Context, filter token.Filter) (*token.Token, error) {
	if m.FindOneFn != nil {
		return m.FindOneFn(ctx, filter)
	}
	return nil, token.ErrNotFound
}
func (m *TokenRepositoryMock) DeleteOne(ctx context.Context, id uuid.UUID) error {
	if m.DeleteOneFn != nil {
		return m.DeleteOneFn(ctx, id)
	}
	return nil
}
func (m *TokenRepositoryMock) DeleteMany(ctx context.Context, filter token.Filter) (int64, error) {
	if m.DeleteManyFn != nil {
		return m.DeleteManyFn(ctx, filter)
	}
	return 0, nil
}
func (m *TokenRepositoryMock) DeleteExpired(ctx context.Context) (int64, error) {
	if m.DeleteExpiredFn != nil {
		return m.DeleteExpiredFn(ctx)
	}
	return 0, nil
}

// UserRepositoryMock is a lightweight mock for UserRepository
type UserRepositoryMock struct {
	CreateFn     func(ctx context.Context, u *user.User) error
	GetByIDFn    func(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetByEmailFn func(ctx context.Context, email string) (*user.User, error)
	UpdateFn     func(ctx context.Context, u *user.User) error
	DeleteFn     func(ctx context.Context, id uuid.UUID) error
}

func (m *UserRepositoryMock) Create(ctx context.Context, u *user.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, u)
	}
	return nil
}
func (m *UserRepositoryMock) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, user.ErrNotFound
}
func (m *UserRepositoryMock) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}
	return nil, user.ErrNotFound
}
func (m *UserRepositoryMock) Update(ctx context.Context, u *user.User) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, u)
	}
	return nil
}
func (m *UserRepositoryMock) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil
}

// UserServiceMock is a lightweight mock for UserService
type UserServiceMock struct {
	CreateUserFn     func(ctx context.Context, req *user.CreateUserRequest) (*user.User, error)
	GetUserFn        func(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetUserByEmailFn func(ctx context.Context, email string) (*user.User, error)
	UpdateUserFn     func(ctx context.Context, id uuid.UUID, req *user.UpdateUserRequest) (*user.User, error)
	DeleteUserFn     func(ctx context.Context, id uuid.UUID) error
}

func (m *UserServiceMock) CreateUser(ctx context.Context, req *user.CreateUserRequest) (*user.User, error) {
	if m.CreateUserFn != nil {
		return m.CreateUserFn(ctx, req)
	}
	return &user.User{ID: uuid.New(), Name: req.Name, Email: req.Email}, nil
}
func (m *UserServiceMock) GetUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	if m.GetUserFn != nil {
		return m.GetUserFn(ctx, id)
	}
	return nil, user.ErrNotFound
}
func (m *UserServiceMock) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	if m.GetUserByEmailFn != nil {
		return m.GetUserByEmailFn(ctx, email)
	}
	return nil, user.ErrNotFound
}
func (m *UserServiceMock) UpdateUser(ctx context.Context, id uuid.UUID, req *user.UpdateUserRequest) (*user.User, error) {
	if m.UpdateUserFn != nil {
		return m.UpdateUserFn(ctx, id, req)
	}
	return &user.User{ID: id}, nil
}
func (m *UserServiceMock) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if m.DeleteUserFn != nil {
		return m.DeleteUserFn(ctx, id)
	}
	return nil
}

// TokenServiceMock is a lightweight mock for TokenService
type TokenServiceMock struct {
	GenerateTokenFn              func(userID uuid.UUID, expires time.Time, tokenType token.Type) (string, error)
	SaveTokenFn                  func(ctx context.Context, value string, userID uuid.UUID, expires time.Time, tokenType token.Type, blacklisted bool) (*token.Token, error)
	VerifyTokenFn                func(ctx context.Context, value string, tokenType token.Type) (*token.Token, error)
	GenerateAuthTokensFn         func(ctx context.Context, u *user.User) (*auth.AuthTokens, error)
	GenerateResetPasswordTokenFn func(ctx context.Context, email string) (string, error)
	GenerateVerifyEmailTokenFn   func(ctx context.Context, u *user.User) (string, error)
	ParseAccessTokenFn           func(value string) (*auth.Claims, error)
}

func (m *TokenServiceMock) GenerateToken(userID uuid.UUID, expires time.Time, tokenType token.Type) (string, error) {
	if m.GenerateTokenFn != nil {
		return m.GenerateTokenFn(userID, expires, tokenType)
	}
	return "token", nil
}
func (m *TokenServiceMock) SaveToken(ctx context.Context, value string, userID uuid.UUID, expires time.Time, tokenType token.Type, blacklisted bool) (*token.Token, error) {
	if m.SaveTokenFn != nil {
		return m.SaveTokenFn(ctx, value, userID, expires, tokenType, blacklisted)
	}
	return &token.Token{ID: uuid.New(), Value: value, UserID: userID, Type: tokenType, ExpiresAt: expires, Blacklisted: blacklisted}, nil
}
func (m *TokenServiceMock) VerifyToken(ctx context.Context, value string, tokenType token.Type) (*token.Token, error) {
	if m.VerifyTokenFn != nil {
		return m.VerifyTokenFn(ctx, value, tokenType)
	}
	return nil, token.ErrNotFound
}
func (m *TokenServiceMock) GenerateAuthTokens(ctx context.Context, u *user.User) (*auth.AuthTokens, error) {
	if m.GenerateAuthTokensFn != nil {
		return m.GenerateAuthTokensFn(ctx, u)
	}
	exp := time.Now().Add(time.Hour)
	return &auth.AuthTokens{
		Access:  auth.TokenInfo{Token: "access", Expires: exp},
		Refresh: auth.TokenInfo{Token: "refresh", Expires: exp},
	}, nil
}
func (m *TokenServiceMock) GenerateResetPasswordToken(ctx context.Context, email string) (string, error) {
	if m.GenerateResetPasswordTokenFn != nil {
		return m.GenerateResetPasswordTokenFn(ctx, email)
	}
	return "reset", nil
}
func (m *TokenServiceMock) GenerateVerifyEmailToken(ctx context.Context, u *user.User) (string, error) {
	if m.GenerateVerifyEmailTokenFn != nil {
		return m.GenerateVerifyEmailTokenFn(ctx, u)
	}
	return "verify", nil
}
func (m *TokenServiceMock) ParseAccessToken(value string) (*auth.Claims, error) {
	if m.ParseAccessTokenFn != nil {
		return m.ParseAccessTokenFn(value)
	}
	return nil, token.ErrInvalid
}
func (m *TokenServiceMock) StartCleanup(ctx context.Context, interval time.Duration) {}

// AuthServiceMock is a lightweight mock for AuthService
type AuthServiceMock struct {
	LoginFn         func(ctx context.Context, email, password string) (*user.User, error)
	LogoutFn        func(ctx context.Context, refreshToken string) error
	RefreshAuthFn   func(ctx context.Context, refreshToken string) (*auth.AuthResult, error)
	ResetPasswordFn func(ctx context.Context, resetPasswordToken, newPassword string) error
	VerifyEmailFn   func(ctx context.Context, verifyEmailToken string) (*user.User, error)
}

func (m *AuthServiceMock) Login(ctx context.Context, email, password string) (*user.User, error) {
	if m.LoginFn != nil {
		return m.LoginFn(ctx, email, password)
	}
	return nil, auth.Unauthenticated(auth.MsgIncorrectCredentials)
}
func (m *AuthServiceMock) Logout(ctx context.Context, refreshToken string) error {
	if m.LogoutFn != nil {
		return m.LogoutFn(ctx, refreshToken)
	}
	return nil
}
func (m *AuthServiceMock) RefreshAuth(ctx context.Context, refreshToken string) (*auth.AuthResult, error) {
	if m.RefreshAuthFn != nil {
		return m.RefreshAuthFn(ctx, refreshToken)
	}
	return nil, auth.Unauthenticated(auth.MsgPleaseAuthenticate)
}
func (m *AuthServiceMock) ResetPassword(ctx context.Context, resetPasswordToken, newPassword string) error {
	if m.ResetPasswordFn != nil {
		return m.ResetPasswordFn(ctx, resetPasswordToken, newPassword)
	}
	return nil
}
func (m *AuthServiceMock) VerifyEmail(ctx context.Context, verifyEmailToken string) (*user.User, error) {
	if m.VerifyEmailFn != nil {
		return m.VerifyEmailFn(ctx, verifyEmailToken)
	}
	return nil, nil
}

// EmailServiceMock records the messages it was asked to send
type EmailServiceMock struct {
	SendResetPasswordEmailFn func(ctx context.Context, email, token string) error
	SendVerificationEmailFn  func(ctx context.Context, email, token, userName string) error
}

func (m *EmailServiceMock) SendResetPasswordEmail(ctx context.Context, email, token string) error {
	if m.SendResetPasswordEmailFn != nil {
		return m.SendResetPasswordEmailFn(ctx, email, token)
	}
	return nil
}
func (m *EmailServiceMock) SendVerificationEmail(ctx context.Context, email, token, userName string) error {
	if m.SendVerificationEmailFn != nil {
		return m.SendVerificationEmailFn(ctx, email, token, userName)
	}
	return nil
}

// HealthCheckerMock is a lightweight mock for HealthChecker
type HealthCheckerMock struct {
	NameValue string
	CheckFn   func(ctx context.Context) error
}

func (m *HealthCheckerMock) Name() string { return m.NameValue }
func (m *HealthCheckerMock) Check(ctx context.Context) error {
	if m.CheckFn != nil {
		return m.CheckFn(ctx)
	}
	return nil
}
