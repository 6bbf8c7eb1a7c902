package services_test

import (
	"context"
	"testing"
	"time"

	impl "github.com/avatarctic/auth-workflow/internal/application/services"
	"github.com/avatarctic/auth-workflow/internal/core/domain/auth"
	"github.com/avatarctic/auth-workflow/internal/core/domain/token"
	"github.com/avatarctic/auth-workflow/internal/core/domain/user"
	"github.com/avatarctic/auth-workflow/internal/core/ports"
	"github.com/avatarctic/auth-workflow/internal/mocks"
	"github.com/stretchr/testify/require"
)

// workflow wires the real user and token services over in-memory stores.
type workflow struct {
	users  ports.UserService
	tokens ports.TokenService
	store  *mocks.MemoryTokenRepository
	auth   ports.AuthService
	jane   *user.User
}

func newWorkflow(t *testing.T) *workflow {
	t.Helper()
	userRepo := mocks.NewMemoryUserRepository()
	store := mocks.NewMemoryTokenRepository()
	users := impl.NewUserService(userRepo, nil)
	tokens := impl.NewTokenService(store, users, testJWTConfig(), nil)

	jane, err := users.CreateUser(context.Background(), &user.CreateUserRequest{
		Name: "Jane", Email: "jane@example.com", Password: "password1",
	})
	require.NoError(t, err)

	return &workflow{
		users:  users,
		tokens: tokens,
		store:  store,
		auth:   impl.NewAuthService(users, tokens, store, nil, nil),
		jane:   jane,
	}
}

func (w *workflow) issue(t *testing.T, tokenType token.Type) string {
	t.Helper()
	expires := time.Now().Add(time.Hour)
	value, err := w.tokens.GenerateToken(w.jane.ID, expires, tokenType)
	require.NoError(t, err)
	_, err = w.tokens.SaveToken(context.Background(), value, w.jane.ID, expires, tokenType, false)
	require.NoError(t, err)
	return value
}

func TestWorkflow_LoginIsReadOnly(t *testing.T) {
	ctx := context.Background()
	w := newWorkflow(t)

	for _, creds := range [][2]string{
		{"nobody@example.com", "password1"},
		{"jane@example.com", "wrong-password1"},
		{"jane@example.com", ""},
	} {
		_, err := w.auth.Login(ctx, creds[0], creds[1])
		requireAuthError(t, err, auth.ErrUnauthenticated, auth.MsgIncorrectCredentials)
	}

	got, err := w.auth.Login(ctx, "jane@example.com", "password1")
	require.NoError(t, err)
	require.Equal(t, w.jane.ID, got.ID)
	require.Equal(t, 0, w.store.Count(token.Filter{UserID: w.jane.ID}))
}

func TestWorkflow_LogoutOnce(t *testing.T) {
	ctx := context.Background()
	w := newWorkflow(t)

	tokens, err := w.tokens.GenerateAuthTokens(ctx, w.jane)
	require.NoError(t, err)

	require.NoError(t, w.auth.Logout(ctx, tokens.Refresh.Token))
	require.Equal(t, 0, w.store.Count(token.Filter{Value: tokens.Refresh.Token}))

	requireAuthError(t, w.auth.Logout(ctx, tokens.Refresh.Token), auth.ErrNotFound, auth.MsgNotFound)
}

func TestWorkflow_LogoutEmptyTokenTouchesNothing(t *testing.T) {
	ctx := context.Background()
	w := newWorkflow(t)

	_, err := w.tokens.GenerateAuthTokens(ctx, w.jane)
	require.NoError(t, err)
	require.Equal(t, 1, w.store.Count(token.Filter{UserID: w.jane.ID, Type: token.TypeRefresh}))

	requireAuthError(t, w.auth.Logout(ctx, ""), auth.ErrNotFound, auth.MsgNotFound)
	require.Equal(t, 1, w.store.Count(token.Filter{UserID: w.jane.ID, Type: token.TypeRefresh}))
}

func TestMemoryTokenRepository_FindOneRequiresValue(t *testing.T) {
	ctx := context.Background()
	w := newWorkflow(t)
	w.issue(t, token.TypeRefresh)

	_, err := w.store.FindOne(ctx, token.Filter{Type: token.TypeRefresh, Blacklisted: token.Blacklisted(false)})
	require.ErrorIs(t, err, token.ErrNotFound)
}

func TestWorkflow_LogoutIgnoresBlacklisted(t *testing.T) {
	ctx := context.Background()
	w := newWorkflow(t)

	expires := time.Now().Add(time.Hour)
	value, err := w.tokens.GenerateToken(w.jane.ID, expires, token.TypeRefresh)
	require.NoError(t, err)
	_, err = w.tokens.SaveToken(ctx, value, w.jane.ID, expires, token.TypeRefresh, true)
	require.NoError(t, err)

	requireAuthError(t, w.auth.Logout(ctx, value), auth.ErrNotFound, auth.MsgNotFound)
	require.Equal(t, 1, w.store.Count(token.Filter{Value: value}))
}

func TestWorkflow_RefreshRotates(t *testing.T) {
	ctx := context.Background()
	w := newWorkflow(t)

	first, err := w.tokens.GenerateAuthTokens(ctx, w.jane)
	require.NoError(t, err)

	res, err := w.auth.RefreshAuth(ctx, first.Refresh.Token)
	require.NoError(t, err)
	require.Equal(t, w.jane.ID, res.User.ID)
	require.NotEqual(t, first.Refresh.Token, res.Tokens.Refresh.Token)
	require.Equal(t, 0, w.store.Count(token.Filter{Value: first.Refresh.Token}))
	require.Equal(t, 1, w.store.Count(token.Filter{Value: res.Tokens.Refresh.Token, Type: token.TypeRefresh}))

	_, err = w.auth.RefreshAuth(ctx, first.Refresh.Token)
	requireAuthError(t, err, auth.ErrUnauthenticated, auth.MsgPleaseAuthenticate)

	_, err = w.auth.RefreshAuth(ctx, res.Tokens.Refresh.Token)
	require.NoError(t, err)
}

func TestWorkflow_RefreshForDeletedUser(t *testing.T) {
	ctx := context.Background()
	w := newWorkflow(t)

	first, err := w.tokens.GenerateAuthTokens(ctx, w.jane)
	require.NoError(t, err)
	require.NoError(t, w.users.DeleteUser(ctx, w.jane.ID))

	_, err = w.auth.RefreshAuth(ctx, first.Refresh.Token)
	requireAuthError(t, err, auth.ErrUnauthenticated, auth.MsgPleaseAuthenticate)
}

func TestWorkflow_ResetPassword(t *testing.T) {
	ctx := context.Background()
	w := newWorkflow(t)

	used := w.issue(t, token.TypeResetPassword)
	outstanding := w.issue(t, token.TypeResetPassword)
	verify := w.issue(t, token.TypeVerifyEmail)

	require.NoError(t, w.auth.ResetPassword(ctx, used, "newpassword2"))

	_, err := w.auth.Login(ctx, "jane@example.com", "newpassword2")
	require.NoError(t, err)
	_, err = w.auth.Login(ctx, "jane@example.com", "password1")
	requireAuthError(t, err, auth.ErrUnauthenticated, auth.MsgIncorrectCredentials)

	require.Equal(t, 0, w.store.Count(token.Filter{UserID: w.jane.ID, Type: token.TypeResetPassword}))
	requireAuthError(t, w.auth.ResetPassword(ctx, outstanding, "another3pass"), auth.ErrUnauthenticated, auth.MsgPasswordResetFailed)
	requireAuthError(t, w.auth.ResetPassword(ctx, used, "another3pass"), auth.ErrUnauthenticated, auth.MsgPasswordResetFailed)

	// other token types are left alone
	require.Equal(t, 1, w.store.Count(token.Filter{Value: verify, Type: token.TypeVerifyEmail}))
}

func TestWorkflow_VerifyEmail(t *testing.T) {
	ctx := context.Background()
	w := newWorkflow(t)

	used := w.issue(t, token.TypeVerifyEmail)
	outstanding := w.issue(t, token.TypeVerifyEmail)
	reset := w.issue(t, token.TypeResetPassword)

	got, err := w.auth.VerifyEmail(ctx, used)
	require.NoError(t, err)
	require.True(t, got.EmailVerified)

	stored, err := w.users.GetUser(ctx, w.jane.ID)
	require.NoError(t, err)
	require.True(t, stored.EmailVerified)

	require.Equal(t, 0, w.store.Count(token.Filter{UserID: w.jane.ID, Type: token.TypeVerifyEmail}))
	_, err = w.auth.VerifyEmail(ctx, outstanding)
	requireAuthError(t, err, auth.ErrUnauthenticated, auth.MsgEmailVerificationFailed)

	require.Equal(t, 1, w.store.Count(token.Filter{Value: reset, Type: token.TypeResetPassword}))
}

func TestWorkflow_BadTokensAreUnauthenticated(t *testing.T) {
	ctx := context.Background()
	w := newWorkflow(t)

	past := time.Now().Add(-time.Minute)
	expired := func(tokenType token.Type) string {
		value, err := w.tokens.GenerateToken(w.jane.ID, past, tokenType)
		require.NoError(t, err)
		_, err = w.tokens.SaveToken(ctx, value, w.jane.ID, past, tokenType, false)
		require.NoError(t, err)
		return value
	}

	refresh := w.issue(t, token.TypeRefresh)
	reset := w.issue(t, token.TypeResetPassword)
	verify := w.issue(t, token.TypeVerifyEmail)

	for name, value := range map[string]string{
		"malformed":  "definitely.not.a-jwt",
		"empty":      "",
		"wrong type": verify,
		"expired":    expired(token.TypeRefresh),
	} {
		t.Run("refresh "+name, func(t *testing.T) {
			_, err := w.auth.RefreshAuth(ctx, value)
			requireAuthError(t, err, auth.ErrUnauthenticated, auth.MsgPleaseAuthenticate)
		})
	}

	for name, value := range map[string]string{
		"malformed":  "definitely.not.a-jwt",
		"wrong type": refresh,
		"expired":    expired(token.TypeResetPassword),
	} {
		t.Run("reset "+name, func(t *testing.T) {
			err := w.auth.ResetPassword(ctx, value, "newpassword2")
			requireAuthError(t, err, auth.ErrUnauthenticated, auth.MsgPasswordResetFailed)
		})
	}

	for name, value := range map[string]string{
		"malformed":  "definitely.not.a-jwt",
		"wrong type": reset,
		"expired":    expired(token.TypeVerifyEmail),
	} {
		t.Run("verify "+name, func(t *testing.T) {
			_, err := w.auth.VerifyEmail(ctx, value)
			requireAuthError(t, err, auth.ErrUnauthenticated, auth.MsgEmailVerificationFailed)
		})
	}

	// nothing was consumed by the failed attempts
	require.Equal(t, 1, w.store.Count(token.Filter{Value: refresh}))
	require.Equal(t, 1, w.store.Count(token.Filter{Value: reset}))
	require.Equal(t, 1, w.store.Count(token.Filter{Value: verify}))
}
