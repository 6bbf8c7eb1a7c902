package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avatarctic/auth-workflow/internal/core/domain/auth"
	"github.com/avatarctic/auth-workflow/internal/core/domain/user"
	"github.com/avatarctic/auth-workflow/internal/infrastructure/httpserver/helpers"
)

func (s *Server) register(c echo.Context) error {
	var req user.CreateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	// Self-registration never grants a role
	req.Role = ""

	ctx := c.Request().Context()
	created, err := s.userService.CreateUser(ctx, &req)
	if err != nil {
		return s.mapError(c, "register", err)
	}

	tokens, err := s.tokenService.GenerateAuthTokens(ctx, created)
	if err != nil {
		return s.mapError(c, "register", err)
	}

	return c.JSON(http.StatusCreated, auth.AuthResult{User: created, Tokens: tokens})
}

func (s *Server) login(c echo.Context) error {
	var req auth.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	u, err := s.authSvc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return s.mapError(c, "login", err)
	}

	tokens, err := s.tokenService.GenerateAuthTokens(ctx, u)
	if err != nil {
		return s.mapError(c, "login", err)
	}

	return c.JSON(http.StatusOK, auth.AuthResult{User: u, Tokens: tokens})
}

func (s *Server) logout(c echo.Context) error {
	var req auth.RefreshTokenRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := s.authSvc.Logout(c.Request().Context(), req.RefreshToken); err != nil {
		return s.mapError(c, "logout", err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (s *Server) refreshTokens(c echo.Context) error {
	var req auth.RefreshTokenRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := s.authSvc.RefreshAuth(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return s.mapError(c, "refresh_auth", err)
	}

	return c.JSON(http.StatusOK, res.Tokens)
}

func (s *Server) forgotPassword(c echo.Context) error {
	var req auth.ForgotPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	resetToken, err := s.tokenService.GenerateResetPasswordToken(ctx, req.Email)
	if errors.Is(err, user.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "No users found with this email")
	}
	if err != nil {
		return s.mapError(c, "forgot_password", err)
	}

	if err := s.emailService.SendResetPasswordEmail(ctx, req.Email, resetToken); err != nil {
		return s.mapError(c, "forgot_password", err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (s *Server) resetPassword(c echo.Context) error {
	var req auth.ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	// echo only binds query params for GET/DELETE/HEAD
	req.Token = c.QueryParam("token")
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := s.authSvc.ResetPassword(c.Request().Context(), req.Token, req.Password); err != nil {
		return s.mapError(c, "reset_password", err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (s *Server) verifyEmail(c echo.Context) error {
	req := auth.VerifyEmailRequest{Token: c.QueryParam("token")}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if _, err := s.authSvc.VerifyEmail(c.Request().Context(), req.Token); err != nil {
		return s.mapError(c, "verify_email", err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (s *Server) sendVerificationEmail(c echo.Context) error {
	current, err := helpers.GetCurrentUserFromContext(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	verifyToken, err := s.tokenService.GenerateVerifyEmailToken(ctx, current)
	if err != nil {
		return s.mapError(c, "send_verification_email", err)
	}

	if err := s.emailService.SendVerificationEmail(ctx, current.Email, verifyToken, current.Name); err != nil {
		return s.mapError(c, "send_verification_email", err)
	}

	return c.NoContent(http.StatusNoContent)
}
