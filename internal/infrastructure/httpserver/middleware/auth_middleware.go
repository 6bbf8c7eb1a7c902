package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/auth-workflow/internal/core/domain/auth"
	"github.com/avatarctic/auth-workflow/internal/core/ports"
	"github.com/avatarctic/auth-workflow/internal/infrastructure/httpserver/helpers"
)

type JWTMiddleware struct {
	tokenService ports.TokenService
	userService  ports.UserService
	logger       *logrus.Logger
}

func NewJWTMiddleware(tokenService ports.TokenService, userService ports.UserService, logger *logrus.Logger) *JWTMiddleware {
	return &JWTMiddleware{tokenService: tokenService, userService: userService, logger: logger}
}

// RequireJWT validates the bearer access token and loads the acting user.
// Every failure answers 401 "Please authenticate".
func (m *JWTMiddleware) RequireJWT() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			unauthorized := echo.NewHTTPError(http.StatusUnauthorized, auth.MsgPleaseAuthenticate)

			tokenString, err := helpers.GetJWTTokenFromContext(c)
			if err != nil {
				return unauthorized
			}

			claims, err := m.tokenService.ParseAccessToken(tokenString)
			if err != nil {
				m.warn(c, err, "JWT validation failed")
				return unauthorized
			}

			userID, err := claims.UserID()
			if err != nil {
				m.warn(c, err, "JWT subject is not a user id")
				return unauthorized
			}

			current, err := m.userService.GetUser(c.Request().Context(), userID)
			if err != nil || current == nil {
				m.warn(c, err, "JWT user could not be loaded")
				return unauthorized
			}

			helpers.SetUserID(c, userID)
			helpers.SetCurrentUser(c, current)

			if m.logger != nil {
				m.logger.WithFields(logrus.Fields{"user_id": userID, "role": current.Role}).Debug("jwt validated and user context set")
			}

			return next(c)
		}
	}
}

func (m *JWTMiddleware) warn(c echo.Context, err error, msg string) {
	if m.logger == nil {
		return
	}
	entry := m.logger.WithFields(logrus.Fields{"ip": c.RealIP(), "path": c.Request().URL.Path})
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Warn(msg)
}
