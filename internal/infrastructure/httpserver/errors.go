package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avatarctic/auth-workflow/internal/core/domain/auth"
	"github.com/avatarctic/auth-workflow/internal/core/domain/user"
)

// mapError turns a service error into the HTTP error returned to the client.
// Auth workflow errors keep their fixed message; anything unrecognised is a 500
// and its detail only reaches the log.
func (s *Server) mapError(c echo.Context, operation string, err error) error {
	var authErr *auth.Error
	switch {
	case errors.As(err, &authErr):
		authFailures.WithLabelValues(operation).Inc()
		code := http.StatusUnauthorized
		if errors.Is(authErr, auth.ErrNotFound) {
			code = http.StatusNotFound
		}
		return echo.NewHTTPError(code, authErr.Message)
	case errors.Is(err, user.ErrEmailTaken):
		return echo.NewHTTPError(http.StatusBadRequest, "Email already taken")
	case errors.Is(err, user.ErrWeakPassword):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if s.logger != nil {
		s.logger.WithError(err).WithFields(map[string]interface{}{
			"operation":  operation,
			"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
		}).Error("request failed")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return c.Validate(req)
}
