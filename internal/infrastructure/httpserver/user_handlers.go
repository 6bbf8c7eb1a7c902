package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avatarctic/auth-workflow/internal/infrastructure/httpserver/helpers"
)

// getOwnProfile returns the authenticated user's profile
func (s *Server) getOwnProfile(c echo.Context) error {
	// JWT middleware already loaded the user
	if userObj, err := helpers.GetCurrentUserFromContext(c); err == nil {
		return c.JSON(http.StatusOK, userObj)
	}

	userID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}

	userObj, err := s.userService.GetUser(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}

	return c.JSON(http.StatusOK, userObj)
}
