package helpers

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/avatarctic/auth-workflow/internal/core/domain/user"
)

type ctxKey string

const (
	keyUserID      ctxKey = "user_id"
	keyCurrentUser ctxKey = "current_user"
)

func SetUserID(c echo.Context, id uuid.UUID) { c.Set(string(keyUserID), id) }
func GetUserIDRaw(c echo.Context) (uuid.UUID, bool) {
	v := c.Get(string(keyUserID))
	id, ok := v.(uuid.UUID)
	return id, ok
}

func SetCurrentUser(c echo.Context, u *user.User) { c.Set(string(keyCurrentUser), u) }
func GetCurrentUserRaw(c echo.Context) (*user.User, bool) {
	v := c.Get(string(keyCurrentUser))
	u, ok := v.(*user.User)
	return u, ok
}
