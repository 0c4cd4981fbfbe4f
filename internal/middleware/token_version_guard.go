package middleware

import (
	"marketplace/internal/repository"

	"github.com/labstack/echo/v4"
)

// ロール切替などでtoken_versionが進んだら古いトークンは401。
// 無効化されたユーザーも同様に弾く。
func TokenVersionGuard(users repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := c.Get(CtxUserIDKey).(int64)
			if !ok || userID <= 0 {
				return unauthorized(c)
			}
			tv, ok := c.Get(CtxTokenVersionKey).(int)
			if !ok {
				return unauthorized(c)
			}

			user, err := users.FindByID(c.Request().Context(), userID)
			if err != nil || user == nil || !user.IsActive {
				return unauthorized(c)
			}
			if user.TokenVersion != tv {
				return unauthorized(c)
			}
			return next(c)
		}
	}
}
