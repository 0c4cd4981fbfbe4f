package middleware

import (
	"marketplace/internal/domain/model"

	"github.com/labstack/echo/v4"
)

// 出品者として操作中(active_role=SELLER)のトークンだけ通す
func SellerRoleGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(CtxUserRoleKey).(string)
			if !ok || role == "" {
				return unauthorized(c)
			}
			if model.Role(role) != model.RoleSeller {
				return forbidden(c, "seller role required")
			}
			return next(c)
		}
	}
}
