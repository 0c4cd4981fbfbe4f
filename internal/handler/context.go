package handler

import (
	"context"
	"net/http"
	"strconv"

	"marketplace/internal/middleware"
	"marketplace/internal/usecase"

	"github.com/labstack/echo/v4"
)

// JWTのuser_idから購入者/出品者プロフィールを引く
type ActorResolver interface {
	Resolve(ctx context.Context, userID int64) (usecase.ActingCustomer, error)
}

// AuthJWTがセットしたuser_idを取り出す
func getUserIDFromContext(c echo.Context) (int64, bool) {
	id, ok := c.Get(middleware.CtxUserIDKey).(int64)
	if !ok || id <= 0 {
		return 0, false
	}
	return id, true
}

func resolveActor(c echo.Context, actors ActorResolver) (usecase.ActingCustomer, error) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return usecase.ActingCustomer{}, usecase.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return actors.Resolve(c.Request().Context(), userID)
}

func parseIDParam(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// page(default 1), limit(default 20)
func parsePaging(c echo.Context) (page int, limit int, msg string) {
	page, limit = 1, 20
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, "invalid page"
		}
		page = p
	}
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, "invalid limit"
		}
		limit = l
	}
	return page, limit, ""
}
