package handler

import (
	"net/http"

	"marketplace/internal/config"
	"marketplace/internal/middleware"
	"marketplace/internal/repository"
	"marketplace/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 購入者の /orders
type OrderHandler struct {
	uc     *usecase.OrderUsecase
	actors ActorResolver
}

// DI
func NewOrderHandler(uc *usecase.OrderUsecase, actors ActorResolver) *OrderHandler {
	return &OrderHandler{uc: uc, actors: actors}
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/orders")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))

	g.GET("", h.list)
	g.GET("/:id", h.detail)
	g.PUT("/:id/cancel", h.cancel)
}

func (h *OrderHandler) list(c echo.Context) error {
	actor, err := resolveActor(c, h.actors)
	if err != nil {
		return writeError(c, err)
	}
	page, limit, msg := parsePaging(c)
	if msg != "" {
		return badRequest(c, msg)
	}
	out, err := h.uc.ListForCustomer(c.Request().Context(), actor, usecase.ListOrdersInput{Page: page, Limit: limit})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	actor, err := resolveActor(c, h.actors)
	if err != nil {
		return writeError(c, err)
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	out, err := h.uc.GetForCustomer(c.Request().Context(), actor, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) cancel(c echo.Context) error {
	actor, err := resolveActor(c, h.actors)
	if err != nil {
		return writeError(c, err)
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	out, err := h.uc.CancelAsCustomer(c.Request().Context(), actor, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
