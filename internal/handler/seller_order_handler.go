package handler

import (
	"net/http"

	"marketplace/internal/config"
	"marketplace/internal/middleware"
	"marketplace/internal/repository"
	"marketplace/internal/usecase"

	"github.com/labstack/echo/v4"
)

type orderStatusRequest struct {
	Status string `json:"status"`
}

// 出品者の /seller/orders
type SellerOrderHandler struct {
	uc     *usecase.OrderUsecase
	actors ActorResolver
}

// DI
func NewSellerOrderHandler(uc *usecase.OrderUsecase, actors ActorResolver) *SellerOrderHandler {
	return &SellerOrderHandler{uc: uc, actors: actors}
}

func (h *SellerOrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/seller/orders")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))
	g.Use(middleware.SellerRoleGuard())

	g.GET("", h.list)
	g.PUT("/:id/status", h.updateStatus)
}

func (h *SellerOrderHandler) list(c echo.Context) error {
	actor, err := resolveActor(c, h.actors)
	if err != nil {
		return writeError(c, err)
	}
	page, limit, msg := parsePaging(c)
	if msg != "" {
		return badRequest(c, msg)
	}
	out, err := h.uc.ListForSeller(c.Request().Context(), actor, usecase.ListOrdersInput{Page: page, Limit: limit})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SellerOrderHandler) updateStatus(c echo.Context) error {
	actor, err := resolveActor(c, h.actors)
	if err != nil {
		return writeError(c, err)
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req orderStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	out, err := h.uc.UpdateStatusAsSeller(c.Request().Context(), actor, id, req.Status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
