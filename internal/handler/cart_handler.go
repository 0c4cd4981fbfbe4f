package handler

import (
	"net/http"

	"marketplace/internal/config"
	"marketplace/internal/middleware"
	"marketplace/internal/repository"
	"marketplace/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

const idempotencyKeyHeader = "X-Idempotency-Key"

// /cartのHTTP。チェックアウトもここから。
type CartHandler struct {
	uc       *usecase.CartUsecase
	checkout *usecase.CheckoutUsecase
	actors   ActorResolver
}

// DI
func NewCartHandler(uc *usecase.CartUsecase, checkout *usecase.CheckoutUsecase, actors ActorResolver) *CartHandler {
	return &CartHandler{uc: uc, checkout: checkout, actors: actors}
}

type addCartItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type updateCartItemRequest struct {
	Quantity int64 `json:"quantity"`
}

// total_amountは "54.00" でも 54 でもよい。未指定はnil。
type checkoutRequest struct {
	PaymentMethod   string           `json:"payment_method"`
	ShippingAddress string           `json:"shipping_address"`
	TotalAmount     *decimal.Decimal `json:"total_amount"`
}

func (h *CartHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/cart")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))

	g.GET("", h.getCart)
	g.DELETE("", h.clear)
	g.POST("/items", h.addItem)
	g.PUT("/items/:id", h.updateItem)
	g.DELETE("/items/:id", h.removeItem)
	g.POST("/checkout", h.doCheckout)
}

func (h *CartHandler) getCart(c echo.Context) error {
	actor, err := resolveActor(c, h.actors)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.GetItems(c.Request().Context(), actor)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) addItem(c echo.Context) error {
	actor, err := resolveActor(c, h.actors)
	if err != nil {
		return writeError(c, err)
	}
	var req addCartItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	out, err := h.uc.AddItem(c.Request().Context(), actor, usecase.AddCartItemInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) updateItem(c echo.Context) error {
	actor, err := resolveActor(c, h.actors)
	if err != nil {
		return writeError(c, err)
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req updateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	out, err := h.uc.UpdateItemQuantity(c.Request().Context(), actor, itemID, req.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) removeItem(c echo.Context) error {
	actor, err := resolveActor(c, h.actors)
	if err != nil {
		return writeError(c, err)
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	if err := h.uc.RemoveItem(c.Request().Context(), actor, itemID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "removed"})
}

func (h *CartHandler) clear(c echo.Context) error {
	actor, err := resolveActor(c, h.actors)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.uc.Clear(c.Request().Context(), actor); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "cleared"})
}

func (h *CartHandler) doCheckout(c echo.Context) error {
	actor, err := resolveActor(c, h.actors)
	if err != nil {
		return writeError(c, err)
	}
	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.checkout.Checkout(c.Request().Context(), actor, usecase.CheckoutInput{
		PaymentMethod:   req.PaymentMethod,
		ShippingAddress: req.ShippingAddress,
		TotalAmount:     req.TotalAmount,
		IdempotencyKey:  c.Request().Header.Get(idempotencyKeyHeader),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}
