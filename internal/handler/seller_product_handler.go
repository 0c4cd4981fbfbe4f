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

// priceは文字列でも数値でも受け付ける
type productRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"image_url"`
	Price       decimal.Decimal `json:"price"`
	Stock       int64           `json:"stock"`
}

type stockRequest struct {
	Stock  *int64 `json:"stock"`
	Reason string `json:"reason"`
}

// /seller/products (出品者の商品管理と在庫更新)
type SellerProductHandler struct {
	uc     *usecase.ProductUsecase
	actors ActorResolver
}

// DI
func NewSellerProductHandler(uc *usecase.ProductUsecase, actors ActorResolver) *SellerProductHandler {
	return &SellerProductHandler{uc: uc, actors: actors}
}

func (h *SellerProductHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/seller/products")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))
	g.Use(middleware.SellerRoleGuard())

	g.GET("", h.listMine)
	g.POST("", h.create)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
	g.PUT("/:id/stock", h.updateStock)
}

func (r productRequest) toInput() usecase.ProductInput {
	return usecase.ProductInput{
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
		ImageURL:    r.ImageURL,
		Price:       r.Price,
		Stock:       r.Stock,
	}
}

func (h *SellerProductHandler) listMine(c echo.Context) error {
	actor, err := resolveActor(c, h.actors)
	if err != nil {
		return writeError(c, err)
	}
	items, err := h.uc.ListMyProducts(c.Request().Context(), actor)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *SellerProductHandler) create(c echo.Context) error {
	actor, err := resolveActor(c, h.actors)
	if err != nil {
		return writeError(c, err)
	}
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	p, err := h.uc.CreateProduct(c.Request().Context(), actor, req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *SellerProductHandler) update(c echo.Context) error {
	actor, err := resolveActor(c, h.actors)
	if err != nil {
		return writeError(c, err)
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	p, err := h.uc.UpdateProduct(c.Request().Context(), actor, id, req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *SellerProductHandler) delete(c echo.Context) error {
	actor, err := resolveActor(c, h.actors)
	if err != nil {
		return writeError(c, err)
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	if err := h.uc.DeleteProduct(c.Request().Context(), actor, id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}

func (h *SellerProductHandler) updateStock(c echo.Context) error {
	actor, err := resolveActor(c, h.actors)
	if err != nil {
		return writeError(c, err)
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req stockRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.Stock == nil {
		return badRequest(c, "stock is required")
	}
	p, err := h.uc.UpdateStock(c.Request().Context(), actor, id, *req.Stock, req.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}
