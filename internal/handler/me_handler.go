package handler

import (
	"net/http"

	"marketplace/internal/config"
	"marketplace/internal/middleware"
	"marketplace/internal/repository"
	"marketplace/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /me (自分のアカウントとプロフィール、role切替)
type MeHandler struct {
	uc *usecase.ProfileUsecase
}

// DI
func NewMeHandler(uc *usecase.ProfileUsecase) *MeHandler {
	return &MeHandler{uc: uc}
}

type switchRoleRequest struct {
	Role string `json:"role"`
}

type customerProfileRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	ShippingAddress string `json:"shipping_address"`
	BillingAddress  string `json:"billing_address"`
}

type sellerProfileRequest struct {
	StoreName        string `json:"store_name"`
	StoreDescription string `json:"store_description"`
	BusinessLicense  string `json:"business_license"`
}

func (h *MeHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/me")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))

	g.GET("", h.me)
	g.POST("/role", h.switchRole)
	g.PUT("/customer-profile", h.updateCustomerProfile)
	g.PUT("/seller-profile", h.updateSellerProfile)
}

func (h *MeHandler) me(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	out, err := h.uc.Me(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// 旧トークンは使えなくなるので、レスポンスのトークンに差し替えてもらう
func (h *MeHandler) switchRole(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	var req switchRoleRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	out, err := h.uc.SwitchRole(c.Request().Context(), userID, req.Role)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *MeHandler) updateCustomerProfile(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	var req customerProfileRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	out, err := h.uc.UpdateCustomerProfile(c.Request().Context(), userID, usecase.CustomerProfileInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *MeHandler) updateSellerProfile(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}
	var req sellerProfileRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	out, err := h.uc.UpdateSellerProfile(c.Request().Context(), userID, usecase.SellerProfileInput{
		StoreName:        req.StoreName,
		StoreDescription: req.StoreDescription,
		BusinessLicense:  req.BusinessLicense,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
