package server

import (
	"marketplace/internal/config"
	"marketplace/internal/handler"
	"marketplace/internal/repository"

	"github.com/labstack/echo/v4"
)

// Handlersは起動時に組み立てたhandlerの束
type Handlers struct {
	Auth          *handler.AuthHandler
	Me            *handler.MeHandler
	Products      *handler.ProductHandler
	SellerProduct *handler.SellerProductHandler
	Cart          *handler.CartHandler
	Orders        *handler.OrderHandler
	SellerOrders  *handler.SellerOrderHandler
	Health        *handler.HealthHandler
}

// 公開: /auth, /products, /healthz, /metrics
// 認証必須: /me, /cart, /orders
// 出品者のみ: /seller/*
func RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository, h Handlers) {
	h.Health.RegisterRoutes(e)
	h.Auth.RegisterRoutes(e)
	h.Products.RegisterRoutes(e)

	h.Me.RegisterRoutes(e, cfg, userRepo)
	h.Cart.RegisterRoutes(e, cfg, userRepo)
	h.Orders.RegisterRoutes(e, cfg, userRepo)

	h.SellerProduct.RegisterRoutes(e, cfg, userRepo)
	h.SellerOrders.RegisterRoutes(e, cfg, userRepo)
}
