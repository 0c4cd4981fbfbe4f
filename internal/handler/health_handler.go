package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// *sql.DBが満たす
type Pinger interface {
	PingContext(ctx context.Context) error
}

// /healthz と /metrics
type HealthHandler struct {
	db      Pinger
	metrics http.Handler
}

// DI。metricsがnilなら/metricsは登録しない
func NewHealthHandler(db Pinger, metrics http.Handler) *HealthHandler {
	return &HealthHandler{db: db, metrics: metrics}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func (h *HealthHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.healthz)
	if h.metrics != nil {
		e.GET("/metrics", echo.WrapHandler(h.metrics))
	}
}

func (h *HealthHandler) healthz(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Database: "down"})
	}
	return c.JSON(http.StatusOK, healthResponse{Status: "ok", Database: "up"})
}
