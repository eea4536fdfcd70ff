package router

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/oddstable/internal/handler"
)

// registerSystemRoutes registers endpoints outside the versioned API.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/status", h.Health.CheckHealth)
	r.HEAD("/status", h.Health.CheckHealth)
}
