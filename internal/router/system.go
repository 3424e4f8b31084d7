package router

import (
	"github.com/labstack/echo/v4"

	"github.com/javaniecampbell/storymap/internal/handler"
)

// registerSystemRoutes adds the endpoints that sit outside the application:
// health, API docs and their static assets.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/status", h.Health.CheckHealth)

	r.Static("/static", "static")

	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
}
