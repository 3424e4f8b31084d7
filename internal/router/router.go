// Package router builds the echo instance: the global middleware chain, the
// system routes and the application routes with their auth requirements.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/javaniecampbell/storymap/internal/handler"
	"github.com/javaniecampbell/storymap/internal/middleware"
	"github.com/javaniecampbell/storymap/internal/server"
)

// Suggestion requests allowed per user and minute, and the burst above it.
const (
	suggestionsPerMinute = 20
	suggestionsBurst     = 5
)

func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Use(
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
		middlewares.Auth.LoadSession,
	)

	registerSystemRoutes(router, h)
	registerAuthRoutes(router, h)

	app := router.Group("", middlewares.Auth.RequireAuth)
	app.GET("/dashboard", h.Dashboard.Get())

	app.GET("/projects", h.Project.List())
	app.POST("/projects", h.Project.Collection())
	app.GET("/projects/:id", h.Project.Get())
	app.POST("/projects/:id", h.Project.Actions())
	app.GET("/projects/:id/journeys", h.Journey.Board())
	app.POST("/projects/:id/journeys", h.Journey.Actions())

	app.GET("/personas", h.Persona.List())
	app.POST("/personas", h.Persona.Actions())

	app.POST("/api/llm-suggestions", h.Suggestion.Suggest(),
		middlewares.RateLimit.Limit("llm-suggestions", suggestionsPerMinute, suggestionsBurst))

	return router
}

func registerAuthRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/login", h.Auth.LoginPage())
	r.POST("/login", h.Auth.Login())
	r.POST("/register", h.Auth.Register())
	r.POST("/logout", h.Auth.Logout())
}
