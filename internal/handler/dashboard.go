package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/javaniecampbell/storymap/internal/model"
	"github.com/javaniecampbell/storymap/internal/server"
	"github.com/javaniecampbell/storymap/internal/service"
)

type DashboardHandler struct {
	Handler
	dashboard *service.DashboardService
}

func NewDashboardHandler(s *server.Server, dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		Handler:   NewHandler(s),
		dashboard: dashboard,
	}
}

func (h *DashboardHandler) Get() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, _ *emptyRequest) (*model.Dashboard, error) {
		return h.dashboard.Get(c.Request().Context(), userID(c))
	}, http.StatusOK)
}
