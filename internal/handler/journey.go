package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/javaniecampbell/storymap/internal/server"
	"github.com/javaniecampbell/storymap/internal/service"
	"github.com/javaniecampbell/storymap/internal/validation"
)

type JourneyHandler struct {
	Handler
	journeys *service.JourneyService
}

func NewJourneyHandler(s *server.Server, journeys *service.JourneyService) *JourneyHandler {
	return &JourneyHandler{
		Handler:  NewHandler(s),
		journeys: journeys,
	}
}

// GenerateJourneyRequest lists the journey's stories in step order; an id
// may repeat.
type GenerateJourneyRequest struct {
	ProjectID   string   `param:"id" validate:"required"`
	Name        string   `form:"name" validate:"notblank"`
	Description string   `form:"description"`
	PersonaID   string   `form:"personaId" validate:"required"`
	StoryIDs    []string `form:"storyIds" validate:"dive,required"`
}

func (r *GenerateJourneyRequest) Validate() error { return validation.Struct(r) }

func (h *JourneyHandler) Board() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, req *ProjectRequest) (*service.JourneyBoard, error) {
		return h.journeys.Board(c.Request().Context(), userID(c), req.ProjectID)
	}, http.StatusOK)
}

// Actions handles POST /projects/:id/journeys.
func (h *JourneyHandler) Actions() echo.HandlerFunc {
	return Dispatch("", map[string]echo.HandlerFunc{
		"generateJourney": Handle(h.Handler, h.generate, http.StatusOK),
	})
}

func (h *JourneyHandler) generate(c echo.Context, req *GenerateJourneyRequest) (Success, error) {
	journey, err := h.journeys.Generate(c.Request().Context(), userID(c), req.ProjectID, req.PersonaID, req.Name, req.Description, req.StoryIDs)
	if err != nil {
		return Success{}, err
	}
	res := success(c)
	res.Journey = journey
	return res, nil
}
