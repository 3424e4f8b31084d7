package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/javaniecampbell/storymap/internal/model"
	"github.com/javaniecampbell/storymap/internal/server"
	"github.com/javaniecampbell/storymap/internal/service"
	"github.com/javaniecampbell/storymap/internal/validation"
)

type PersonaHandler struct {
	Handler
	personas *service.PersonaService
}

func NewPersonaHandler(s *server.Server, personas *service.PersonaService) *PersonaHandler {
	return &PersonaHandler{
		Handler:  NewHandler(s),
		personas: personas,
	}
}

type CreatePersonaRequest struct {
	Name        string `form:"name" validate:"notblank"`
	Description string `form:"description"`
	ProjectID   string `form:"projectId"`
}

func (r *CreatePersonaRequest) Validate() error { return validation.Struct(r) }

type DeletePersonaRequest struct {
	PersonaID string `form:"personaId" validate:"required"`
}

func (r *DeletePersonaRequest) Validate() error { return validation.Struct(r) }

func (h *PersonaHandler) List() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, _ *emptyRequest) (map[string][]model.Persona, error) {
		personas, err := h.personas.List(c.Request().Context(), userID(c))
		if err != nil {
			return nil, err
		}
		return map[string][]model.Persona{"personas": personas}, nil
	}, http.StatusOK)
}

// Actions handles POST /personas.
func (h *PersonaHandler) Actions() echo.HandlerFunc {
	return Dispatch("", map[string]echo.HandlerFunc{
		"create": Handle(h.Handler, h.create, http.StatusOK),
		"delete": Handle(h.Handler, h.delete, http.StatusOK),
	})
}

func (h *PersonaHandler) create(c echo.Context, req *CreatePersonaRequest) (Success, error) {
	var projectID *string
	if req.ProjectID != "" {
		projectID = &req.ProjectID
	}

	persona, err := h.personas.Create(c.Request().Context(), userID(c), projectID, req.Name, req.Description)
	if err != nil {
		return Success{}, err
	}
	res := success(c)
	res.Persona = persona
	return res, nil
}

func (h *PersonaHandler) delete(c echo.Context, req *DeletePersonaRequest) (Success, error) {
	if err := h.personas.Delete(c.Request().Context(), userID(c), req.PersonaID); err != nil {
		return Success{}, err
	}
	res := success(c)
	res.DeletedPersonaID = req.PersonaID
	return res, nil
}
