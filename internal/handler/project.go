package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/javaniecampbell/storymap/internal/model"
	"github.com/javaniecampbell/storymap/internal/server"
	"github.com/javaniecampbell/storymap/internal/service"
	"github.com/javaniecampbell/storymap/internal/validation"
)

type ProjectHandler struct {
	Handler
	projects *service.ProjectService
	stories  *service.StoryService
	personas *service.PersonaService
}

func NewProjectHandler(s *server.Server, services *service.Services) *ProjectHandler {
	return &ProjectHandler{
		Handler:  NewHandler(s),
		projects: services.Projects,
		stories:  services.Stories,
		personas: services.Personas,
	}
}

type ProjectRequest struct {
	ProjectID string `param:"id" validate:"required"`
}

func (r *ProjectRequest) Validate() error { return validation.Struct(r) }

type CreateProjectRequest struct {
	Name        string `form:"name" validate:"notblank,max=200"`
	Description string `form:"description"`
}

func (r *CreateProjectRequest) Validate() error { return validation.Struct(r) }

type DeleteProjectRequest struct {
	ProjectID string `form:"projectId" validate:"required"`
}

func (r *DeleteProjectRequest) Validate() error { return validation.Struct(r) }

type UpdateProjectRequest struct {
	ProjectID   string `param:"id" validate:"required"`
	Name        string `form:"name" validate:"notblank,max=200"`
	Description string `form:"description"`
}

func (r *UpdateProjectRequest) Validate() error { return validation.Struct(r) }

type CreateStoryRequest struct {
	ProjectID   string `param:"id" validate:"required"`
	Title       string `form:"title" validate:"notblank"`
	Description string `form:"description"`
	Type        string `form:"type" validate:"required,oneof=EPIC FEATURE STORY"`
}

func (r *CreateStoryRequest) Validate() error { return validation.Struct(r) }

type UpdateStoryRequest struct {
	ProjectID   string `param:"id" validate:"required"`
	StoryID     string `form:"storyId" validate:"required"`
	Title       string `form:"title" validate:"notblank"`
	Description string `form:"description"`
	Type        string `form:"type" validate:"required,oneof=EPIC FEATURE STORY"`
}

func (r *UpdateStoryRequest) Validate() error { return validation.Struct(r) }

type UpdateStoryTypeRequest struct {
	ProjectID string `param:"id" validate:"required"`
	StoryID   string `form:"storyId" validate:"required"`
	NewType   string `form:"newType" validate:"required,oneof=EPIC FEATURE STORY"`
}

func (r *UpdateStoryTypeRequest) Validate() error { return validation.Struct(r) }

type StoryRequest struct {
	ProjectID string `param:"id" validate:"required"`
	StoryID   string `form:"storyId" validate:"required"`
}

func (r *StoryRequest) Validate() error { return validation.Struct(r) }

type CreateProjectPersonaRequest struct {
	ProjectID   string `param:"id" validate:"required"`
	Name        string `form:"name" validate:"notblank"`
	Description string `form:"description"`
}

func (r *CreateProjectPersonaRequest) Validate() error { return validation.Struct(r) }

type ProjectPersonaRequest struct {
	ProjectID string `param:"id" validate:"required"`
	PersonaID string `form:"personaId" validate:"required"`
}

func (r *ProjectPersonaRequest) Validate() error { return validation.Struct(r) }

type PersonaStoryRequest struct {
	ProjectID string `param:"id" validate:"required"`
	PersonaID string `form:"personaId" validate:"required"`
	StoryID   string `form:"storyId" validate:"required"`
}

func (r *PersonaStoryRequest) Validate() error { return validation.Struct(r) }

func (h *ProjectHandler) List() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, _ *emptyRequest) (map[string][]model.Project, error) {
		projects, err := h.projects.List(c.Request().Context(), userID(c))
		if err != nil {
			return nil, err
		}
		return map[string][]model.Project{"projects": projects}, nil
	}, http.StatusOK)
}

func (h *ProjectHandler) Get() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, req *ProjectRequest) (*service.ProjectDetail, error) {
		return h.projects.Get(c.Request().Context(), userID(c), req.ProjectID)
	}, http.StatusOK)
}

// Collection handles POST /projects.
func (h *ProjectHandler) Collection() echo.HandlerFunc {
	return Dispatch("createProject", map[string]echo.HandlerFunc{
		"createProject": Handle(h.Handler, h.createProject, http.StatusOK),
		"deleteProject": Handle(h.Handler, h.deleteProject, http.StatusOK),
	})
}

// Actions handles POST /projects/:id.
func (h *ProjectHandler) Actions() echo.HandlerFunc {
	return Dispatch("", map[string]echo.HandlerFunc{
		"updateProject":          Handle(h.Handler, h.updateProject, http.StatusOK),
		"deleteProject":          HandleRedirect(h.Handler, h.deleteCurrentProject, http.StatusSeeOther),
		"createStory":            Handle(h.Handler, h.createStory, http.StatusOK),
		"updateStory":            Handle(h.Handler, h.updateStory, http.StatusOK),
		"updateStoryType":        Handle(h.Handler, h.updateStoryType, http.StatusOK),
		"deleteStory":            Handle(h.Handler, h.deleteStory, http.StatusOK),
		"createPersona":          Handle(h.Handler, h.createPersona, http.StatusOK),
		"deletePersona":          Handle(h.Handler, h.deletePersona, http.StatusOK),
		"mapPersonaToStory":      Handle(h.Handler, h.mapPersonaToStory, http.StatusOK),
		"removePersonaFromStory": Handle(h.Handler, h.removePersonaFromStory, http.StatusOK),
	})
}

func (h *ProjectHandler) createProject(c echo.Context, req *CreateProjectRequest) (Success, error) {
	project, err := h.projects.Create(c.Request().Context(), userID(c), req.Name, req.Description)
	if err != nil {
		return Success{}, err
	}
	res := success(c)
	res.Project = project
	return res, nil
}

func (h *ProjectHandler) deleteProject(c echo.Context, req *DeleteProjectRequest) (Success, error) {
	if err := h.projects.Delete(c.Request().Context(), userID(c), req.ProjectID); err != nil {
		return Success{}, err
	}
	res := success(c)
	res.DeletedProjectID = req.ProjectID
	return res, nil
}

func (h *ProjectHandler) deleteCurrentProject(c echo.Context, req *ProjectRequest) (string, error) {
	if err := h.projects.Delete(c.Request().Context(), userID(c), req.ProjectID); err != nil {
		return "", err
	}
	return "/projects", nil
}

func (h *ProjectHandler) updateProject(c echo.Context, req *UpdateProjectRequest) (Success, error) {
	project, err := h.projects.Update(c.Request().Context(), userID(c), req.ProjectID, req.Name, req.Description)
	if err != nil {
		return Success{}, err
	}
	res := success(c)
	res.Project = project
	return res, nil
}

func (h *ProjectHandler) createStory(c echo.Context, req *CreateStoryRequest) (Success, error) {
	story, err := h.stories.Create(c.Request().Context(), userID(c), req.ProjectID, req.Title, req.Description, model.StoryType(req.Type))
	if err != nil {
		return Success{}, err
	}
	res := success(c)
	res.Story = story
	return res, nil
}

func (h *ProjectHandler) updateStory(c echo.Context, req *UpdateStoryRequest) (Success, error) {
	story, err := h.stories.Update(c.Request().Context(), userID(c), req.ProjectID, req.StoryID, req.Title, req.Description, model.StoryType(req.Type))
	if err != nil {
		return Success{}, err
	}
	res := success(c)
	res.Story = story
	return res, nil
}

func (h *ProjectHandler) updateStoryType(c echo.Context, req *UpdateStoryTypeRequest) (Success, error) {
	story, err := h.stories.UpdateType(c.Request().Context(), userID(c), req.ProjectID, req.StoryID, model.StoryType(req.NewType))
	if err != nil {
		return Success{}, err
	}
	res := success(c)
	res.Story = story
	return res, nil
}

func (h *ProjectHandler) deleteStory(c echo.Context, req *StoryRequest) (Success, error) {
	if err := h.stories.Delete(c.Request().Context(), userID(c), req.ProjectID, req.StoryID); err != nil {
		return Success{}, err
	}
	res := success(c)
	res.DeletedStoryID = req.StoryID
	return res, nil
}

func (h *ProjectHandler) createPersona(c echo.Context, req *CreateProjectPersonaRequest) (Success, error) {
	persona, err := h.personas.Create(c.Request().Context(), userID(c), &req.ProjectID, req.Name, req.Description)
	if err != nil {
		return Success{}, err
	}
	res := success(c)
	res.Persona = persona
	return res, nil
}

func (h *ProjectHandler) deletePersona(c echo.Context, req *ProjectPersonaRequest) (Success, error) {
	if err := h.personas.DeleteFromProject(c.Request().Context(), userID(c), req.ProjectID, req.PersonaID); err != nil {
		return Success{}, err
	}
	res := success(c)
	res.DeletedPersonaID = req.PersonaID
	return res, nil
}

func (h *ProjectHandler) mapPersonaToStory(c echo.Context, req *PersonaStoryRequest) (Success, error) {
	story, err := h.stories.MapPersona(c.Request().Context(), userID(c), req.ProjectID, req.StoryID, req.PersonaID)
	if err != nil {
		return Success{}, err
	}
	res := success(c)
	res.Story = story
	return res, nil
}

func (h *ProjectHandler) removePersonaFromStory(c echo.Context, req *PersonaStoryRequest) (Success, error) {
	story, err := h.stories.RemovePersona(c.Request().Context(), userID(c), req.ProjectID, req.StoryID, req.PersonaID)
	if err != nil {
		return Success{}, err
	}
	res := success(c)
	res.Story = story
	return res, nil
}
