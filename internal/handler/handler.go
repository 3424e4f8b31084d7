// Package handler turns HTTP requests into service calls. Every endpoint runs
// through the same pipeline: bind the form, validate it, call the service,
// write JSON or a redirect. Routes that accept several mutations pick one by
// the `_action` form field.
package handler

import (
	"github.com/javaniecampbell/storymap/internal/server"
	"github.com/javaniecampbell/storymap/internal/service"
)

type Handlers struct {
	Auth       *AuthHandler
	Dashboard  *DashboardHandler
	Project    *ProjectHandler
	Persona    *PersonaHandler
	Journey    *JourneyHandler
	Suggestion *SuggestionHandler
	Health     *HealthHandler
	OpenAPI    *OpenAPIHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Auth:       NewAuthHandler(s, services.Auth),
		Dashboard:  NewDashboardHandler(s, services.Dashboard),
		Project:    NewProjectHandler(s, services),
		Persona:    NewPersonaHandler(s, services.Personas),
		Journey:    NewJourneyHandler(s, services.Journeys),
		Suggestion: NewSuggestionHandler(s, services.Suggestions),
		Health:     NewHealthHandler(s),
		OpenAPI:    NewOpenAPIHandler(s),
	}
}
