package service

import (
	"context"

	"github.com/javaniecampbell/storymap/internal/model"
	"github.com/javaniecampbell/storymap/internal/sqlerr"
)

type PersonaService struct {
	projects ProjectStore
	personas PersonaStore
}

func NewPersonaService(stores Stores) *PersonaService {
	return &PersonaService{
		projects: stores.Projects,
		personas: stores.Personas,
	}
}

func (s *PersonaService) List(ctx context.Context, userID string) ([]model.Persona, error) {
	return s.personas.ListByUser(ctx, userID)
}

// Create adds a persona. A nil projectID makes it available to every project
// of the user.
func (s *PersonaService) Create(ctx context.Context, userID string, projectID *string, name, description string) (*model.Persona, error) {
	if projectID != nil {
		if _, err := s.projects.Get(ctx, userID, *projectID); err != nil {
			return nil, err
		}
	}
	return s.personas.Create(ctx, userID, projectID, name, description)
}

func (s *PersonaService) Delete(ctx context.Context, userID, personaID string) error {
	return s.personas.Delete(ctx, userID, personaID)
}

// DeleteFromProject deletes a persona from a project page; the project must be
// the caller's.
func (s *PersonaService) DeleteFromProject(ctx context.Context, userID, projectID, personaID string) error {
	if _, err := s.projects.Get(ctx, userID, projectID); err != nil {
		return err
	}
	if _, err := boardPersona(ctx, s.personas, userID, projectID, personaID); err != nil {
		return err
	}
	return s.personas.Delete(ctx, userID, personaID)
}

// boardPersona loads a persona shown on projectID's board: one of the
// project's own or one of the user's global personas. Personas of other
// projects read as not found.
func boardPersona(ctx context.Context, personas PersonaStore, userID, projectID, personaID string) (*model.Persona, error) {
	persona, err := personas.Get(ctx, userID, personaID)
	if err != nil {
		return nil, err
	}
	if persona.ProjectID != nil && *persona.ProjectID != projectID {
		return nil, sqlerr.NotFound("personas")
	}
	return persona, nil
}
