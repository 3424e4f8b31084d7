package service

import (
	"context"

	"github.com/javaniecampbell/storymap/internal/model"
)

// ProjectDetail is a project with its board contents.
type ProjectDetail struct {
	Project  *model.Project    `json:"project"`
	Stories  []model.UserStory `json:"stories"`
	Personas []model.Persona   `json:"personas"`
}

type ProjectService struct {
	projects ProjectStore
	stories  StoryStore
	personas PersonaStore
}

func NewProjectService(stores Stores) *ProjectService {
	return &ProjectService{
		projects: stores.Projects,
		stories:  stores.Stories,
		personas: stores.Personas,
	}
}

func (s *ProjectService) List(ctx context.Context, userID string) ([]model.Project, error) {
	return s.projects.List(ctx, userID)
}

// Get loads the project with its stories and the personas usable on it.
func (s *ProjectService) Get(ctx context.Context, userID, projectID string) (*ProjectDetail, error) {
	project, err := s.projects.Get(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	stories, err := s.stories.ListByProject(ctx, project.ID)
	if err != nil {
		return nil, err
	}

	personas, err := s.personas.ListForProject(ctx, userID, project.ID)
	if err != nil {
		return nil, err
	}

	return &ProjectDetail{Project: project, Stories: stories, Personas: personas}, nil
}

func (s *ProjectService) Create(ctx context.Context, userID, name, description string) (*model.Project, error) {
	return s.projects.Create(ctx, userID, name, description)
}

func (s *ProjectService) Update(ctx context.Context, userID, projectID, name, description string) (*model.Project, error) {
	return s.projects.Update(ctx, userID, projectID, name, description)
}

// Delete removes the project and, through the schema, everything under it.
func (s *ProjectService) Delete(ctx context.Context, userID, projectID string) error {
	return s.projects.Delete(ctx, userID, projectID)
}
