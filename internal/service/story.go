package service

import (
	"context"

	"github.com/javaniecampbell/storymap/internal/model"
)

type StoryService struct {
	projects ProjectStore
	stories  StoryStore
	personas PersonaStore
}

func NewStoryService(stores Stores) *StoryService {
	return &StoryService{
		projects: stores.Projects,
		stories:  stores.Stories,
		personas: stores.Personas,
	}
}

// owned checks that userID owns projectID.
func (s *StoryService) owned(ctx context.Context, userID, projectID string) error {
	_, err := s.projects.Get(ctx, userID, projectID)
	return err
}

// touched marks the project as updated after a board change.
func (s *StoryService) touched(ctx context.Context, projectID string, story *model.UserStory, err error) (*model.UserStory, error) {
	if err != nil {
		return nil, err
	}
	if err := s.projects.Touch(ctx, projectID); err != nil {
		return nil, err
	}
	return story, nil
}

func (s *StoryService) Create(ctx context.Context, userID, projectID, title, description string, storyType model.StoryType) (*model.UserStory, error) {
	if err := s.owned(ctx, userID, projectID); err != nil {
		return nil, err
	}
	story, err := s.stories.Create(ctx, projectID, title, description, storyType)
	return s.touched(ctx, projectID, story, err)
}

func (s *StoryService) Update(ctx context.Context, userID, projectID, storyID, title, description string, storyType model.StoryType) (*model.UserStory, error) {
	if err := s.owned(ctx, userID, projectID); err != nil {
		return nil, err
	}
	story, err := s.stories.Update(ctx, projectID, storyID, title, description, storyType)
	return s.touched(ctx, projectID, story, err)
}

// UpdateType moves a story to another board column.
func (s *StoryService) UpdateType(ctx context.Context, userID, projectID, storyID string, storyType model.StoryType) (*model.UserStory, error) {
	if err := s.owned(ctx, userID, projectID); err != nil {
		return nil, err
	}
	story, err := s.stories.UpdateType(ctx, projectID, storyID, storyType)
	return s.touched(ctx, projectID, story, err)
}

func (s *StoryService) Delete(ctx context.Context, userID, projectID, storyID string) error {
	if err := s.owned(ctx, userID, projectID); err != nil {
		return err
	}
	if err := s.stories.Delete(ctx, projectID, storyID); err != nil {
		return err
	}
	return s.projects.Touch(ctx, projectID)
}

// MapPersona associates a persona with a story. Mapping twice leaves a single
// association.
func (s *StoryService) MapPersona(ctx context.Context, userID, projectID, storyID, personaID string) (*model.UserStory, error) {
	return s.changePersona(ctx, userID, projectID, storyID, personaID, s.stories.AttachPersona)
}

// RemovePersona drops the association, if any.
func (s *StoryService) RemovePersona(ctx context.Context, userID, projectID, storyID, personaID string) (*model.UserStory, error) {
	return s.changePersona(ctx, userID, projectID, storyID, personaID, s.stories.DetachPersona)
}

func (s *StoryService) changePersona(
	ctx context.Context,
	userID, projectID, storyID, personaID string,
	change func(ctx context.Context, storyID, personaID string) error,
) (*model.UserStory, error) {
	if err := s.owned(ctx, userID, projectID); err != nil {
		return nil, err
	}
	if _, err := s.stories.Get(ctx, projectID, storyID); err != nil {
		return nil, err
	}
	if _, err := boardPersona(ctx, s.personas, userID, projectID, personaID); err != nil {
		return nil, err
	}

	if err := change(ctx, storyID, personaID); err != nil {
		return nil, err
	}

	story, err := s.stories.Get(ctx, projectID, storyID)
	return s.touched(ctx, projectID, story, err)
}
