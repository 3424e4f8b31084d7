package service

import (
	"context"
	"fmt"

	"github.com/javaniecampbell/storymap/internal/errs"
	"github.com/javaniecampbell/storymap/internal/model"
)

// JourneyBoard is everything the journeys page shows.
type JourneyBoard struct {
	Project  *model.Project    `json:"project"`
	Stories  []model.UserStory `json:"stories"`
	Personas []model.Persona   `json:"personas"`
	Journeys []model.Journey   `json:"journeys"`
}

type JourneyService struct {
	projects ProjectStore
	stories  StoryStore
	personas PersonaStore
	journeys JourneyStore
}

func NewJourneyService(stores Stores) *JourneyService {
	return &JourneyService{
		projects: stores.Projects,
		stories:  stores.Stories,
		personas: stores.Personas,
		journeys: stores.Journeys,
	}
}

func (s *JourneyService) Board(ctx context.Context, userID, projectID string) (*JourneyBoard, error) {
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

	journeys, err := s.journeys.ListByProject(ctx, project.ID)
	if err != nil {
		return nil, err
	}

	return &JourneyBoard{Project: project, Stories: stories, Personas: personas, Journeys: journeys}, nil
}

// Generate creates a journey whose steps follow storyIDs. Step i gets order
// i and the description "Step i+1"; repeated ids are kept as given.
func (s *JourneyService) Generate(ctx context.Context, userID, projectID, personaID, name, description string, storyIDs []string) (*model.Journey, error) {
	if _, err := s.projects.Get(ctx, userID, projectID); err != nil {
		return nil, err
	}

	persona, err := boardPersona(ctx, s.personas, userID, projectID, personaID)
	if err != nil {
		return nil, err
	}

	stories, err := s.stories.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*model.UserStory, len(stories))
	for i := range stories {
		byID[stories[i].ID] = &stories[i]
	}

	journey := &model.Journey{
		ProjectID:   projectID,
		PersonaID:   persona.ID,
		Name:        name,
		Description: description,
		Steps:       make([]model.JourneyStep, 0, len(storyIDs)),
	}
	for i, storyID := range storyIDs {
		if _, ok := byID[storyID]; !ok {
			return nil, errs.NewFieldError("storyIds", fmt.Sprintf("Story %s does not belong to this project", storyID))
		}
		journey.Steps = append(journey.Steps, model.JourneyStep{
			UserStoryID: storyID,
			Order:       i,
			Description: fmt.Sprintf("Step %d", i+1),
		})
	}

	created, err := s.journeys.Create(ctx, journey)
	if err != nil {
		return nil, err
	}

	created.Persona = persona
	for i := range created.Steps {
		created.Steps[i].UserStory = byID[created.Steps[i].UserStoryID]
	}

	if err := s.projects.Touch(ctx, projectID); err != nil {
		return nil, err
	}
	return created, nil
}
