// Package service holds the business rules between handlers and
// repositories. Every operation on a project first loads it scoped to the
// calling user, so a project owned by someone else reads as not found.
package service

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/javaniecampbell/storymap/internal/model"
)

type UserStore interface {
	Create(ctx context.Context, email, salt, hash string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetPassword(ctx context.Context, userID string) (*model.Password, error)
}

type ProjectStore interface {
	List(ctx context.Context, userID string) ([]model.Project, error)
	Get(ctx context.Context, userID, projectID string) (*model.Project, error)
	Create(ctx context.Context, userID, name, description string) (*model.Project, error)
	Update(ctx context.Context, userID, projectID, name, description string) (*model.Project, error)
	Delete(ctx context.Context, userID, projectID string) error
	Touch(ctx context.Context, projectID string) error
	Count(ctx context.Context, userID string) (int, error)
	Summaries(ctx context.Context, userID string, limit int) ([]model.ProjectSummary, error)
}

type StoryStore interface {
	ListByProject(ctx context.Context, projectID string) ([]model.UserStory, error)
	Get(ctx context.Context, projectID, storyID string) (*model.UserStory, error)
	Create(ctx context.Context, projectID, title, description string, storyType model.StoryType) (*model.UserStory, error)
	Update(ctx context.Context, projectID, storyID, title, description string, storyType model.StoryType) (*model.UserStory, error)
	UpdateType(ctx context.Context, projectID, storyID string, storyType model.StoryType) (*model.UserStory, error)
	Delete(ctx context.Context, projectID, storyID string) error
	AttachPersona(ctx context.Context, storyID, personaID string) error
	DetachPersona(ctx context.Context, storyID, personaID string) error
	CountByUser(ctx context.Context, userID string) (int, error)
}

type PersonaStore interface {
	ListByUser(ctx context.Context, userID string) ([]model.Persona, error)
	ListForProject(ctx context.Context, userID, projectID string) ([]model.Persona, error)
	Get(ctx context.Context, userID, personaID string) (*model.Persona, error)
	Create(ctx context.Context, userID string, projectID *string, name, description string) (*model.Persona, error)
	Delete(ctx context.Context, userID, personaID string) error
	CountByUser(ctx context.Context, userID string) (int, error)
}

type JourneyStore interface {
	Create(ctx context.Context, journey *model.Journey) (*model.Journey, error)
	ListByProject(ctx context.Context, projectID string) ([]model.Journey, error)
}

// Stores is the persistence a Services value is built over.
type Stores struct {
	Users    UserStore
	Projects ProjectStore
	Stories  StoryStore
	Personas PersonaStore
	Journeys JourneyStore
}

// Enqueuer schedules background tasks; *asynq.Client implements it.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// loggerFor prefers the request logger carried by ctx over the service's own.
func loggerFor(ctx context.Context, fallback *zerolog.Logger) *zerolog.Logger {
	if logger := zerolog.Ctx(ctx); logger.GetLevel() != zerolog.Disabled {
		return logger
	}
	return fallback
}
