package service

import (
	"github.com/rs/zerolog"

	"github.com/javaniecampbell/storymap/internal/lib/cache"
	"github.com/javaniecampbell/storymap/internal/lib/job"
	"github.com/javaniecampbell/storymap/internal/lib/llm"
	"github.com/javaniecampbell/storymap/internal/lib/password"
	"github.com/javaniecampbell/storymap/internal/repository"
	"github.com/javaniecampbell/storymap/internal/server"
)

type Services struct {
	Auth        *AuthService
	Projects    *ProjectService
	Stories     *StoryService
	Personas    *PersonaService
	Journeys    *JourneyService
	Dashboard   *DashboardService
	Suggestions *SuggestionService
	Job         *job.JobService
}

// Deps is everything services need besides persistence.
type Deps struct {
	Logger      *zerolog.Logger
	Hasher      *password.Hasher
	Jobs        Enqueuer
	LLM         llm.Completer
	Suggestions *cache.SuggestionCache
}

func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	stores := Stores{
		Users:    repos.Users,
		Projects: repos.Projects,
		Stories:  repos.Stories,
		Personas: repos.Personas,
		Journeys: repos.Journeys,
	}

	var jobs Enqueuer
	if s.Job != nil {
		jobs = s.Job.Client
	}

	services := New(stores, Deps{
		Logger:      s.Logger,
		Hasher:      password.NewHasher(s.Config.Auth.PasswordIterations),
		Jobs:        jobs,
		LLM:         s.LLM,
		Suggestions: s.Suggestions,
	})
	services.Job = s.Job

	return services, nil
}

// New wires services over any store implementation.
func New(stores Stores, deps Deps) *Services {
	if deps.Logger == nil {
		nop := zerolog.Nop()
		deps.Logger = &nop
	}
	if deps.Hasher == nil {
		deps.Hasher = password.NewHasher(0)
	}
	if deps.LLM == nil {
		deps.LLM = llm.Unconfigured{}
	}

	return &Services{
		Auth:        NewAuthService(stores.Users, deps.Hasher, deps.Jobs, deps.Logger),
		Projects:    NewProjectService(stores),
		Stories:     NewStoryService(stores),
		Personas:    NewPersonaService(stores),
		Journeys:    NewJourneyService(stores),
		Dashboard:   NewDashboardService(stores),
		Suggestions: NewSuggestionService(deps.LLM, deps.Suggestions, deps.Logger),
	}
}
