package repository

import (
	"github.com/javaniecampbell/storymap/internal/server"
)

// Repositories groups every repository so services get them in one value.
type Repositories struct {
	Users    *UserRepository
	Projects *ProjectRepository
	Stories  *StoryRepository
	Personas *PersonaRepository
	Journeys *JourneyRepository
}

func NewRepositories(s *server.Server) *Repositories {
	return New(s.DB.Pool)
}

// New builds the repositories over any pool-like database handle.
func New(db TxBeginner) *Repositories {
	return &Repositories{
		Users:    NewUserRepository(db),
		Projects: NewProjectRepository(db),
		Stories:  NewStoryRepository(db),
		Personas: NewPersonaRepository(db),
		Journeys: NewJourneyRepository(db),
	}
}
