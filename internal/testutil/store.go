// Package testutil provides in-memory stand-ins for Postgres, the job queue
// and the language model so services and handlers can be tested without
// infrastructure.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/javaniecampbell/storymap/internal/model"
	"github.com/javaniecampbell/storymap/internal/service"
	"github.com/javaniecampbell/storymap/internal/sqlerr"
)

type link struct{ personaID, storyID string }

// Store keeps every table in maps and mirrors the schema's cascades and
// ownership scoping.
type Store struct {
	mu    sync.Mutex
	clock time.Time

	users     map[string]model.User
	passwords map[string]model.Password
	projects  map[string]model.Project
	stories   map[string]model.UserStory
	personas  map[string]model.Persona
	links     map[link]bool
	journeys  map[string]model.Journey
}

func NewStore() *Store {
	return &Store{
		clock:     time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		users:     map[string]model.User{},
		passwords: map[string]model.Password{},
		projects:  map[string]model.Project{},
		stories:   map[string]model.UserStory{},
		personas:  map[string]model.Persona{},
		links:     map[link]bool{},
		journeys:  map[string]model.Journey{},
	}
}

// Stores exposes the store through the service interfaces.
func (s *Store) Stores() service.Stores {
	return service.Stores{
		Users:    (*users)(s),
		Projects: (*projects)(s),
		Stories:  (*stories)(s),
		Personas: (*personas)(s),
		Journeys: (*journeys)(s),
	}
}

// tick advances the clock so timestamps are strictly increasing.
func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Millisecond)
	return s.clock
}

func (s *Store) base() model.Base {
	now := s.tick()
	return model.Base{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
}

// Counts reports how many rows each table holds.
func (s *Store) Counts() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	steps := 0
	for _, j := range s.journeys {
		steps += len(j.Steps)
	}
	return map[string]int{
		"users":                len(s.users),
		"projects":             len(s.projects),
		"user_stories":         len(s.stories),
		"personas":             len(s.personas),
		"persona_user_stories": len(s.links),
		"journeys":             len(s.journeys),
		"journey_steps":        steps,
	}
}

func (s *Store) personaIDs(storyID string) []string {
	ids := []string{}
	for l := range s.links {
		if l.storyID == storyID {
			ids = append(ids, l.personaID)
		}
	}
	sort.Strings(ids)
	return ids
}

func (s *Store) story(id string) model.UserStory {
	st := s.stories[id]
	st.PersonaIDs = s.personaIDs(id)
	return st
}

func (s *Store) deleteStory(id string) {
	delete(s.stories, id)
	for l := range s.links {
		if l.storyID == id {
			delete(s.links, l)
		}
	}
	for jid, j := range s.journeys {
		kept := j.Steps[:0:0]
		for _, step := range j.Steps {
			if step.UserStoryID != id {
				kept = append(kept, step)
			}
		}
		j.Steps = kept
		s.journeys[jid] = j
	}
}

func (s *Store) deletePersona(id string) {
	delete(s.personas, id)
	for l := range s.links {
		if l.personaID == id {
			delete(s.links, l)
		}
	}
	for jid, j := range s.journeys {
		if j.PersonaID == id {
			delete(s.journeys, jid)
		}
	}
}

type users Store

func (u *users) Create(_ context.Context, email, salt, hash string) (*model.User, error) {
	s := (*Store)(u)
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == email {
			return nil, &pgconn.PgError{
				Code:           "23505",
				Message:        `duplicate key value violates unique constraint "users_email_key"`,
				TableName:      "users",
				ConstraintName: "users_email_key",
			}
		}
	}

	user := model.User{Base: s.base(), Email: email}
	s.users[user.ID] = user
	s.passwords[user.ID] = model.Password{UserID: user.ID, Salt: salt, Hash: hash}
	return &user, nil
}

func (u *users) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s := (*Store)(u)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, sqlerr.NotFound("users")
}

func (u *users) GetByID(_ context.Context, id string) (*model.User, error) {
	s := (*Store)(u)
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, sqlerr.NotFound("users")
	}
	return &user, nil
}

func (u *users) GetPassword(_ context.Context, userID string) (*model.Password, error) {
	s := (*Store)(u)
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.passwords[userID]
	if !ok {
		return nil, sqlerr.NotFound("passwords")
	}
	return &p, nil
}

type projects Store

func (p *projects) List(_ context.Context, userID string) ([]model.Project, error) {
	s := (*Store)(p)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Project{}
	for _, project := range s.projects {
		if project.UserID == userID {
			out = append(out, project)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (p *projects) Get(_ context.Context, userID, projectID string) (*model.Project, error) {
	s := (*Store)(p)
	s.mu.Lock()
	defer s.mu.Unlock()
	project, ok := s.projects[projectID]
	if !ok || project.UserID != userID {
		return nil, sqlerr.NotFound("projects")
	}
	return &project, nil
}

func (p *projects) Create(_ context.Context, userID, name, description string) (*model.Project, error) {
	s := (*Store)(p)
	s.mu.Lock()
	defer s.mu.Unlock()
	project := model.Project{Base: s.base(), UserID: userID, Name: name, Description: description}
	s.projects[project.ID] = project
	return &project, nil
}

func (p *projects) Update(_ context.Context, userID, projectID, name, description string) (*model.Project, error) {
	s := (*Store)(p)
	s.mu.Lock()
	defer s.mu.Unlock()
	project, ok := s.projects[projectID]
	if !ok || project.UserID != userID {
		return nil, sqlerr.NotFound("projects")
	}
	project.Name, project.Description, project.UpdatedAt = name, description, s.tick()
	s.projects[projectID] = project
	return &project, nil
}

func (p *projects) Delete(_ context.Context, userID, projectID string) error {
	s := (*Store)(p)
	s.mu.Lock()
	defer s.mu.Unlock()
	project, ok := s.projects[projectID]
	if !ok || project.UserID != userID {
		return sqlerr.NotFound("projects")
	}
	delete(s.projects, projectID)
	for id, st := range s.stories {
		if st.ProjectID == projectID {
			s.deleteStory(id)
		}
	}
	for id, persona := range s.personas {
		if persona.ProjectID != nil && *persona.ProjectID == projectID {
			s.deletePersona(id)
		}
	}
	for id, j := range s.journeys {
		if j.ProjectID == projectID {
			delete(s.journeys, id)
		}
	}
	return nil
}

func (p *projects) Touch(_ context.Context, projectID string) error {
	s := (*Store)(p)
	s.mu.Lock()
	defer s.mu.Unlock()
	if project, ok := s.projects[projectID]; ok {
		project.UpdatedAt = s.tick()
		s.projects[projectID] = project
	}
	return nil
}

func (p *projects) Count(_ context.Context, userID string) (int, error) {
	list, _ := p.List(context.Background(), userID)
	return len(list), nil
}

func (p *projects) Summaries(_ context.Context, userID string, limit int) ([]model.ProjectSummary, error) {
	s := (*Store)(p)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.ProjectSummary{}
	for _, project := range s.projects {
		if project.UserID != userID {
			continue
		}
		summary := model.ProjectSummary{ID: project.ID, Name: project.Name, UpdatedAt: project.UpdatedAt}
		for _, st := range s.stories {
			if st.ProjectID == project.ID {
				summary.Count(st.Type)
			}
		}
		out = append(out, summary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type stories Store

func (t *stories) ListByProject(_ context.Context, projectID string) ([]model.UserStory, error) {
	s := (*Store)(t)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.UserStory{}
	for id, st := range s.stories {
		if st.ProjectID == projectID {
			out = append(out, s.story(id))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (t *stories) Get(_ context.Context, projectID, storyID string) (*model.UserStory, error) {
	s := (*Store)(t)
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stories[storyID]
	if !ok || st.ProjectID != projectID {
		return nil, sqlerr.NotFound("user_stories")
	}
	st = s.story(storyID)
	return &st, nil
}

func (t *stories) Create(_ context.Context, projectID, title, description string, storyType model.StoryType) (*model.UserStory, error) {
	s := (*Store)(t)
	s.mu.Lock()
	defer s.mu.Unlock()
	st := model.UserStory{Base: s.base(), ProjectID: projectID, Title: title, Description: description, Type: storyType, PersonaIDs: []string{}}
	s.stories[st.ID] = st
	return &st, nil
}

func (t *stories) Update(_ context.Context, projectID, storyID, title, description string, storyType model.StoryType) (*model.UserStory, error) {
	s := (*Store)(t)
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stories[storyID]
	if !ok || st.ProjectID != projectID {
		return nil, sqlerr.NotFound("user_stories")
	}
	st.Title, st.Description, st.Type, st.UpdatedAt = title, description, storyType, s.tick()
	s.stories[storyID] = st
	st = s.story(storyID)
	return &st, nil
}

func (t *stories) UpdateType(_ context.Context, projectID, storyID string, storyType model.StoryType) (*model.UserStory, error) {
	s := (*Store)(t)
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stories[storyID]
	if !ok || st.ProjectID != projectID {
		return nil, sqlerr.NotFound("user_stories")
	}
	st.Type, st.UpdatedAt = storyType, s.tick()
	s.stories[storyID] = st
	st = s.story(storyID)
	return &st, nil
}

func (t *stories) Delete(_ context.Context, projectID, storyID string) error {
	s := (*Store)(t)
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stories[storyID]
	if !ok || st.ProjectID != projectID {
		return sqlerr.NotFound("user_stories")
	}
	s.deleteStory(storyID)
	return nil
}

func (t *stories) AttachPersona(_ context.Context, storyID, personaID string) error {
	s := (*Store)(t)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.links[link{personaID: personaID, storyID: storyID}] = true
	return nil
}

func (t *stories) DetachPersona(_ context.Context, storyID, personaID string) error {
	s := (*Store)(t)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.links, link{personaID: personaID, storyID: storyID})
	return nil
}

func (t *stories) CountByUser(_ context.Context, userID string) (int, error) {
	s := (*Store)(t)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, st := range s.stories {
		if s.projects[st.ProjectID].UserID == userID {
			n++
		}
	}
	return n, nil
}

type personas Store

func (p *personas) list(userID string, keep func(model.Persona) bool) []model.Persona {
	s := (*Store)(p)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Persona{}
	for _, persona := range s.personas {
		if persona.UserID == userID && keep(persona) {
			out = append(out, persona)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (p *personas) ListByUser(_ context.Context, userID string) ([]model.Persona, error) {
	return p.list(userID, func(model.Persona) bool { return true }), nil
}

func (p *personas) ListForProject(_ context.Context, userID, projectID string) ([]model.Persona, error) {
	return p.list(userID, func(persona model.Persona) bool {
		return persona.ProjectID == nil || *persona.ProjectID == projectID
	}), nil
}

func (p *personas) Get(_ context.Context, userID, personaID string) (*model.Persona, error) {
	s := (*Store)(p)
	s.mu.Lock()
	defer s.mu.Unlock()
	persona, ok := s.personas[personaID]
	if !ok || persona.UserID != userID {
		return nil, sqlerr.NotFound("personas")
	}
	return &persona, nil
}

func (p *personas) Create(_ context.Context, userID string, projectID *string, name, description string) (*model.Persona, error) {
	s := (*Store)(p)
	s.mu.Lock()
	defer s.mu.Unlock()
	persona := model.Persona{Base: s.base(), UserID: userID, ProjectID: projectID, Name: name, Description: description}
	s.personas[persona.ID] = persona
	return &persona, nil
}

func (p *personas) Delete(_ context.Context, userID, personaID string) error {
	s := (*Store)(p)
	s.mu.Lock()
	defer s.mu.Unlock()
	persona, ok := s.personas[personaID]
	if !ok || persona.UserID != userID {
		return sqlerr.NotFound("personas")
	}
	s.deletePersona(personaID)
	return nil
}

func (p *personas) CountByUser(ctx context.Context, userID string) (int, error) {
	list, _ := p.ListByUser(ctx, userID)
	return len(list), nil
}

type journeys Store

func (j *journeys) Create(_ context.Context, journey *model.Journey) (*model.Journey, error) {
	s := (*Store)(j)
	s.mu.Lock()
	defer s.mu.Unlock()
	created := *journey
	created.Base = s.base()
	created.Persona = nil
	created.Steps = make([]model.JourneyStep, len(journey.Steps))
	for i, step := range journey.Steps {
		step.ID = uuid.NewString()
		step.JourneyID = created.ID
		step.UserStory = nil
		created.Steps[i] = step
	}
	s.journeys[created.ID] = created

	out := created
	out.Steps = append([]model.JourneyStep(nil), created.Steps...)
	return &out, nil
}

func (j *journeys) ListByProject(_ context.Context, projectID string) ([]model.Journey, error) {
	s := (*Store)(j)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Journey{}
	for _, journey := range s.journeys {
		if journey.ProjectID != projectID {
			continue
		}
		if persona, ok := s.personas[journey.PersonaID]; ok {
			journey.Persona = &persona
		}
		steps := make([]model.JourneyStep, len(journey.Steps))
		for i, step := range journey.Steps {
			st := s.story(step.UserStoryID)
			step.UserStory = &st
			steps[i] = step
		}
		sort.SliceStable(steps, func(a, b int) bool { return steps[a].Order < steps[b].Order })
		journey.Steps = steps
		out = append(out, journey)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.Before(out[b].CreatedAt) })
	return out, nil
}
