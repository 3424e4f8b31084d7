package board

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/javaniecampbell/storymap/internal/model"
)

var (
	ErrUnknownStory   = errors.New("board: unknown story")
	ErrUnknownPersona = errors.New("board: unknown persona")
)

type entity struct {
	value   value
	version uint64
	// pending holds unsettled operations in version order.
	pending []*Operation
}

// Store is the local board state. Stories and persona links are tracked as
// separate entities so a type change and a persona move never conflict.
type Store struct {
	mu       sync.Mutex
	version  uint64
	order    []string
	stories  map[string]model.UserStory
	personas []model.Persona
	entities map[entityKey]*entity
}

// NewStore loads the board from a project's stories and personas.
func NewStore(stories []model.UserStory, personas []model.Persona) *Store {
	s := &Store{
		stories:  make(map[string]model.UserStory, len(stories)),
		personas: slices.Clone(personas),
		entities: map[entityKey]*entity{},
	}
	for _, story := range stories {
		s.order = append(s.order, story.ID)
		s.stories[story.ID] = story
		s.entities[entityKey{storyID: story.ID}] = &entity{value: value{Type: story.Type}}
		for _, personaID := range story.PersonaIDs {
			s.entities[entityKey{storyID: story.ID, personaID: personaID}] = &entity{value: value{Attached: true}}
		}
	}
	return s
}

func (s *Store) hasPersona(id string) bool {
	return slices.ContainsFunc(s.personas, func(p model.Persona) bool { return p.ID == id })
}

// view builds the story as currently shown. Callers hold mu.
func (s *Store) view(id string) model.UserStory {
	story := s.stories[id]
	story.Type = s.entities[entityKey{storyID: id}].value.Type
	story.PersonaIDs = []string{}
	for key, e := range s.entities {
		if key.storyID == id && key.personaID != "" && e.value.Attached {
			story.PersonaIDs = append(story.PersonaIDs, key.personaID)
		}
	}
	sort.Strings(story.PersonaIDs)
	return story
}

func (s *Store) Story(id string) (model.UserStory, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.stories[id]; !ok {
		return model.UserStory{}, false
	}
	return s.view(id), true
}

// Stories returns every story in load order.
func (s *Store) Stories() []model.UserStory {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.UserStory, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.view(id))
	}
	return out
}

// Column returns the stories currently of type t.
func (s *Store) Column(t model.StoryType) []model.UserStory {
	var out []model.UserStory
	for _, story := range s.Stories() {
		if story.Type == t {
			out = append(out, story)
		}
	}
	return out
}

// Personas is the unassigned pool.
func (s *Store) Personas() []model.Persona {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.personas)
}

// apply writes op's target value and returns the Done channel of the
// operation it has to wait for, if any.
func (s *Store) apply(op *Operation) (<-chan struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.stories[op.StoryID]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStory, op.StoryID)
	}
	if op.PersonaID != "" && !s.hasPersona(op.PersonaID) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPersona, op.PersonaID)
	}

	e, ok := s.entities[op.key]
	if !ok {
		e = &entity{}
		s.entities[op.key] = e
	}

	s.version++
	op.Version = s.version
	op.rollback = e.value
	e.value = op.target()
	e.version = op.Version

	var wait <-chan struct{}
	if n := len(e.pending); n > 0 {
		wait = e.pending[n-1].Done()
	}
	e.pending = append(e.pending, op)
	return wait, nil
}

// settle merges the outcome of op. A confirmed write is merged only while it
// is the newest for its entity. A failed write is reverted when it is the
// newest, handing that role back to any write still in flight before it;
// otherwise its rollback point moves to the next pending write so a later
// failure restores the last value the server accepted.
func (s *Store) settle(op *Operation, confirmed *model.UserStory, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entities[op.key]
	i := slices.Index(e.pending, op)
	if i < 0 {
		return
	}
	var next *Operation
	if i+1 < len(e.pending) {
		next = e.pending[i+1]
	}
	e.pending = slices.Delete(e.pending, i, i+1)

	latest := e.version == op.Version

	switch {
	case err != nil && latest:
		e.value = op.rollback
		// the write before it is newest again and settles the value
		if i > 0 {
			e.version = e.pending[i-1].Version
		}
	case err != nil && next != nil:
		next.rollback = op.rollback
	case err == nil && latest && confirmed != nil:
		if op.Kind == OpUpdateStoryType {
			e.value.Type = confirmed.Type
		} else {
			e.value.Attached = slices.Contains(confirmed.PersonaIDs, op.PersonaID)
		}
	}
}
