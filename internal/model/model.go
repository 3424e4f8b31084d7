// Package model holds the entities shared by the repository, service and
// handler layers.
package model

import (
	"fmt"
	"time"
)

// Base carries the columns every table has.
type Base struct {
	ID        string    `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// StoryType is the board column a story sits in.
type StoryType string

const (
	StoryTypeEpic    StoryType = "EPIC"
	StoryTypeFeature StoryType = "FEATURE"
	StoryTypeStory   StoryType = "STORY"
)

// StoryTypes lists the board columns in display order.
var StoryTypes = []StoryType{StoryTypeEpic, StoryTypeFeature, StoryTypeStory}

func (t StoryType) Valid() bool {
	switch t {
	case StoryTypeEpic, StoryTypeFeature, StoryTypeStory:
		return true
	}
	return false
}

// ParseStoryType accepts exactly EPIC, FEATURE or STORY.
func ParseStoryType(s string) (StoryType, error) {
	t := StoryType(s)
	if !t.Valid() {
		return "", fmt.Errorf("invalid story type %q", s)
	}
	return t, nil
}

type User struct {
	Base
	Email string `json:"email" db:"email"`
}

// Password is the stored credential of a user. Salt and Hash are hex encoded.
type Password struct {
	UserID string `db:"user_id"`
	Salt   string `db:"salt"`
	Hash   string `db:"hash"`
}

type Project struct {
	Base
	UserID      string `json:"userId" db:"user_id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
}

type UserStory struct {
	Base
	ProjectID   string    `json:"projectId" db:"project_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Type        StoryType `json:"type" db:"type"`
	PersonaIDs  []string  `json:"personaIds" db:"persona_ids"`
}

// Persona belongs to a user and, optionally, to one project.
type Persona struct {
	Base
	UserID      string  `json:"userId" db:"user_id"`
	ProjectID   *string `json:"projectId" db:"project_id"`
	Name        string  `json:"name" db:"name"`
	Description string  `json:"description" db:"description"`
}

type Journey struct {
	Base
	ProjectID   string        `json:"projectId" db:"project_id"`
	PersonaID   string        `json:"personaId" db:"persona_id"`
	Name        string        `json:"name" db:"name"`
	Description string        `json:"description" db:"description"`
	Persona     *Persona      `json:"persona,omitempty" db:"-"`
	Steps       []JourneyStep `json:"steps" db:"-"`
}

// JourneyStep is one position in a journey. Order is the index the story had
// in the submitted list.
type JourneyStep struct {
	ID          string     `json:"id" db:"id"`
	JourneyID   string     `json:"journeyId" db:"journey_id"`
	UserStoryID string     `json:"userStoryId" db:"user_story_id"`
	Order       int        `json:"order" db:"step_order"`
	Description string     `json:"description" db:"description"`
	UserStory   *UserStory `json:"userStory,omitempty" db:"-"`
}

// ProjectSummary is a dashboard row.
type ProjectSummary struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	UpdatedAt    time.Time `json:"updatedAt"`
	TotalStories int       `json:"totalStories"`
	EpicCount    int       `json:"epicCount"`
	FeatureCount int       `json:"featureCount"`
	StoryCount   int       `json:"storyCount"`
}

// Count adds one story of type t to the summary.
func (s *ProjectSummary) Count(t StoryType) {
	s.TotalStories++
	switch t {
	case StoryTypeEpic:
		s.EpicCount++
	case StoryTypeFeature:
		s.FeatureCount++
	case StoryTypeStory:
		s.StoryCount++
	}
}

type Dashboard struct {
	ProjectSummaries []ProjectSummary `json:"projectSummaries"`
	TotalProjects    int              `json:"totalProjects"`
	TotalStories     int              `json:"totalStories"`
	TotalPersonas    int              `json:"totalPersonas"`
}
