// Package board keeps a local copy of a project's story map and reconciles
// drag and drop gestures with the server.
//
// A gesture is applied to the Store at once and the matching requests are
// sent in the background. Every local write carries a version; a server
// answer is merged only while its write is still the newest one for that
// entity, and a failed write is rolled back.
package board

import "github.com/javaniecampbell/storymap/internal/model"

// Event is a finished drag gesture: a StoryDrop or a PersonaDrop.
type Event interface {
	isEvent()
}

// StoryDrop moves a story card between type columns. A nil Destination is a
// cancelled gesture.
type StoryDrop struct {
	StoryID     string
	Source      model.StoryType
	Destination *model.StoryType
	// Index is the position inside the destination column. It only matters
	// to the view and is never persisted.
	Index int
}

// PersonaDrop moves a persona chip between the unassigned pool and stories.
type PersonaDrop struct {
	PersonaID   string
	Source      PersonaSlot
	Destination *PersonaSlot
	Index       int
}

func (StoryDrop) isEvent()   {}
func (PersonaDrop) isEvent() {}

// PersonaSlot is where a persona chip sits: the unassigned pool or a story.
type PersonaSlot struct {
	storyID string
}

// Unassigned is the pool listing every persona of the project. Dragging out
// of it copies the persona.
var Unassigned = PersonaSlot{}

func OnStory(storyID string) PersonaSlot {
	return PersonaSlot{storyID: storyID}
}

func (s PersonaSlot) IsUnassigned() bool {
	return s.storyID == ""
}

// StoryID is empty for the unassigned pool.
func (s PersonaSlot) StoryID() string {
	return s.storyID
}

func (s PersonaSlot) String() string {
	if s.IsUnassigned() {
		return "unassigned"
	}
	return "story:" + s.storyID
}

// To returns a pointer to t, for building drop destinations.
func To[T any](t T) *T {
	return &t
}
