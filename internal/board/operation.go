package board

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/javaniecampbell/storymap/internal/model"
)

type OpKind int

const (
	OpUpdateStoryType OpKind = iota
	OpAttachPersona
	OpDetachPersona
)

func (k OpKind) String() string {
	switch k {
	case OpUpdateStoryType:
		return "updateStoryType"
	case OpAttachPersona:
		return "mapPersonaToStory"
	case OpDetachPersona:
		return "removePersonaFromStory"
	}
	return fmt.Sprintf("OpKind(%d)", int(k))
}

type Status int

const (
	StatusPending Status = iota
	StatusCommitted
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusCommitted:
		return "committed"
	case StatusFailed:
		return "failed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// value is the state of one entity: a story's type or whether a persona is
// attached to a story.
type value struct {
	Type     model.StoryType
	Attached bool
}

type entityKey struct {
	storyID   string
	personaID string // empty for the story itself
}

// Operation is one server request produced by a drop.
type Operation struct {
	ID        string
	Kind      OpKind
	StoryID   string
	PersonaID string
	Type      model.StoryType
	Version   uint64

	key entityKey
	// rollback is the value restored if this write fails while it is the
	// newest one for its entity. Guarded by the Store's mutex.
	rollback value

	mu     sync.Mutex
	status Status
	err    error
	done   chan struct{}
}

func newOperation(kind OpKind, storyID, personaID string, t model.StoryType) *Operation {
	op := &Operation{
		ID:        uuid.NewString(),
		Kind:      kind,
		StoryID:   storyID,
		PersonaID: personaID,
		Type:      t,
		key:       entityKey{storyID: storyID},
		done:      make(chan struct{}),
	}
	if kind != OpUpdateStoryType {
		op.key.personaID = personaID
	}
	return op
}

func (op *Operation) target() value {
	return value{Type: op.Type, Attached: op.Kind == OpAttachPersona}
}

func (op *Operation) Status() Status {
	op.mu.Lock()
	defer op.mu.Unlock()
	return op.status
}

// Err is the failure of a settled operation.
func (op *Operation) Err() error {
	op.mu.Lock()
	defer op.mu.Unlock()
	return op.err
}

// Done is closed once the operation has settled and the Store reflects it.
func (op *Operation) Done() <-chan struct{} {
	return op.done
}

func (op *Operation) finish(err error) {
	op.mu.Lock()
	if err != nil {
		op.status = StatusFailed
		op.err = err
	} else {
		op.status = StatusCommitted
	}
	op.mu.Unlock()
	close(op.done)
}

func (op *Operation) String() string {
	if op.Kind == OpUpdateStoryType {
		return fmt.Sprintf("%s %s %s", op.Kind, op.StoryID, op.Type)
	}
	return fmt.Sprintf("%s %s %s", op.Kind, op.PersonaID, op.StoryID)
}
