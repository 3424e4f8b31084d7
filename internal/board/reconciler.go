package board

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/javaniecampbell/storymap/internal/model"
)

// Persister sends board changes to the server. Each call answers with the
// story as the server stored it.
type Persister interface {
	UpdateStoryType(ctx context.Context, projectID, storyID string, t model.StoryType) (*model.UserStory, error)
	AttachPersona(ctx context.Context, projectID, storyID, personaID string) (*model.UserStory, error)
	DetachPersona(ctx context.Context, projectID, storyID, personaID string) (*model.UserStory, error)
}

var ErrInvalidType = errors.New("board: invalid story type")

type Option func(*Reconciler)

// WithOnSettle registers fn to run after every operation settles. It is
// called from the operation's goroutine.
func WithOnSettle(fn func(*Operation)) Option {
	return func(r *Reconciler) { r.onSettle = fn }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(r *Reconciler) { r.logger = logger }
}

// Reconciler turns drops into optimistic Store writes and server requests.
// Requests for the same entity are sent one after another in the order the
// writes were made; requests for different entities run concurrently.
type Reconciler struct {
	projectID string
	store     *Store
	persister Persister
	onSettle  func(*Operation)
	logger    zerolog.Logger
	wg        sync.WaitGroup
}

func NewReconciler(projectID string, store *Store, persister Persister, opts ...Option) *Reconciler {
	r := &Reconciler{
		projectID: projectID,
		store:     store,
		persister: persister,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Reconciler) Store() *Store {
	return r.store
}

// Drop applies ev locally and starts the requests that persist it. It
// returns without waiting for them; a cancelled or same-place drop yields
// no operations.
func (r *Reconciler) Drop(ctx context.Context, ev Event) ([]*Operation, error) {
	var ops []*Operation

	switch ev := ev.(type) {
	case StoryDrop:
		if ev.Destination == nil || *ev.Destination == ev.Source {
			return nil, nil
		}
		if !ev.Destination.Valid() {
			return nil, ErrInvalidType
		}
		ops = append(ops, newOperation(OpUpdateStoryType, ev.StoryID, "", *ev.Destination))

	case PersonaDrop:
		if ev.Destination == nil || *ev.Destination == ev.Source {
			return nil, nil
		}
		if !ev.Source.IsUnassigned() {
			ops = append(ops, newOperation(OpDetachPersona, ev.Source.StoryID(), ev.PersonaID, ""))
		}
		if !ev.Destination.IsUnassigned() {
			ops = append(ops, newOperation(OpAttachPersona, ev.Destination.StoryID(), ev.PersonaID, ""))
		}

	default:
		return nil, nil
	}

	waits := make([]<-chan struct{}, len(ops))
	for i, op := range ops {
		wait, err := r.store.apply(op)
		if err != nil {
			// undo the writes of this drop that were already applied
			for _, applied := range ops[:i] {
				r.store.settle(applied, nil, err)
				applied.finish(err)
			}
			return nil, err
		}
		waits[i] = wait
	}

	for i, op := range ops {
		r.wg.Add(1)
		go r.run(ctx, op, waits[i])
	}
	return ops, nil
}

func (r *Reconciler) run(ctx context.Context, op *Operation, wait <-chan struct{}) {
	defer r.wg.Done()

	var (
		story *model.UserStory
		err   error
	)

	if wait != nil {
		select {
		case <-wait:
		case <-ctx.Done():
			err = ctx.Err()
		}
	}
	if err == nil {
		story, err = r.send(ctx, op)
	}

	r.store.settle(op, story, err)
	op.finish(err)

	if err != nil {
		r.logger.Warn().
			Err(err).
			Str("operation", op.String()).
			Uint64("version", op.Version).
			Msg("board change rejected, reverted")
	} else {
		r.logger.Debug().
			Str("operation", op.String()).
			Uint64("version", op.Version).
			Msg("board change committed")
	}

	if r.onSettle != nil {
		r.onSettle(op)
	}
}

func (r *Reconciler) send(ctx context.Context, op *Operation) (*model.UserStory, error) {
	switch op.Kind {
	case OpUpdateStoryType:
		return r.persister.UpdateStoryType(ctx, r.projectID, op.StoryID, op.Type)
	case OpAttachPersona:
		return r.persister.AttachPersona(ctx, r.projectID, op.StoryID, op.PersonaID)
	default:
		return r.persister.DetachPersona(ctx, r.projectID, op.StoryID, op.PersonaID)
	}
}

// Wait blocks until every started operation has settled.
func (r *Reconciler) Wait() {
	r.wg.Wait()
}
