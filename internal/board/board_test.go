package board

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/javaniecampbell/storymap/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type gate struct {
	arrived chan struct{}
	release chan struct{}
}

// fakeServer answers like the project endpoints. Calls can be held at a
// gate or failed by their description.
type fakeServer struct {
	mu       sync.Mutex
	types    map[string]model.StoryType
	links    map[string][]string
	calls    []string
	gates    map[string]*gate
	failures map[string]error
}

func newFakeServer(stories []model.UserStory) *fakeServer {
	f := &fakeServer{
		types:    map[string]model.StoryType{},
		links:    map[string][]string{},
		gates:    map[string]*gate{},
		failures: map[string]error{},
	}
	for _, s := range stories {
		f.types[s.ID] = s.Type
		f.links[s.ID] = slices.Clone(s.PersonaIDs)
	}
	return f
}

// hold makes the call described by name block until release is called.
func (f *fakeServer) hold(name string) (arrived <-chan struct{}, release func()) {
	g := &gate{arrived: make(chan struct{}), release: make(chan struct{})}
	f.mu.Lock()
	f.gates[name] = g
	f.mu.Unlock()
	return g.arrived, func() { close(g.release) }
}

func (f *fakeServer) fail(name string, err error) {
	f.mu.Lock()
	f.failures[name] = err
	f.mu.Unlock()
}

func (f *fakeServer) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

func (f *fakeServer) call(name, storyID string, change func()) (*model.UserStory, error) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	g, failure := f.gates[name], f.failures[name]
	f.mu.Unlock()

	if g != nil {
		close(g.arrived)
		<-g.release
	}
	if failure != nil {
		return nil, failure
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	change()
	ids := slices.Clone(f.links[storyID])
	sort.Strings(ids)
	return &model.UserStory{Base: model.Base{ID: storyID}, Type: f.types[storyID], PersonaIDs: ids}, nil
}

func (f *fakeServer) UpdateStoryType(_ context.Context, _, storyID string, t model.StoryType) (*model.UserStory, error) {
	return f.call(fmt.Sprintf("type %s %s", storyID, t), storyID, func() { f.types[storyID] = t })
}

func (f *fakeServer) AttachPersona(_ context.Context, _, storyID, personaID string) (*model.UserStory, error) {
	return f.call(fmt.Sprintf("attach %s %s", personaID, storyID), storyID, func() {
		if !slices.Contains(f.links[storyID], personaID) {
			f.links[storyID] = append(f.links[storyID], personaID)
		}
	})
}

func (f *fakeServer) DetachPersona(_ context.Context, _, storyID, personaID string) (*model.UserStory, error) {
	return f.call(fmt.Sprintf("detach %s %s", personaID, storyID), storyID, func() {
		f.links[storyID] = slices.DeleteFunc(f.links[storyID], func(id string) bool { return id == personaID })
	})
}

func story(id string, t model.StoryType, personaIDs ...string) model.UserStory {
	if personaIDs == nil {
		personaIDs = []string{}
	}
	return model.UserStory{Base: model.Base{ID: id}, ProjectID: "p1", Title: id, Type: t, PersonaIDs: personaIDs}
}

func setup(t *testing.T, stories ...model.UserStory) (*Reconciler, *fakeServer) {
	t.Helper()
	personas := []model.Persona{
		{Base: model.Base{ID: "alice"}, Name: "Alice"},
		{Base: model.Base{ID: "bob"}, Name: "Bob"},
	}
	server := newFakeServer(stories)
	r := NewReconciler("p1", NewStore(stories, personas), server)
	t.Cleanup(r.Wait)
	return r, server
}

func typeOf(t *testing.T, r *Reconciler, id string) model.StoryType {
	t.Helper()
	s, ok := r.Store().Story(id)
	require.True(t, ok)
	return s.Type
}

func personasOf(t *testing.T, r *Reconciler, id string) []string {
	t.Helper()
	s, ok := r.Store().Story(id)
	require.True(t, ok)
	return s.PersonaIDs
}

func TestCancelledDropChangesNothing(t *testing.T) {
	r, server := setup(t, story("s1", model.StoryTypeEpic, "alice"))
	before := r.Store().Stories()

	ops, err := r.Drop(context.Background(), StoryDrop{StoryID: "s1", Source: model.StoryTypeEpic})
	require.NoError(t, err)
	assert.Empty(t, ops)

	ops, err = r.Drop(context.Background(), PersonaDrop{PersonaID: "alice", Source: OnStory("s1")})
	require.NoError(t, err)
	assert.Empty(t, ops)

	r.Wait()
	assert.Empty(t, cmp.Diff(before, r.Store().Stories()))
	assert.Empty(t, server.Calls())
}

func TestDropInPlaceIsNotPersisted(t *testing.T) {
	r, server := setup(t, story("s1", model.StoryTypeFeature, "alice"))

	ops, err := r.Drop(context.Background(), StoryDrop{
		StoryID:     "s1",
		Source:      model.StoryTypeFeature,
		Destination: To(model.StoryTypeFeature),
		Index:       3,
	})
	require.NoError(t, err)
	assert.Empty(t, ops)

	ops, err = r.Drop(context.Background(), PersonaDrop{
		PersonaID:   "alice",
		Source:      OnStory("s1"),
		Destination: To(OnStory("s1")),
		Index:       1,
	})
	require.NoError(t, err)
	assert.Empty(t, ops)

	r.Wait()
	assert.Empty(t, server.Calls())
}

func TestStoryDropPersists(t *testing.T) {
	r, server := setup(t, story("s1", model.StoryTypeEpic), story("s2", model.StoryTypeStory))
	arrived, release := server.hold("type s1 FEATURE")

	ops, err := r.Drop(context.Background(), StoryDrop{
		StoryID:     "s1",
		Source:      model.StoryTypeEpic,
		Destination: To(model.StoryTypeFeature),
	})
	require.NoError(t, err)
	require.Len(t, ops, 1)

	// applied before the server has answered
	<-arrived
	assert.Equal(t, model.StoryTypeFeature, typeOf(t, r, "s1"))
	assert.Equal(t, StatusPending, ops[0].Status())
	assert.Len(t, r.Store().Column(model.StoryTypeFeature), 1)

	release()
	r.Wait()
	assert.Equal(t, StatusCommitted, ops[0].Status())
	assert.Equal(t, []string{"type s1 FEATURE"}, server.Calls())
	assert.Equal(t, model.StoryTypeFeature, typeOf(t, r, "s1"))
}

func TestInvalidDestinationType(t *testing.T) {
	r, server := setup(t, story("s1", model.StoryTypeEpic))

	_, err := r.Drop(context.Background(), StoryDrop{StoryID: "s1", Source: model.StoryTypeEpic, Destination: To(model.StoryType("TASK"))})
	assert.ErrorIs(t, err, ErrInvalidType)

	_, err = r.Drop(context.Background(), StoryDrop{StoryID: "nope", Source: model.StoryTypeEpic, Destination: To(model.StoryTypeStory)})
	assert.ErrorIs(t, err, ErrUnknownStory)

	assert.Empty(t, server.Calls())
}

func TestPersonaFromPoolAndBack(t *testing.T) {
	r, server := setup(t, story("s1", model.StoryTypeStory))
	ctx := context.Background()

	ops, err := r.Drop(ctx, PersonaDrop{PersonaID: "alice", Source: Unassigned, Destination: To(OnStory("s1"))})
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, []string{"alice"}, personasOf(t, r, "s1"))

	r.Wait()
	assert.Equal(t, []string{"attach alice s1"}, server.Calls())
	assert.Equal(t, []string{"alice"}, server.links["s1"])
	// the pool is a palette: alice is still offered
	assert.Len(t, r.Store().Personas(), 2)

	ops, err = r.Drop(ctx, PersonaDrop{PersonaID: "alice", Source: OnStory("s1"), Destination: To(Unassigned)})
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, OpDetachPersona, ops[0].Kind)
	assert.Empty(t, personasOf(t, r, "s1"))

	r.Wait()
	assert.Empty(t, server.links["s1"])
}

func TestPersonaBetweenStoriesFailsIndependently(t *testing.T) {
	r, server := setup(t, story("s1", model.StoryTypeStory, "bob"), story("s2", model.StoryTypeStory))

	detachArrived, releaseDetach := server.hold("detach bob s1")
	server.fail("detach bob s1", errors.New("boom"))

	ops, err := r.Drop(context.Background(), PersonaDrop{PersonaID: "bob", Source: OnStory("s1"), Destination: To(OnStory("s2"))})
	require.NoError(t, err)
	require.Len(t, ops, 2)

	<-detachArrived
	// the attach does not wait for the detach
	<-ops[1].Done()
	assert.Equal(t, StatusCommitted, ops[1].Status())
	assert.Empty(t, personasOf(t, r, "s1"))

	releaseDetach()
	r.Wait()

	assert.Equal(t, StatusFailed, ops[0].Status())
	assert.EqualError(t, ops[0].Err(), "boom")
	assert.Equal(t, []string{"bob"}, personasOf(t, r, "s1"))
	assert.Equal(t, []string{"bob"}, personasOf(t, r, "s2"))
}

func TestFailedWriteIsReverted(t *testing.T) {
	stories := []model.UserStory{story("s1", model.StoryTypeEpic)}
	server := newFakeServer(stories)
	server.fail("type s1 STORY", errors.New("unavailable"))

	var (
		mu      sync.Mutex
		settled []Status
	)
	r := NewReconciler("p1", NewStore(stories, nil), server, WithOnSettle(func(op *Operation) {
		mu.Lock()
		settled = append(settled, op.Status())
		mu.Unlock()
	}))

	ops, err := r.Drop(context.Background(), StoryDrop{StoryID: "s1", Source: model.StoryTypeEpic, Destination: To(model.StoryTypeStory)})
	require.NoError(t, err)
	r.Wait()

	assert.Equal(t, model.StoryTypeEpic, typeOf(t, r, "s1"))
	assert.EqualError(t, ops[0].Err(), "unavailable")
	assert.Equal(t, []Status{StatusFailed}, settled)
}

func TestSameStoryWritesAreSequenced(t *testing.T) {
	r, server := setup(t, story("s1", model.StoryTypeEpic))
	ctx := context.Background()
	arrived, release := server.hold("type s1 FEATURE")

	first, err := r.Drop(ctx, StoryDrop{StoryID: "s1", Source: model.StoryTypeEpic, Destination: To(model.StoryTypeFeature)})
	require.NoError(t, err)
	<-arrived

	second, err := r.Drop(ctx, StoryDrop{StoryID: "s1", Source: model.StoryTypeFeature, Destination: To(model.StoryTypeStory)})
	require.NoError(t, err)
	assert.Less(t, first[0].Version, second[0].Version)

	// the second request waits for the first to settle
	assert.Equal(t, []string{"type s1 FEATURE"}, server.Calls())

	release()
	r.Wait()

	assert.Equal(t, []string{"type s1 FEATURE", "type s1 STORY"}, server.Calls())
	assert.Equal(t, model.StoryTypeStory, server.types["s1"])
	assert.Equal(t, model.StoryTypeStory, typeOf(t, r, "s1"))
}

func TestSupersededResponseIsIgnored(t *testing.T) {
	r, server := setup(t, story("s1", model.StoryTypeEpic))
	ctx := context.Background()
	firstArrived, releaseFirst := server.hold("type s1 FEATURE")
	secondArrived, releaseSecond := server.hold("type s1 STORY")

	first, err := r.Drop(ctx, StoryDrop{StoryID: "s1", Source: model.StoryTypeEpic, Destination: To(model.StoryTypeFeature)})
	require.NoError(t, err)
	<-firstArrived

	_, err = r.Drop(ctx, StoryDrop{StoryID: "s1", Source: model.StoryTypeFeature, Destination: To(model.StoryTypeStory)})
	require.NoError(t, err)

	releaseFirst()
	<-first[0].Done()
	<-secondArrived

	// the server answered FEATURE but STORY is the newer local write
	assert.Equal(t, StatusCommitted, first[0].Status())
	assert.Equal(t, model.StoryTypeStory, typeOf(t, r, "s1"))

	releaseSecond()
	r.Wait()
	assert.Equal(t, model.StoryTypeStory, typeOf(t, r, "s1"))
}

func TestFailureFoldsIntoNextWrite(t *testing.T) {
	r, server := setup(t, story("s1", model.StoryTypeEpic))
	ctx := context.Background()
	arrived, release := server.hold("type s1 FEATURE")
	server.fail("type s1 FEATURE", errors.New("first failed"))
	server.fail("type s1 STORY", errors.New("second failed"))

	first, err := r.Drop(ctx, StoryDrop{StoryID: "s1", Source: model.StoryTypeEpic, Destination: To(model.StoryTypeFeature)})
	require.NoError(t, err)
	<-arrived

	second, err := r.Drop(ctx, StoryDrop{StoryID: "s1", Source: model.StoryTypeFeature, Destination: To(model.StoryTypeStory)})
	require.NoError(t, err)

	release()
	<-first[0].Done()
	// a newer write exists, so the first failure leaves it in place
	assert.Equal(t, StatusFailed, first[0].Status())

	r.Wait()
	assert.Equal(t, StatusFailed, second[0].Status())
	assert.Equal(t, model.StoryTypeEpic, typeOf(t, r, "s1"))
}

func TestFailureAfterCommitRestoresCommittedValue(t *testing.T) {
	r, server := setup(t, story("s1", model.StoryTypeEpic))
	ctx := context.Background()
	server.fail("type s1 STORY", errors.New("rejected"))

	_, err := r.Drop(ctx, StoryDrop{StoryID: "s1", Source: model.StoryTypeEpic, Destination: To(model.StoryTypeFeature)})
	require.NoError(t, err)
	_, err = r.Drop(ctx, StoryDrop{StoryID: "s1", Source: model.StoryTypeFeature, Destination: To(model.StoryTypeStory)})
	require.NoError(t, err)

	r.Wait()
	assert.Equal(t, model.StoryTypeFeature, typeOf(t, r, "s1"))
	assert.Equal(t, model.StoryTypeFeature, server.types["s1"])
}

func TestCancelledContextFailsQueuedWrite(t *testing.T) {
	r, server := setup(t, story("s1", model.StoryTypeEpic))
	arrived, release := server.hold("type s1 FEATURE")

	_, err := r.Drop(context.Background(), StoryDrop{StoryID: "s1", Source: model.StoryTypeEpic, Destination: To(model.StoryTypeFeature)})
	require.NoError(t, err)
	<-arrived

	ctx, cancel := context.WithCancel(context.Background())
	second, err := r.Drop(ctx, StoryDrop{StoryID: "s1", Source: model.StoryTypeFeature, Destination: To(model.StoryTypeStory)})
	require.NoError(t, err)
	cancel()

	<-second[0].Done()
	assert.ErrorIs(t, second[0].Err(), context.Canceled)

	release()
	r.Wait()
	assert.Equal(t, []string{"type s1 FEATURE"}, server.Calls())
	assert.Equal(t, model.StoryTypeFeature, typeOf(t, r, "s1"))
}

func TestCancelledWriteLeavesEarlierFailureToRevert(t *testing.T) {
	r, server := setup(t, story("s1", model.StoryTypeEpic))
	arrived, release := server.hold("type s1 FEATURE")
	server.fail("type s1 FEATURE", errors.New("rejected"))

	first, err := r.Drop(context.Background(), StoryDrop{StoryID: "s1", Source: model.StoryTypeEpic, Destination: To(model.StoryTypeFeature)})
	require.NoError(t, err)
	<-arrived

	ctx, cancel := context.WithCancel(context.Background())
	second, err := r.Drop(ctx, StoryDrop{StoryID: "s1", Source: model.StoryTypeFeature, Destination: To(model.StoryTypeStory)})
	require.NoError(t, err)
	cancel()
	<-second[0].Done()
	assert.Equal(t, model.StoryTypeFeature, typeOf(t, r, "s1"))

	release()
	r.Wait()
	assert.Equal(t, StatusFailed, first[0].Status())
	assert.Equal(t, []string{"type s1 FEATURE"}, server.Calls())
	assert.Equal(t, model.StoryTypeEpic, typeOf(t, r, "s1"))
}
