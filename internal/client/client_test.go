package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javaniecampbell/storymap/internal/board"
	"github.com/javaniecampbell/storymap/internal/client"
	"github.com/javaniecampbell/storymap/internal/errs"
	"github.com/javaniecampbell/storymap/internal/model"
	"github.com/javaniecampbell/storymap/internal/testutil"
)

var _ board.Persister = (*client.Client)(nil)

func newClient(t *testing.T) (*client.Client, *testutil.App) {
	t.Helper()
	app := testutil.NewApp()
	srv := httptest.NewServer(app.Echo)
	t.Cleanup(srv.Close)

	c, err := client.New(srv.URL + "/")
	require.NoError(t, err)
	return c, app
}

func TestNotAuthenticated(t *testing.T) {
	c, _ := newClient(t)

	_, err := c.Project(context.Background(), "p1")
	assert.ErrorIs(t, err, client.ErrNotAuthenticated)
}

func TestLoginErrors(t *testing.T) {
	c, _ := newClient(t)
	ctx := context.Background()
	require.NoError(t, c.Register(ctx, "ada@example.com", "correct horse"))

	err := c.Login(ctx, "ada@example.com", "wrong")
	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, "Incorrect login", httpErr.Message)

	require.NoError(t, c.Login(ctx, "ada@example.com", "correct horse"))
}

func TestFieldErrors(t *testing.T) {
	c, _ := newClient(t)
	ctx := context.Background()
	require.NoError(t, c.Register(ctx, "ada@example.com", "correct horse"))

	project, err := c.CreateProject(ctx, "Checkout", "")
	require.NoError(t, err)

	_, err = c.CreateStory(ctx, project.ID, "Pay", model.StoryType("TASK"))
	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Contains(t, httpErr.Errors, "type")
}

func TestBoardAgainstServer(t *testing.T) {
	c, app := newClient(t)
	ctx := context.Background()
	require.NoError(t, c.Register(ctx, "ada@example.com", "correct horse"))

	project, err := c.CreateProject(ctx, "Checkout", "Buying things")
	require.NoError(t, err)
	pay, err := c.CreateStory(ctx, project.ID, "Pay", model.StoryTypeEpic)
	require.NoError(t, err)
	refund, err := c.CreateStory(ctx, project.ID, "Refund", model.StoryTypeStory)
	require.NoError(t, err)
	shopper, err := c.CreatePersona(ctx, project.ID, "Shopper")
	require.NoError(t, err)

	detail, err := c.Project(ctx, project.ID)
	require.NoError(t, err)
	r := board.NewReconciler(project.ID, board.NewStore(detail.Stories, detail.Personas), c)

	_, err = r.Drop(ctx, board.StoryDrop{StoryID: pay.ID, Source: model.StoryTypeEpic, Destination: board.To(model.StoryTypeFeature)})
	require.NoError(t, err)
	_, err = r.Drop(ctx, board.PersonaDrop{PersonaID: shopper.ID, Source: board.Unassigned, Destination: board.To(board.OnStory(pay.ID))})
	require.NoError(t, err)
	r.Wait()

	_, err = r.Drop(ctx, board.PersonaDrop{PersonaID: shopper.ID, Source: board.OnStory(pay.ID), Destination: board.To(board.OnStory(refund.ID))})
	require.NoError(t, err)
	r.Wait()

	detail, err = c.Project(ctx, project.ID)
	require.NoError(t, err)
	byID := map[string]model.UserStory{}
	for _, s := range detail.Stories {
		byID[s.ID] = s
	}
	assert.Equal(t, model.StoryTypeFeature, byID[pay.ID].Type)
	assert.Empty(t, byID[pay.ID].PersonaIDs)
	assert.Equal(t, []string{shopper.ID}, byID[refund.ID].PersonaIDs)
	assert.Equal(t, 1, app.Store.Counts()["persona_user_stories"])

	local, ok := r.Store().Story(refund.ID)
	require.True(t, ok)
	assert.Equal(t, []string{shopper.ID}, local.PersonaIDs)
}

func TestRejectedDropIsReverted(t *testing.T) {
	c, _ := newClient(t)
	ctx := context.Background()
	require.NoError(t, c.Register(ctx, "ada@example.com", "correct horse"))

	project, err := c.CreateProject(ctx, "Checkout", "")
	require.NoError(t, err)
	pay, err := c.CreateStory(ctx, project.ID, "Pay", model.StoryTypeEpic)
	require.NoError(t, err)

	// a board for a project the session does not own: every write is a 404
	stories := []model.UserStory{*pay}
	r := board.NewReconciler("someone-elses", board.NewStore(stories, nil), c)

	ops, err := r.Drop(ctx, board.StoryDrop{StoryID: pay.ID, Source: model.StoryTypeEpic, Destination: board.To(model.StoryTypeStory)})
	require.NoError(t, err)
	r.Wait()

	var httpErr *errs.HTTPError
	require.True(t, errors.As(ops[0].Err(), &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.Status)

	local, _ := r.Store().Story(pay.ID)
	assert.Equal(t, model.StoryTypeEpic, local.Type)
}
