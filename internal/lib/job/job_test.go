package job

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWelcome struct {
	to, url string
	err     error
}

func (f *fakeWelcome) SendWelcomeEmail(to, dashboardURL string) error {
	f.to, f.url = to, dashboardURL
	return f.err
}

func newTestService(sender WelcomeSender) *JobService {
	logger := zerolog.Nop()
	return &JobService{logger: &logger, emails: sender, baseURL: "https://storymap.dev"}
}

func TestNewWelcomeEmailTask(t *testing.T) {
	task, err := NewWelcomeEmailTask("u1", "ada@example.com")
	require.NoError(t, err)

	assert.Equal(t, TaskWelcome, task.Type())

	var p WelcomeEmailPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &p))
	assert.Equal(t, WelcomeEmailPayload{UserID: "u1", To: "ada@example.com"}, p)
}

func TestHandleWelcomeEmailTask(t *testing.T) {
	sender := &fakeWelcome{}
	task, err := NewWelcomeEmailTask("u1", "ada@example.com")
	require.NoError(t, err)

	require.NoError(t, newTestService(sender).mux().ProcessTask(context.Background(), task))
	assert.Equal(t, "ada@example.com", sender.to)
	assert.Equal(t, "https://storymap.dev/dashboard", sender.url)
}

func TestHandleWelcomeEmailTaskErrors(t *testing.T) {
	task, err := NewWelcomeEmailTask("u1", "ada@example.com")
	require.NoError(t, err)

	failing := &fakeWelcome{err: errors.New("boom")}
	assert.Error(t, newTestService(failing).handleWelcomeEmailTask(context.Background(), task))

	assert.Error(t, newTestService(nil).handleWelcomeEmailTask(context.Background(), task))

	bad := asynq.NewTask(TaskWelcome, []byte("{"))
	assert.Error(t, newTestService(failing).handleWelcomeEmailTask(context.Background(), bad))
}
