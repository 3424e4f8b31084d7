package email

import (
	"bytes"
	"errors"
	"testing"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	sent []*resend.SendEmailRequest
	err  error
}

func (r *recordingSender) Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.sent = append(r.sent, params)
	return &resend.SendEmailResponse{Id: "msg_1"}, nil
}

func TestRenderPreviewData(t *testing.T) {
	for name, data := range PreviewData {
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, name, data), name)
		assert.Contains(t, buf.String(), data["UserName"])
	}
}

func TestSendWelcomeEmail(t *testing.T) {
	sender := &recordingSender{}
	logger := zerolog.Nop()
	c := NewClientWithSender(sender, "Storymap <hello@storymap.dev>", &logger)

	require.NoError(t, c.SendWelcomeEmail("ada@example.com", "https://storymap.dev/dashboard"))
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, "Storymap <hello@storymap.dev>", msg.From)
	assert.Equal(t, []string{"ada@example.com"}, msg.To)
	assert.Equal(t, "Welcome to Storymap!", msg.Subject)
	assert.Contains(t, msg.Html, "https://storymap.dev/dashboard")
}

func TestSendEmailFailure(t *testing.T) {
	logger := zerolog.Nop()
	c := NewClientWithSender(&recordingSender{err: errors.New("rate limited")}, "x@y.z", &logger)

	err := c.SendWelcomeEmail("ada@example.com", "/dashboard")
	assert.ErrorContains(t, err, "failed to send email")
}

func TestSendEmailWithoutProvider(t *testing.T) {
	logger := zerolog.Nop()
	c := NewClientWithSender(nil, "x@y.z", &logger)

	assert.NoError(t, c.SendWelcomeEmail("ada@example.com", "/dashboard"))
	assert.Error(t, Render(&bytes.Buffer{}, Template("missing"), nil))
}
