// Package email sends transactional mail through Resend. Bodies are rendered
// from HTML templates embedded in the binary.
package email

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"

	"github.com/javaniecampbell/storymap/internal/config"
)

// Sender delivers a rendered message.
type Sender interface {
	Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type Client struct {
	sender Sender
	from   string
	logger *zerolog.Logger
}

// NewClient creates a Resend-backed client. Without an API key mail is only
// logged.
func NewClient(cfg *config.Config, logger *zerolog.Logger) *Client {
	var sender Sender
	if cfg.Integration.ResendAPIKey != "" {
		sender = resend.NewClient(cfg.Integration.ResendAPIKey).Emails
	}
	return NewClientWithSender(sender, cfg.Integration.EmailFrom, logger)
}

func NewClientWithSender(sender Sender, from string, logger *zerolog.Logger) *Client {
	return &Client{sender: sender, from: from, logger: logger}
}

// Render executes a template into w.
func Render(w io.Writer, name Template, data map[string]string) error {
	if err := templates.ExecuteTemplate(w, string(name)+".html", data); err != nil {
		return errors.Wrapf(err, "failed to execute email template %s", name)
	}
	return nil
}

// SendEmail renders templateName with data and sends it to a single recipient.
func (c *Client) SendEmail(to, subject string, templateName Template, data map[string]string) error {
	var body bytes.Buffer
	if err := Render(&body, templateName, data); err != nil {
		return err
	}

	if c.sender == nil {
		c.logger.Warn().
			Str("to", to).
			Str("template", string(templateName)).
			Msg("email provider not configured, skipping send")
		return nil
	}

	_, err := c.sender.Send(&resend.SendEmailRequest{
		From:    c.from,
		To:      []string{to},
		Subject: subject,
		Html:    body.String(),
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
