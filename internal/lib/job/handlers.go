package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

func (j *JobService) handleWelcomeEmailTask(ctx context.Context, t *asynq.Task) error {
	var p WelcomeEmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal welcome email payload: %w", err)
	}

	j.logger.Info().
		Str("type", "welcome").
		Str("user_id", p.UserID).
		Msg("Processing welcome email task")

	if j.emails == nil {
		return fmt.Errorf("welcome email task: handlers not initialized")
	}

	if err := j.emails.SendWelcomeEmail(p.To, j.baseURL+"/dashboard"); err != nil {
		j.logger.Error().
			Str("type", "welcome").
			Str("user_id", p.UserID).
			Err(err).
			Msg("Failed to send welcome email")
		return err
	}

	j.logger.Info().
		Str("type", "welcome").
		Str("user_id", p.UserID).
		Msg("Successfully sent welcome email")

	return nil
}
