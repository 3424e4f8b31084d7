package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/javaniecampbell/storymap/internal/model"
)

type JourneyRepository struct {
	db TxBeginner
}

func NewJourneyRepository(db TxBeginner) *JourneyRepository {
	return &JourneyRepository{db: db}
}

const journeyColumns = `id, project_id, persona_id, name, description, created_at, updated_at`

// Create inserts the journey and its steps in one transaction. Steps keep the
// Order and Description they arrive with.
func (r *JourneyRepository) Create(ctx context.Context, journey *model.Journey) (*model.Journey, error) {
	var created model.Journey
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			INSERT INTO journeys (project_id, persona_id, name, description)
			VALUES ($1, $2, $3, $4)
			RETURNING `+journeyColumns,
			journey.ProjectID, journey.PersonaID, journey.Name, journey.Description)
		if err != nil {
			return err
		}
		created, err = pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[model.Journey])
		if err != nil {
			return err
		}

		created.Steps = make([]model.JourneyStep, 0, len(journey.Steps))
		for _, step := range journey.Steps {
			var stepID string
			err := tx.QueryRow(ctx, `
				INSERT INTO journey_steps (journey_id, user_story_id, step_order, description)
				VALUES ($1, $2, $3, $4)
				RETURNING id`,
				created.ID, step.UserStoryID, step.Order, step.Description).Scan(&stepID)
			if err != nil {
				return err
			}
			step.ID = stepID
			step.JourneyID = created.ID
			created.Steps = append(created.Steps, step)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create journey project_id=%s: %w", journey.ProjectID, err)
	}
	return &created, nil
}

// ListByProject returns the project's journeys with their persona and their
// steps in order, each step carrying its story.
func (r *JourneyRepository) ListByProject(ctx context.Context, projectID string) ([]model.Journey, error) {
	rows, err := r.db.Query(ctx, `
		SELECT j.id, j.project_id, j.persona_id, j.name, j.description, j.created_at, j.updated_at,
			p.id, p.user_id, p.project_id, p.name, p.description, p.created_at, p.updated_at
		FROM journeys j
		JOIN personas p ON p.id = j.persona_id
		WHERE j.project_id = $1
		ORDER BY j.created_at, j.id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list journeys project_id=%s: %w", projectID, err)
	}

	journeys, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Journey, error) {
		var j model.Journey
		var p model.Persona
		err := row.Scan(
			&j.ID, &j.ProjectID, &j.PersonaID, &j.Name, &j.Description, &j.CreatedAt, &j.UpdatedAt,
			&p.ID, &p.UserID, &p.ProjectID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt,
		)
		j.Persona = &p
		j.Steps = []model.JourneyStep{}
		return j, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to collect journeys project_id=%s: %w", projectID, err)
	}
	if len(journeys) == 0 {
		return journeys, nil
	}

	index := make(map[string]int, len(journeys))
	for i, j := range journeys {
		index[j.ID] = i
	}

	stepRows, err := r.db.Query(ctx, `
		SELECT js.id, js.journey_id, js.user_story_id, js.step_order, js.description,
			s.id, s.project_id, s.title, s.description, s.type, s.created_at, s.updated_at
		FROM journey_steps js
		JOIN journeys j ON j.id = js.journey_id
		JOIN user_stories s ON s.id = js.user_story_id
		WHERE j.project_id = $1
		ORDER BY js.journey_id, js.step_order, js.id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list journey steps project_id=%s: %w", projectID, err)
	}

	steps, err := pgx.CollectRows(stepRows, func(row pgx.CollectableRow) (model.JourneyStep, error) {
		var step model.JourneyStep
		var story model.UserStory
		err := row.Scan(
			&step.ID, &step.JourneyID, &step.UserStoryID, &step.Order, &step.Description,
			&story.ID, &story.ProjectID, &story.Title, &story.Description, &story.Type, &story.CreatedAt, &story.UpdatedAt,
		)
		story.PersonaIDs = []string{}
		step.UserStory = &story
		return step, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to collect journey steps project_id=%s: %w", projectID, err)
	}

	for _, step := range steps {
		if i, ok := index[step.JourneyID]; ok {
			journeys[i].Steps = append(journeys[i].Steps, step)
		}
	}
	return journeys, nil
}
