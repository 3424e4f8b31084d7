package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/javaniecampbell/storymap/internal/model"
)

type StoryRepository struct {
	db TxBeginner
}

func NewStoryRepository(db TxBeginner) *StoryRepository {
	return &StoryRepository{db: db}
}

// withPersonaIDs wraps a statement producing user_stories rows as "s" and
// attaches the ids of the personas mapped onto each story.
func withPersonaIDs(inner string) string {
	return `WITH s AS (` + inner + `)
		SELECT s.id, s.project_id, s.title, s.description, s.type, s.created_at, s.updated_at,
			COALESCE((
				SELECT array_agg(pus.persona_id ORDER BY pus.persona_id)
				FROM persona_user_stories pus
				WHERE pus.user_story_id = s.id
			), '{}') AS persona_ids
		FROM s`
}

func collectStory(rows pgx.Rows) (*model.UserStory, error) {
	story, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[model.UserStory])
	if err != nil {
		return nil, notFound(err, "user_stories")
	}
	return &story, nil
}

func (r *StoryRepository) ListByProject(ctx context.Context, projectID string) ([]model.UserStory, error) {
	rows, err := r.db.Query(ctx, withPersonaIDs(`
		SELECT * FROM user_stories WHERE project_id = $1`)+`
		ORDER BY s.created_at, s.id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stories project_id=%s: %w", projectID, err)
	}
	stories, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.UserStory])
	if err != nil {
		return nil, fmt.Errorf("failed to collect stories project_id=%s: %w", projectID, err)
	}
	return stories, nil
}

func (r *StoryRepository) Get(ctx context.Context, projectID, storyID string) (*model.UserStory, error) {
	rows, err := r.db.Query(ctx, withPersonaIDs(`
		SELECT * FROM user_stories WHERE id = $1 AND project_id = $2`), storyID, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get story id=%s: %w", storyID, err)
	}
	return collectStory(rows)
}

func (r *StoryRepository) Create(ctx context.Context, projectID, title, description string, storyType model.StoryType) (*model.UserStory, error) {
	rows, err := r.db.Query(ctx, withPersonaIDs(`
		INSERT INTO user_stories (project_id, title, description, type)
		VALUES ($1, $2, $3, $4)
		RETURNING *`), projectID, title, description, storyType)
	if err != nil {
		return nil, fmt.Errorf("failed to create story project_id=%s: %w", projectID, err)
	}
	return collectStory(rows)
}

func (r *StoryRepository) Update(ctx context.Context, projectID, storyID, title, description string, storyType model.StoryType) (*model.UserStory, error) {
	rows, err := r.db.Query(ctx, withPersonaIDs(`
		UPDATE user_stories
		SET title = $3, description = $4, type = $5
		WHERE id = $1 AND project_id = $2
		RETURNING *`), storyID, projectID, title, description, storyType)
	if err != nil {
		return nil, fmt.Errorf("failed to update story id=%s: %w", storyID, err)
	}
	return collectStory(rows)
}

func (r *StoryRepository) UpdateType(ctx context.Context, projectID, storyID string, storyType model.StoryType) (*model.UserStory, error) {
	rows, err := r.db.Query(ctx, withPersonaIDs(`
		UPDATE user_stories
		SET type = $3
		WHERE id = $1 AND project_id = $2
		RETURNING *`), storyID, projectID, storyType)
	if err != nil {
		return nil, fmt.Errorf("failed to update story type id=%s: %w", storyID, err)
	}
	return collectStory(rows)
}

func (r *StoryRepository) Delete(ctx context.Context, projectID, storyID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM user_stories WHERE id = $1 AND project_id = $2`, storyID, projectID)
	if err != nil {
		return fmt.Errorf("failed to delete story id=%s: %w", storyID, err)
	}
	return expectOne(tag, "user_stories")
}

// AttachPersona maps a persona onto a story. Repeating it is a no-op.
func (r *StoryRepository) AttachPersona(ctx context.Context, storyID, personaID string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO persona_user_stories (persona_id, user_story_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, personaID, storyID)
	if err != nil {
		return fmt.Errorf("failed to attach persona_id=%s story_id=%s: %w", personaID, storyID, err)
	}
	return nil
}

// DetachPersona removes the mapping; removing a missing mapping succeeds.
func (r *StoryRepository) DetachPersona(ctx context.Context, storyID, personaID string) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM persona_user_stories
		WHERE persona_id = $1 AND user_story_id = $2`, personaID, storyID)
	if err != nil {
		return fmt.Errorf("failed to detach persona_id=%s story_id=%s: %w", personaID, storyID, err)
	}
	return nil
}

func (r *StoryRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
		SELECT count(*)
		FROM user_stories s
		JOIN projects p ON p.id = s.project_id
		WHERE p.user_id = $1`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count stories user_id=%s: %w", userID, err)
	}
	return n, nil
}
