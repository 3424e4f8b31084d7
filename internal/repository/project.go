package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/javaniecampbell/storymap/internal/model"
)

type ProjectRepository struct {
	db TxBeginner
}

func NewProjectRepository(db TxBeginner) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `id, user_id, name, description, created_at, updated_at`

func (r *ProjectRepository) List(ctx context.Context, userID string) ([]model.Project, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+projectColumns+`
		FROM projects
		WHERE user_id = $1
		ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects user_id=%s: %w", userID, err)
	}
	projects, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Project])
	if err != nil {
		return nil, fmt.Errorf("failed to collect projects user_id=%s: %w", userID, err)
	}
	return projects, nil
}

func (r *ProjectRepository) Get(ctx context.Context, userID, projectID string) (*model.Project, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+projectColumns+`
		FROM projects
		WHERE id = $1 AND user_id = $2`, projectID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get project id=%s: %w", projectID, err)
	}
	project, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[model.Project])
	if err != nil {
		return nil, notFound(err, "projects")
	}
	return &project, nil
}

func (r *ProjectRepository) Create(ctx context.Context, userID, name, description string) (*model.Project, error) {
	rows, err := r.db.Query(ctx, `
		INSERT INTO projects (user_id, name, description)
		VALUES ($1, $2, $3)
		RETURNING `+projectColumns, userID, name, description)
	if err != nil {
		return nil, fmt.Errorf("failed to create project user_id=%s: %w", userID, err)
	}
	project, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[model.Project])
	if err != nil {
		return nil, fmt.Errorf("failed to create project user_id=%s: %w", userID, err)
	}
	return &project, nil
}

func (r *ProjectRepository) Update(ctx context.Context, userID, projectID, name, description string) (*model.Project, error) {
	rows, err := r.db.Query(ctx, `
		UPDATE projects
		SET name = $3, description = $4
		WHERE id = $1 AND user_id = $2
		RETURNING `+projectColumns, projectID, userID, name, description)
	if err != nil {
		return nil, fmt.Errorf("failed to update project id=%s: %w", projectID, err)
	}
	project, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[model.Project])
	if err != nil {
		return nil, notFound(err, "projects")
	}
	return &project, nil
}

// Delete removes the project; stories, personas and journeys go with it
// through ON DELETE CASCADE.
func (r *ProjectRepository) Delete(ctx context.Context, userID, projectID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1 AND user_id = $2`, projectID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete project id=%s: %w", projectID, err)
	}
	return expectOne(tag, "projects")
}

// Touch bumps updated_at so the dashboard sees recent board activity.
func (r *ProjectRepository) Touch(ctx context.Context, projectID string) error {
	_, err := r.db.Exec(ctx, `UPDATE projects SET updated_at = now() WHERE id = $1`, projectID)
	if err != nil {
		return fmt.Errorf("failed to touch project id=%s: %w", projectID, err)
	}
	return nil
}

func (r *ProjectRepository) Count(ctx context.Context, userID string) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM projects WHERE user_id = $1`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count projects user_id=%s: %w", userID, err)
	}
	return n, nil
}

// Summaries returns the most recently updated projects with story counts.
func (r *ProjectRepository) Summaries(ctx context.Context, userID string, limit int) ([]model.ProjectSummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT p.id, p.name, p.updated_at,
			count(s.id) AS total_stories,
			count(s.id) FILTER (WHERE s.type = 'EPIC') AS epic_count,
			count(s.id) FILTER (WHERE s.type = 'FEATURE') AS feature_count,
			count(s.id) FILTER (WHERE s.type = 'STORY') AS story_count
		FROM projects p
		LEFT JOIN user_stories s ON s.project_id = p.id
		WHERE p.user_id = $1
		GROUP BY p.id
		ORDER BY p.updated_at DESC, p.id
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize projects user_id=%s: %w", userID, err)
	}

	summaries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.ProjectSummary, error) {
		var s model.ProjectSummary
		err := row.Scan(&s.ID, &s.Name, &s.UpdatedAt, &s.TotalStories, &s.EpicCount, &s.FeatureCount, &s.StoryCount)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to collect project summaries user_id=%s: %w", userID, err)
	}
	return summaries, nil
}
