package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/javaniecampbell/storymap/internal/model"
)

type PersonaRepository struct {
	db TxBeginner
}

func NewPersonaRepository(db TxBeginner) *PersonaRepository {
	return &PersonaRepository{db: db}
}

const personaColumns = `id, user_id, project_id, name, description, created_at, updated_at`

func (r *PersonaRepository) ListByUser(ctx context.Context, userID string) ([]model.Persona, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+personaColumns+`
		FROM personas
		WHERE user_id = $1
		ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list personas user_id=%s: %w", userID, err)
	}
	personas, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Persona])
	if err != nil {
		return nil, fmt.Errorf("failed to collect personas user_id=%s: %w", userID, err)
	}
	return personas, nil
}

// ListForProject returns the project's personas plus the user's personas that
// are not tied to any project.
func (r *PersonaRepository) ListForProject(ctx context.Context, userID, projectID string) ([]model.Persona, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+personaColumns+`
		FROM personas
		WHERE user_id = $1 AND (project_id = $2 OR project_id IS NULL)
		ORDER BY created_at, id`, userID, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list personas project_id=%s: %w", projectID, err)
	}
	personas, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Persona])
	if err != nil {
		return nil, fmt.Errorf("failed to collect personas project_id=%s: %w", projectID, err)
	}
	return personas, nil
}

func (r *PersonaRepository) Get(ctx context.Context, userID, personaID string) (*model.Persona, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+personaColumns+`
		FROM personas
		WHERE id = $1 AND user_id = $2`, personaID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get persona id=%s: %w", personaID, err)
	}
	persona, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[model.Persona])
	if err != nil {
		return nil, notFound(err, "personas")
	}
	return &persona, nil
}

func (r *PersonaRepository) Create(ctx context.Context, userID string, projectID *string, name, description string) (*model.Persona, error) {
	rows, err := r.db.Query(ctx, `
		INSERT INTO personas (user_id, project_id, name, description)
		VALUES ($1, $2, $3, $4)
		RETURNING `+personaColumns, userID, projectID, name, description)
	if err != nil {
		return nil, fmt.Errorf("failed to create persona user_id=%s: %w", userID, err)
	}
	persona, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[model.Persona])
	if err != nil {
		return nil, fmt.Errorf("failed to create persona user_id=%s: %w", userID, err)
	}
	return &persona, nil
}

func (r *PersonaRepository) Delete(ctx context.Context, userID, personaID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM personas WHERE id = $1 AND user_id = $2`, personaID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete persona id=%s: %w", personaID, err)
	}
	return expectOne(tag, "personas")
}

func (r *PersonaRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM personas WHERE user_id = $1`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count personas user_id=%s: %w", userID, err)
	}
	return n, nil
}
