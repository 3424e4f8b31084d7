package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/javaniecampbell/storymap/internal/model"
)

type UserRepository struct {
	db TxBeginner
}

func NewUserRepository(db TxBeginner) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, created_at, updated_at`

// Create inserts the user and its credential in one transaction.
func (r *UserRepository) Create(ctx context.Context, email string, salt, hash string) (*model.User, error) {
	var user model.User
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `INSERT INTO users (email) VALUES ($1) RETURNING `+userColumns, email)
		if err != nil {
			return err
		}
		user, err = pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[model.User])
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `INSERT INTO passwords (user_id, salt, hash) VALUES ($1, $2, $3)`, user.ID, salt, hash)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user email=%s: %w", email, err)
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	if err != nil {
		return nil, fmt.Errorf("failed to query user email=%s: %w", email, err)
	}
	user, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[model.User])
	if err != nil {
		return nil, notFound(err, "users")
	}
	return &user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query user id=%s: %w", id, err)
	}
	user, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[model.User])
	if err != nil {
		return nil, notFound(err, "users")
	}
	return &user, nil
}

func (r *UserRepository) GetPassword(ctx context.Context, userID string) (*model.Password, error) {
	var pw model.Password
	err := r.db.QueryRow(ctx, `SELECT user_id, salt, hash FROM passwords WHERE user_id = $1`, userID).
		Scan(&pw.UserID, &pw.Salt, &pw.Hash)
	if err != nil {
		return nil, notFound(err, "passwords")
	}
	return &pw, nil
}
