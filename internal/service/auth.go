package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/javaniecampbell/storymap/internal/errs"
	"github.com/javaniecampbell/storymap/internal/lib/job"
	"github.com/javaniecampbell/storymap/internal/lib/password"
	"github.com/javaniecampbell/storymap/internal/model"
)

// ErrIncorrectLogin is returned for an unknown email or a wrong password
// alike.
var ErrIncorrectLogin = errs.NewBadRequestError("Incorrect login", true, nil, nil, nil)

type AuthService struct {
	users  UserStore
	hasher *password.Hasher
	jobs   Enqueuer
	logger *zerolog.Logger
}

func NewAuthService(users UserStore, hasher *password.Hasher, jobs Enqueuer, logger *zerolog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		jobs:   jobs,
		logger: logger,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register stores a new user with a salted credential and queues the welcome
// mail. A taken email surfaces as the store's unique violation.
func (s *AuthService) Register(ctx context.Context, email, plain string) (*model.User, error) {
	salt, hash, err := s.hasher.Hash(plain)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, normalizeEmail(email), salt, hash)
	if err != nil {
		return nil, err
	}

	s.enqueueWelcome(ctx, user)
	return user, nil
}

func (s *AuthService) enqueueWelcome(ctx context.Context, user *model.User) {
	if s.jobs == nil {
		return
	}

	task, err := job.NewWelcomeEmailTask(user.ID, user.Email)
	if err == nil {
		_, err = s.jobs.Enqueue(task)
	}
	if err != nil {
		loggerFor(ctx, s.logger).Warn().Err(err).Str("user_id", user.ID).Msg("failed to enqueue welcome email")
	}
}

// Login checks the credential for email and returns its user.
func (s *AuthService) Login(ctx context.Context, email, plain string) (*model.User, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrIncorrectLogin
		}
		return nil, err
	}

	cred, err := s.users.GetPassword(ctx, user.ID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrIncorrectLogin
		}
		return nil, err
	}

	if !password.Verify(plain, cred.Salt, cred.Hash) {
		return nil, ErrIncorrectLogin
	}

	return user, nil
}

// CurrentUser loads the user a session points at.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, errs.NewUnauthorizedError("Unauthorized", false)
		}
		return nil, err
	}
	return user, nil
}

func isNotFound(err error) bool {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status == http.StatusNotFound
	}
	return errors.Is(err, pgx.ErrNoRows)
}
