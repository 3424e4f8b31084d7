package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/javaniecampbell/storymap/internal/errs"
	"github.com/javaniecampbell/storymap/internal/lib/cache"
	"github.com/javaniecampbell/storymap/internal/lib/llm"
)

var errInvalidAction = errs.NewBadRequestError("Invalid action", true, nil, nil, nil)

type SuggestionService struct {
	llm    llm.Completer
	cache  *cache.SuggestionCache
	logger *zerolog.Logger
}

func NewSuggestionService(completer llm.Completer, c *cache.SuggestionCache, logger *zerolog.Logger) *SuggestionService {
	return &SuggestionService{llm: completer, cache: c, logger: logger}
}

// Suggest runs prompt through the template named by action. Answers are
// cached per (action, prompt); a cache outage only costs a model call.
func (s *SuggestionService) Suggest(ctx context.Context, action, prompt string) (string, error) {
	logger := loggerFor(ctx, s.logger).With().Str("action", action).Logger()

	tmpl, ok := llm.Lookup(action)
	if !ok {
		return "", errInvalidAction
	}

	if cached, hit, err := s.cache.Get(ctx, action, prompt); err != nil {
		logger.Warn().Err(err).Msg("suggestion cache read failed")
	} else if hit {
		return cached, nil
	}

	suggestion, err := llm.Generate(ctx, s.llm, tmpl, prompt)
	if err != nil {
		logger.Error().Err(err).Msg("failed to generate suggestion")
		return "", errs.NewServiceError("Failed to generate suggestion")
	}

	if err := s.cache.Set(ctx, action, prompt, suggestion); err != nil {
		logger.Warn().Err(err).Msg("suggestion cache write failed")
	}

	return suggestion, nil
}
