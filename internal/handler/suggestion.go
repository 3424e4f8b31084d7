package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/javaniecampbell/storymap/internal/errs"
	"github.com/javaniecampbell/storymap/internal/server"
	"github.com/javaniecampbell/storymap/internal/service"
)

type SuggestionHandler struct {
	Handler
	suggestions *service.SuggestionService
}

func NewSuggestionHandler(s *server.Server, suggestions *service.SuggestionService) *SuggestionHandler {
	return &SuggestionHandler{
		Handler:     NewHandler(s),
		suggestions: suggestions,
	}
}

type SuggestionRequest struct {
	Action string `form:"_action"`
	Prompt string `form:"prompt"`
}

func (r *SuggestionRequest) Validate() error { return nil }

type SuggestionResponse struct {
	Suggestion string `json:"suggestion"`
}

// Suggest handles POST /api/llm-suggestions.
func (h *SuggestionHandler) Suggest() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, req *SuggestionRequest) (SuggestionResponse, error) {
		// an empty prompt is passed on; only a missing one is rejected
		if _, ok := c.Request().PostForm["prompt"]; !ok {
			return SuggestionResponse{}, errs.NewFieldError("prompt", "Invalid prompt")
		}
		if req.Action == "" {
			return SuggestionResponse{}, errs.NewBadRequestError("Invalid action", true, nil, nil, nil)
		}
		suggestion, err := h.suggestions.Suggest(c.Request().Context(), req.Action, req.Prompt)
		if err != nil {
			return SuggestionResponse{}, err
		}
		return SuggestionResponse{Suggestion: suggestion}, nil
	}, http.StatusOK)
}
