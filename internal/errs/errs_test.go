package errs

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldErrorJSON(t *testing.T) {
	err := NewFieldError("title", "Title is required")

	body, jerr := json.Marshal(err)
	require.NoError(t, jerr)

	var got map[string]any
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "Title is required", got["error"])
	assert.Equal(t, "BAD_REQUEST", got["code"])
	assert.EqualValues(t, http.StatusBadRequest, got["status"])
	assert.Equal(t, map[string]any{"title": "Title is required"}, got["errors"])
	assert.NotContains(t, got, "action")
}

func TestHTTPErrorIs(t *testing.T) {
	wrapped := fmt.Errorf("loading project: %w", NewNotFoundError("Project not found", true, nil))
	assert.True(t, errors.Is(wrapped, &HTTPError{}))

	var httpErr *HTTPError
	require.True(t, errors.As(wrapped, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
}

func TestWithMessageCopies(t *testing.T) {
	base := NewUnauthorizedError("Unauthorized", false)
	custom := base.WithMessage("Session expired")

	assert.Equal(t, "Unauthorized", base.Message)
	assert.Equal(t, "Session expired", custom.Message)
	assert.Equal(t, base.Code, custom.Code)
}

func TestMakeUpperCaseWithUnderscores(t *testing.T) {
	assert.Equal(t, "NOT_FOUND", MakeUpperCaseWithUnderscores("Not Found"))
	assert.Equal(t, "INTERNAL_SERVER_ERROR", MakeUpperCaseWithUnderscores(http.StatusText(500)))
}
