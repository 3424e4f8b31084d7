package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javaniecampbell/storymap/internal/config"
	"github.com/javaniecampbell/storymap/internal/errs"
	loggerPkg "github.com/javaniecampbell/storymap/internal/logger"
	"github.com/javaniecampbell/storymap/internal/server"
	"github.com/javaniecampbell/storymap/internal/session"
	"github.com/javaniecampbell/storymap/internal/sqlerr"
)

const secret = "0123456789abcdef0123456789abcdef"

func newTestServer(logs *bytes.Buffer) *server.Server {
	logger := zerolog.New(logs)
	return &server.Server{
		Config: &config.Config{
			Primary: config.Primary{Env: "test"},
			Server:  config.ServerConfig{CORSAllowedOrigins: []string{"http://localhost:3000"}},
		},
		Logger:        &logger,
		LoggerService: &loggerPkg.LoggerService{},
		Sessions:      session.NewManager(secret, time.Hour, false),
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errs.HTTPError {
	t.Helper()
	var body errs.HTTPError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestGlobalErrorHandler(t *testing.T) {
	var logs bytes.Buffer
	global := NewGlobalMiddlewares(newTestServer(&logs))
	e := echo.New()

	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"field error", errs.NewFieldError("title", "Title is required"), 400, "Title is required"},
		{"missing row", sqlerr.NotFound("projects"), 404, "Project not found"},
		{"echo 404", echo.ErrNotFound, 404, "Route not found"},
		{"method", echo.ErrMethodNotAllowed, 405, "Method Not Allowed"},
		{"unknown", errors.New("boom"), 500, "Internal Server Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			global.GlobalErrorHandler(tt.err, c)

			assert.Equal(t, tt.status, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tt.msg, body.Message)
			assert.Equal(t, tt.status, body.Status)
		})
	}
}

func TestGlobalErrorHandlerFieldErrors(t *testing.T) {
	var logs bytes.Buffer
	global := NewGlobalMiddlewares(newTestServer(&logs))
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

	global.GlobalErrorHandler(errs.NewFieldError("type", "Type must be one of: EPIC FEATURE STORY"), c)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.Equal(t, map[string]any{"type": "Type must be one of: EPIC FEATURE STORY"}, raw["errors"])
	assert.Equal(t, "Type must be one of: EPIC FEATURE STORY", raw["error"])
}

func TestRequireAuth(t *testing.T) {
	var logs bytes.Buffer
	s := newTestServer(&logs)
	auth := NewAuthMiddleware(s)
	e := echo.New()

	handler := auth.RequireAuth(func(c echo.Context) error {
		return c.String(http.StatusOK, GetUserID(c))
	})

	t.Run("redirects without session", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/projects/p1?tab=board", nil), rec)

		require.NoError(t, handler(c))
		assert.Equal(t, http.StatusFound, rec.Code)

		loc, err := url.Parse(rec.Header().Get(echo.HeaderLocation))
		require.NoError(t, err)
		assert.Equal(t, LoginPath, loc.Path)
		assert.Equal(t, "/projects/p1?tab=board", loc.Query().Get("redirectTo"))
	})

	t.Run("passes with session", func(t *testing.T) {
		cookie, err := s.Sessions.Issue("user-1")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/projects", nil)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()

		require.NoError(t, handler(e.NewContext(req, rec)))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-1", rec.Body.String())
	})
}

func TestRateLimit(t *testing.T) {
	var logs bytes.Buffer
	limiter := NewRateLimitMiddleware(newTestServer(&logs)).Limit("/api/llm-suggestions", 60, 2)
	handler := limiter(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e := echo.New()

	var denied error
	for i := 0; i < 3; i++ {
		c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), httptest.NewRecorder())
		c.Set(UserIDKey, "user-1")
		if err := handler(c); err != nil {
			denied = err
		}
	}

	var httpErr *errs.HTTPError
	require.True(t, errors.As(denied, &httpErr))
	assert.Equal(t, http.StatusTooManyRequests, httpErr.Status)

	// another user has their own bucket
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), httptest.NewRecorder())
	c.Set(UserIDKey, "user-2")
	assert.NoError(t, handler(c))
}

func TestRequestID(t *testing.T) {
	e := echo.New()
	handler := RequestID()(func(c echo.Context) error { return c.String(http.StatusOK, GetRequestID(c)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))
	assert.Equal(t, "abc", rec.Body.String())
	assert.Equal(t, "abc", rec.Header().Get(RequestIDHeader))

	rec = httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)))
	_, err := uuid.Parse(rec.Body.String())
	assert.NoError(t, err)
	assert.Equal(t, rec.Body.String(), rec.Header().Get(RequestIDHeader))
}

func TestRequestLoggerStatusFromError(t *testing.T) {
	var logs bytes.Buffer
	global := NewGlobalMiddlewares(newTestServer(&logs))
	handler := global.RequestLogger()(func(c echo.Context) error {
		return sqlerr.NotFound("projects")
	})

	var lines bytes.Buffer
	logger := zerolog.New(&lines).With().Str("request_id", "abc").Logger()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/projects/p1", nil), httptest.NewRecorder())
	c.Set(LoggerKey, &logger)
	assert.Error(t, handler(c))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines.Bytes(), &entry))
	assert.Equal(t, "API", entry["message"])
	assert.Equal(t, "warn", entry["level"])
	assert.EqualValues(t, http.StatusNotFound, entry["status"])
	assert.Equal(t, "abc", entry["request_id"])
	assert.Equal(t, "/projects/p1", entry["uri"])
}

func TestFormAction(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodPost, "/projects/p1", nil), httptest.NewRecorder())
	assert.Empty(t, formAction(c))

	c.Set("_action", "updateStoryType")
	assert.Equal(t, "updateStoryType", formAction(c))
}
