package handler

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/javaniecampbell/storymap/internal/errs"
	"github.com/javaniecampbell/storymap/internal/middleware"
	"github.com/javaniecampbell/storymap/internal/server"
	"github.com/javaniecampbell/storymap/internal/validation"
)

type Handler struct {
	server *server.Server
}

func NewHandler(s *server.Server) Handler {
	return Handler{server: s}
}

// HandlerFunc is a typed endpoint receiving a bound and validated request.
type HandlerFunc[Req validation.Validatable, Res any] func(c echo.Context, req Req) (Res, error)

// Request is satisfied by a pointer to a request struct. It lets the
// pipeline allocate a fresh request for every call.
type Request[T any] interface {
	*T
	validation.Validatable
}

// ResponseHandler writes a successful result.
type ResponseHandler interface {
	Handle(c echo.Context, result any) error
	GetOperation() string
	AddAttributes(txn *newrelic.Transaction, result any)
}

type JSONResponseHandler struct {
	status int
}

func (h JSONResponseHandler) Handle(c echo.Context, result any) error {
	return c.JSON(h.status, result)
}

func (h JSONResponseHandler) GetOperation() string {
	return "handler"
}

func (h JSONResponseHandler) AddAttributes(txn *newrelic.Transaction, result any) {}

// RedirectResponseHandler expects the handler to return the target location.
type RedirectResponseHandler struct {
	status int
}

func (h RedirectResponseHandler) Handle(c echo.Context, result any) error {
	return c.Redirect(h.status, result.(string))
}

func (h RedirectResponseHandler) GetOperation() string {
	return "handler_redirect"
}

func (h RedirectResponseHandler) AddAttributes(txn *newrelic.Transaction, result any) {
	if location, ok := result.(string); ok && txn != nil {
		txn.AddAttribute("redirect.location", location)
	}
}

func handleRequest[Req validation.Validatable](
	c echo.Context,
	req Req,
	handler func(c echo.Context, req Req) (any, error),
	responseHandler ResponseHandler,
) error {
	start := time.Now()
	route := c.Path()

	txn := newrelic.FromContext(c.Request().Context())
	if txn != nil {
		txn.AddAttribute("handler.name", route)
		if action := Action(c); action != "" {
			txn.AddAttribute("handler.action", action)
		}
	}

	loggerBuilder := middleware.GetLogger(c).With().
		Str("operation", responseHandler.GetOperation()).
		Str("route", route)
	if action := Action(c); action != "" {
		loggerBuilder = loggerBuilder.Str("action", action)
	}
	logger := loggerBuilder.Logger()

	logger.Debug().Msg("handling request")

	validationStart := time.Now()
	if err := validation.BindAndValidate(c, req); err != nil {
		validationDuration := time.Since(validationStart)

		logger.Warn().
			Err(err).
			Dur("validation_duration", validationDuration).
			Msg("request validation failed")

		if txn != nil {
			txn.AddAttribute("validation.status", "failed")
			txn.AddAttribute("validation.duration_ms", validationDuration.Milliseconds())
		}

		return err
	}

	validationDuration := time.Since(validationStart)
	if txn != nil {
		txn.AddAttribute("validation.status", "success")
		txn.AddAttribute("validation.duration_ms", validationDuration.Milliseconds())
	}

	handlerStart := time.Now()
	result, err := handler(c, req)
	handlerDuration := time.Since(handlerStart)

	if err != nil {
		totalDuration := time.Since(start)

		logger.Error().
			Err(err).
			Dur("handler_duration", handlerDuration).
			Dur("total_duration", totalDuration).
			Msg("handler execution failed")

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			txn.AddAttribute("handler.status", "error")
			txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
			txn.AddAttribute("total.duration_ms", totalDuration.Milliseconds())
		}
		return err
	}

	totalDuration := time.Since(start)

	if txn != nil {
		txn.AddAttribute("handler.status", "success")
		txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
		txn.AddAttribute("total.duration_ms", totalDuration.Milliseconds())
		responseHandler.AddAttributes(txn, result)
	}

	logger.Info().
		Dur("handler_duration", handlerDuration).
		Dur("validation_duration", validationDuration).
		Dur("total_duration", totalDuration).
		Msg("request completed successfully")

	return responseHandler.Handle(c, result)
}

// Handle wraps a typed endpoint that answers JSON with status.
func Handle[T any, Req Request[T], Res any](h Handler, handler HandlerFunc[Req, Res], status int) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest(c, Req(new(T)), func(c echo.Context, req Req) (any, error) {
			return handler(c, req)
		}, JSONResponseHandler{status: status})
	}
}

// HandleRedirect wraps a typed endpoint that answers with a redirect to the
// location it returns.
func HandleRedirect[T any, Req Request[T]](h Handler, handler HandlerFunc[Req, string], status int) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest(c, Req(new(T)), func(c echo.Context, req Req) (any, error) {
			return handler(c, req)
		}, RedirectResponseHandler{status: status})
	}
}

const actionKey = "_action"

// Action returns the `_action` chosen by Dispatch.
func Action(c echo.Context) string {
	action, _ := c.Get(actionKey).(string)
	return action
}

var errInvalidAction = errs.NewBadRequestError("Invalid action", true, nil, nil, nil)

// Dispatch routes a POST to one of actions by its `_action` form field. A
// missing field selects fallback; an unknown one is a 400.
func Dispatch(fallback string, actions map[string]echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		action := c.FormValue(actionKey)
		if action == "" {
			action = fallback
		}

		next, ok := actions[action]
		if !ok {
			return errInvalidAction
		}

		c.Set(actionKey, action)
		return next(c)
	}
}

// userID returns the id RequireAuth stored; routes using it are always
// guarded.
func userID(c echo.Context) string {
	return middleware.GetUserID(c)
}

// Success is the body of every JSON mutation response. Exactly one of the
// entity fields is set.
type Success struct {
	Success          bool   `json:"success"`
	Action           string `json:"action"`
	Project          any    `json:"project,omitempty"`
	Story            any    `json:"story,omitempty"`
	Persona          any    `json:"persona,omitempty"`
	Journey          any    `json:"journey,omitempty"`
	DeletedProjectID string `json:"deletedProjectId,omitempty"`
	DeletedStoryID   string `json:"deletedStoryId,omitempty"`
	DeletedPersonaID string `json:"deletedPersonaId,omitempty"`
}

func success(c echo.Context) Success {
	return Success{Success: true, Action: Action(c)}
}

// emptyRequest is used by endpoints that take no input.
type emptyRequest struct{}

func (r *emptyRequest) Validate() error { return nil }
