package errs

import "strings"

// FieldErrors maps a form field to the message describing what is wrong with it.
type FieldErrors map[string]string

// ActionType tells a client what to do next.
type ActionType string

const ActionTypeRedirect ActionType = "redirect"

// Action is an optional follow-up instruction attached to an error.
type Action struct {
	Type    ActionType `json:"type"`
	Message string     `json:"message"`
	Value   string     `json:"value"`
}

// HTTPError is the error every handler returns to the global error handler.
// It is rendered as
//
//	{"error": "...", "code": "BAD_REQUEST", "status": 400, "errors": {"title": "Title is required"}}
type HTTPError struct {
	Code    string `json:"code"`
	Message string `json:"error"`
	Status  int    `json:"status"`

	// Override marks messages that are safe to show to end users verbatim.
	Override bool `json:"-"`

	Errors FieldErrors `json:"errors,omitempty"`
	Action *Action     `json:"action,omitempty"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Is matches any *HTTPError so errors.Is can detect the type.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)
	return ok
}

// WithMessage returns a copy with Message replaced.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	clone := *e
	clone.Message = message
	return &clone
}

// MakeUpperCaseWithUnderscores turns "Bad Request" into "BAD_REQUEST".
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
