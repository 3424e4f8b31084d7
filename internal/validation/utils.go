package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/labstack/echo/v4"

	"github.com/javaniecampbell/storymap/internal/errs"
)

// Validatable is implemented by request payloads.
type Validatable interface {
	Validate() error
}

// CustomValidationError is a failure a struct tag cannot express.
type CustomValidationError struct {
	Field   string
	Message string
}

type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return "Validation failed"
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator. Field names come from the `form`
// tag and `notblank` rejects whitespace-only strings.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("notblank", validators.NotBlank)
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("form"), ",")
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// Struct validates v with the shared validator.
func Struct(v any) error {
	return Validator().Struct(v)
}

// BindAndValidate binds path, query and form values into payload and
// validates it. Failures come back as *errs.HTTPError.
func BindAndValidate(c echo.Context, payload Validatable) error {
	if err := c.Bind(payload); err != nil {
		var echoErr *echo.HTTPError
		if errors.As(err, &echoErr) {
			if msg, ok := echoErr.Message.(string); ok {
				return errs.NewBadRequestError(msg, false, nil, nil, nil)
			}
		}
		return errs.NewBadRequestError("Invalid form data", true, nil, nil, nil)
	}

	if msg, fieldErrors := validateStruct(payload); fieldErrors != nil {
		return errs.NewBadRequestError(msg, true, nil, fieldErrors, nil)
	}

	return nil
}

func validateStruct(v Validatable) (string, errs.FieldErrors) {
	if err := v.Validate(); err != nil {
		return extractValidationError(err)
	}
	return "", nil
}

// Label turns a Go field name into words: PersonaID -> "Persona ID".
func Label(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) && unicode.IsLower(runes[i-1]) {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func extractValidationError(err error) (string, errs.FieldErrors) {
	fieldErrors := errs.FieldErrors{}

	var custom CustomValidationErrors
	if errors.As(err, &custom) {
		for _, e := range custom {
			fieldErrors[e.Field] = e.Message
		}
		return joinMessages(fieldErrors), fieldErrors
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error(), errs.FieldErrors{"form": err.Error()}
	}

	for _, fe := range validationErrors {
		label := Label(fe.StructField())

		var msg string
		switch fe.Tag() {
		case "required", "notblank":
			msg = label + " is required"
		case "min":
			if fe.Kind() == reflect.String {
				msg = fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
			} else if fe.Kind() == reflect.Slice {
				msg = fmt.Sprintf("%s must contain at least %s item(s)", label, fe.Param())
			} else {
				msg = fmt.Sprintf("%s must be at least %s", label, fe.Param())
			}
		case "max":
			if fe.Kind() == reflect.String {
				msg = fmt.Sprintf("%s must not exceed %s characters", label, fe.Param())
			} else {
				msg = fmt.Sprintf("%s must not exceed %s", label, fe.Param())
			}
		case "oneof":
			msg = fmt.Sprintf("%s must be one of: %s", label, fe.Param())
		case "email":
			msg = label + " must be a valid email address"
		case "uuid":
			msg = label + " must be a valid UUID"
		case "dive":
			msg = label + " has invalid items"
		default:
			if fe.Param() != "" {
				msg = fmt.Sprintf("%s is invalid (%s:%s)", label, fe.Tag(), fe.Param())
			} else {
				msg = fmt.Sprintf("%s is invalid (%s)", label, fe.Tag())
			}
		}

		field := fe.Field()
		if _, seen := fieldErrors[field]; !seen {
			fieldErrors[field] = msg
		}
	}

	return joinMessages(fieldErrors), fieldErrors
}

// joinMessages gives the error a readable top-level message. A single
// failure is reported as-is.
func joinMessages(fieldErrors errs.FieldErrors) string {
	if len(fieldErrors) == 1 {
		for _, msg := range fieldErrors {
			return msg
		}
	}
	return "Validation failed"
}
