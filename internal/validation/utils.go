package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/oddstable/internal/errs"
)

// Validatable is implemented by request types that know how to validate
// themselves.
type Validatable interface {
	Validate() error
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"csv", "query", "param", "koanf"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})
	return v
}

// Struct validates v against its `validate` tags.
func Struct(v interface{}) error {
	return validate.Struct(v)
}

// BindAndValidate binds request data into payload and validates it. Any
// failure is a 400 with field-level errors where available.
func BindAndValidate(c echo.Context, payload Validatable) error {
	if err := c.Bind(payload); err != nil {
		var he *echo.HTTPError
		message := "invalid request"
		if errors.As(err, &he) {
			message = fmt.Sprint(he.Message)
		}
		return errs.NewBadRequestError(message, false, nil, nil)
	}

	if err := payload.Validate(); err != nil {
		msg, fieldErrors := ExtractValidationError(err)
		if fieldErrors == nil {
			return errs.ToHTTPError(err)
		}
		return errs.NewBadRequestError(msg, true, nil, fieldErrors)
	}

	return nil
}

// Summary renders validation errors as "field: problem; field: problem".
func Summary(err error) string {
	_, fieldErrors := ExtractValidationError(err)
	if len(fieldErrors) == 0 {
		return err.Error()
	}

	parts := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		parts = append(parts, fe.Field+": "+fe.Error)
	}
	return strings.Join(parts, "; ")
}

// ExtractValidationError converts validator errors into field errors. Other
// errors yield nil field errors.
func ExtractValidationError(err error) (string, []errs.FieldError) {
	var fieldErrors []errs.FieldError

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "", nil
	}

	for _, fe := range validationErrors {
		var msg string

		switch fe.Tag() {
		case "required":
			msg = "is required"

		case "min":
			if fe.Type().Kind() == reflect.String {
				msg = fmt.Sprintf("must be at least %s characters", fe.Param())
			} else {
				msg = fmt.Sprintf("must be at least %s", fe.Param())
			}

		case "max":
			if fe.Type().Kind() == reflect.String {
				msg = fmt.Sprintf("must not exceed %s characters", fe.Param())
			} else {
				msg = fmt.Sprintf("must not exceed %s", fe.Param())
			}

		case "len":
			msg = fmt.Sprintf("must be exactly %s characters", fe.Param())

		case "oneof":
			msg = fmt.Sprintf("must be one of: %s", fe.Param())

		case "excluded_with":
			msg = fmt.Sprintf("cannot be combined with %s", strings.ToLower(fe.Param()))

		default:
			if fe.Param() != "" {
				msg = fmt.Sprintf("%s:%s", fe.Tag(), fe.Param())
			} else {
				msg = fe.Tag()
			}
		}

		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: fe.Field(),
			Error: msg,
		})
	}

	return "Validation failed", fieldErrors
}
