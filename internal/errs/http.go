package errs

import (
	"errors"
	"net/http"
)

// FieldError represents a field-level validation error.
//
//	{ "field": "limit", "error": "must be at least 1" }
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// HTTPError is the JSON error body of the query API.
//
// Override tells the global error handler the Message is safe to show as is.
type HTTPError struct {
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	Status   int          `json:"status"`
	Override bool         `json:"override"`
	Errors   []FieldError `json:"errors"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Is treats any *HTTPError as a match; it does not compare codes.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)
	return ok
}

// NewBadRequestError creates a 400. code defaults to "BAD_REQUEST" when nil.
func NewBadRequestError(message string, override bool, code *string, errors []FieldError) *HTTPError {
	formattedCode := MakeUpperCaseWithUnderscores(http.StatusText(http.StatusBadRequest))
	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   http.StatusBadRequest,
		Override: override,
		Errors:   errors,
	}
}

// NewNotFoundError creates a 404. code defaults to "NOT_FOUND" when nil.
func NewNotFoundError(message string, override bool, code *string) *HTTPError {
	formattedCode := MakeUpperCaseWithUnderscores(http.StatusText(http.StatusNotFound))
	if code != nil {
		formattedCode = *code
	}

	return &HTTPError{
		Code:     formattedCode,
		Message:  message,
		Status:   http.StatusNotFound,
		Override: override,
	}
}

// NewInternalServerError creates a generic 500 that leaks nothing.
func NewInternalServerError() *HTTPError {
	return &HTTPError{
		Code:     MakeUpperCaseWithUnderscores(http.StatusText(http.StatusInternalServerError)),
		Message:  http.StatusText(http.StatusInternalServerError),
		Status:   http.StatusInternalServerError,
		Override: false,
	}
}

// ToHTTPError maps a domain error onto the API error shape. Errors that are not
// *Error become a generic 500.
func ToHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	var e *Error
	if !errors.As(err, &e) {
		return NewInternalServerError()
	}

	code := string(e.Kind)
	switch e.Kind {
	case KindMalformedKey, KindInvalidRequest, KindParseFailure:
		return NewBadRequestError(e.Error(), true, &code, nil)
	case KindRowNotFound:
		return NewNotFoundError(e.Error(), true, &code)
	case KindMissingColumn:
		return &HTTPError{
			Code:     code,
			Message:  e.Error(),
			Status:   http.StatusUnprocessableEntity,
			Override: true,
		}
	case KindStoreUnavailable:
		return &HTTPError{
			Code:    code,
			Message: http.StatusText(http.StatusServiceUnavailable),
			Status:  http.StatusServiceUnavailable,
		}
	}
	return NewInternalServerError()
}
