package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is a machine-friendly error category.
type Kind string

const (
	// KindMalformedKey means a row key did not split into the expected fields.
	KindMalformedKey Kind = "MALFORMED_KEY"

	// KindMissingColumn means a row exists but lacks a required column.
	KindMissingColumn Kind = "MISSING_COLUMN"

	// KindParseFailure means an ingest field could not be parsed.
	KindParseFailure Kind = "PARSE_FAILURE"

	// KindRowNotFound means a point read returned no cells for the key.
	KindRowNotFound Kind = "ROW_NOT_FOUND"

	// KindStoreUnavailable covers connection-level and server-side failures.
	KindStoreUnavailable Kind = "STORE_UNAVAILABLE"

	// KindInvalidRequest is bad caller input (flags, query parameters).
	KindInvalidRequest Kind = "INVALID_REQUEST"
)

// Error is the custom error type used across the codec, repository and services.
//
// Key, Column and Line are optional context; they are included in Error()
// when set so a report line reads on its own.
type Error struct {
	Kind      Kind
	Message   string
	Key       string
	Column    string
	Line      int
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(strings.ToLower(strings.ReplaceAll(string(e.Kind), "_", " ")))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " (line %d)", e.Line)
	}
	if e.Key != "" {
		fmt.Fprintf(&b, " [key=%s]", e.Key)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, " [column=%s]", e.Column)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same Kind, so the sentinels below work with
// errors.Is. A target with an empty Kind matches any *Error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == "" || t.Kind == e.Kind
}

// WithLine returns a copy of e annotated with a 1-based input line.
func (e *Error) WithLine(line int) *Error {
	cp := *e
	cp.Line = line
	return &cp
}

// Sentinels for errors.Is checks.
var (
	ErrMalformedKey     = &Error{Kind: KindMalformedKey}
	ErrMissingColumn    = &Error{Kind: KindMissingColumn}
	ErrParseFailure     = &Error{Kind: KindParseFailure}
	ErrRowNotFound      = &Error{Kind: KindRowNotFound}
	ErrStoreUnavailable = &Error{Kind: KindStoreUnavailable}
	ErrInvalidRequest   = &Error{Kind: KindInvalidRequest}
)

func NewMalformedKey(key string, format string, args ...interface{}) *Error {
	return &Error{Kind: KindMalformedKey, Key: key, Message: fmt.Sprintf(format, args...)}
}

func NewMissingColumn(key, column string) *Error {
	return &Error{Kind: KindMissingColumn, Key: key, Column: column, Message: "required column absent"}
}

func NewParseFailure(column string, err error) *Error {
	return &Error{Kind: KindParseFailure, Column: column, Message: "cannot parse field", Err: err}
}

func NewRowNotFound(key string) *Error {
	return &Error{Kind: KindRowNotFound, Key: key, Message: "row has no cells"}
}

func NewStoreUnavailable(message string, retryable bool, err error) *Error {
	return &Error{Kind: KindStoreUnavailable, Message: message, Retryable: retryable, Err: err}
}

func NewInvalidRequest(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidRequest, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsRecordLocal reports whether err concerns a single record only, meaning the
// batch it belongs to may carry on.
func IsRecordLocal(err error) bool {
	switch KindOf(err) {
	case KindMalformedKey, KindMissingColumn, KindParseFailure, KindRowNotFound:
		return true
	}
	return false
}

// IsRetryable reports whether repeating the same call could succeed.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return false
}

// MakeUpperCaseWithUnderscores converts "Bad Request" into "BAD_REQUEST".
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
