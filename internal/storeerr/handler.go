package storeerr

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/deppfellow/oddstable/internal/errs"
)

// Code is the coarse category of a store failure.
type Code string

const (
	Unavailable      Code = "unavailable"
	Timeout          Code = "timeout"
	Throttled        Code = "throttled"
	Aborted          Code = "aborted"
	Canceled         Code = "canceled"
	NotFound         Code = "not_found"
	PermissionDenied Code = "permission_denied"
	InvalidArgument  Code = "invalid_argument"
	Other            Code = "other"
)

// MapCode maps a gRPC status code onto a Code.
func MapCode(c codes.Code) Code {
	switch c {
	case codes.Unavailable:
		return Unavailable
	case codes.DeadlineExceeded:
		return Timeout
	case codes.ResourceExhausted:
		return Throttled
	case codes.Aborted:
		return Aborted
	case codes.Canceled:
		return Canceled
	case codes.NotFound:
		return NotFound
	case codes.PermissionDenied, codes.Unauthenticated:
		return PermissionDenied
	case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange:
		return InvalidArgument
	default:
		return Other
	}
}

// Retryable reports whether a failure of this category may clear up by itself.
func (c Code) Retryable() bool {
	switch c {
	case Unavailable, Timeout, Throttled, Aborted:
		return true
	}
	return false
}

// ErrCode reports the Code for err. Context errors are recognised even when
// they do not carry a gRPC status.
func ErrCode(err error) Code {
	switch {
	case err == nil:
		return Other
	case errors.Is(err, context.DeadlineExceeded):
		return Timeout
	case errors.Is(err, context.Canceled):
		return Canceled
	}

	if s, ok := status.FromError(err); ok {
		return MapCode(s.Code())
	}
	return Other
}

// humanizeText turns "read_rows" into "Read Rows".
func humanizeText(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

func describe(c Code) string {
	switch c {
	case Unavailable:
		return "store is unavailable"
	case Timeout:
		return "deadline exceeded"
	case Throttled:
		return "store is throttling requests"
	case Aborted:
		return "request aborted by the store"
	case Canceled:
		return "request canceled"
	case NotFound:
		return "table or instance does not exist"
	case PermissionDenied:
		return "permission denied"
	case InvalidArgument:
		return "request rejected by the store"
	default:
		return "unexpected store error"
	}
}

// HandleError converts a Bigtable client error from operation op (for example
// "read_rows") into an application error.
//
// Output:
//   - nil stays nil
//   - an *errs.Error is returned unchanged
//   - anything else becomes STORE_UNAVAILABLE, retryable for the transient codes
func HandleError(op string, err error) error {
	if err == nil {
		return nil
	}

	var appErr *errs.Error
	if errors.As(err, &appErr) {
		return err
	}

	code := ErrCode(err)
	message := describe(code)
	if op != "" {
		message = fmt.Sprintf("%s: %s", humanizeText(op), message)
	}

	return errs.NewStoreUnavailable(message, code.Retryable(), err)
}
