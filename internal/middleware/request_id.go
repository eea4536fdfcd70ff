package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	// RequestIDHeader is read from requests and set on every response.
	RequestIDHeader = "X-Request-ID"
	// RequestIDKey is the echo context key holding the ID.
	RequestIDKey    = "request_id"

	maxRequestIDLen = 128
)

// RequestID ensures every request has an ID.
//
// Behavior:
//   - If the incoming request carries a usable X-Request-ID header: reuse it.
//   - If not (missing, longer than 128 bytes, or containing spaces or
//     control characters): generate a new UUID.
//   - Store it in Echo context (c.Set) for internal access.
//   - Set it on the response header so clients can see it too.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(RequestIDHeader)
			if !validRequestID(requestID) {
				requestID = uuid.NewString()
			}

			c.Set(RequestIDKey, requestID)
			c.Response().Header().Set(RequestIDHeader, requestID)

			return next(c)
		}
	}
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}

// GetRequestID retrieves the request ID from Echo context.
//
// Returns empty string if not set.
func GetRequestID(c echo.Context) string {
	if requestID, ok := c.Get(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}
