package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/deppfellow/oddstable/internal/errs"
	"github.com/deppfellow/oddstable/internal/server"
)

// GlobalMiddlewares groups the middleware applied to every route, plus the
// echo error handler.
//
// All of them are thin configurations of echo's own middleware package; the
// struct only carries the *server.Server they read config and loggers from.
type GlobalMiddlewares struct {
	server *server.Server
}

// NewGlobalMiddlewares constructs GlobalMiddlewares.
func NewGlobalMiddlewares(s *server.Server) *GlobalMiddlewares {
	return &GlobalMiddlewares{
		server: s,
	}
}

// CORS answers cross-origin requests from server.cors_allowed_origins.
//
// Only GET, HEAD and OPTIONS are allowed since the API never writes.
// X-Request-ID is exposed so browser clients can quote it in bug reports.
func (global *GlobalMiddlewares) CORS() echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  global.server.Config.Server.CORSAllowedOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		ExposeHeaders: []string{RequestIDHeader},
	})
}

// RequestLogger writes one access log line per request.
//
// Level by final status:
//   - 5xx: error (with the error attached)
//   - 4xx: warn
//   - otherwise: info
//
// The status comes from the returned error when there is one, since the
// error handler has not written the response yet when this runs.
func (global *GlobalMiddlewares) RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogError:   true,
		LogLatency: true,
		LogHost:    true,
		LogMethod:  true,
		LogURIPath: true,

		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			statusCode := v.Status

			if v.Error != nil {
				var httpErr *errs.HTTPError
				var echoErr *echo.HTTPError

				if errors.As(v.Error, &httpErr) {
					statusCode = httpErr.Status
				} else if errors.As(v.Error, &echoErr) {
					statusCode = echoErr.Code
				} else {
					statusCode = errs.ToHTTPError(v.Error).Status
				}
			}

			logger := GetLogger(c)

			var e *zerolog.Event
			switch {
			case statusCode >= 500:
				e = logger.Error().Err(v.Error)
			case statusCode >= 400:
				e = logger.Warn()
			default:
				e = logger.Info()
			}

			e.
				Dur("latency", v.Latency).
				Int("status", statusCode).
				Str("method", v.Method).
				Str("uri", v.URI).
				Str("host", v.Host).
				Str("user_agent", c.Request().UserAgent()).
				Msg("API")

			return nil
		},
	})
}

// Recover turns a panicking handler into a 500 instead of a dropped connection.
func (global *GlobalMiddlewares) Recover() echo.MiddlewareFunc {
	return middleware.Recover()
}

// Secure sets the default security headers (X-XSS-Protection,
// X-Content-Type-Options, X-Frame-Options).
func (global *GlobalMiddlewares) Secure() echo.MiddlewareFunc {
	return middleware.Secure()
}

// GlobalErrorHandler is installed as echo's HTTPErrorHandler.
//
// Behavior:
//   - *errs.HTTPError is rendered as is.
//   - *echo.HTTPError keeps its status; an unknown route becomes NOT_FOUND.
//   - Anything else goes through errs.ToHTTPError, which maps the errs.Kind
//     of domain errors and hides everything else behind a generic 500.
//
// 5xx responses are logged at error level with a stack, the rest at warn.
// HEAD requests get the status without a body.
func (global *GlobalMiddlewares) GlobalErrorHandler(err error, c echo.Context) {
	originalErr := err

	var httpErr *errs.HTTPError
	var echoErr *echo.HTTPError

	switch {
	case errors.As(err, &httpErr):
	case errors.As(err, &echoErr):
		if echoErr.Code == http.StatusNotFound {
			httpErr = errs.NewNotFoundError("Route not found", false, nil)
		}
	default:
		httpErr = errs.ToHTTPError(err)
	}

	var status int
	var code string
	var message string
	var fieldErrors []errs.FieldError

	switch {
	case httpErr != nil:
		status = httpErr.Status
		code = httpErr.Code
		message = httpErr.Message
		fieldErrors = httpErr.Errors

	case echoErr != nil:
		status = echoErr.Code
		code = errs.MakeUpperCaseWithUnderscores(http.StatusText(status))

		if msg, ok := echoErr.Message.(string); ok {
			message = msg
		} else {
			message = http.StatusText(echoErr.Code)
		}
	}

	logger := *GetLogger(c)
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error().Stack()
	}
	event.
		Err(originalErr).
		Int("status", status).
		Str("error_code", code).
		Msg(message)

	if !c.Response().Committed {
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, errs.HTTPError{
			Code:     code,
			Message:  message,
			Status:   status,
			Override: httpErr != nil && httpErr.Override,
			Errors:   fieldErrors,
		})
	}
}
