package middleware

import (
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/deppfellow/oddstable/internal/server"
)

// Middlewares is a container that groups all middleware components used by
// the router.
//
// The router builds it once and picks the pieces it installs, so each
// middleware gets *server.Server (and the New Relic application) from a
// single place.
type Middlewares struct {
	Global          *GlobalMiddlewares
	ContextEnhancer *ContextEnhancer
	Tracing         *TracingMiddleware
	RateLimit       *RateLimitMiddleware
}

// NewMiddlewares constructs all middleware components.
//
// It extracts the New Relic application instance (if configured) from the
// server's LoggerService and injects it into TracingMiddleware.
//
// Behavior when New Relic is not configured:
//   - nrApp will be nil.
//   - tracing middleware degrades into a pass-through.
func NewMiddlewares(s *server.Server) *Middlewares {
	var nrApp *newrelic.Application
	if s.LoggerService != nil {
		nrApp = s.LoggerService.GetApplication()
	}

	return &Middlewares{
		Global:          NewGlobalMiddlewares(s),
		ContextEnhancer: NewContextEnhancer(s),
		Tracing:         NewTracingMiddleware(s, nrApp),
		RateLimit:       NewRateLimitMiddleware(s),
	}
}
