// Package middleware holds the echo middleware of the query API: request IDs,
// request-scoped loggers, New Relic tracing, CORS, rate limiting, panic
// recovery and the global error handler.
package middleware
