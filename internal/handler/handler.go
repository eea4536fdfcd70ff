// Package handler is the HTTP layer of the read-only query API.
//
// Handlers bind and validate request parameters through the validation
// package, call the query service and render records as JSON. Failures are
// returned to the global error handler, which maps them with
// errs.ToHTTPError.
package handler
