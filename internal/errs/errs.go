// Package errs defines the error kinds shared by the ingest and query flows.
//
// Every failure that concerns a single record (a malformed key, a missing
// column, an unparsable CSV field) is an *Error whose Kind says so, which lets
// a batch report the record and move on. Connection-level failures use
// KindStoreUnavailable and stop the run.
//
// The package also carries the HTTPError shape returned by the query API.
package errs
