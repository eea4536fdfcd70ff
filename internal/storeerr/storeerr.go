// Package storeerr specifically handles Bigtable client errors.
//
// The Bigtable client reports failures as gRPC status errors. This package
// reads the status code and converts it into an errs.Error of kind
// STORE_UNAVAILABLE, flagging the transient codes as retryable so a caller
// can decide to try again. Nothing here retries on its own.
package storeerr
