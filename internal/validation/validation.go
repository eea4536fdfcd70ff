// Package validation contains the logic for validating input data.
//
// It uses the `validator` library to enforce rules defined in struct tags and
// turns validation failures into field-level errors. Fields are reported by
// the name the caller used: the CSV header, the query parameter, or the
// config key.
package validation
