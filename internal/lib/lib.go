// Package lib acts as a library for modules that do not fit strictly into
// other layers.
//
// It contains the CSV source used by ingest and small output helpers.
package lib
