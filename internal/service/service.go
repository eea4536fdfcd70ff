// Package service contains the business logic.
//
// It sits between the handler/CLI layer and the repository layer. Ingest turns
// CSV rows into row writes through the codec serializer; query turns rows read
// back from the store into typed records through the codec assembler.
//
// Both flows are strictly sequential and keep input order. A failure that
// concerns a single record is reported with that record and the run carries
// on; a store failure ends the run.
package service

import (
	"context"

	"github.com/deppfellow/oddstable/internal/codec"
	"github.com/deppfellow/oddstable/internal/repository"
)

// OddsStore is the storage the services need.
type OddsStore interface {
	Put(ctx context.Context, w codec.Write) error
	Get(ctx context.Context, key string) (codec.CellMap, error)
	Scan(ctx context.Context, rr repository.RowRange, fn func(key string, cells codec.CellMap) bool) error
}
