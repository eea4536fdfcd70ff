package service

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/deppfellow/oddstable/internal/codec"
	"github.com/deppfellow/oddstable/internal/errs"
	"github.com/deppfellow/oddstable/internal/model"
	"github.com/deppfellow/oddstable/internal/repository"
	"github.com/deppfellow/oddstable/internal/server"
)

// Result is the outcome for one key: a record, or the record-local error
// that kept it from being built.
type Result struct {
	Key    string
	Record *model.Record
	Err    error
}

// ScanRequest selects a key range. See repository.RowRange for the bounds.
type ScanRequest struct {
	Start     string
	Stop      string
	Prefix    string
	Limit     int64
	Delimiter string
}

// Validate rejects contradictory or inverted bounds. A prefix scan may carry a
// start key under the same prefix to resume from.
func (r ScanRequest) Validate() error {
	switch {
	case r.Prefix != "" && r.Stop != "":
		return errs.NewInvalidRequest("prefix cannot be combined with stop")
	case r.Prefix != "" && r.Start != "" && !strings.HasPrefix(r.Start, r.Prefix):
		return errs.NewInvalidRequest("start %q does not begin with prefix %q", r.Start, r.Prefix)
	case r.Stop != "" && r.Start >= r.Stop:
		return errs.NewInvalidRequest("start %q must sort before stop %q", r.Start, r.Stop)
	case r.Limit < 0:
		return errs.NewInvalidRequest("limit must not be negative")
	}
	return nil
}

type QueryService struct {
	store OddsStore
	delim string
	log   *zerolog.Logger
}

func NewQueryService(s *server.Server, store OddsStore) *QueryService {
	return &QueryService{
		store: store,
		delim: s.Config.RowKey.Delimiter,
		log:   s.Logger,
	}
}

func (q *QueryService) delimiter(override string) string {
	if override != "" {
		return override
	}
	return q.delim
}

// Get reads keys one at a time, in order. Malformed keys are not sent to the
// store. Record-local failures are returned inside the results; a store
// failure stops the batch and is returned as the error.
func (q *QueryService) Get(ctx context.Context, keys []string, delim string) ([]Result, error) {
	if len(keys) == 0 {
		return nil, errs.NewInvalidRequest("at least one row key is required")
	}

	started := time.Now()
	delim = q.delimiter(delim)
	results := make([]Result, 0, len(keys))

	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return results, errors.Wrapf(err, "point reads canceled after %d keys", len(results))
		}

		if _, err := codec.Decode(key, delim); err != nil {
			q.log.Warn().Err(err).Str("rowkey", key).Msg("skipping malformed row key")
			results = append(results, Result{Key: key, Err: err})
			continue
		}

		cells, err := q.store.Get(ctx, key)
		if err != nil {
			if !errs.IsRecordLocal(err) {
				return results, err
			}
			results = append(results, Result{Key: key, Err: err})
			continue
		}

		rec, err := codec.Assemble(key, cells, delim)
		if err != nil {
			q.log.Warn().Err(err).Str("rowkey", key).Msg("cannot assemble record")
		}
		results = append(results, Result{Key: key, Record: rec, Err: err})
	}

	q.log.Info().
		Int("keys", len(keys)).
		Dur("duration", time.Since(started)).
		Msg("point reads finished")

	return results, nil
}

// Scan streams the records of a key range to fn in key order. Returning
// false from fn stops the scan early.
func (q *QueryService) Scan(ctx context.Context, req ScanRequest, fn func(Result) bool) error {
	if err := req.Validate(); err != nil {
		return err
	}

	started := time.Now()
	delim := q.delimiter(req.Delimiter)
	rows := 0

	err := q.store.Scan(ctx, repository.RowRange{
		Start:  req.Start,
		Stop:   req.Stop,
		Prefix: req.Prefix,
		Limit:  req.Limit,
	}, func(key string, cells codec.CellMap) bool {
		rows++
		rec, err := codec.Assemble(key, cells, delim)
		if err != nil {
			q.log.Warn().Err(err).Str("rowkey", key).Msg("cannot assemble record")
		}
		return fn(Result{Key: key, Record: rec, Err: err})
	})
	if err != nil {
		return err
	}

	q.log.Info().
		Str("start", req.Start).
		Str("stop", req.Stop).
		Str("prefix", req.Prefix).
		Int("rows", rows).
		Dur("duration", time.Since(started)).
		Msg("range scan finished")

	return nil
}

// ScanAll collects every result of Scan.
func (q *QueryService) ScanAll(ctx context.Context, req ScanRequest) ([]Result, error) {
	var results []Result
	err := q.Scan(ctx, req, func(r Result) bool {
		results = append(results, r)
		return true
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}
