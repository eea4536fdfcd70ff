package service

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/deppfellow/oddstable/internal/codec"
	"github.com/deppfellow/oddstable/internal/config"
	"github.com/deppfellow/oddstable/internal/errs"
	"github.com/deppfellow/oddstable/internal/lib/csvsource"
	"github.com/deppfellow/oddstable/internal/server"
	"github.com/deppfellow/oddstable/internal/validation"
)

// IngestOptions parameterise one ingest run.
type IngestOptions struct {
	Batch        codec.Batch
	CSVDelimiter rune
	KeyDelimiter string
	Location     *time.Location
}

// RowFailure is an input line that was not written.
type RowFailure struct {
	Line  int    `json:"line"`
	Key   string `json:"rowkey,omitempty"`
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

// IngestReport summarises a run. Read counts data lines, including the ones
// that failed.
type IngestReport struct {
	Read     int          `json:"read"`
	Written  int          `json:"written"`
	Failed   int          `json:"failed"`
	Failures []RowFailure `json:"failures,omitempty"`
}

func (r *IngestReport) fail(line int, key string, err error) {
	r.Failed++
	r.Failures = append(r.Failures, RowFailure{
		Line:  line,
		Key:   key,
		Kind:  string(errs.KindOf(err)),
		Error: err.Error(),
	})
}

type IngestService struct {
	store    OddsStore
	defaults IngestOptions
	log      *zerolog.Logger
}

// NewIngestService takes its default options from the ingest and rowkey
// config blocks.
func NewIngestService(s *server.Server, store OddsStore) (*IngestService, error) {
	opts, err := OptionsFromConfig(s.Config)
	if err != nil {
		return nil, err
	}
	return &IngestService{
		store:    store,
		defaults: opts,
		log:      s.Logger,
	}, nil
}

// OptionsFromConfig builds IngestOptions from cfg.
func OptionsFromConfig(cfg *config.Config) (IngestOptions, error) {
	loc, err := cfg.Ingest.Location()
	if err != nil {
		return IngestOptions{}, err
	}

	var comma rune = ','
	if d := []rune(cfg.Ingest.CSVDelimiter); len(d) == 1 {
		comma = d[0]
	}

	return IngestOptions{
		Batch: codec.Batch{
			SportID:  cfg.Ingest.SportID,
			LeagueID: cfg.Ingest.LeagueID,
			MatchID:  cfg.Ingest.MatchID,
		},
		CSVDelimiter: comma,
		KeyDelimiter: cfg.RowKey.Delimiter,
		Location:     loc,
	}, nil
}

// Defaults returns the options derived from config.
func (s *IngestService) Defaults() IngestOptions {
	return s.defaults
}

// IngestFile opens path and ingests it.
func (s *IngestService) IngestFile(ctx context.Context, path string, opts IngestOptions) (*IngestReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	report, err := s.Ingest(ctx, f, opts)
	if err != nil {
		return report, errors.Wrapf(err, "ingesting %s", path)
	}
	return report, nil
}

// Ingest writes every row of r, one row mutation per line, in input order.
//
// Lines that cannot be parsed or serialized are recorded in the report and
// skipped. A missing header field, a reader error or a store failure ends
// the run; the report then covers the lines handled so far.
func (s *IngestService) Ingest(ctx context.Context, r io.Reader, opts IngestOptions) (*IngestReport, error) {
	if err := validation.Struct(opts.Batch); err != nil {
		return nil, errs.NewInvalidRequest("ingest batch: %s", validation.Summary(err))
	}

	started := time.Now()
	report := &IngestReport{}

	src, err := csvsource.NewSource(r, opts.CSVDelimiter, s.log)
	if err != nil {
		return nil, err
	}

	serializer := &codec.Serializer{
		Batch:     opts.Batch,
		Delimiter: opts.KeyDelimiter,
		Location:  opts.Location,
	}

	for {
		if err := ctx.Err(); err != nil {
			return report, s.canceled(err, report)
		}

		row, line, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			if !errs.IsRecordLocal(err) {
				return report, err
			}
			report.Read++
			report.fail(line, "", err)
			s.log.Warn().Err(err).Int("line", line).Msg("skipping unreadable line")
			continue
		}
		report.Read++

		if err := validation.Struct(row); err != nil {
			perr := errs.NewParseFailure("", errors.New(validation.Summary(err))).WithLine(line)
			report.fail(line, "", perr)
			s.log.Warn().Err(perr).Int("line", line).Msg("skipping invalid row")
			continue
		}

		w, err := serializer.Serialize(row)
		if err != nil {
			var e *errs.Error
			if errors.As(err, &e) {
				err = e.WithLine(line)
			}
			report.fail(line, "", err)
			s.log.Warn().Err(err).Int("line", line).Msg("skipping row")
			continue
		}

		if err := s.store.Put(ctx, w); err != nil {
			if cerr := ctx.Err(); cerr != nil {
				return report, s.canceled(cerr, report)
			}
			if errs.IsRecordLocal(err) {
				report.fail(line, w.Key, err)
				continue
			}
			s.log.Error().Err(err).Int("line", line).Str("rowkey", w.Key).Msg("write failed, stopping ingest")
			return report, err
		}
		report.Written++
	}

	s.log.Info().
		Int("read", report.Read).
		Int("written", report.Written).
		Int("failed", report.Failed).
		Dur("duration", time.Since(started)).
		Msg("ingest finished")

	return report, nil
}

// canceled wraps the context error of a run stopped from outside. It keeps
// context.Canceled in the chain and carries no errs.Kind, since the store did
// not fail.
func (s *IngestService) canceled(err error, report *IngestReport) error {
	s.log.Warn().
		Int("read", report.Read).
		Int("written", report.Written).
		Msg("ingest canceled")
	return errors.Wrapf(err, "ingest canceled after %d rows", report.Read)
}
