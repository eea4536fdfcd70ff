package repository

import (
	"context"
	"time"

	"cloud.google.com/go/bigtable"

	"github.com/deppfellow/oddstable/internal/codec"
	"github.com/deppfellow/oddstable/internal/database"
	"github.com/deppfellow/oddstable/internal/errs"
	loggerConfig "github.com/deppfellow/oddstable/internal/logger"
	"github.com/deppfellow/oddstable/internal/storeerr"
)

// RowRange selects the rows of a scan.
//
// A non-empty Prefix selects every key under it, starting at Start when Start
// is set (used to resume a paged prefix scan). Otherwise rows in [Start, Stop)
// are returned, an empty Stop meaning "to the end of the table". Limit caps
// the number of rows; zero means no cap.
type RowRange struct {
	Start  string
	Stop   string
	Prefix string
	Limit  int64
}

func (r RowRange) rowSet() bigtable.RowSet {
	switch {
	case r.Prefix != "" && r.Start == "":
		return bigtable.PrefixRange(r.Prefix)
	case r.Prefix != "":
		end := prefixEnd(r.Prefix)
		if end == "" {
			return bigtable.InfiniteRange(r.Start)
		}
		return bigtable.NewRange(r.Start, end)
	case r.Stop == "":
		return bigtable.InfiniteRange(r.Start)
	default:
		return bigtable.NewRange(r.Start, r.Stop)
	}
}

// prefixEnd is the smallest key sorting after every key with the given
// prefix, or "" when no such key exists.
func prefixEnd(prefix string) string {
	b := []byte(prefix)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] < 0xff {
			b[i]++
			return string(b[:i+1])
		}
	}
	return ""
}

// OddsRepository reads and writes odds rows.
type OddsRepository struct {
	db *database.Database
}

func NewOddsRepository(db *database.Database) *OddsRepository {
	return &OddsRepository{db: db}
}

// Put writes every cell of w in one row mutation, which Bigtable applies
// atomically.
func (r *OddsRepository) Put(ctx context.Context, w codec.Write) error {
	started := time.Now()
	seg := r.db.Segment(ctx, "MutateRow")
	defer seg.End()

	mut := bigtable.NewMutation()
	ts := bigtable.Now()
	for _, cell := range w.Cells {
		mut.Set(cell.Column.Family, cell.Column.Qualifier, ts, []byte(cell.Value))
	}

	if err := r.db.Table.Apply(ctx, w.Key, mut); err != nil {
		return storeerr.HandleError("mutate_row", err)
	}

	loggerConfig.Elapsed(r.db.Logger(), r.db.SlowThreshold(), "mutate_row", started).
		Str("rowkey", w.Key).
		Int("cells", len(w.Cells)).
		Msg("row written")
	return nil
}

// Get reads the latest cell of every column of key. A key with no cells at
// all is ROW_NOT_FOUND.
func (r *OddsRepository) Get(ctx context.Context, key string) (codec.CellMap, error) {
	started := time.Now()
	seg := r.db.Segment(ctx, "ReadRow")
	defer seg.End()

	row, err := r.db.Table.ReadRow(ctx, key, bigtable.RowFilter(bigtable.LatestNFilter(1)))
	if err != nil {
		return nil, storeerr.HandleError("read_row", err)
	}

	loggerConfig.Elapsed(r.db.Logger(), r.db.SlowThreshold(), "read_row", started).
		Str("rowkey", key).
		Bool("found", len(row) > 0).
		Msg("row read")

	if len(row) == 0 {
		return nil, errs.NewRowNotFound(key)
	}
	return cellsOf(row), nil
}

// Scan streams the rows of rr to fn in key order. Returning false from fn
// stops the scan without error.
func (r *OddsRepository) Scan(ctx context.Context, rr RowRange, fn func(key string, cells codec.CellMap) bool) error {
	started := time.Now()
	seg := r.db.Segment(ctx, "ReadRows")
	defer seg.End()

	opts := []bigtable.ReadOption{bigtable.RowFilter(bigtable.LatestNFilter(1))}
	if rr.Limit > 0 {
		opts = append(opts, bigtable.LimitRows(rr.Limit))
	}

	var rows int
	err := r.db.Table.ReadRows(ctx, rr.rowSet(), func(row bigtable.Row) bool {
		rows++
		return fn(row.Key(), cellsOf(row))
	}, opts...)
	if err != nil {
		return storeerr.HandleError("read_rows", err)
	}

	loggerConfig.Elapsed(r.db.Logger(), r.db.SlowThreshold(), "read_rows", started).
		Str("start", rr.Start).
		Str("stop", rr.Stop).
		Str("prefix", rr.Prefix).
		Int("rows", rows).
		Msg("range scanned")
	return nil
}

// cellsOf flattens a bigtable.Row. Items arrive newest first, so the first
// value seen for a column is kept.
func cellsOf(row bigtable.Row) codec.CellMap {
	cells := make(codec.CellMap)
	for _, items := range row {
		for _, item := range items {
			col, ok := codec.ParseColumn(item.Column)
			if !ok {
				continue
			}
			if _, seen := cells[col]; !seen {
				cells[col] = string(item.Value)
			}
		}
	}
	return cells
}
