package database

import (
	"context"
	"fmt"
	"slices"
	"time"

	"cloud.google.com/go/bigtable"

	"github.com/deppfellow/oddstable/internal/codec"
	loggerConfig "github.com/deppfellow/oddstable/internal/logger"
	"github.com/deppfellow/oddstable/internal/storeerr"
)

// SchemaChange lists what Migrate had to create.
type SchemaChange struct {
	TableCreated    bool     `json:"table_created"`
	FamiliesCreated []string `json:"families_created"`
}

// Changed reports whether anything was created.
func (c SchemaChange) Changed() bool {
	return c.TableCreated || len(c.FamiliesCreated) > 0
}

// Migrate makes sure the table and the info/odds families exist. Missing
// families get a GC policy keeping bigtable.max_versions cells. Existing
// families are left as they are, so running it twice is harmless.
func (db *Database) Migrate(ctx context.Context) error {
	_, err := db.EnsureSchema(ctx)
	return err
}

// EnsureSchema is Migrate returning what it changed.
func (db *Database) EnsureSchema(ctx context.Context) (SchemaChange, error) {
	started := time.Now()
	var change SchemaChange
	table := db.cfg.Table

	tables, err := db.Admin.Tables(ctx)
	if err != nil {
		return change, fmt.Errorf("listing tables: %w", storeerr.HandleError("list_tables", err))
	}

	if !slices.Contains(tables, table) {
		if err := db.Admin.CreateTable(ctx, table); err != nil {
			return change, fmt.Errorf("creating table %q: %w", table, storeerr.HandleError("create_table", err))
		}
		change.TableCreated = true
	}

	info, err := db.Admin.TableInfo(ctx, table)
	if err != nil {
		return change, fmt.Errorf("reading table %q: %w", table, storeerr.HandleError("table_info", err))
	}

	maxVersions := db.cfg.MaxVersions
	if maxVersions < 1 {
		maxVersions = 1
	}

	for _, family := range codec.Families() {
		if slices.Contains(info.Families, family) {
			continue
		}
		if err := db.Admin.CreateColumnFamily(ctx, table, family); err != nil {
			return change, fmt.Errorf("creating family %q: %w", family, storeerr.HandleError("create_column_family", err))
		}
		if err := db.Admin.SetGCPolicy(ctx, table, family, bigtable.MaxVersionsPolicy(maxVersions)); err != nil {
			return change, fmt.Errorf("setting gc policy on %q: %w", family, storeerr.HandleError("set_gc_policy", err))
		}
		change.FamiliesCreated = append(change.FamiliesCreated, family)
	}

	if change.Changed() {
		db.log.Info().
			Str("table", table).
			Bool("table_created", change.TableCreated).
			Strs("families_created", change.FamiliesCreated).
			Msg("migrated bigtable schema")
	} else {
		db.log.Info().Str("table", table).Msg("bigtable schema up to date")
	}
	loggerConfig.Elapsed(db.log, db.slow, "migrate", started).Str("table", table).Msg("schema check finished")

	return change, nil
}
