// Package database owns the connection to Cloud Bigtable.
//
// It handles:
//   - building the data and admin clients from config
//   - routing to a local emulator when one is configured
//   - a reachability check at start-up so a bad project, instance or table
//     fails fast
//   - New Relic datastore segments around store calls
//
// One Database is created per process and closed on exit.
package database

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigtable"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/deppfellow/oddstable/internal/config"
	loggerConfig "github.com/deppfellow/oddstable/internal/logger"
	"github.com/deppfellow/oddstable/internal/storeerr"
)

// DatastoreProduct labels Bigtable calls in APM.
const DatastoreProduct newrelic.DatastoreProduct = "Bigtable"

// Database wraps the Bigtable clients and the table handle used by the
// repositories.
type Database struct {
	Client *bigtable.Client
	Admin  *bigtable.AdminClient
	Table  *bigtable.Table

	cfg      config.BigtableConfig
	log      *zerolog.Logger
	slow     time.Duration
	emulator *grpc.ClientConn
}

// New connects to Bigtable and verifies the configured table is reachable.
//
// opts are passed to both clients; tests use them to inject a connection to
// an in-memory server. When cfg.Bigtable.EmulatorHost is set and no opts are
// given, an insecure connection to the emulator is dialled.
//
// With cfg.Bigtable.AutoCreate the table and its families are created first.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService, opts ...option.ClientOption) (*Database, error) {
	started := time.Now()
	btCfg := cfg.Bigtable

	db, err := Connect(ctx, cfg, logger, loggerService, opts...)
	if err != nil {
		return nil, err
	}

	if btCfg.AutoCreate {
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	pingCtx, cancel := context.WithTimeout(ctx, btCfg.Timeout)
	defer cancel()
	if err := db.Ping(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to reach bigtable table %q: %w", btCfg.Table, err)
	}

	loggerConfig.Elapsed(logger, db.slow, "connect", started).
		Str("project", btCfg.Project).
		Str("instance", btCfg.Instance).
		Str("table", btCfg.Table).
		Msg("connected to bigtable")

	return db, nil
}

// Connect builds the clients without touching the table. Use it when the
// table may not exist yet; New is the normal entry point.
func Connect(ctx context.Context, cfg *config.Config, logger *zerolog.Logger, _ *loggerConfig.LoggerService, opts ...option.ClientOption) (*Database, error) {
	btCfg := cfg.Bigtable

	db := &Database{
		cfg: btCfg,
		log: logger,
	}
	if cfg.Observability != nil {
		db.slow = cfg.Observability.Logging.SlowQueryThreshold
	}

	if btCfg.EmulatorHost != "" && len(opts) == 0 {
		conn, err := grpc.NewClient(btCfg.EmulatorHost, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return nil, fmt.Errorf("failed to dial bigtable emulator at %s: %w", btCfg.EmulatorHost, err)
		}
		db.emulator = conn
		opts = append(opts, option.WithGRPCConn(conn))
		logger.Info().Str("emulator_host", btCfg.EmulatorHost).Msg("using bigtable emulator")
	}

	clientCfg := bigtable.ClientConfig{AppProfile: btCfg.AppProfile}
	if !btCfg.ClientMetrics {
		clientCfg.MetricsProvider = bigtable.NoopMetricsProvider{}
	}

	client, err := bigtable.NewClientWithConfig(ctx, btCfg.Project, btCfg.Instance, clientCfg, opts...)
	if err != nil {
		db.closeEmulator()
		return nil, fmt.Errorf("failed to create bigtable client: %w", storeerr.HandleError("connect", err))
	}
	db.Client = client

	admin, err := bigtable.NewAdminClient(ctx, btCfg.Project, btCfg.Instance, opts...)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create bigtable admin client: %w", storeerr.HandleError("connect", err))
	}
	db.Admin = admin
	db.Table = client.Open(btCfg.Table)

	return db, nil
}

// TableName is the name of the configured table.
func (db *Database) TableName() string {
	return db.cfg.Table
}

// Logger returns the database lifecycle logger.
func (db *Database) Logger() *zerolog.Logger {
	return db.log
}

// SlowThreshold is the duration above which store calls are logged at warn.
func (db *Database) SlowThreshold() time.Duration {
	return db.slow
}

// Ping reads at most one row with values stripped. It succeeds on an empty
// table and fails when the table or instance does not exist.
func (db *Database) Ping(ctx context.Context) error {
	seg := db.Segment(ctx, "Ping")
	defer seg.End()

	err := db.Table.ReadRows(ctx, bigtable.InfiniteRange(""),
		func(bigtable.Row) bool { return false },
		bigtable.LimitRows(1),
		bigtable.RowFilter(bigtable.StripValueFilter()),
	)
	return storeerr.HandleError("ping", err)
}

// Segment starts an APM datastore segment for op on the configured table. It
// is a no-op when ctx carries no New Relic transaction.
func (db *Database) Segment(ctx context.Context, op string) *newrelic.DatastoreSegment {
	txn := newrelic.FromContext(ctx)
	return &newrelic.DatastoreSegment{
		StartTime:    txn.StartSegmentNow(),
		Product:      DatastoreProduct,
		Collection:   db.cfg.Table,
		Operation:    op,
		DatabaseName: db.cfg.Instance,
	}
}

func (db *Database) closeEmulator() {
	if db.emulator != nil {
		_ = db.emulator.Close()
		db.emulator = nil
	}
}

// Close releases both clients. It is safe to call on a partially built
// Database.
func (db *Database) Close() error {
	db.log.Info().Msg("closing bigtable clients")

	var firstErr error
	if db.Admin != nil {
		if err := db.Admin.Close(); err != nil {
			firstErr = err
		}
	}
	if db.Client != nil {
		if err := db.Client.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	db.closeEmulator()
	return firstErr
}
