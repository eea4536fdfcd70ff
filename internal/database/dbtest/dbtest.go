// Package dbtest runs database.Database against the in-memory Bigtable server
// from cloud.google.com/go/bigtable/bttest.
package dbtest

import (
	"context"
	"testing"

	"cloud.google.com/go/bigtable/bttest"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/deppfellow/oddstable/internal/config"
	"github.com/deppfellow/oddstable/internal/database"
)

// Config returns a valid configuration for tests with auto-create on.
func Config() *config.Config {
	cfg := config.Default()
	cfg.Bigtable.Project = "test-project"
	cfg.Bigtable.Instance = "test-instance"
	cfg.Bigtable.AutoCreate = true
	return cfg
}

// Server starts an in-memory Bigtable server and returns a client option
// connected to it. Both are closed when the test ends.
func Server(t testing.TB) option.ClientOption {
	t.Helper()

	srv, err := bttest.NewServer("localhost:0")
	require.NoError(t, err)
	t.Cleanup(srv.Close)

	conn, err := grpc.NewClient(srv.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return option.WithGRPCConn(conn)
}

// Open returns a Database on a fresh in-memory server with the schema in
// place. mutate may adjust the config before connecting.
func Open(t testing.TB, mutate ...func(*config.Config)) *database.Database {
	t.Helper()

	cfg := Config()
	for _, m := range mutate {
		m(cfg)
	}

	log := zerolog.Nop()
	db, err := database.New(context.Background(), cfg, &log, nil, Server(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db
}
