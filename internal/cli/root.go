// Package cli implements the oddstable command line: CSV ingest, point reads,
// range scans, schema provisioning and the HTTP query API.
//
// Configuration comes from ODDSTABLE_* environment variables (and a .env
// file) with command-line flags layered on top.
package cli

import (
	"io"

	"github.com/spf13/cobra"
	"google.golang.org/api/option"

	"github.com/deppfellow/oddstable/internal/config"
)

// env carries what every command needs besides config.
type env struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	clientOptions func() ([]option.ClientOption, error)
}

// Option customises the root command.
type Option func(*env)

// WithClientOptions supplies extra Bigtable client options per command run,
// for example a connection to an in-memory server.
func WithClientOptions(fn func() ([]option.ClientOption, error)) Option {
	return func(e *env) {
		e.clientOptions = fn
	}
}

func NewRootCommand(stdin io.Reader, stdout, stderr io.Writer, opts ...Option) *cobra.Command {
	e := &env{stdin: stdin, stdout: stdout, stderr: stderr}
	for _, opt := range opts {
		opt(e)
	}

	defaults := config.Default()

	rc := &cobra.Command{
		Use:   "oddstable",
		Short: "Store and read betting odds snapshots in Cloud Bigtable.",
		Long: `oddstable loads odds snapshots from CSV exports into a Cloud Bigtable table
and reads them back as typed records.

Each row key is sid:lid:mid:mkt:seq:per:vendor:ts. Settings are read from
ODDSTABLE_* environment variables (nested keys use a double underscore, e.g.
ODDSTABLE_BIGTABLE__PROJECT) and can be overridden with flags.
`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rc.PersistentFlags()
	flags.String("env", defaults.Primary.Env, "environment name (development, production)")
	flags.String("project", "", "Google Cloud project ID")
	flags.String("instance", "", "Bigtable instance ID")
	flags.String("table", defaults.Bigtable.Table, "Bigtable table name")
	flags.String("app-profile", "", "Bigtable app profile")
	flags.String("emulator-host", "", "host:port of a Bigtable emulator")
	flags.Bool("auto-create", false, "create the table and column families when missing")
	flags.String("rowkey-sep", defaults.RowKey.Delimiter, "row key field delimiter")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (console, json)")

	rc.AddCommand(newWriteCommand(e))
	rc.AddCommand(newGetCommand(e))
	rc.AddCommand(newScanCommand(e))
	rc.AddCommand(newSchemaCommand(e))
	rc.AddCommand(newServeCommand(e))

	rc.SetIn(stdin)
	rc.SetOut(stdout)
	rc.SetErr(stderr)
	return rc
}
