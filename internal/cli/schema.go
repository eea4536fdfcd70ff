package cli

import (
	"github.com/spf13/cobra"

	"github.com/deppfellow/oddstable/internal/database"
	"github.com/deppfellow/oddstable/internal/lib/utils"
)

func newSchemaCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Create the table and column families",
		Long: `
Creates the table and its info and odds column families when they are
missing. Existing families are left untouched, so it is safe to run again.
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, loggerService, opts, err := e.setup(cmd)
			if err != nil {
				return err
			}
			defer loggerService.Shutdown()

			db, err := database.Connect(cmd.Context(), cfg, log, loggerService, opts...)
			if err != nil {
				return err
			}
			defer db.Close()

			change, err := db.EnsureSchema(cmd.Context())
			if err != nil {
				return err
			}
			if err := db.Ping(cmd.Context()); err != nil {
				return err
			}
			return utils.PrintJSON(e.stdout, change)
		},
	}
}
