package cli

import (
	"github.com/spf13/cobra"

	"github.com/deppfellow/oddstable/internal/errs"
	"github.com/deppfellow/oddstable/internal/lib/utils"
)

func newGetCommand(e *env) *cobra.Command {
	var keys []string

	cmd := &cobra.Command{
		Use:   "get --rowkey KEY [--rowkey KEY...]",
		Short: "Read rows by key",
		Long: `
Reads each row key in turn and prints one JSON record per line. Keys that are
malformed, missing or incomplete are logged and skipped.
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(keys) == 0 {
				return errs.NewInvalidRequest("at least one --rowkey is required")
			}

			sess, err := e.open(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			results, err := sess.services.Query.Get(cmd.Context(), keys, "")
			out := utils.NewJSONLines(e.stdout)
			for _, r := range results {
				if r.Err != nil {
					sess.server.Logger.Warn().Err(r.Err).Str("rowkey", r.Key).Msg("row skipped")
					continue
				}
				if werr := out.Write(r.Record); werr != nil {
					return werr
				}
			}
			return err
		},
	}

	cmd.Flags().StringArrayVar(&keys, "rowkey", nil, "row key to read (repeatable)")
	return cmd
}
