package cli

import (
	"github.com/spf13/cobra"

	"github.com/deppfellow/oddstable/internal/lib/utils"
	"github.com/deppfellow/oddstable/internal/service"
)

func newScanCommand(e *env) *cobra.Command {
	var req service.ScanRequest

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Read a key range",
		Long: `
Prints every row in [start-rowkey, stop-rowkey) as one JSON record per line,
in key order. Without a stop key the scan runs to the end of the table.
--prefix selects every key starting with the prefix instead; a start key
under the same prefix resumes the scan from that key.

Keys compare as strings: "...:1000" sorts before "...:999".
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := req.Validate(); err != nil {
				return err
			}

			sess, err := e.open(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			out := utils.NewJSONLines(e.stdout)
			var writeErr error
			skipped := 0

			err = sess.services.Query.Scan(cmd.Context(), req, func(r service.Result) bool {
				if r.Err != nil {
					skipped++
					return true
				}
				writeErr = out.Write(r.Record)
				return writeErr == nil
			})
			if err != nil {
				return err
			}
			if skipped > 0 {
				sess.server.Logger.Warn().Int("skipped", skipped).Msg("some rows could not be assembled")
			}
			return writeErr
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&req.Start, "start-rowkey", "", "first row key, inclusive")
	flags.StringVar(&req.Stop, "stop-rowkey", "", "last row key, exclusive")
	flags.StringVar(&req.Prefix, "prefix", "", "read every key with this prefix")
	flags.Int64Var(&req.Limit, "limit", 0, "maximum number of rows, 0 for no limit")
	return cmd
}
