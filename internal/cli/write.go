package cli

import (
	"github.com/spf13/cobra"

	"github.com/deppfellow/oddstable/internal/lib/utils"
)

func newWriteCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "write <csv>",
		Short: "Load an odds CSV export into the table",
		Long: `
Reads the CSV file row by row and writes one Bigtable row per line, in file
order. The header must name oddSeq, created_ts, market, game_state, score,
game_time, vendor, k, h, a, d, ov and ud.

Lines that cannot be parsed are reported and skipped. A store failure stops
the run. The report is printed as JSON on stdout.
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := e.open(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			report, err := sess.services.Ingest.IngestFile(cmd.Context(), args[0], sess.services.Ingest.Defaults())
			if report != nil {
				if perr := utils.PrintJSON(e.stdout, report); perr != nil && err == nil {
					err = perr
				}
			}
			return err
		},
	}

	flags := cmd.Flags()
	flags.String("sport-id", "", "sport ID of every row in the file")
	flags.String("league-id", "", "league ID of every row in the file")
	flags.String("match-id", "", "match ID of every row in the file")
	flags.String("csv-delimiter", ",", "CSV field delimiter")
	flags.String("timezone", "UTC", "IANA zone for timestamps without an offset")
	return cmd
}
