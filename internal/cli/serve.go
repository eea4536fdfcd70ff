package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/deppfellow/oddstable/internal/handler"
	"github.com/deppfellow/oddstable/internal/router"
)

func newServeCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only HTTP query API",
		Long: `
Serves GET /status, GET /api/v1/odds/:rowkey and GET /api/v1/odds until
interrupted, then drains in-flight requests.
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := e.open(cmd)
			if err != nil {
				return err
			}

			s := sess.server
			s.SetupHTTPServer(router.NewRouter(s, handler.NewHandlers(s, sess.services)))

			errCh := make(chan error, 1)
			go func() {
				errCh <- s.Start()
			}()

			select {
			case err = <-errCh:
			case <-cmd.Context().Done():
				s.Logger.Info().Msg("shutting down server")
			}

			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if serr := s.Shutdown(ctx); serr != nil && err == nil {
				err = serr
			}
			return err
		},
	}

	cmd.Flags().String("port", "8080", "HTTP listen port")
	return cmd
}
