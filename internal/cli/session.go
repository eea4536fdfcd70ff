package cli

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"google.golang.org/api/option"

	"github.com/deppfellow/oddstable/internal/config"
	"github.com/deppfellow/oddstable/internal/logger"
	"github.com/deppfellow/oddstable/internal/repository"
	"github.com/deppfellow/oddstable/internal/server"
	"github.com/deppfellow/oddstable/internal/service"
)

const shutdownTimeout = 10 * time.Second

// session is the state of one command run.
type session struct {
	server   *server.Server
	services *service.Services
}

func (s *session) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		s.server.Logger.Error().Err(err).Msg("shutdown failed")
	}
}

// setup loads config and builds the logger. Nothing is dialled yet.
func (e *env) setup(cmd *cobra.Command) (*config.Config, *zerolog.Logger, *logger.LoggerService, []option.ClientOption, error) {
	cfg, err := config.LoadConfig(cmd.Flags())
	if err != nil {
		return nil, nil, nil, nil, err
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	log := logger.NewLoggerWithService(cfg.Observability, loggerService, e.stderr)
	log = log.With().Str("command", cmd.Name()).Logger()

	var opts []option.ClientOption
	if e.clientOptions != nil {
		opts, err = e.clientOptions()
		if err != nil {
			loggerService.Shutdown()
			return nil, nil, nil, nil, err
		}
	}
	return cfg, &log, loggerService, opts, nil
}

// open connects to Bigtable and builds the repositories and services.
func (e *env) open(cmd *cobra.Command) (*session, error) {
	cfg, log, loggerService, opts, err := e.setup(cmd)
	if err != nil {
		return nil, err
	}

	srv, err := server.New(cmd.Context(), cfg, log, loggerService, opts...)
	if err != nil {
		loggerService.Shutdown()
		return nil, err
	}

	services, err := service.NewService(srv, repository.NewRepositories(srv))
	if err != nil {
		_ = srv.Shutdown(context.Background())
		return nil, err
	}

	return &session{server: srv, services: services}, nil
}
