// Package logger configures the application's logging, monitoring, and
// observability.
//
// It uses *zerolog* for logging and integrates with *New Relic* when a license
// key is configured, forwarding logs and attaching trace metadata so log lines
// and transactions can be correlated.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/newrelic/go-agent/v3/integrations/logcontext-v2/zerologWriter"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"

	"github.com/deppfellow/oddstable/internal/config"
)

// LoggerService holds the optional New Relic application.
//
// A zero LoggerService (or a nil pointer) is valid and means APM is disabled.
type LoggerService struct {
	nrApp *newrelic.Application
}

// NewLoggerService starts the New Relic agent when a license key is set.
// Agent start-up errors are reported on stderr and leave APM disabled.
func NewLoggerService(cfg *config.ObservabilityConfig) *LoggerService {
	service := &LoggerService{}
	if cfg == nil || !cfg.NewRelicEnabled() {
		return service
	}

	options := []newrelic.ConfigOption{
		newrelic.ConfigFromEnvironment(),
		newrelic.ConfigAppName(cfg.ServiceName),
		newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
		newrelic.ConfigAppLogForwardingEnabled(cfg.NewRelic.AppLogForwardingEnabled),
		newrelic.ConfigDistributedTracerEnabled(cfg.NewRelic.DistributedTracingEnabled),
	}
	if cfg.NewRelic.DebugLogging {
		options = append(options, newrelic.ConfigDebugLogger(os.Stderr))
	}

	app, err := newrelic.NewApplication(options...)
	if err != nil {
		fallback := zerolog.New(os.Stderr).With().Timestamp().Logger()
		fallback.Error().Err(err).Msg("failed to start new relic agent, continuing without APM")
		return service
	}

	service.nrApp = app
	return service
}

// GetApplication returns the New Relic application, or nil when disabled.
func (ls *LoggerService) GetApplication() *newrelic.Application {
	if ls == nil {
		return nil
	}
	return ls.nrApp
}

// Shutdown flushes pending APM data.
func (ls *LoggerService) Shutdown() {
	if app := ls.GetApplication(); app != nil {
		app.Shutdown(10 * time.Second)
	}
}

// NewLoggerWithService builds the application logger.
//
// Format "console" renders human-readable lines; "json" (the default in
// production) emits one JSON object per line. When loggerService carries a New
// Relic application, output goes through zerologWriter so log forwarding and
// trace decoration work.
func NewLoggerWithService(cfg *config.ObservabilityConfig, loggerService *LoggerService, out io.Writer) zerolog.Logger {
	if cfg == nil {
		cfg = config.DefaultObservabilityConfig()
	}

	level, err := zerolog.ParseLevel(cfg.GetLogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	var writer io.Writer = out
	if cfg.Logging.Format == "console" && !cfg.IsProduction() {
		writer = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	if app := loggerService.GetApplication(); app != nil {
		writer = zerologWriter.New(writer, app)
	}

	return zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Str("service", cfg.ServiceName).
		Str("environment", cfg.Environment).
		Logger()
}

// WithTraceContext decorates logger with the trace and span ids of txn.
func WithTraceContext(logger zerolog.Logger, txn *newrelic.Transaction) zerolog.Logger {
	if txn == nil {
		return logger
	}
	md := txn.GetTraceMetadata()
	return logger.With().
		Str("trace.id", md.TraceID).
		Str("span.id", md.SpanID).
		Logger()
}

// Elapsed starts an event reporting how long op took since started. The event
// is at warn once threshold is crossed and at debug otherwise; a zero
// threshold never warns. The caller adds fields and calls Msg.
func Elapsed(logger *zerolog.Logger, threshold time.Duration, op string, started time.Time) *zerolog.Event {
	took := time.Since(started)

	event := logger.Debug()
	if threshold > 0 && took >= threshold {
		event = logger.Warn().Bool("slow", true)
	}
	return event.Str("op", op).Dur("duration", took)
}
