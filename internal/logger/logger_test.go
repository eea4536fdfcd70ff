package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/oddstable/internal/config"
	"github.com/deppfellow/oddstable/internal/logger"
)

func jsonConfig(level string) *config.ObservabilityConfig {
	cfg := config.DefaultObservabilityConfig()
	cfg.Logging.Format = "json"
	cfg.Logging.Level = level
	return cfg
}

func TestNewLoggerWithService_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewLoggerWithService(jsonConfig("info"), nil, &buf)

	log.Debug().Msg("hidden")
	log.Info().Str("table", "odds").Msg("connected")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "connected", entry["message"])
	assert.Equal(t, "odds", entry["table"])
	assert.Equal(t, config.ServiceName, entry["service"])
	assert.Contains(t, entry, "time")
}

func TestNewLoggerService_DisabledWithoutLicense(t *testing.T) {
	ls := logger.NewLoggerService(config.DefaultObservabilityConfig())
	assert.Nil(t, ls.GetApplication())
	ls.Shutdown()

	var nilService *logger.LoggerService
	assert.Nil(t, nilService.GetApplication())
}

func TestElapsed(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewLoggerWithService(jsonConfig("debug"), nil, &buf)

	logger.Elapsed(&log, time.Hour, "read_row", time.Now()).Msg("fast")
	logger.Elapsed(&log, time.Nanosecond, "read_rows", time.Now().Add(-time.Second)).Msg("slow")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var fast, slow map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[0], &fast))
	require.NoError(t, json.Unmarshal(lines[1], &slow))

	assert.Equal(t, "debug", fast["level"])
	assert.Equal(t, "read_row", fast["op"])
	assert.Equal(t, "warn", slow["level"])
	assert.Equal(t, true, slow["slow"])
}
