package config_test

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/oddstable/internal/config"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ODDSTABLE_BIGTABLE.PROJECT", "test-project")
	t.Setenv("ODDSTABLE_BIGTABLE.INSTANCE", "test-instance")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := config.LoadConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Primary.Env)
	assert.Equal(t, "test-project", cfg.Bigtable.Project)
	assert.Equal(t, "test-instance", cfg.Bigtable.Instance)
	assert.Equal(t, "odds", cfg.Bigtable.Table)
	assert.Equal(t, 1, cfg.Bigtable.MaxVersions)
	assert.Equal(t, 10*time.Second, cfg.Bigtable.Timeout)
	assert.Equal(t, ":", cfg.RowKey.Delimiter)
	assert.Equal(t, ",", cfg.Ingest.CSVDelimiter)
	assert.Equal(t, "UTC", cfg.Ingest.Timezone)
	assert.Equal(t, "8080", cfg.Server.Port)

	require.NotNil(t, cfg.Observability)
	assert.Equal(t, config.ServiceName, cfg.Observability.ServiceName)
	assert.Equal(t, "development", cfg.Observability.Environment)
	assert.False(t, cfg.Observability.NewRelicEnabled())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ODDSTABLE_PRIMARY.ENV", "production")
	t.Setenv("ODDSTABLE_BIGTABLE__TABLE", "odds_v2")
	t.Setenv("ODDSTABLE_BIGTABLE.TIMEOUT", "3s")
	t.Setenv("ODDSTABLE_ROWKEY.DELIMITER", "#")
	t.Setenv("ODDSTABLE_INGEST.SPORT_ID", "1")
	t.Setenv("ODDSTABLE_OBSERVABILITY.LOGGING.SLOW_QUERY_THRESHOLD", "250ms")

	cfg, err := config.LoadConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, "odds_v2", cfg.Bigtable.Table)
	assert.Equal(t, 3*time.Second, cfg.Bigtable.Timeout)
	assert.Equal(t, "#", cfg.RowKey.Delimiter)
	assert.Equal(t, "1", cfg.Ingest.SportID)
	assert.Equal(t, 250*time.Millisecond, cfg.Observability.Logging.SlowQueryThreshold)
	assert.Equal(t, "production", cfg.Observability.Environment)
	assert.True(t, cfg.Observability.IsProduction())

	// Unset env values keep their defaults.
	assert.Equal(t, "console", cfg.Observability.Logging.Format)
	assert.Equal(t, "UTC", cfg.Ingest.Timezone)
}

func TestLoadConfig_FlagsWinOverEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ODDSTABLE_BIGTABLE.TABLE", "from_env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("table", "odds", "")
	flags.String("rowkey-sep", ":", "")
	flags.String("instance", "", "")
	flags.Int("limit", 0, "")
	require.NoError(t, flags.Parse([]string{"--table", "from_flag", "--limit", "5"}))

	cfg, err := config.LoadConfig(flags)
	require.NoError(t, err)

	assert.Equal(t, "from_flag", cfg.Bigtable.Table)
	assert.Equal(t, "test-instance", cfg.Bigtable.Instance, "unchanged flags do not clobber env")
	assert.Equal(t, ":", cfg.RowKey.Delimiter)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing project", env: map[string]string{"ODDSTABLE_BIGTABLE.INSTANCE": "i"}},
		{name: "bad log level", env: map[string]string{
			"ODDSTABLE_BIGTABLE.PROJECT":            "p",
			"ODDSTABLE_BIGTABLE.INSTANCE":           "i",
			"ODDSTABLE_OBSERVABILITY.LOGGING.LEVEL": "verbose",
		}},
		{name: "unknown timezone", env: map[string]string{
			"ODDSTABLE_BIGTABLE.PROJECT":  "p",
			"ODDSTABLE_BIGTABLE.INSTANCE": "i",
			"ODDSTABLE_INGEST.TIMEZONE":   "Mars/Olympus",
		}},
		{name: "multi character csv delimiter", env: map[string]string{
			"ODDSTABLE_BIGTABLE.PROJECT":     "p",
			"ODDSTABLE_BIGTABLE.INSTANCE":    "i",
			"ODDSTABLE_INGEST.CSV_DELIMITER": ";;",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := config.LoadConfig(nil)
			assert.Error(t, err)
		})
	}
}

func TestObservabilityConfig_GetLogLevel(t *testing.T) {
	c := config.DefaultObservabilityConfig()
	c.Logging.Level = ""

	c.Environment = "production"
	assert.Equal(t, "info", c.GetLogLevel())

	c.Environment = "development"
	assert.Equal(t, "debug", c.GetLogLevel())

	c.Logging.Level = "warn"
	assert.Equal(t, "warn", c.GetLogLevel())
}
