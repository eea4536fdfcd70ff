// Package config manages runtime configuration.
//
// Values are layered, later sources winning:
//   - built-in defaults (see Default)
//   - a `.env` file, if present, loaded into the process env by godotenv
//   - environment variables prefixed with ODDSTABLE_
//   - command-line flags that were explicitly set
//
// The result is validated with go-playground/validator so a bad or missing
// value fails before any connection to Bigtable is attempted.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Side-effect import: loads `.env` into the process env before we read it.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix is stripped from environment variable names before they are
// mapped onto config keys. Nesting uses "." or "__":
//
//	ODDSTABLE_BIGTABLE.PROJECT  -> bigtable.project
//	ODDSTABLE_BIGTABLE__PROJECT -> bigtable.project
const EnvPrefix = "ODDSTABLE_"

// ServiceName tags logs and APM data.
const ServiceName = "oddstable"

// Config is the root configuration object.
//
// Observability is a pointer for parity with the other optional blocks a
// deployment may omit; Default always fills it.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Bigtable      BigtableConfig       `koanf:"bigtable" validate:"required"`
	RowKey        RowKeyConfig         `koanf:"rowkey" validate:"required"`
	Ingest        IngestConfig         `koanf:"ingest" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// BigtableConfig locates the table and controls how the client connects.
type BigtableConfig struct {
	Project    string `koanf:"project" validate:"required"`
	Instance   string `koanf:"instance" validate:"required"`
	Table      string `koanf:"table" validate:"required"`
	AppProfile string `koanf:"app_profile"`

	// EmulatorHost points the client at a local emulator ("localhost:8086").
	// The client library also honours BIGTABLE_EMULATOR_HOST on its own.
	EmulatorHost string `koanf:"emulator_host"`

	// MaxVersions is the GC policy applied to families created by the schema
	// command. Only the latest cell is ever read.
	MaxVersions int `koanf:"max_versions" validate:"min=1"`

	// ClientMetrics enables the client's built-in export of request metrics
	// to Cloud Monitoring. Off for emulators and tests.
	ClientMetrics bool `koanf:"client_metrics"`

	// AutoCreate provisions the table and families on start-up when missing.
	AutoCreate bool `koanf:"auto_create"`

	// Timeout bounds the reachability check made when connecting.
	Timeout time.Duration `koanf:"timeout" validate:"min=1s"`
}

// RowKeyConfig holds the delimiter used to join identity fields.
type RowKeyConfig struct {
	Delimiter string `koanf:"delimiter" validate:"required"`
}

// IngestConfig carries the operator-supplied parameters of a CSV load.
//
// SportID, LeagueID and MatchID identify the batch. They are not validated
// here because only the write command needs them.
type IngestConfig struct {
	SportID      string `koanf:"sport_id"`
	LeagueID     string `koanf:"league_id"`
	MatchID      string `koanf:"match_id"`
	CSVDelimiter string `koanf:"csv_delimiter" validate:"required,len=1"`

	// Timezone is applied to created_ts values without a UTC offset.
	Timezone string `koanf:"timezone" validate:"required"`
}

// Location resolves Timezone.
func (c IngestConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("ingest timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// ServerConfig groups settings for the HTTP query API. Timeouts are seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`

	// RateLimit is requests per second per client IP. Zero disables limiting.
	RateLimit float64 `koanf:"rate_limit" validate:"min=0"`
}

// Default returns the configuration used before any source is applied.
func Default() *Config {
	return &Config{
		Primary: Primary{Env: "development"},
		Bigtable: BigtableConfig{
			Table:       "odds",
			MaxVersions: 1,
			Timeout:     10 * time.Second,
		},
		RowKey: RowKeyConfig{Delimiter: ":"},
		Ingest: IngestConfig{
			CSVDelimiter: ",",
			Timezone:     "UTC",
		},
		Server: ServerConfig{
			Port:               "8080",
			ReadTimeout:        30,
			WriteTimeout:       30,
			IdleTimeout:        60,
			CORSAllowedOrigins: []string{"*"},
			RateLimit:          20,
		},
		Observability: DefaultObservabilityConfig(),
	}
}

// FlagKeys maps command-line flag names onto config keys. Flags not listed
// here are command options and never reach the config.
var FlagKeys = map[string]string{
	"env":           "primary.env",
	"project":       "bigtable.project",
	"instance":      "bigtable.instance",
	"table":         "bigtable.table",
	"app-profile":   "bigtable.app_profile",
	"emulator-host": "bigtable.emulator_host",
	"auto-create":   "bigtable.auto_create",
	"rowkey-sep":    "rowkey.delimiter",
	"sport-id":      "ingest.sport_id",
	"league-id":     "ingest.league_id",
	"match-id":      "ingest.match_id",
	"csv-delimiter": "ingest.csv_delimiter",
	"timezone":      "ingest.timezone",
	"port":          "server.port",
	"log-level":     "observability.logging.level",
	"log-format":    "observability.logging.format",
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// LoadConfig builds the configuration from defaults, env and flags, then
// validates it. flags may be nil.
func LoadConfig(flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := FlagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, fmt.Errorf("could not load flags: %w", err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks struct tags and the observability rules. ServiceName and
// Environment are forced so every log line carries the same labels.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if c.Observability == nil {
		c.Observability = DefaultObservabilityConfig()
	}
	c.Observability.ServiceName = ServiceName
	c.Observability.Environment = c.Primary.Env

	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("invalid observability config: %w", err)
	}

	if _, err := c.Ingest.Location(); err != nil {
		return err
	}
	return nil
}
