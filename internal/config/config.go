package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultRestTimeSeconds = 90
	DefaultTimezone        = "Local"
)

type Config struct {
	Environment string `toml:"-"`

	Host string `toml:"host"`
	Port int    `toml:"port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// postgres
	PostgresHost      string `toml:"postgres_host"`
	PostgresPort      string `toml:"postgres_port"`
	PostgresDBName    string `toml:"postgres_db_name"`
	MigrationsEnabled bool   `toml:"migrations_enabled"`

	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	// prometheus
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	// workout session
	Timezone             string   `toml:"timezone"`
	DefaultRestTime      int      `toml:"default_rest_time"`
	TimerTickInterval    Duration `toml:"timer_tick_interval"`
	SessionSnapshotTTL   Duration `toml:"session_snapshot_ttl"`
	ExercisesSeedPath    string   `toml:"exercises_seed_path"`
	WriteRateLimitPerMin int      `toml:"write_rate_limit_per_min"`

	// used by the CLI and the MCP server to reach the API
	APIBaseURL string `toml:"api_base_url"`
}

// Duration lets TOML carry values like "1s" or "12h".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parse duration [%s]: %w", text, err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("no config section for env: %s", env)
	}
	cfg.Environment = strings.ToLower(env)
	return cfg, nil
}

// Load reads the TOML file at path and returns the section for env, with defaults applied.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file [%s]: %w", path, err)
	}
	return t.Finalize(env)
}

// Parse is like Load, but reads the TOML from a string.
func Parse(env, data string) (*Config, error) {
	var t Toml
	if _, err := toml.Decode(data, &t); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return t.Finalize(env)
}

func (t *Toml) Finalize(env string) (*Config, error) {
	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	if c.DefaultRestTime == 0 {
		c.DefaultRestTime = DefaultRestTimeSeconds
	}
	if c.TimerTickInterval.Duration == 0 {
		c.TimerTickInterval.Duration = time.Second
	}
	if c.SessionSnapshotTTL.Duration == 0 {
		c.SessionSnapshotTTL.Duration = 12 * time.Hour
	}
	if c.WriteRateLimitPerMin == 0 {
		c.WriteRateLimitPerMin = 120
	}
	if c.APIBaseURL == "" && c.Port != 0 {
		c.APIBaseURL = fmt.Sprintf("http://%s:%d", c.Host, c.Port)
	}
}

func (c *Config) Validate() error {
	if c.Port <= 0 {
		return errors.New("port must be set")
	}
	if c.DefaultRestTime < 0 {
		return errors.New("default_rest_time must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the timezone used to bucket workouts into calendar days.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone [%s]: %w", c.Timezone, err)
	}
	return loc, nil
}
