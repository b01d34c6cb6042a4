package config

import (
	"errors"
	"fmt"
	"time"
	// Lambda runtimes ship without zoneinfo.
	_ "time/tzdata"

	"github.com/caarlos0/env/v11"
)

// Config holds all configuration for the application
type Config struct {
	// Slack configuration
	Token         string `env:"PIGEON_TOKEN,required,notEmpty"`  // Required: bot user OAuth token
	SigningSecret string `env:"PIGEON_SECRET,required,notEmpty"` // Required: request signing secret

	// Listener
	Port int `env:"PIGEON_PORT" envDefault:"3000"`

	// Log level and optional rotated log file
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`

	// Timezone schedules are evaluated in
	Timezone     string        `env:"PIGEON_TIMEZONE" envDefault:"America/New_York"`
	TickInterval time.Duration `env:"PIGEON_TICK_INTERVAL" envDefault:"60s"`
	APITimeout   time.Duration `env:"PIGEON_API_TIMEOUT" envDefault:"10s"`

	// Schedule document, read from a local file or an S3 object
	ScheduleFile   string `env:"PIGEON_SCHEDULE_FILE"`
	ScheduleBucket string `env:"PIGEON_SCHEDULE_BUCKET"`
	ScheduleKey    string `env:"PIGEON_SCHEDULE_KEY"`

	location *time.Location
}

// Load creates a new Config instance from environment variables. Every
// missing or invalid variable is reported in the returned error.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error

	location, err := time.LoadLocation(c.Timezone)
	if err != nil {
		errs = append(errs, fmt.Errorf("PIGEON_TIMEZONE: %w", err))
	}
	c.location = location

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PIGEON_PORT: %d out of range", c.Port))
	}
	if c.TickInterval <= 0 {
		errs = append(errs, errors.New("PIGEON_TICK_INTERVAL: must be positive"))
	}
	if c.APITimeout <= 0 {
		errs = append(errs, errors.New("PIGEON_API_TIMEOUT: must be positive"))
	}
	if (c.ScheduleBucket == "") != (c.ScheduleKey == "") {
		errs = append(errs, errors.New("PIGEON_SCHEDULE_BUCKET and PIGEON_SCHEDULE_KEY must be set together"))
	}
	if c.ScheduleFile != "" && c.ScheduleBucket != "" {
		errs = append(errs, errors.New("PIGEON_SCHEDULE_FILE and PIGEON_SCHEDULE_BUCKET are mutually exclusive"))
	}
	return errors.Join(errs...)
}

// Location returns the loaded PIGEON_TIMEZONE.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}
