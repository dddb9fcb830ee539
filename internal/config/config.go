package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/sirupsen/logrus"
)

// Config carries all runtime settings for the sync engine. Everything comes
// from the environment so the api, worker, and migrate binaries share one
// source of configuration.
type Config struct {
	ListenAddr string `env:"LISTEN_ADDR,default=:8080"`

	// Secrets distinguishing platform cron callers from operators. Verified
	// by middleware before any queue operation runs.
	CronSecret  string `env:"CRON_SECRET"`
	AdminAPIKey string `env:"ADMIN_API_KEY"`

	// Court records API.
	CourtAPIBaseURL string        `env:"COURT_API_BASE_URL,default=https://www.courtlistener.com/api/rest/v4"`
	CourtAPIToken   string        `env:"COURT_API_TOKEN"`
	CourtAPIDelay   time.Duration `env:"COURT_API_DELAY,default=1s"`
	CourtAPITimeout time.Duration `env:"COURT_API_TIMEOUT,default=30s"`

	// Queue behaviour.
	MaxRetries   int           `env:"SYNC_MAX_RETRIES,default=3"`
	PollInterval time.Duration `env:"SYNC_POLL_INTERVAL,default=5s"`
	LockDuration time.Duration `env:"SYNC_LOCK_DURATION,default=10m"`
	CronSpec     string        `env:"SYNC_CRON_SPEC,default=30 2 * * *"`

	// Health snapshot thresholds (spec defaults; tune per deployment).
	HealthCriticalRate    float64 `env:"HEALTH_CRITICAL_RATE,default=75"`
	HealthWarningRate     float64 `env:"HEALTH_WARNING_RATE,default=90"`
	HealthCautionRate     float64 `env:"HEALTH_CAUTION_RATE,default=95"`
	HealthCriticalBacklog int64   `env:"HEALTH_CRITICAL_BACKLOG,default=100"`
	HealthWarningBacklog  int64   `env:"HEALTH_WARNING_BACKLOG,default=50"`
	HealthCautionBacklog  int64   `env:"HEALTH_CAUTION_BACKLOG,default=20"`

	LogLevel string `env:"LOG_LEVEL,default=info"`
}

// to help with testing
var envProcess = envconfig.Process

func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envProcess(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	if cfg.MaxRetries < 0 {
		errors = append(errors, "SYNC_MAX_RETRIES must be non-negative")
	}

	if cfg.PollInterval <= 0 {
		errors = append(errors, "SYNC_POLL_INTERVAL must be positive")
	}

	if cfg.CourtAPIDelay <= 0 {
		errors = append(errors, "COURT_API_DELAY must be positive")
	}

	if cfg.CourtAPIDelay > time.Minute {
		errors = append(errors, "COURT_API_DELAY must not exceed 1 minute")
	}

	if strings.TrimSpace(cfg.CourtAPIBaseURL) == "" {
		errors = append(errors, "COURT_API_BASE_URL is required")
	}

	if !(cfg.HealthCriticalRate <= cfg.HealthWarningRate && cfg.HealthWarningRate <= cfg.HealthCautionRate) {
		errors = append(errors, "health rate thresholds must be ordered critical <= warning <= caution")
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "; "))
	}

	return nil
}

// ConfigureLogging sets up the process-wide logrus logger: JSON output with
// the level taken from LOG_LEVEL.
func (c *Config) ConfigureLogging() {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		logrus.Warnf("Invalid log level '%s', defaulting to 'info'", c.LogLevel)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}
