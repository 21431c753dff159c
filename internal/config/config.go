package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds the orchestrator tunables. Defaults follow the values the
// operators run with in production; everything is overridable per env.
type Config struct {
	HTTPAddr string `env:"HTTP_ADDR,default=:8080"`

	WorkerCount     int           `env:"WORKER_COUNT,default=5"`
	LockDuration    time.Duration `env:"LOCK_DURATION,default=30s"`
	MaxStalledCount int           `env:"MAX_STALLED_COUNT,default=2"`
	MaxAttempts     int           `env:"MAX_ATTEMPTS,default=3"`

	// BackoffBase is the unit multiplied by 2^attempts between retries.
	BackoffBase time.Duration `env:"BACKOFF_BASE,default=1s"`

	// Completed/failed items older than RetentionAge, or beyond
	// RetentionCount per state, are pruned opportunistically on complete.
	RetentionAge   time.Duration `env:"RETENTION_AGE,default=24h"`
	RetentionCount int           `env:"RETENTION_COUNT,default=1000"`

	CleanGraceDays int `env:"CLEAN_GRACE_DAYS,default=90"`

	// Timezone recurring schedules are evaluated in unless a trigger
	// carries its own.
	SchedulerTimezone string `env:"SCHEDULER_TZ,default=Australia/Sydney"`

	// Roles notified on permanent job failure and by the reporting jobs.
	OperatorRoles []string `env:"OPERATOR_ROLES,default=SystemAdmin"`

	PayrollBaseURL string `env:"PAYROLL_BASE_URL"`
	PayrollToken   string `env:"PAYROLL_TOKEN"`
	LMSBaseURL     string `env:"LMS_BASE_URL"`
	LMSToken       string `env:"LMS_TOKEN"`
}

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

	if cfg.WorkerCount < 1 {
		errors = append(errors, "WORKER_COUNT must be at least 1")
	}

	if cfg.LockDuration <= 0 {
		errors = append(errors, "LOCK_DURATION must be positive")
	}

	if cfg.MaxStalledCount < 0 {
		errors = append(errors, "MAX_STALLED_COUNT must be non-negative")
	}

	if cfg.MaxAttempts < 1 {
		errors = append(errors, "MAX_ATTEMPTS must be at least 1")
	}

	if cfg.BackoffBase <= 0 {
		errors = append(errors, "BACKOFF_BASE must be positive")
	}

	if cfg.BackoffBase > 10*time.Minute {
		errors = append(errors, "BACKOFF_BASE must not exceed 10 minutes")
	}

	if cfg.CleanGraceDays < 1 {
		errors = append(errors, "CLEAN_GRACE_DAYS must be at least 1")
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "; "))
	}

	return nil
}
