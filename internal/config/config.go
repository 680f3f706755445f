// Package config defines the application configuration and its loading.
// Values come from an optional YAML file overlaid with STUDYLOOP_*
// environment variables, and are validated before use.
package config

// Config is the root configuration object.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Session   SessionConfig   `mapstructure:"session"`
}

// LoggerConfig controls the structured logger.
type LoggerConfig struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
}

// DatabaseConfig holds the postgres connection settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// SchedulerConfig holds the scheduling engine settings.
type SchedulerConfig struct {
	// TargetRetention is the FSRS request retention, in (0, 1].
	TargetRetention float64 `mapstructure:"target_retention" validate:"gt=0,lte=1"`
}

// SessionConfig holds session construction settings.
type SessionConfig struct {
	// ShuffleNew randomizes the order of new cards within a session.
	ShuffleNew bool `mapstructure:"shuffle_new"`
}
