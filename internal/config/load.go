package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from the given YAML file (optional; pass an
// empty path to rely on defaults and environment only), overlays
// STUDYLOOP_* environment variables, and validates the result.
//
// Environment variables map section and key with an underscore, e.g.
// STUDYLOOP_DATABASE_URL or STUDYLOOP_SCHEDULER_TARGET_RETENTION.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("logger.level", "info")
	// Registering the key lets AutomaticEnv pick it up during Unmarshal;
	// the required validation rejects the empty default.
	v.SetDefault("database.url", "")
	v.SetDefault("scheduler.target_retention", 0.9)
	v.SetDefault("session.shuffle_new", true)

	v.SetEnvPrefix("STUDYLOOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}
