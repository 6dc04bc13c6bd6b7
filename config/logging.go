package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// LoggingConfig defines the application log output.
type LoggingConfig struct {
	// Level is a zerolog level name such as "debug" or "info".
	Level string `json:"level"`
	// Format is "json" or "console". Empty falls back to APP_ENV detection.
	Format string `json:"format"`
}

// SetDefaults applies sane defaults.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
}

// Validate checks the level and format.
func (c LoggingConfig) Validate() error {
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Level)); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	switch c.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("logging: unknown format %s", c.Format)
	}
	return nil
}
