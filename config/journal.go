package config

import "fmt"

// JournalConfig defines settings for the decision journal and its rotation.
type JournalConfig struct {
	Enabled bool `json:"enabled"`
	// Backend selects the store type: "jsonl" or "sqlite".
	Backend string `json:"backend"`
	// Path is the file location of the journal.
	Path string `json:"path"`
	// MaxSizeMB triggers rotation of a jsonl journal when the file exceeds
	// this size in megabytes. Zero disables rotation.
	MaxSizeMB int `json:"max_size_mb"`
	// MaxBackups limits the number of rotated files to keep.
	MaxBackups int `json:"max_backups"`
	// MaxAgeDays removes rotated files older than this number of days.
	MaxAgeDays int `json:"max_age_days"`
}

// SetDefaults applies sane defaults.
func (c *JournalConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "jsonl"
	}
	if c.Path == "" {
		c.Path = "dispatch.jsonl"
		if c.Backend == "sqlite" {
			c.Path = "dispatch.db"
		}
	}
}

// Validate checks mandatory fields.
func (c JournalConfig) Validate() error {
	if c.Backend != "jsonl" && c.Backend != "sqlite" {
		return fmt.Errorf("journal: unknown backend %s", c.Backend)
	}
	if c.Enabled && c.Path == "" {
		return fmt.Errorf("journal: path is required")
	}
	if c.MaxSizeMB < 0 || c.MaxBackups < 0 || c.MaxAgeDays < 0 {
		return fmt.Errorf("journal: rotation limits must not be negative")
	}
	return nil
}
