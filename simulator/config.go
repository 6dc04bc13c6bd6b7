package simulator

import "fmt"

// Config holds parameters for the simulator.
type Config struct {
	Seed int64 `json:"seed"`
	// Ticks is the length of the run.
	Ticks int `json:"ticks"`
	// SpawnRate is the expected number of new passengers per tick.
	SpawnRate float64 `json:"spawn_rate"`
	// QuietTicks are the final ticks during which nobody spawns, so the
	// fleet can drain.
	QuietTicks int `json:"quiet_ticks"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.Seed == 0 {
		c.Seed = 1
	}
	if c.Ticks == 0 {
		c.Ticks = 600
	}
	if c.SpawnRate == 0 {
		c.SpawnRate = 0.3
	}
	if c.QuietTicks == 0 {
		c.QuietTicks = c.Ticks / 4
	}
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	if c.Ticks <= 0 {
		return fmt.Errorf("simulation: ticks must be positive")
	}
	if c.SpawnRate < 0 {
		return fmt.Errorf("simulation: spawn_rate must not be negative")
	}
	if c.QuietTicks < 0 || c.QuietTicks > c.Ticks {
		return fmt.Errorf("simulation: quiet_ticks must be within [0, ticks]")
	}
	return nil
}
