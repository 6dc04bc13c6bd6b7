package dispatch

import (
	"fmt"
	"time"
)

// TieBreak selects which candidate wins when two hall calls rate equally
// for the same car.
type TieBreak string

const (
	// TieFirstSeen keeps the earlier candidate in arrival order.
	TieFirstSeen TieBreak = "first_seen"
	// TieLastSeen lets a later equal-scoring candidate replace the best match.
	TieLastSeen TieBreak = "last_seen"
)

const (
	defaultCapacityThreshold = 0.9
	defaultTickMS            = 250
)

// Config defines dispatch-related settings.
type Config struct {
	TieBreak TieBreak `json:"tie_break"`
	// CapacityThreshold is the load factor at or above which a passing car
	// will not claim a hall call.
	CapacityThreshold float64 `json:"capacity_threshold"`
	// StrictInvariants panics on ledger violations instead of skipping them.
	StrictInvariants bool `json:"strict_invariants"`
	ParkingDisabled  bool `json:"parking_disabled"`
	LobbyFloor       int  `json:"lobby_floor"`
	TickMS           int  `json:"tick_ms"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.TieBreak == "" {
		c.TieBreak = TieFirstSeen
	}
	if c.CapacityThreshold == 0 {
		c.CapacityThreshold = defaultCapacityThreshold
	}
	if c.TickMS == 0 {
		c.TickMS = defaultTickMS
	}
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	switch c.TieBreak {
	case TieFirstSeen, TieLastSeen:
	default:
		return fmt.Errorf("dispatch: unknown tie_break %q", c.TieBreak)
	}
	if c.CapacityThreshold <= 0 || c.CapacityThreshold > 1 {
		return fmt.Errorf("dispatch: capacity_threshold must be in (0,1], got %v", c.CapacityThreshold)
	}
	if c.TickMS < 0 {
		return fmt.Errorf("dispatch: tick_ms must be positive")
	}
	if c.LobbyFloor < 0 {
		return fmt.Errorf("dispatch: lobby_floor must not be negative")
	}
	return nil
}

// Tick is the interval of the periodic assignment pass.
func (c Config) Tick() time.Duration {
	return time.Duration(c.TickMS) * time.Millisecond
}
