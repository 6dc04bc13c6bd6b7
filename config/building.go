package config

import (
	"fmt"

	"github.com/kilianp07/liftdispatch/core/model"
)

// CarConfig describes one car of the building.
type CarConfig struct {
	MaxCapacity int `json:"max_capacity"`
	// Class forces the capacity class. Empty lets Classes decide.
	Class string `json:"class"`
}

// BuildingConfig describes the floors and cars.
type BuildingConfig struct {
	Floors int         `json:"floors"`
	Cars   []CarConfig `json:"cars"`
}

// Validate checks mandatory fields.
func (b BuildingConfig) Validate() error {
	if b.Floors < 2 {
		return fmt.Errorf("building: at least 2 floors required")
	}
	if len(b.Cars) == 0 {
		return fmt.Errorf("building: at least one car required")
	}
	for i, c := range b.Cars {
		if c.MaxCapacity <= 0 {
			return fmt.Errorf("building: car %d max_capacity must be positive", i)
		}
		if c.Class != "" {
			if _, err := model.ParseCapacityClass(c.Class); err != nil {
				return fmt.Errorf("building: car %d: %w", i, err)
			}
		}
	}
	return nil
}

// Capacities returns the max capacity of every car in id order.
func (b BuildingConfig) Capacities() []int {
	out := make([]int, len(b.Cars))
	for i, c := range b.Cars {
		out[i] = c.MaxCapacity
	}
	return out
}

// Classes returns the capacity class of every car. A car without an explicit
// class is HighCapacity when its capacity is strictly above the fleet
// average.
func (b BuildingConfig) Classes() ([]model.CapacityClass, error) {
	if len(b.Cars) == 0 {
		return nil, nil
	}
	total := 0
	for _, c := range b.Cars {
		total += c.MaxCapacity
	}
	avg := float64(total) / float64(len(b.Cars))
	out := make([]model.CapacityClass, len(b.Cars))
	for i, c := range b.Cars {
		if c.Class != "" {
			cls, err := model.ParseCapacityClass(c.Class)
			if err != nil {
				return nil, fmt.Errorf("car %d: %w", i, err)
			}
			out[i] = cls
			continue
		}
		if float64(c.MaxCapacity) > avg {
			out[i] = model.HighCapacity
		}
	}
	return out, nil
}
