package model

import (
	"fmt"
	"strings"
)

// CarID is the stable index of a car in the fleet.
type CarID int

// CapacityClass groups cars by passenger capacity. Standard cars are scanned
// before HighCapacity cars when idle cars are matched to hall calls.
type CapacityClass int

const (
	Standard CapacityClass = iota
	HighCapacity
)

// String returns the configuration name of the class.
func (c CapacityClass) String() string {
	switch c {
	case Standard:
		return "standard"
	case HighCapacity:
		return "high_capacity"
	default:
		return "unknown"
	}
}

// ParseCapacityClass converts a configuration value into a CapacityClass.
func ParseCapacityClass(s string) (CapacityClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "standard", "std":
		return Standard, nil
	case "high_capacity", "high", "large":
		return HighCapacity, nil
	}
	return Standard, fmt.Errorf("unknown capacity class %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (c CapacityClass) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *CapacityClass) UnmarshalText(b []byte) error {
	v, err := ParseCapacityClass(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
