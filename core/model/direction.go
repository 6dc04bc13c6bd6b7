package model

import (
	"fmt"
	"strings"
)

// Direction describes the travel direction of a car or the requested
// direction of a hall call.
type Direction int

const (
	Stopped Direction = iota
	Up
	Down
	// Any matches both hall-call directions. It is only meaningful for demand
	// queries and is never stored on a car or a call.
	Any
)

// String returns the lower-case name of the direction.
func (d Direction) String() string {
	switch d {
	case Stopped:
		return "stopped"
	case Up:
		return "up"
	case Down:
		return "down"
	case Any:
		return "any"
	default:
		return "unknown"
	}
}

// IsHallDirection reports whether d can identify a hall call.
func (d Direction) IsHallDirection() bool { return d == Up || d == Down }

// ParseDirection converts a textual direction as found in configuration and
// wire messages.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "stopped", "stop", "none":
		return Stopped, nil
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	case "any":
		return Any, nil
	}
	return Stopped, fmt.Errorf("unknown direction %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Direction) UnmarshalText(b []byte) error {
	v, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// DirectionTo returns the direction a car at from travels to reach to.
func DirectionTo(from, to int) Direction {
	switch {
	case to > from:
		return Up
	case to < from:
		return Down
	default:
		return Stopped
	}
}
