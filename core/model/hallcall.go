package model

import "fmt"

// HallCall identifies a pending request at a floor for service in one
// direction. It is comparable and used directly as a map key.
type HallCall struct {
	Floor     int       `json:"floor"`
	Direction Direction `json:"direction"`
}

func (c HallCall) String() string {
	return fmt.Sprintf("%d/%s", c.Floor, c.Direction)
}

// LightState mirrors the hall button lights of a floor.
type LightState struct {
	Up   bool `json:"up"`
	Down bool `json:"down"`
}

// Lit reports whether the light for the given direction is on. Any matches
// either light.
func (l LightState) Lit(d Direction) bool {
	switch d {
	case Up:
		return l.Up
	case Down:
		return l.Down
	case Any:
		return l.Up || l.Down
	}
	return false
}
