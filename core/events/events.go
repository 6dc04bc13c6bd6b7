package events

import (
	"time"

	"github.com/kilianp07/liftdispatch/core/model"
)

// AssignmentEvent is published when an assignment pass dispatches a car.
type AssignmentEvent struct {
	PassID string
	Car    model.CarID
	Class  model.CapacityClass
	Call   model.HallCall
	Score  int
	Time   time.Time
}

// ClaimEvent is published when a car commits a hall call outside an
// assignment pass. Reason is "passing" or "arrival".
type ClaimEvent struct {
	Car      model.CarID
	Call     model.HallCall
	Reason   string
	Override bool
	Previous model.CarID
	Time     time.Time
}

// CancellationEvent is published when the leading destination of an empty
// car is dropped because ServedBy stopped at that floor.
type CancellationEvent struct {
	Car      model.CarID
	Floor    int
	ServedBy model.CarID
	Idle     bool
	Time     time.Time
}

// ParkEvent is published when an idle car is sent to the lobby.
type ParkEvent struct {
	Car   model.CarID
	Floor int
	Time  time.Time
}

// ViolationEvent reports an invariant violation that was skipped.
type ViolationEvent struct {
	Kind string
	Car  model.CarID
	Call model.HallCall
	Err  error
	Time time.Time
}

// PassEvent is published for every assignment pass. Outcome is one of
// "assigned", "no_match", "no_calls" or "busy".
type PassEvent struct {
	PassID   string
	Outcome  string
	Duration time.Duration
	Time     time.Time
}
