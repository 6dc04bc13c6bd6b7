// Package host declares the collaborator interface the dispatch core
// consumes from the host that owns the physical cars.
//
// The core keeps its own canonical destination queue per car and mirrors
// every mutation through the methods below, followed by a call to
// CommitDestinationQueue which tells the host to re-derive motion. Host
// implementations must not call back into the dispatch Engine from any of
// these methods: the Engine holds its lock while invoking them.
package host

import "github.com/kilianp07/liftdispatch/core/model"

// Car is the host-side view of one car.
type Car interface {
	// CurrentFloor is the floor the car is at or last passed.
	CurrentFloor() int
	// LoadFactor is the occupied fraction of capacity in [0,1].
	LoadFactor() float64
	// MaxCapacity is the passenger capacity of the car.
	MaxCapacity() int
	// DestinationDirection is the direction the host is currently moving the car.
	DestinationDirection() model.Direction
	// DestinationCount is the length of the host's copy of the queue.
	DestinationCount() int

	PushDestination(floor int)
	InsertDestinationAt(index, floor int)
	PopFrontDestination()
	CommitDestinationQueue()
}
