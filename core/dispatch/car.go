package dispatch

import (
	"slices"

	"github.com/kilianp07/liftdispatch/core/host"
	"github.com/kilianp07/liftdispatch/core/model"
)

// CarSpec describes one car the Engine dispatches.
type CarSpec struct {
	Host  host.Car
	Class model.CapacityClass
}

// CarSnapshot is a copy of the dispatch state of one car.
type CarSnapshot struct {
	ID        model.CarID         `json:"id"`
	Class     model.CapacityClass `json:"class"`
	Queue     []int               `json:"queue"`
	Idle      bool                `json:"idle"`
	Direction model.Direction     `json:"direction"`
	Parking   bool                `json:"parking"`
}

type carState struct {
	id        model.CarID
	class     model.CapacityClass
	host      host.Car
	queue     []int
	idle      bool
	direction model.Direction
	// parking is set while the only destination is the lobby trip of an
	// idle high-capacity car.
	parking bool
}

func (c *carState) snapshot() CarSnapshot {
	return CarSnapshot{
		ID:        c.id,
		Class:     c.class,
		Queue:     slices.Clone(c.queue),
		Idle:      c.idle,
		Direction: c.direction,
		Parking:   c.parking,
	}
}

// assignable reports whether the scheduler may hand the car a hall call.
func (c *carState) assignable() bool {
	if !c.idle || c.host.LoadFactor() != 0 {
		return false
	}
	return len(c.queue) == 0 || c.parking
}

// removeFirst drops the first occurrence of floor from the queue.
func (c *carState) removeFirst(floor int) bool {
	i := slices.Index(c.queue, floor)
	if i < 0 {
		return false
	}
	c.queue = slices.Delete(c.queue, i, i+1)
	return true
}

// nextFloor is the head of the queue, or -1.
func (c *carState) nextFloor() int {
	if len(c.queue) == 0 {
		return -1
	}
	return c.queue[0]
}
