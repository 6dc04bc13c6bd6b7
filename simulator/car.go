package simulator

import (
	"slices"

	"github.com/tiendc/go-deepcopy"

	"github.com/kilianp07/liftdispatch/core/model"
)

// Car is a simulated car. It implements host.Car: the Engine mirrors its
// destination queue into it and the simulation moves it one floor per tick
// toward the head of that queue.
type Car struct {
	id        model.CarID
	floor     int
	capacity  int
	queue     []int
	direction model.Direction
	riders    []*Passenger
	commits   int
	// idleSent is set once OnCarIdle was delivered for the current empty queue.
	idleSent bool
}

func newCar(id model.CarID, capacity int) *Car {
	return &Car{id: id, capacity: capacity}
}

func (c *Car) CurrentFloor() int { return c.floor }

func (c *Car) LoadFactor() float64 {
	if c.capacity == 0 {
		return 0
	}
	return float64(len(c.riders)) / float64(c.capacity)
}

func (c *Car) MaxCapacity() int { return c.capacity }

func (c *Car) DestinationDirection() model.Direction { return c.direction }

func (c *Car) DestinationCount() int { return len(c.queue) }

func (c *Car) PushDestination(floor int) { c.queue = append(c.queue, floor) }

func (c *Car) InsertDestinationAt(index, floor int) {
	index = min(max(index, 0), len(c.queue))
	c.queue = slices.Insert(c.queue, index, floor)
}

func (c *Car) PopFrontDestination() {
	if len(c.queue) > 0 {
		c.queue = slices.Delete(c.queue, 0, 1)
	}
}

// CommitDestinationQueue re-derives motion from the queue.
func (c *Car) CommitDestinationQueue() {
	c.commits++
	c.redirect()
	if len(c.queue) > 0 {
		c.idleSent = false
	}
}

func (c *Car) redirect() {
	if len(c.queue) == 0 {
		c.direction = model.Stopped
		return
	}
	c.direction = model.DirectionTo(c.floor, c.queue[0])
}

// dropReached removes the first queued occurrence of the current floor.
func (c *Car) dropReached() {
	if i := slices.Index(c.queue, c.floor); i >= 0 {
		c.queue = slices.Delete(c.queue, i, i+1)
	}
	c.redirect()
}

func (c *Car) full() bool { return len(c.riders) >= c.capacity }

// Snapshot is the externally visible state of a simulated car.
type Snapshot struct {
	ID     model.CarID `json:"id"`
	Floor  int         `json:"floor"`
	Queue  []int       `json:"queue"`
	Riders int         `json:"riders"`
}

// snapshot copies the car state so callers cannot alias the live queue.
func (c *Car) snapshot() Snapshot {
	var out Snapshot
	if err := deepcopy.Copy(&out, Snapshot{ID: c.id, Floor: c.floor, Queue: c.queue, Riders: len(c.riders)}); err != nil {
		panic(err)
	}
	return out
}
