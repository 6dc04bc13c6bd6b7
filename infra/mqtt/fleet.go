package mqtt

import (
	"slices"
	"sync"

	"github.com/kilianp07/liftdispatch/core/host"
	"github.com/kilianp07/liftdispatch/core/model"
)

// RemoteCar implements host.Car for a car driven over MQTT. Position, load
// and direction come from state reports; the destination queue is the copy
// the Engine mirrors into it. A commit only records the queue for
// publication, so no method blocks on the network.
type RemoteCar struct {
	id    model.CarID
	fleet *Fleet

	mu        sync.Mutex
	floor     int
	load      float64
	capacity  int
	direction model.Direction
	queue     []int
}

func (c *RemoteCar) CurrentFloor() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.floor
}

func (c *RemoteCar) LoadFactor() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load
}

func (c *RemoteCar) MaxCapacity() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capacity
}

func (c *RemoteCar) DestinationDirection() model.Direction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.direction
}

func (c *RemoteCar) DestinationCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

func (c *RemoteCar) PushDestination(floor int) {
	c.mu.Lock()
	c.queue = append(c.queue, floor)
	c.mu.Unlock()
}

func (c *RemoteCar) InsertDestinationAt(index, floor int) {
	c.mu.Lock()
	index = min(max(index, 0), len(c.queue))
	c.queue = slices.Insert(c.queue, index, floor)
	c.mu.Unlock()
}

func (c *RemoteCar) PopFrontDestination() {
	c.mu.Lock()
	if len(c.queue) > 0 {
		c.queue = slices.Delete(c.queue, 0, 1)
	}
	c.mu.Unlock()
}

// CommitDestinationQueue schedules the current queue for publication.
func (c *RemoteCar) CommitDestinationQueue() {
	c.mu.Lock()
	q := slices.Clone(c.queue)
	c.mu.Unlock()
	c.fleet.enqueue(c.id, q)
}

// Queue returns a copy of the mirrored destination queue.
func (c *RemoteCar) Queue() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.queue)
}

func (c *RemoteCar) applyState(m StateMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.floor = m.Floor
	c.load = min(max(m.LoadFactor, 0), 1)
	if m.MaxCapacity > 0 {
		c.capacity = m.MaxCapacity
	}
	c.direction = m.Direction
}

// arrive records a stop; the host already dropped the reached destination.
func (c *RemoteCar) arrive(floor int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.floor = floor
	if i := slices.Index(c.queue, floor); i >= 0 {
		c.queue = slices.Delete(c.queue, i, i+1)
	}
}

func (c *RemoteCar) setFloor(floor int) {
	c.mu.Lock()
	c.floor = floor
	c.mu.Unlock()
}

// Fleet holds the RemoteCars of a building and the queues waiting to be
// published. Only the latest queue of each car is kept.
type Fleet struct {
	cars []*RemoteCar

	mu      sync.Mutex
	pending map[model.CarID][]int
	notify  chan struct{}
}

// NewFleet creates one RemoteCar per capacity entry. Cars start at floor 0.
func NewFleet(capacities []int) *Fleet {
	f := &Fleet{
		pending: make(map[model.CarID][]int),
		notify:  make(chan struct{}, 1),
	}
	for i, c := range capacities {
		f.cars = append(f.cars, &RemoteCar{id: model.CarID(i), fleet: f, capacity: c})
	}
	return f
}

// Len is the number of cars.
func (f *Fleet) Len() int { return len(f.cars) }

// Car returns the car with the given id, or nil.
func (f *Fleet) Car(id model.CarID) *RemoteCar {
	if id < 0 || int(id) >= len(f.cars) {
		return nil
	}
	return f.cars[id]
}

// Hosts returns the cars as host.Car values in id order.
func (f *Fleet) Hosts() []host.Car {
	out := make([]host.Car, len(f.cars))
	for i, c := range f.cars {
		out[i] = c
	}
	return out
}

func (f *Fleet) enqueue(id model.CarID, q []int) {
	f.mu.Lock()
	f.pending[id] = q
	f.mu.Unlock()
	select {
	case f.notify <- struct{}{}:
	default:
	}
}

// drain returns and clears the queues waiting for publication.
func (f *Fleet) drain() map[model.CarID][]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.pending) == 0 {
		return nil
	}
	out := f.pending
	f.pending = make(map[model.CarID][]int)
	return out
}
