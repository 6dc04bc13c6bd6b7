package dispatch

import (
	"slices"
	"sync"

	"github.com/kilianp07/liftdispatch/core/model"
)

// fakeCar is an in-memory host.Car.
type fakeCar struct {
	mu         sync.Mutex
	floor      int
	load       float64
	capacity   int
	dir        model.Direction
	queue      []int
	commits    int
	dropPushes bool
}

func newFakeCar(floor int, load float64) *fakeCar {
	return &fakeCar{floor: floor, load: load, capacity: 8}
}

func (f *fakeCar) CurrentFloor() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.floor
}

func (f *fakeCar) LoadFactor() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load
}

func (f *fakeCar) MaxCapacity() int { return f.capacity }

func (f *fakeCar) DestinationDirection() model.Direction {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dir
}

func (f *fakeCar) DestinationCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

func (f *fakeCar) PushDestination(floor int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dropPushes {
		return
	}
	f.queue = append(f.queue, floor)
}

func (f *fakeCar) InsertDestinationAt(index, floor int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	index = min(max(index, 0), len(f.queue))
	f.queue = slices.Insert(f.queue, index, floor)
}

func (f *fakeCar) PopFrontDestination() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queue) > 0 {
		f.queue = f.queue[1:]
	}
}

func (f *fakeCar) CommitDestinationQueue() {
	f.mu.Lock()
	f.commits++
	f.mu.Unlock()
}

// arrive moves the car to floor and removes the reached destination the way
// a host does before notifying the Engine.
func (f *fakeCar) arrive(floor int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.floor = floor
	if i := slices.Index(f.queue, floor); i >= 0 {
		f.queue = slices.Delete(f.queue, i, i+1)
	}
}

func (f *fakeCar) setLoad(load float64) {
	f.mu.Lock()
	f.load = load
	f.mu.Unlock()
}

func (f *fakeCar) hostQueue() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.queue)
}
