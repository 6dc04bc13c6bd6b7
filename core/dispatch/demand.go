package dispatch

import (
	"sync"

	"github.com/kilianp07/liftdispatch/core/model"
)

// DemandTracker keeps the outstanding hall calls in arrival order together
// with a press count per call. The press count is the urgency signal used by
// the Rater.
type DemandTracker struct {
	mu      sync.RWMutex
	calls   []model.HallCall
	presses map[model.HallCall]int
}

// NewDemandTracker returns an empty tracker.
func NewDemandTracker() *DemandTracker {
	return &DemandTracker{presses: make(map[model.HallCall]int)}
}

// RecordPress appends the call if it is not outstanding yet and always
// increments its press count.
func (d *DemandTracker) RecordPress(floor int, dir model.Direction) {
	call := model.HallCall{Floor: floor, Direction: dir}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.indexLocked(call) < 0 {
		d.calls = append(d.calls, call)
	}
	d.presses[call]++
}

// Clear removes every occurrence of the call and resets its press count.
func (d *DemandTracker) Clear(floor int, dir model.Direction) {
	call := model.HallCall{Floor: floor, Direction: dir}
	d.mu.Lock()
	defer d.mu.Unlock()
	kept := d.calls[:0]
	for _, c := range d.calls {
		if c != call {
			kept = append(kept, c)
		}
	}
	d.calls = kept
	delete(d.presses, call)
}

// Count returns the press count for the call. With model.Any the larger of
// the up and down counts is returned.
func (d *DemandTracker) Count(floor int, dir model.Direction) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if dir == model.Any {
		up := d.presses[model.HallCall{Floor: floor, Direction: model.Up}]
		down := d.presses[model.HallCall{Floor: floor, Direction: model.Down}]
		return max(up, down)
	}
	return d.presses[model.HallCall{Floor: floor, Direction: dir}]
}

// Index returns the arrival position of the call, or -1. With model.Any the
// first call at the floor in either direction matches.
func (d *DemandTracker) Index(floor int, dir model.Direction) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if dir == model.Any {
		for i, c := range d.calls {
			if c.Floor == floor {
				return i
			}
		}
		return -1
	}
	return d.indexLocked(model.HallCall{Floor: floor, Direction: dir})
}

// Len is the number of outstanding calls.
func (d *DemandTracker) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.calls)
}

// Calls returns a copy of the outstanding calls in arrival order.
func (d *DemandTracker) Calls() []model.HallCall {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]model.HallCall(nil), d.calls...)
}

func (d *DemandTracker) indexLocked(call model.HallCall) int {
	for i, c := range d.calls {
		if c == call {
			return i
		}
	}
	return -1
}
