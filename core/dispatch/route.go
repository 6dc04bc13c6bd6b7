package dispatch

import (
	"slices"

	"github.com/kilianp07/liftdispatch/core/model"
)

// planInsert places floor into the queue of c and returns its index, or -1
// when the floor is already queued. The duplicate check ignores the
// direction the existing stop was made for.
//
// dir is the direction the stop is requested for; Stopped means
// unspecified, in which case the relative position of floor and cur is used.
func (c *carState) planInsert(floor int, internal bool, dir model.Direction, cur int, load float64) int {
	if slices.Contains(c.queue, floor) {
		return -1
	}
	if !dir.IsHallDirection() {
		dir = relativeDirection(cur, floor, internal)
	}
	if len(c.queue) == 0 {
		c.queue = append(c.queue, floor)
		c.direction = relativeDirection(cur, floor, internal)
		return 0
	}
	if load == 0 && !internal {
		c.queue = append(c.queue, floor)
		return len(c.queue) - 1
	}
	at := -1
	switch dir {
	case model.Up:
		at = slices.IndexFunc(c.queue, func(q int) bool { return q > floor })
	case model.Down:
		at = slices.IndexFunc(c.queue, func(q int) bool { return q < floor })
	}
	if at < 0 {
		c.queue = append(c.queue, floor)
		return len(c.queue) - 1
	}
	c.queue = slices.Insert(c.queue, at, floor)
	return at
}

// relativeDirection is the heading needed to reach floor from cur. A stop at
// the current floor requested from outside leaves the car Stopped; the same
// request from inside counts as Down.
func relativeDirection(cur, floor int, internal bool) model.Direction {
	switch {
	case floor > cur:
		return model.Up
	case floor < cur:
		return model.Down
	case internal:
		return model.Down
	default:
		return model.Stopped
	}
}
