package dispatch

import (
	"fmt"

	"github.com/kilianp07/liftdispatch/core/events"
	"github.com/kilianp07/liftdispatch/core/model"
)

// OnCarPassingFloor lets a moving car claim the lit hall call at the floor it
// is passing. The car stops when the light matches its direction, it is
// below the capacity threshold and it is strictly closer than the current
// owner of the call. dir may be Stopped, in which case the host direction is
// used.
func (e *Engine) OnCarPassingFloor(id model.CarID, floor int, dir model.Direction) error {
	return e.apply(func(b *batch) error {
		c, err := e.carLocked(id)
		if err != nil {
			return err
		}
		if err := e.checkFloor(floor); err != nil {
			return err
		}
		if !dir.IsHallDirection() {
			dir = c.host.DestinationDirection()
		}
		load := c.host.LoadFactor()
		if len(c.queue) == 0 && load == 0 {
			c.idle = true
			c.direction = model.Stopped
			return nil
		}
		c.idle = false
		c.direction = dir
		if !dir.IsHallDirection() || !e.lights[floor].Lit(dir) || load >= e.cfg.CapacityThreshold {
			return nil
		}
		call := model.HallCall{Floor: floor, Direction: dir}
		if !e.closerThanOwnerLocked(c, call) {
			return nil
		}
		prev, replaced, err := e.ledger.Commit(c.id, call, true)
		if err != nil {
			e.violation(b, c.id, call, err)
			return nil
		}
		c.parking = false
		if c.nextFloor() != floor {
			c.queue = append([]int{floor}, c.queue...)
			c.host.InsertDestinationAt(0, floor)
			c.host.CommitDestinationQueue()
			if c.host.DestinationCount() == 0 {
				e.hostViolation(b, c, fmt.Errorf("car %d reports an empty queue after stopping at floor %d: %w", c.id, floor, ErrHostContract))
			}
		}
		if replaced {
			e.log.Infof("car %d claims %s from car %d while passing", c.id, call, prev)
		} else {
			e.log.Infof("car %d claims %s while passing", c.id, call)
		}
		b.add(events.ClaimEvent{Car: c.id, Call: call, Reason: "passing", Override: replaced, Previous: prev, Time: e.now()})
		return nil
	})
}

// closerThanOwnerLocked reports whether c may claim call. An unowned call is
// always claimable; an owned one only by a car strictly closer than the owner.
func (e *Engine) closerThanOwnerLocked(c *carState, call model.HallCall) bool {
	owner, ok := e.ledger.OwnerOf(call)
	if !ok {
		return true
	}
	other := e.cars[owner]
	mine := absInt(c.host.CurrentFloor() - call.Floor)
	theirs := absInt(other.host.CurrentFloor() - call.Floor)
	return mine < theirs
}

// arrivalClaimLocked commits the call at floor matching the direction of c
// when its light is on and no car owns it.
func (e *Engine) arrivalClaimLocked(b *batch, c *carState, floor int) {
	if !c.direction.IsHallDirection() || !e.lights[floor].Lit(c.direction) {
		return
	}
	call := model.HallCall{Floor: floor, Direction: c.direction}
	if _, owned := e.ledger.OwnerOf(call); owned {
		return
	}
	if _, _, err := e.ledger.Commit(c.id, call, false); err != nil {
		e.violation(b, c.id, call, err)
		return
	}
	e.log.Debugf("car %d claims %s on arrival", c.id, call)
	b.add(events.ClaimEvent{Car: c.id, Call: call, Reason: "arrival", Time: e.now()})
}

// cancelEmptySendsLocked drops the leading destination of every other empty
// car heading to floor, visiting cars in descending id order. Commitments
// the cancelled car held at floor are released. Lobby trips of parking cars
// are left alone. It reports whether a car became idle.
func (e *Engine) cancelEmptySendsLocked(b *batch, stopped *carState, floor int) bool {
	idled := false
	for i := len(e.cars) - 1; i >= 0; i-- {
		o := e.cars[i]
		if o == stopped || o.parking || o.nextFloor() != floor || o.host.LoadFactor() != 0 {
			continue
		}
		o.queue = o.queue[1:]
		o.host.PopFrontDestination()
		o.host.CommitDestinationQueue()
		if len(o.queue) == 0 {
			o.idle = true
			o.direction = model.Stopped
			idled = true
		}
		for _, d := range hallDirections {
			call := model.HallCall{Floor: floor, Direction: d}
			if owner, ok := e.ledger.OwnerOf(call); ok && owner == o.id {
				if err := e.ledger.Clear(call); err != nil {
					e.violation(b, o.id, call, err)
				}
			}
		}
		e.log.Debugf("car %d stopped at floor %d, cancelling empty trip of car %d", stopped.id, floor, o.id)
		b.add(events.CancellationEvent{Car: o.id, Floor: floor, ServedBy: stopped.id, Idle: o.idle, Time: e.now()})
	}
	return idled
}
