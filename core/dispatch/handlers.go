package dispatch

import (
	"fmt"

	"github.com/kilianp07/liftdispatch/core/events"
	"github.com/kilianp07/liftdispatch/core/model"
)

var hallDirections = [2]model.Direction{model.Up, model.Down}

// OnCarIdle handles a car that has nothing left to do. An idle
// high-capacity car away from the lobby is parked there when no hall calls
// are pending; otherwise an assignment pass runs.
func (e *Engine) OnCarIdle(id model.CarID) error {
	err := e.apply(func(b *batch) error {
		c, err := e.carLocked(id)
		if err != nil {
			return err
		}
		c.idle = true
		c.direction = model.Stopped
		c.parking = false
		c.queue = c.queue[:0]
		if e.shouldParkLocked(c) {
			lobby := e.cfg.LobbyFloor
			c.queue = append(c.queue, lobby)
			c.parking = true
			e.mirrorInsert(b, c, 0, lobby)
			e.log.Debugf("parking car %d at floor %d", c.id, lobby)
			b.add(events.ParkEvent{Car: c.id, Floor: lobby, Time: e.now()})
		}
		return nil
	})
	if err != nil {
		return err
	}
	e.RunAssignmentPass()
	return nil
}

func (e *Engine) shouldParkLocked(c *carState) bool {
	return c.class == model.HighCapacity &&
		!e.cfg.ParkingDisabled &&
		e.demand.Len() == 0 &&
		c.host.CurrentFloor() != e.cfg.LobbyFloor
}

// OnCarArrivedAtFloor handles a car stopping at floor. The host has already
// removed the reached destination from its own queue.
func (e *Engine) OnCarArrivedAtFloor(id model.CarID, floor int) error {
	var idled bool
	err := e.apply(func(b *batch) error {
		c, err := e.carLocked(id)
		if err != nil {
			return err
		}
		if err := e.checkFloor(floor); err != nil {
			return err
		}
		c.removeFirst(floor)
		if c.parking && floor == e.cfg.LobbyFloor {
			c.parking = false
		}
		e.arrivalDirectionLocked(c, floor)
		idled = e.cancelEmptySendsLocked(b, c, floor)
		e.arrivalClaimLocked(b, c, floor)
		return nil
	})
	if err != nil {
		return err
	}
	if idled {
		e.RunAssignmentPass()
	}
	return nil
}

// arrivalDirectionLocked updates the direction state after a stop. Cars can
// only leave the ground floor upwards and the top floor downwards.
func (e *Engine) arrivalDirectionLocked(c *carState, floor int) {
	switch {
	case floor == 0:
		c.direction = model.Up
	case floor == e.floors-1:
		c.direction = model.Down
	case len(c.queue) > 0:
		if d := model.DirectionTo(floor, c.queue[0]); d != model.Stopped {
			c.direction = d
		}
	}
}

// OnCarButtonPressedInside routes a destination chosen by a passenger.
func (e *Engine) OnCarButtonPressedInside(id model.CarID, floor int) error {
	return e.apply(func(b *batch) error {
		c, err := e.carLocked(id)
		if err != nil {
			return err
		}
		if err := e.checkFloor(floor); err != nil {
			return err
		}
		cur := c.host.CurrentFloor()
		if c.direction == model.Stopped && floor != cur {
			c.direction = model.DirectionTo(cur, floor)
		}
		c.idle = false
		c.parking = false
		e.insertLocked(b, c, floor, true, c.direction)
		return nil
	})
}

// OnFloorButtonPressed records a hall call press and runs an assignment pass.
func (e *Engine) OnFloorButtonPressed(floor int, dir model.Direction) error {
	err := e.apply(func(b *batch) error {
		if err := e.checkFloor(floor); err != nil {
			return err
		}
		if !dir.IsHallDirection() {
			return fmt.Errorf("floor %d button %s: %w", floor, dir, ErrInvalidDirection)
		}
		switch dir {
		case model.Up:
			e.lights[floor].Up = true
		case model.Down:
			e.lights[floor].Down = true
		}
		e.demand.RecordPress(floor, dir)
		e.pendingLocked(b)
		return nil
	})
	if err != nil {
		return err
	}
	e.RunAssignmentPass()
	return nil
}

// OnFloorLightStateChanged mirrors the host light state of a floor. A light
// turning off means the call was served: its commitment and demand are
// cleared. Every notification runs an assignment pass.
func (e *Engine) OnFloorLightStateChanged(floor int, state model.LightState) error {
	err := e.apply(func(b *batch) error {
		if err := e.checkFloor(floor); err != nil {
			return err
		}
		prev := e.lights[floor]
		for _, d := range hallDirections {
			if !prev.Lit(d) || state.Lit(d) {
				continue
			}
			call := model.HallCall{Floor: floor, Direction: d}
			if owner, ok := e.ledger.OwnerOf(call); ok {
				if err := e.ledger.Clear(call); err != nil {
					e.violation(b, owner, call, err)
				}
			}
			e.demand.Clear(floor, d)
			e.log.Debugf("hall call %s served", call)
		}
		e.lights[floor] = state
		e.pendingLocked(b)
		return nil
	})
	if err != nil {
		return err
	}
	e.RunAssignmentPass()
	return nil
}

func (e *Engine) pendingLocked(b *batch) {
	n := e.demand.Len()
	pendingHallCalls.Set(float64(n))
	b.setPending(n)
}
