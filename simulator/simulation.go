// Package simulator provides an in-memory host for the dispatch Engine: a
// building with cars, hall buttons and passengers driven one tick at a time.
package simulator

import (
	"context"
	"fmt"
	"math/rand"
	"slices"

	"github.com/kilianp07/liftdispatch/core/dispatch"
	"github.com/kilianp07/liftdispatch/core/logger"
	"github.com/kilianp07/liftdispatch/core/model"
)

// Passenger is one trip from From to To.
type Passenger struct {
	ID    int
	From  int
	To    int
	Spawn int
	Board int
	Exit  int
}

// Direction is the hall button the passenger presses.
func (p *Passenger) Direction() model.Direction { return model.DirectionTo(p.From, p.To) }

// CarConfig describes one simulated car.
type CarConfig struct {
	Capacity int
	Class    model.CapacityClass
}

// Simulation owns the building and the Engine dispatching it. It is driven
// from a single goroutine.
type Simulation struct {
	cfg    Config
	floors int
	cars   []*Car
	eng    *dispatch.Engine
	rng    *rand.Rand
	log    logger.Logger

	waiting   [][]*Passenger
	lights    []model.LightState
	delivered []*Passenger
	tick      int
	spawned   int
}

// New builds a simulation and its Engine.
func New(cfg Config, floors int, cars []CarConfig, dcfg dispatch.Config, log logger.Logger) (*Simulation, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop{}
	}
	s := &Simulation{
		cfg:     cfg,
		floors:  floors,
		rng:     rand.New(rand.NewSource(cfg.Seed)),
		log:     log,
		waiting: make([][]*Passenger, max(floors, 0)),
		lights:  make([]model.LightState, max(floors, 0)),
	}
	specs := make([]dispatch.CarSpec, len(cars))
	for i, cc := range cars {
		if cc.Capacity <= 0 {
			return nil, fmt.Errorf("simulation: car %d needs a positive capacity", i)
		}
		c := newCar(model.CarID(i), cc.Capacity)
		s.cars = append(s.cars, c)
		specs[i] = dispatch.CarSpec{Host: c, Class: cc.Class}
	}
	eng, err := dispatch.NewEngine(dcfg, floors, specs, log)
	if err != nil {
		return nil, err
	}
	s.eng = eng
	return s, nil
}

// Engine returns the dispatch Engine so callers can attach collaborators.
func (s *Simulation) Engine() *dispatch.Engine { return s.eng }

// Tick is the number of completed ticks.
func (s *Simulation) Tick() int { return s.tick }

// Cars returns the state of every simulated car.
func (s *Simulation) Cars() []Snapshot {
	out := make([]Snapshot, len(s.cars))
	for i, c := range s.cars {
		out[i] = c.snapshot()
	}
	return out
}

// Run steps the simulation until the configured number of ticks is reached
// or ctx is canceled.
func (s *Simulation) Run(ctx context.Context) (Report, error) {
	for s.tick < s.cfg.Ticks {
		if err := ctx.Err(); err != nil {
			return s.Report(), err
		}
		if err := s.Step(); err != nil {
			return s.Report(), err
		}
	}
	return s.Report(), nil
}

// Step advances the simulation by one tick: spawn passengers, move every
// car, then run an assignment pass.
func (s *Simulation) Step() error {
	if s.tick < s.cfg.Ticks-s.cfg.QuietTicks {
		if err := s.spawn(); err != nil {
			return err
		}
	}
	for _, c := range s.cars {
		if err := s.move(c); err != nil {
			return err
		}
	}
	s.eng.RunAssignmentPass()
	s.tick++
	return nil
}

func (s *Simulation) spawn() error {
	n := int(s.cfg.SpawnRate)
	if s.rng.Float64() < s.cfg.SpawnRate-float64(n) {
		n++
	}
	for range n {
		from := s.rng.Intn(s.floors)
		to := s.rng.Intn(s.floors - 1)
		if to >= from {
			to++
		}
		if err := s.AddPassenger(from, to); err != nil {
			return err
		}
	}
	return nil
}

// AddPassenger places a passenger travelling from one floor to another and
// presses the hall button for it.
func (s *Simulation) AddPassenger(from, to int) error {
	if from < 0 || from >= s.floors || to < 0 || to >= s.floors || from == to {
		return fmt.Errorf("simulation: invalid trip %d -> %d", from, to)
	}
	s.spawned++
	p := &Passenger{ID: s.spawned, From: from, To: to, Spawn: s.tick, Board: -1, Exit: -1}
	s.waiting[from] = append(s.waiting[from], p)
	return s.press(from, p.Direction())
}

func (s *Simulation) press(floor int, dir model.Direction) error {
	if dir == model.Up {
		s.lights[floor].Up = true
	} else {
		s.lights[floor].Down = true
	}
	return s.eng.OnFloorButtonPressed(floor, dir)
}

func (s *Simulation) move(c *Car) error {
	if len(c.queue) == 0 {
		if c.idleSent {
			return nil
		}
		c.idleSent = true
		c.direction = model.Stopped
		return s.eng.OnCarIdle(c.id)
	}
	target := c.queue[0]
	if target != c.floor {
		c.direction = model.DirectionTo(c.floor, target)
		if c.direction == model.Up {
			c.floor++
		} else {
			c.floor--
		}
		if c.floor != target {
			return s.eng.OnCarPassingFloor(c.id, c.floor, c.direction)
		}
	}
	return s.arrive(c)
}

// arrive stops c at its floor. Riders leave, waiting passengers board in
// arrival order while there is room, and both hall lights of the floor go
// out. Passengers left behind press their button again.
func (s *Simulation) arrive(c *Car) error {
	floor := c.floor
	c.dropReached()
	if err := s.eng.OnCarArrivedAtFloor(c.id, floor); err != nil {
		return err
	}

	c.riders = slices.DeleteFunc(c.riders, func(p *Passenger) bool {
		if p.To != floor {
			return false
		}
		p.Exit = s.tick
		s.delivered = append(s.delivered, p)
		return true
	})

	var left []*Passenger
	for _, p := range s.waiting[floor] {
		if c.full() {
			left = append(left, p)
			continue
		}
		p.Board = s.tick
		c.riders = append(c.riders, p)
		if err := s.eng.OnCarButtonPressedInside(c.id, p.To); err != nil {
			return err
		}
	}
	s.waiting[floor] = left

	if s.lights[floor] != (model.LightState{}) {
		s.lights[floor] = model.LightState{}
		if err := s.eng.OnFloorLightStateChanged(floor, s.lights[floor]); err != nil {
			return err
		}
	}
	for _, p := range left {
		if err := s.press(floor, p.Direction()); err != nil {
			return err
		}
	}
	return nil
}
