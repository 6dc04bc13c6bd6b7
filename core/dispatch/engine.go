package dispatch

import (
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/kilianp07/liftdispatch/core/dispatch/journal"
	"github.com/kilianp07/liftdispatch/core/events"
	"github.com/kilianp07/liftdispatch/core/logger"
	"github.com/kilianp07/liftdispatch/core/metrics"
	"github.com/kilianp07/liftdispatch/core/model"
	"github.com/kilianp07/liftdispatch/internal/eventbus"
)

// Engine is the dispatch context shared by every notification handler. It
// owns the Demand Tracker, the Commitment Ledger and the canonical
// destination queue of each car.
//
// mu serializes every compound read-then-write over cars, lights, demand and
// ledger. passMu is the assignment pass guard and is always taken before mu.
// Metrics sinks, the bus and the journal are fed after mu is released.
type Engine struct {
	cfg    Config
	floors int
	log    logger.Logger
	now    func() time.Time

	mu     sync.Mutex
	cars   []*carState
	scan   []*carState
	lights []model.LightState
	demand *DemandTracker
	ledger *Ledger
	rater  Rater

	passMu sync.Mutex

	collabMu sync.RWMutex
	sink     metrics.MetricsSink
	bus      eventbus.EventBus
	journal  journal.Store
}

// NewEngine builds an Engine for a building with the given number of floors.
// Car ids are the indices into cars. Every car starts idle and Stopped.
func NewEngine(cfg Config, floors int, cars []CarSpec, log logger.Logger) (*Engine, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if floors < 2 {
		return nil, fmt.Errorf("dispatch: at least 2 floors required, got %d", floors)
	}
	if len(cars) == 0 {
		return nil, fmt.Errorf("dispatch: no cars configured")
	}
	if cfg.LobbyFloor >= floors {
		return nil, fmt.Errorf("dispatch: lobby_floor %d outside building: %w", cfg.LobbyFloor, ErrInvalidFloor)
	}
	if log == nil {
		log = logger.Nop{}
	}
	demand := NewDemandTracker()
	e := &Engine{
		cfg:    cfg,
		floors: floors,
		log:    log,
		now:    time.Now,
		lights: make([]model.LightState, floors),
		demand: demand,
		ledger: NewLedger(),
		rater:  Rater{Floors: floors, Demand: demand},
		sink:   metrics.NopSink{},
	}
	for i, spec := range cars {
		if spec.Host == nil {
			return nil, fmt.Errorf("dispatch: car %d has no host", i)
		}
		e.cars = append(e.cars, &carState{
			id:        model.CarID(i),
			class:     spec.Class,
			host:      spec.Host,
			idle:      true,
			direction: model.Stopped,
		})
	}
	e.scan = slices.Clone(e.cars)
	sort.SliceStable(e.scan, func(i, j int) bool { return e.scan[i].class < e.scan[j].class })
	return e, nil
}

// SetMetricsSink configures the sink receiving dispatch decisions.
func (e *Engine) SetMetricsSink(s metrics.MetricsSink) {
	if s == nil {
		s = metrics.NopSink{}
	}
	e.collabMu.Lock()
	e.sink = s
	e.collabMu.Unlock()
}

// SetBus configures the bus receiving dispatch events.
func (e *Engine) SetBus(b eventbus.EventBus) {
	e.collabMu.Lock()
	e.bus = b
	e.collabMu.Unlock()
}

// SetJournal configures the store used to persist dispatch decisions.
func (e *Engine) SetJournal(s journal.Store) {
	e.collabMu.Lock()
	e.journal = s
	e.collabMu.Unlock()
}

// Config returns the effective configuration.
func (e *Engine) Config() Config { return e.cfg }

// Floors is the number of floors of the building.
func (e *Engine) Floors() int { return e.floors }

// Car returns a snapshot of one car.
func (e *Engine) Car(id model.CarID) (CarSnapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, err := e.carLocked(id)
	if err != nil {
		return CarSnapshot{}, err
	}
	return c.snapshot(), nil
}

// Cars returns snapshots of every car in id order.
func (e *Engine) Cars() []CarSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]CarSnapshot, len(e.cars))
	for i, c := range e.cars {
		out[i] = c.snapshot()
	}
	return out
}

// PendingCalls returns the outstanding hall calls in arrival order.
func (e *Engine) PendingCalls() []model.HallCall { return e.demand.Calls() }

// PressCount returns the press count of a hall call.
func (e *Engine) PressCount(call model.HallCall) int {
	return e.demand.Count(call.Floor, call.Direction)
}

// OwnerOf returns the car committed to a hall call, if any.
func (e *Engine) OwnerOf(call model.HallCall) (model.CarID, bool) { return e.ledger.OwnerOf(call) }

// Commitments returns the ledger rows.
func (e *Engine) Commitments() []Entry { return e.ledger.Snapshot() }

// Lights returns the mirrored light state of a floor.
func (e *Engine) Lights(floor int) (model.LightState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkFloor(floor); err != nil {
		return model.LightState{}, err
	}
	return e.lights[floor], nil
}

// batch collects what must be published once mu is released.
type batch struct {
	events     []eventbus.Event
	pending    int
	hasPending bool
}

func (b *batch) add(ev eventbus.Event) { b.events = append(b.events, ev) }

func (b *batch) setPending(n int) {
	b.pending = n
	b.hasPending = true
}

// apply runs fn under mu and publishes the collected events afterwards.
func (e *Engine) apply(fn func(b *batch) error) error {
	var b batch
	err := e.withLock(&b, fn)
	e.flush(&b)
	return err
}

func (e *Engine) withLock(b *batch, fn func(b *batch) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(b)
}

func (e *Engine) carLocked(id model.CarID) (*carState, error) {
	if id < 0 || int(id) >= len(e.cars) {
		return nil, fmt.Errorf("car %d: %w", id, ErrUnknownCar)
	}
	return e.cars[id], nil
}

func (e *Engine) checkFloor(floor int) error {
	if floor < 0 || floor >= e.floors {
		return fmt.Errorf("floor %d: %w", floor, ErrInvalidFloor)
	}
	return nil
}

// insertLocked routes floor into the queue of c and mirrors it to the host.
func (e *Engine) insertLocked(b *batch, c *carState, floor int, internal bool, dir model.Direction) bool {
	at := c.planInsert(floor, internal, dir, c.host.CurrentFloor(), c.host.LoadFactor())
	if at < 0 {
		e.log.Debugf("car %d already travelling to floor %d", c.id, floor)
		return false
	}
	e.mirrorInsert(b, c, at, floor)
	return true
}

// mirrorInsert replays an insertion at index at on the host and commits.
func (e *Engine) mirrorInsert(b *batch, c *carState, at, floor int) {
	if at == len(c.queue)-1 {
		c.host.PushDestination(floor)
	} else {
		c.host.InsertDestinationAt(at, floor)
	}
	c.host.CommitDestinationQueue()
	if c.host.DestinationCount() == 0 {
		e.hostViolation(b, c, fmt.Errorf("car %d reports an empty queue after adding floor %d: %w", c.id, floor, ErrHostContract))
	}
	e.log.Debugw("destination queue updated", map[string]any{
		"car":   int(c.id),
		"floor": floor,
		"index": at,
		"queue": slices.Clone(c.queue),
	})
}

// violation reports a skipped ledger mutation. With StrictInvariants it panics.
func (e *Engine) violation(b *batch, car model.CarID, call model.HallCall, err error) {
	kind := violationKind(err)
	violationsTotal.WithLabelValues(kind).Inc()
	e.log.Errorf("invariant violation (%s) car %d call %s: %v", kind, car, call, err)
	b.add(events.ViolationEvent{Kind: kind, Car: car, Call: call, Err: err, Time: e.now()})
	if e.cfg.StrictInvariants {
		panic(err)
	}
}

// hostViolation reports host state contradicting the mirrored queue. It is
// never fatal.
func (e *Engine) hostViolation(b *batch, c *carState, err error) {
	hostContractErrors.Inc()
	e.log.Warnf("%v", err)
	b.add(events.ViolationEvent{Kind: ViolationHostContract, Car: c.id, Err: err, Time: e.now()})
}
