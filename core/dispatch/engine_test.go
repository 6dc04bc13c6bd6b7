package dispatch

import (
	"context"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/liftdispatch/core/dispatch/journal"
	"github.com/kilianp07/liftdispatch/core/events"
	"github.com/kilianp07/liftdispatch/core/metrics"
	"github.com/kilianp07/liftdispatch/core/model"
	"github.com/kilianp07/liftdispatch/internal/eventbus"
)

func newTestEngine(t *testing.T, cfg Config, floors int, cars ...CarSpec) *Engine {
	t.Helper()
	ResetMetrics(prometheus.NewRegistry())
	e, err := NewEngine(cfg, floors, cars, nil)
	require.NoError(t, err)
	return e
}

func std(c *fakeCar) CarSpec  { return CarSpec{Host: c, Class: model.Standard} }
func high(c *fakeCar) CarSpec { return CarSpec{Host: c, Class: model.HighCapacity} }

// seed records hall presses without triggering assignment passes.
func seed(e *Engine, floor int, dir model.Direction, presses int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := 0; i < presses; i++ {
		e.demand.RecordPress(floor, dir)
	}
	switch dir {
	case model.Up:
		e.lights[floor].Up = true
	case model.Down:
		e.lights[floor].Down = true
	}
}

func TestNewEngineValidation(t *testing.T) {
	_, err := NewEngine(Config{}, 1, []CarSpec{std(newFakeCar(0, 0))}, nil)
	assert.Error(t, err)
	_, err = NewEngine(Config{}, 10, nil, nil)
	assert.Error(t, err)
	_, err = NewEngine(Config{LobbyFloor: 12}, 10, []CarSpec{std(newFakeCar(0, 0))}, nil)
	assert.ErrorIs(t, err, ErrInvalidFloor)
	_, err = NewEngine(Config{}, 10, []CarSpec{{Class: model.Standard}}, nil)
	assert.Error(t, err)
}

func TestHandlersRejectMalformedInput(t *testing.T) {
	e := newTestEngine(t, Config{}, 10, std(newFakeCar(0, 0)))

	assert.ErrorIs(t, e.OnCarIdle(3), ErrUnknownCar)
	assert.ErrorIs(t, e.OnCarArrivedAtFloor(0, 10), ErrInvalidFloor)
	assert.ErrorIs(t, e.OnCarPassingFloor(0, -1, model.Up), ErrInvalidFloor)
	assert.ErrorIs(t, e.OnCarButtonPressedInside(1, 2), ErrUnknownCar)
	assert.ErrorIs(t, e.OnFloorButtonPressed(2, model.Stopped), ErrInvalidDirection)
	assert.ErrorIs(t, e.OnFloorLightStateChanged(11, model.LightState{}), ErrInvalidFloor)
	_, err := e.Car(5)
	assert.ErrorIs(t, err, ErrUnknownCar)
}

func TestInsideButtonsKeepDirectionConsistentOrder(t *testing.T) {
	up := newFakeCar(1, 0.25)
	down := newFakeCar(10, 0.25)
	e := newTestEngine(t, Config{}, 12, std(up), std(down))

	for _, f := range []int{3, 7, 5} {
		require.NoError(t, e.OnCarButtonPressedInside(0, f))
	}
	snap, err := e.Car(0)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 5, 7}, snap.Queue)
	assert.Equal(t, model.Up, snap.Direction)
	assert.Equal(t, []int{3, 5, 7}, up.hostQueue())

	for _, f := range []int{8, 6, 2} {
		require.NoError(t, e.OnCarButtonPressedInside(1, f))
	}
	snap, err = e.Car(1)
	require.NoError(t, err)
	assert.Equal(t, []int{8, 6, 2}, snap.Queue)
	assert.Equal(t, model.Down, snap.Direction)
	assert.Equal(t, []int{8, 6, 2}, down.hostQueue())
}

func TestDuplicateRequestIsNoop(t *testing.T) {
	car := newFakeCar(1, 0.25)
	e := newTestEngine(t, Config{}, 10, std(car))
	require.NoError(t, e.OnCarButtonPressedInside(0, 5))
	commits := car.commits

	require.NoError(t, e.OnCarButtonPressedInside(0, 5))
	snap, _ := e.Car(0)
	assert.Equal(t, []int{5}, snap.Queue)
	assert.Equal(t, []int{5}, car.hostQueue())
	assert.Equal(t, commits, car.commits)
}

func TestPlanInsertEmptyCarAppendsExternal(t *testing.T) {
	c := &carState{queue: []int{8}, direction: model.Up}
	at := c.planInsert(3, false, model.Up, 1, 0)
	assert.Equal(t, 1, at)
	assert.Equal(t, []int{8, 3}, c.queue)

	empty := &carState{}
	assert.Equal(t, 0, empty.planInsert(4, false, model.Stopped, 4, 0))
	assert.Equal(t, model.Stopped, empty.direction)

	inside := &carState{}
	inside.planInsert(4, true, model.Stopped, 4, 0.5)
	assert.Equal(t, model.Down, inside.direction)
}

func TestPassAssignsAtMostOneCar(t *testing.T) {
	a, b, c := newFakeCar(0, 0), newFakeCar(5, 0), newFakeCar(9, 0)
	e := newTestEngine(t, Config{}, 10, std(a), std(b), std(c))
	seed(e, 2, model.Up, 1)
	seed(e, 6, model.Down, 1)
	seed(e, 8, model.Down, 1)

	res := e.RunAssignmentPass()
	require.True(t, res.Assigned())
	assert.NotEmpty(t, res.ID)

	busy := 0
	for _, s := range e.Cars() {
		if !s.Idle {
			busy++
		}
	}
	assert.Equal(t, 1, busy)
	assert.Len(t, e.Commitments(), 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(passesTotal.WithLabelValues(string(OutcomeAssigned))))

	// every further pass dispatches one more car until every call is owned
	require.True(t, e.RunAssignmentPass().Assigned())
	require.True(t, e.RunAssignmentPass().Assigned())
	assert.Len(t, e.Commitments(), 3)
	assert.Equal(t, OutcomeNoMatch, e.RunAssignmentPass().Outcome)
}

func TestPassPrefersStandardCars(t *testing.T) {
	big := newFakeCar(0, 0)
	small := newFakeCar(0, 0)
	e := newTestEngine(t, Config{}, 10, high(big), std(small))
	seed(e, 5, model.Up, 1)

	res := e.RunAssignmentPass()
	require.True(t, res.Assigned())
	assert.Equal(t, model.CarID(1), res.Car)
	assert.Equal(t, []int{5}, small.hostQueue())
	assert.Empty(t, big.hostQueue())
}

func TestPassSkipsLoadedAndBusyCars(t *testing.T) {
	loaded := newFakeCar(0, 0.5)
	e := newTestEngine(t, Config{}, 10, std(loaded))
	seed(e, 5, model.Up, 1)
	assert.Equal(t, OutcomeNoMatch, e.RunAssignmentPass().Outcome)
}

func TestPassTieBreak(t *testing.T) {
	for _, tc := range []struct {
		tie  TieBreak
		want model.Direction
	}{
		{TieFirstSeen, model.Up},
		{TieLastSeen, model.Down},
	} {
		t.Run(string(tc.tie), func(t *testing.T) {
			e := newTestEngine(t, Config{TieBreak: tc.tie}, 10, std(newFakeCar(0, 0)))
			seed(e, 4, model.Up, 1)
			seed(e, 4, model.Down, 1)
			res := e.RunAssignmentPass()
			require.True(t, res.Assigned())
			assert.Equal(t, tc.want, res.Call.Direction)
		})
	}
}

func TestPassNoCallsAndBusy(t *testing.T) {
	e := newTestEngine(t, Config{}, 10, std(newFakeCar(0, 0)))
	assert.Equal(t, OutcomeNoCalls, e.RunAssignmentPass().Outcome)

	seed(e, 3, model.Up, 1)
	e.passMu.Lock()
	assert.Equal(t, OutcomeBusy, e.RunAssignmentPass().Outcome)
	e.passMu.Unlock()
	assert.True(t, e.RunAssignmentPass().Assigned())
	assert.Equal(t, 1.0, testutil.ToFloat64(passesTotal.WithLabelValues(string(OutcomeBusy))))
}

func TestLightOffClearsDemandAndCommitment(t *testing.T) {
	car := newFakeCar(0, 0)
	e := newTestEngine(t, Config{}, 10, std(car))
	call := model.HallCall{Floor: 4, Direction: model.Up}

	for i := 0; i < 3; i++ {
		require.NoError(t, e.OnFloorButtonPressed(4, model.Up))
	}
	owner, ok := e.OwnerOf(call)
	require.True(t, ok)
	assert.Equal(t, model.CarID(0), owner)
	assert.Equal(t, 3, e.PressCount(call))
	assert.Equal(t, 1.0, testutil.ToFloat64(pendingHallCalls))

	require.NoError(t, e.OnFloorLightStateChanged(4, model.LightState{}))
	_, ok = e.OwnerOf(call)
	assert.False(t, ok)
	assert.Zero(t, e.PressCount(call))
	assert.Empty(t, e.PendingCalls())
	assert.Equal(t, 0.0, testutil.ToFloat64(pendingHallCalls))
	assert.Equal(t, OutcomeNoCalls, e.RunAssignmentPass().Outcome)
}

func TestLightOnOnlyUpdatesMirror(t *testing.T) {
	e := newTestEngine(t, Config{}, 10, std(newFakeCar(0, 0)))
	require.NoError(t, e.OnFloorLightStateChanged(3, model.LightState{Down: true}))
	l, err := e.Lights(3)
	require.NoError(t, err)
	assert.True(t, l.Down)
	assert.Empty(t, e.PendingCalls())
}

func TestPassingOverrideAndEmptyCarCanceler(t *testing.T) {
	a := newFakeCar(3, 0)
	b := newFakeCar(7, 0.2)
	e := newTestEngine(t, Config{}, 10, std(a), std(b))
	call := model.HallCall{Floor: 6, Direction: model.Down}

	// b carries a passenger, so only a is eligible for the hall call
	require.NoError(t, e.OnCarButtonPressedInside(1, 2))
	require.NoError(t, e.OnFloorButtonPressed(6, model.Down))
	owner, ok := e.OwnerOf(call)
	require.True(t, ok)
	require.Equal(t, model.CarID(0), owner)
	require.Equal(t, []int{6}, a.hostQueue())

	require.NoError(t, e.OnCarPassingFloor(1, 6, model.Down))
	owner, _ = e.OwnerOf(call)
	assert.Equal(t, model.CarID(1), owner)
	assert.Equal(t, []int{6, 2}, b.hostQueue())

	b.arrive(6)
	require.NoError(t, e.OnCarArrivedAtFloor(1, 6))

	snapA, _ := e.Car(0)
	assert.True(t, snapA.Idle)
	assert.Empty(t, snapA.Queue)
	assert.Empty(t, a.hostQueue())
	snapB, _ := e.Car(1)
	assert.Equal(t, []int{2}, snapB.Queue)
	assert.Equal(t, model.Down, snapB.Direction)
}

func TestPassingFartherCarDoesNotClaim(t *testing.T) {
	a := newFakeCar(5, 0)
	b := newFakeCar(9, 0.2)
	e := newTestEngine(t, Config{}, 10, std(a), std(b))
	call := model.HallCall{Floor: 6, Direction: model.Down}

	require.NoError(t, e.OnCarButtonPressedInside(1, 0))
	require.NoError(t, e.OnFloorButtonPressed(6, model.Down))
	require.NoError(t, e.OnCarPassingFloor(1, 6, model.Down))

	owner, _ := e.OwnerOf(call)
	assert.Equal(t, model.CarID(0), owner)
	assert.Equal(t, []int{0}, b.hostQueue())
}

func TestPassingFullCarDoesNotClaim(t *testing.T) {
	car := newFakeCar(8, 0.95)
	e := newTestEngine(t, Config{}, 10, std(car))
	require.NoError(t, e.OnCarButtonPressedInside(0, 0))
	require.NoError(t, e.OnFloorButtonPressed(6, model.Down))
	require.NoError(t, e.OnCarPassingFloor(0, 6, model.Down))
	_, ok := e.OwnerOf(model.HallCall{Floor: 6, Direction: model.Down})
	assert.False(t, ok)
}

func TestPassingWithNothingToDoMarksIdle(t *testing.T) {
	car := newFakeCar(4, 0)
	e := newTestEngine(t, Config{}, 10, std(car))
	seed(e, 3, model.Down, 1)
	e.mu.Lock()
	e.cars[0].idle = false
	e.cars[0].direction = model.Down
	e.mu.Unlock()

	require.NoError(t, e.OnCarPassingFloor(0, 3, model.Down))
	snap, _ := e.Car(0)
	assert.True(t, snap.Idle)
	assert.Equal(t, model.Stopped, snap.Direction)
	_, ok := e.OwnerOf(model.HallCall{Floor: 3, Direction: model.Down})
	assert.False(t, ok)
}

func TestArrivalClaimsLitCall(t *testing.T) {
	car := newFakeCar(1, 0.5)
	e := newTestEngine(t, Config{}, 10, std(car))
	require.NoError(t, e.OnCarButtonPressedInside(0, 3))
	require.NoError(t, e.OnCarButtonPressedInside(0, 5))
	require.NoError(t, e.OnFloorButtonPressed(3, model.Up))

	car.arrive(3)
	require.NoError(t, e.OnCarArrivedAtFloor(0, 3))
	owner, ok := e.OwnerOf(model.HallCall{Floor: 3, Direction: model.Up})
	require.True(t, ok)
	assert.Equal(t, model.CarID(0), owner)
	snap, _ := e.Car(0)
	assert.Equal(t, []int{5}, snap.Queue)
	assert.Equal(t, model.Up, snap.Direction)
}

func TestHighCapacityCarParksAtLobby(t *testing.T) {
	big := newFakeCar(5, 0)
	small := newFakeCar(7, 0)
	e := newTestEngine(t, Config{}, 10, high(big), std(small))

	require.NoError(t, e.OnCarIdle(0))
	require.NoError(t, e.OnCarIdle(1))
	snap, _ := e.Car(0)
	assert.True(t, snap.Parking)
	assert.True(t, snap.Idle)
	assert.Equal(t, []int{0}, big.hostQueue())
	assert.Empty(t, small.hostQueue())

	// the standard car is busy so the parking car takes the call
	small.setLoad(0.3)
	require.NoError(t, e.OnFloorButtonPressed(4, model.Up))
	snap, _ = e.Car(0)
	assert.False(t, snap.Parking)
	assert.Equal(t, []int{4}, snap.Queue)
	assert.Equal(t, []int{4}, big.hostQueue())
}

func TestParkingDisabled(t *testing.T) {
	big := newFakeCar(5, 0)
	e := newTestEngine(t, Config{ParkingDisabled: true}, 10, high(big))
	require.NoError(t, e.OnCarIdle(0))
	assert.Empty(t, big.hostQueue())
}

func TestHostContractViolationIsReported(t *testing.T) {
	car := newFakeCar(0, 0)
	car.dropPushes = true
	e := newTestEngine(t, Config{}, 10, std(car))
	require.NoError(t, e.OnFloorButtonPressed(4, model.Up))
	assert.Equal(t, 1.0, testutil.ToFloat64(hostContractErrors))
}

func TestStrictInvariantsPanics(t *testing.T) {
	e := newTestEngine(t, Config{StrictInvariants: true}, 10, std(newFakeCar(0, 0)))
	call := model.HallCall{Floor: 1, Direction: model.Up}
	_, _, err := e.ledger.Commit(0, call, false)
	require.NoError(t, err)
	_, _, err = e.ledger.Commit(0, call, false)
	require.Error(t, err)

	assert.Panics(t, func() { e.violation(&batch{}, 0, call, err) })
	assert.Equal(t, 1.0, testutil.ToFloat64(violationsTotal.WithLabelValues(ViolationDuplicateCommit)))
}

type captureSink struct {
	mu            sync.Mutex
	assignments   []metrics.AssignmentRecord
	claims        []metrics.ClaimRecord
	cancellations []metrics.CancellationRecord
	pending       []int
}

func (c *captureSink) RecordAssignment(r metrics.AssignmentRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.assignments = append(c.assignments, r)
	return nil
}

func (c *captureSink) RecordClaim(r metrics.ClaimRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.claims = append(c.claims, r)
	return nil
}

func (c *captureSink) RecordCancellation(r metrics.CancellationRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancellations = append(c.cancellations, r)
	return nil
}

func (c *captureSink) RecordPendingCalls(n int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = append(c.pending, n)
	return nil
}

func TestCollaboratorsReceiveDecisions(t *testing.T) {
	a := newFakeCar(3, 0)
	b := newFakeCar(7, 0.2)
	e := newTestEngine(t, Config{}, 10, std(a), std(b))

	sink := &captureSink{}
	e.SetMetricsSink(sink)
	bus := eventbus.New(eventbus.WithBuffer(64))
	defer bus.Close()
	sub := bus.Subscribe()
	e.SetBus(bus)
	store, err := journal.NewJSONLStore(filepath.Join(t.TempDir(), "journal.jsonl"))
	require.NoError(t, err)
	e.SetJournal(store)

	require.NoError(t, e.OnCarButtonPressedInside(1, 2))
	require.NoError(t, e.OnFloorButtonPressed(6, model.Down))
	require.NoError(t, e.OnCarPassingFloor(1, 6, model.Down))
	b.arrive(6)
	require.NoError(t, e.OnCarArrivedAtFloor(1, 6))

	require.Len(t, sink.assignments, 1)
	assert.Equal(t, model.CarID(0), sink.assignments[0].Car)
	require.Len(t, sink.claims, 1)
	assert.True(t, sink.claims[0].Override)
	require.Len(t, sink.cancellations, 1)
	assert.Equal(t, model.CarID(0), sink.cancellations[0].Car)
	assert.Equal(t, []int{1}, sink.pending)

	var kinds []string
	timeout := time.After(time.Second)
	for len(kinds) < 3 {
		select {
		case ev := <-sub:
			switch ev.(type) {
			case events.AssignmentEvent:
				kinds = append(kinds, "assignment")
			case events.ClaimEvent:
				kinds = append(kinds, "claim")
			case events.CancellationEvent:
				kinds = append(kinds, "cancellation")
			}
		case <-timeout:
			t.Fatalf("missing events, got %v", kinds)
		}
	}
	assert.Equal(t, []string{"assignment", "claim", "cancellation"}, kinds)

	recs, err := store.Query(context.Background(), journal.Query{})
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, journal.KindAssignment, recs[0].Kind)
	assert.Equal(t, journal.KindClaim, recs[1].Kind)
	require.NotNil(t, recs[1].Previous)
	assert.Equal(t, model.CarID(0), *recs[1].Previous)
	assert.Equal(t, journal.KindCancellation, recs[2].Kind)
}

func TestConcurrentNotifications(t *testing.T) {
	cars := make([]CarSpec, 4)
	hosts := make([]*fakeCar, 4)
	for i := range cars {
		hosts[i] = newFakeCar(i*3, 0)
		cars[i] = std(hosts[i])
	}
	e := newTestEngine(t, Config{}, 12, cars...)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				floor := (g*7 + i) % 12
				dir := model.Up
				if floor == 11 || i%2 == 1 && floor > 0 {
					dir = model.Down
				}
				_ = e.OnFloorButtonPressed(floor, dir)
				_ = e.OnCarPassingFloor(model.CarID(g%4), floor, dir)
				e.RunAssignmentPass()
				if i%5 == 0 {
					_ = e.OnFloorLightStateChanged(floor, model.LightState{})
				}
			}
		}(g)
	}
	wg.Wait()

	owned := map[model.HallCall]bool{}
	for _, entry := range e.Commitments() {
		assert.False(t, owned[entry.Call])
		owned[entry.Call] = true
	}
	// every queue mutation is mirrored to the host under the engine lock
	for _, s := range e.Cars() {
		assert.True(t, slices.Equal(s.Queue, hosts[s.ID].hostQueue()), "car %d", s.ID)
	}
}
