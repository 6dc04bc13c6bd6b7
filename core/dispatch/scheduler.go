package dispatch

import (
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/liftdispatch/core/events"
	"github.com/kilianp07/liftdispatch/core/model"
)

// PassOutcome is the result class of an assignment pass.
type PassOutcome string

const (
	OutcomeAssigned PassOutcome = "assigned"
	OutcomeNoMatch  PassOutcome = "no_match"
	OutcomeNoCalls  PassOutcome = "no_calls"
	// OutcomeBusy means another pass was running and this one was dropped.
	OutcomeBusy PassOutcome = "busy"
)

// PassResult describes one assignment pass.
type PassResult struct {
	ID      string
	Outcome PassOutcome
	Car     model.CarID
	Call    model.HallCall
	Score   int
}

// Assigned reports whether the pass dispatched a car.
func (r PassResult) Assigned() bool { return r.Outcome == OutcomeAssigned }

// RunAssignmentPass dispatches at most one idle empty car to the best
// unowned hall call. Standard cars are scanned before high-capacity cars,
// each class in ascending id order. A call while another pass is running
// returns immediately with OutcomeBusy. It is safe to call at any time.
func (e *Engine) RunAssignmentPass() PassResult {
	res := PassResult{ID: uuid.NewString()}
	if e.demand.Len() == 0 {
		res.Outcome = OutcomeNoCalls
		passesTotal.WithLabelValues(string(res.Outcome)).Inc()
		return res
	}
	if !e.passMu.TryLock() {
		res.Outcome = OutcomeBusy
		passesTotal.WithLabelValues(string(res.Outcome)).Inc()
		e.log.Debugf("assignment pass %s dropped: pass in progress", res.ID)
		return res
	}
	defer e.passMu.Unlock()

	start := time.Now()
	var b batch
	_ = e.withLock(&b, func(b *batch) error {
		e.assignLocked(b, &res)
		return nil
	})
	dur := time.Since(start)
	passDuration.Observe(dur.Seconds())
	passesTotal.WithLabelValues(string(res.Outcome)).Inc()
	b.add(events.PassEvent{PassID: res.ID, Outcome: string(res.Outcome), Duration: dur, Time: e.now()})
	e.flush(&b)
	return res
}

func (e *Engine) assignLocked(b *batch, res *PassResult) {
	res.Outcome = OutcomeNoMatch
	calls := e.demand.Calls()
	for _, c := range e.scan {
		if !c.assignable() {
			continue
		}
		call, score, ok := e.bestCallLocked(c, calls)
		if !ok {
			continue
		}
		if _, _, err := e.ledger.Commit(c.id, call, false); err != nil {
			e.violation(b, c.id, call, err)
			continue
		}
		if c.parking {
			c.host.PopFrontDestination()
			c.queue = c.queue[:0]
			c.parking = false
		}
		c.idle = false
		e.insertLocked(b, c, call.Floor, false, call.Direction)

		res.Outcome = OutcomeAssigned
		res.Car = c.id
		res.Call = call
		res.Score = score
		e.log.Infof("pass %s: car %d (%s) assigned to %s score %d", res.ID, c.id, c.class, call, score)
		b.add(events.AssignmentEvent{PassID: res.ID, Car: c.id, Class: c.class, Call: call, Score: score, Time: e.now()})
		return
	}
}

// bestCallLocked rates every unowned call for c. Calls are rated for either
// direction at their floor.
func (e *Engine) bestCallLocked(c *carState, calls []model.HallCall) (model.HallCall, int, bool) {
	cur := c.host.CurrentFloor()
	var (
		best  model.HallCall
		score int
		found bool
	)
	for _, call := range calls {
		if _, owned := e.ledger.OwnerOf(call); owned {
			continue
		}
		s := e.rater.Rate(cur, call.Floor, model.Any)
		if s <= 0 {
			continue
		}
		if !found || e.cfg.TieBreak.prefer(s, score) {
			best, score, found = call, s, true
		}
	}
	return best, score, found
}
