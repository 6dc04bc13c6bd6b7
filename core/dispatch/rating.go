package dispatch

import "github.com/kilianp07/liftdispatch/core/model"

// Rater scores a (car, hall call) pair. Higher is better; zero means the
// pair must not be matched.
type Rater struct {
	Floors int
	Demand *DemandTracker
}

// Rate multiplies proximity, urgency and arrival order for a car at carFloor
// and the call at (floor, dir). dir may be model.Any.
func (r Rater) Rate(carFloor, floor int, dir model.Direction) int {
	proximity := r.Floors - absInt(carFloor-floor)
	urgency := r.Demand.Count(floor, dir)
	n := r.Demand.Len()
	idx := r.Demand.Index(floor, dir)
	if idx < 0 {
		idx = n - 1
	}
	return proximity * urgency * (n - idx)
}

// prefer reports whether score replaces best under the tie-break policy.
func (t TieBreak) prefer(score, best int) bool {
	if t == TieLastSeen {
		return score >= best
	}
	return score > best
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
