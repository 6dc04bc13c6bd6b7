// Package journal persists the dispatch decisions taken by the Engine as an
// append-only stream of JSON lines.
package journal

import (
	"context"
	"time"

	"github.com/kilianp07/liftdispatch/core/model"
)

// Record kinds.
const (
	KindAssignment   = "assignment"
	KindClaim        = "claim"
	KindCancellation = "cancellation"
	KindPark         = "park"
	KindViolation    = "violation"
)

// Record captures one dispatch decision.
type Record struct {
	Timestamp time.Time       `json:"timestamp"`
	Kind      string          `json:"kind"`
	Car       model.CarID     `json:"car"`
	Floor     int             `json:"floor"`
	Direction model.Direction `json:"direction"`
	PassID    string          `json:"pass_id,omitempty"`
	Score     int             `json:"score,omitempty"`
	// Previous is the car that owned the call before an override claim, or
	// the car whose stop triggered a cancellation.
	Previous *model.CarID `json:"previous,omitempty"`
	Detail   string       `json:"detail,omitempty"`
}

// Query defines filters for retrieving records. Zero values match everything.
type Query struct {
	Start time.Time
	End   time.Time
	Kind  string
	Car   *model.CarID
}

// Match reports whether r passes the filters of q.
func (q Query) Match(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Kind != "" && r.Kind != q.Kind {
		return false
	}
	if q.Car != nil && r.Car != *q.Car {
		return false
	}
	return true
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}
