package metrics

import (
	"time"

	"github.com/kilianp07/liftdispatch/core/model"
)

// AssignmentRecord is an idle car dispatched to a hall call by an assignment pass.
type AssignmentRecord struct {
	PassID string
	Car    model.CarID
	Class  model.CapacityClass
	Call   model.HallCall
	Score  int
	Time   time.Time
}

// MetricsSink records dispatch decisions for observability purposes.
type MetricsSink interface {
	RecordAssignment(rec AssignmentRecord) error
}

// ClaimRecord is a stop a car took for itself while passing or arriving.
type ClaimRecord struct {
	Car      model.CarID
	Call     model.HallCall
	Reason   string
	Override bool
	Time     time.Time
}

// ClaimRecorder records claims.
type ClaimRecorder interface {
	RecordClaim(rec ClaimRecord) error
}

// CancellationRecord is an empty-car trip dropped by the canceler.
type CancellationRecord struct {
	Car      model.CarID
	Floor    int
	ServedBy model.CarID
	Time     time.Time
}

// CancellationRecorder records cancellations.
type CancellationRecorder interface {
	RecordCancellation(rec CancellationRecord) error
}

// ViolationRecord is a skipped invariant violation.
type ViolationRecord struct {
	Kind string
	Car  model.CarID
	Call model.HallCall
	Time time.Time
}

// ViolationRecorder records invariant violations.
type ViolationRecorder interface {
	RecordViolation(rec ViolationRecord) error
}

// PendingCallsRecorder records the number of outstanding hall calls.
type PendingCallsRecorder interface {
	RecordPendingCalls(n int) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordAssignment(AssignmentRecord) error     { return nil }
func (NopSink) RecordClaim(ClaimRecord) error               { return nil }
func (NopSink) RecordCancellation(CancellationRecord) error { return nil }
func (NopSink) RecordViolation(ViolationRecord) error       { return nil }
func (NopSink) RecordPendingCalls(int) error                { return nil }

// ParkRecord is an idle car sent to the lobby.
type ParkRecord struct {
	Car   model.CarID
	Floor int
	Time  time.Time
}

// ParkRecorder records parking trips.
type ParkRecorder interface {
	RecordPark(rec ParkRecord) error
}

func (NopSink) RecordPark(ParkRecord) error { return nil }
