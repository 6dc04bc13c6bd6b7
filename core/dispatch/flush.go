package dispatch

import (
	"context"

	"github.com/kilianp07/liftdispatch/core/dispatch/journal"
	"github.com/kilianp07/liftdispatch/core/events"
	"github.com/kilianp07/liftdispatch/core/metrics"
	"github.com/kilianp07/liftdispatch/core/monitoring"
)

// flush hands the collected events to the bus, the metrics sink and the
// journal. It must be called without holding mu.
func (e *Engine) flush(b *batch) {
	if len(b.events) == 0 && !b.hasPending {
		return
	}
	e.collabMu.RLock()
	sink, bus, store := e.sink, e.bus, e.journal
	e.collabMu.RUnlock()

	for _, ev := range b.events {
		if bus != nil {
			bus.Publish(ev)
		}
		if err := record(sink, ev); err != nil {
			e.log.Warnf("metrics sink: %v", err)
		}
		if store == nil {
			continue
		}
		if rec, ok := journalRecord(ev); ok {
			if err := store.Append(context.Background(), rec); err != nil {
				e.log.Warnf("journal append: %v", err)
				monitoring.CaptureException(err, map[string]string{"component": "journal"})
			}
		}
	}
	if b.hasPending {
		if r, ok := sink.(metrics.PendingCallsRecorder); ok {
			if err := r.RecordPendingCalls(b.pending); err != nil {
				e.log.Warnf("metrics sink: %v", err)
			}
		}
	}
}

// record forwards ev to the recorder of sink handling its type, if any.
func record(sink metrics.MetricsSink, ev any) error {
	switch v := ev.(type) {
	case events.AssignmentEvent:
		return sink.RecordAssignment(metrics.AssignmentRecord{
			PassID: v.PassID, Car: v.Car, Class: v.Class, Call: v.Call, Score: v.Score, Time: v.Time,
		})
	case events.ClaimEvent:
		if r, ok := sink.(metrics.ClaimRecorder); ok {
			return r.RecordClaim(metrics.ClaimRecord{
				Car: v.Car, Call: v.Call, Reason: v.Reason, Override: v.Override, Time: v.Time,
			})
		}
	case events.CancellationEvent:
		if r, ok := sink.(metrics.CancellationRecorder); ok {
			return r.RecordCancellation(metrics.CancellationRecord{
				Car: v.Car, Floor: v.Floor, ServedBy: v.ServedBy, Time: v.Time,
			})
		}
	case events.ViolationEvent:
		if r, ok := sink.(metrics.ViolationRecorder); ok {
			return r.RecordViolation(metrics.ViolationRecord{
				Kind: v.Kind, Car: v.Car, Call: v.Call, Time: v.Time,
			})
		}
	}
	return nil
}

// journalRecord maps a decision event to its journal form. Pass events are
// not journaled.
func journalRecord(ev any) (journal.Record, bool) {
	switch v := ev.(type) {
	case events.AssignmentEvent:
		return journal.Record{
			Timestamp: v.Time, Kind: journal.KindAssignment, Car: v.Car,
			Floor: v.Call.Floor, Direction: v.Call.Direction, PassID: v.PassID, Score: v.Score,
			Detail: v.Class.String(),
		}, true
	case events.ClaimEvent:
		rec := journal.Record{
			Timestamp: v.Time, Kind: journal.KindClaim, Car: v.Car,
			Floor: v.Call.Floor, Direction: v.Call.Direction, Detail: v.Reason,
		}
		if v.Override {
			prev := v.Previous
			rec.Previous = &prev
		}
		return rec, true
	case events.CancellationEvent:
		by := v.ServedBy
		return journal.Record{
			Timestamp: v.Time, Kind: journal.KindCancellation, Car: v.Car,
			Floor: v.Floor, Previous: &by,
		}, true
	case events.ParkEvent:
		return journal.Record{Timestamp: v.Time, Kind: journal.KindPark, Car: v.Car, Floor: v.Floor}, true
	case events.ViolationEvent:
		rec := journal.Record{
			Timestamp: v.Time, Kind: journal.KindViolation, Car: v.Car,
			Floor: v.Call.Floor, Direction: v.Call.Direction, Detail: v.Kind,
		}
		if v.Err != nil {
			rec.Detail = v.Kind + ": " + v.Err.Error()
		}
		return rec, true
	}
	return journal.Record{}, false
}
