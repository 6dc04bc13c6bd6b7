package metrics

import (
	"context"

	"github.com/kilianp07/liftdispatch/core/events"
	coremetrics "github.com/kilianp07/liftdispatch/core/metrics"
	"github.com/kilianp07/liftdispatch/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records the events the
// Engine does not hand to sinks itself. It stops when the context is canceled
// or the bus is closed.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) {
	if bus == nil || sink == nil {
		return
	}
	rec, ok := sink.(coremetrics.ParkRecorder)
	if !ok {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if e, ok := ev.(events.ParkEvent); ok {
					_ = rec.RecordPark(coremetrics.ParkRecord{Car: e.Car, Floor: e.Floor, Time: e.Time})
				}
			}
		}
	}()
}
