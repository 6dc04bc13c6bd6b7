// Package monitoring reports errors and panics of the dispatch service to an
// external error tracker.
package monitoring

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/kilianp07/liftdispatch/core/events"
	"github.com/kilianp07/liftdispatch/internal/eventbus"
)

// Monitor defines methods used for error reporting.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	CapturePanic(r any)
	Flush(timeout time.Duration)
}

type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) CapturePanic(any)                          {}
func (NopMonitor) Flush(time.Duration)                       {}

var current Monitor = NopMonitor{}

// Init sets the global monitor implementation.
func Init(m Monitor) {
	if m != nil {
		current = m
	}
}

// CaptureException records the error with optional tags.
func CaptureException(err error, tags map[string]string) {
	if current != nil {
		current.CaptureException(err, tags)
	}
}

// Recover reports a panic of the calling goroutine and panics again. It must
// be deferred directly.
func Recover() {
	if r := recover(); r != nil {
		if current != nil {
			current.CapturePanic(r)
			current.Flush(2 * time.Second)
		}
		panic(r)
	}
}

// Flush flushes buffered events.
func Flush(d time.Duration) {
	if current != nil {
		current.Flush(d)
	}
}

// ViolationTags are the tags attached to a reported invariant violation.
func ViolationTags(ev events.ViolationEvent) map[string]string {
	return map[string]string{
		"kind":      ev.Kind,
		"car":       strconv.Itoa(int(ev.Car)),
		"floor":     strconv.Itoa(ev.Call.Floor),
		"direction": ev.Call.Direction.String(),
	}
}

// WatchViolations reports every ViolationEvent published on bus to m until
// ctx is canceled or the bus is closed.
func WatchViolations(ctx context.Context, bus eventbus.EventBus, m Monitor) {
	if bus == nil || m == nil {
		return
	}
	if _, nop := m.(NopMonitor); nop {
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
				v, ok := ev.(events.ViolationEvent)
				if !ok {
					continue
				}
				err := v.Err
				if err == nil {
					err = fmt.Errorf("invariant violation: %s", v.Kind)
				}
				m.CaptureException(err, ViolationTags(v))
			}
		}
	}()
}
