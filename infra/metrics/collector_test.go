package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/liftdispatch/core/events"
	"github.com/kilianp07/liftdispatch/internal/eventbus"
)

func TestEventCollectorRecordsParks(t *testing.T) {
	sink, err := NewPromSinkWithRegistry(prometheus.NewRegistry())
	require.NoError(t, err)
	bus := eventbus.New()
	defer bus.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartEventCollector(ctx, bus, sink)
	// the collector subscribes synchronously
	bus.Publish(events.PassEvent{PassID: "x", Outcome: "no_match"})
	bus.Publish(events.ParkEvent{Car: 3, Floor: 0, Time: time.Now()})

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(sink.parks.WithLabelValues("3")) == 1
	}, time.Second, 10*time.Millisecond)
}
