package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/liftdispatch/core/metrics"
)

// PromSink records dispatch decisions in Prometheus metrics.
type PromSink struct {
	assignments   *prometheus.CounterVec
	claims        *prometheus.CounterVec
	cancellations *prometheus.CounterVec
	parks         *prometheus.CounterVec
	score         prometheus.Histogram
}

// NewPromSink registers dispatch metrics on the default Prometheus registerer.
// The Prometheus server should be started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered by a previous sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		assignments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_assignments_total",
			Help: "Idle cars dispatched to hall calls by assignment passes",
		}, []string{"car", "class"}),
		claims: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_claims_total",
			Help: "Hall calls claimed by cars while passing or arriving",
		}, []string{"car", "override"}),
		cancellations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_cancellations_total",
			Help: "Empty-car trips cancelled because another car served the floor",
		}, []string{"car"}),
		parks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_parks_total",
			Help: "Idle high-capacity cars sent to the lobby",
		}, []string{"car"}),
		score: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dispatch_assignment_score",
			Help:    "Rating of the hall call chosen by assignment passes",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}
	var err error
	if s.assignments, err = registerVec(reg, s.assignments); err != nil {
		return nil, err
	}
	if s.claims, err = registerVec(reg, s.claims); err != nil {
		return nil, err
	}
	if s.cancellations, err = registerVec(reg, s.cancellations); err != nil {
		return nil, err
	}
	if s.parks, err = registerVec(reg, s.parks); err != nil {
		return nil, err
	}
	if err := reg.Register(s.score); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		s.score = are.ExistingCollector.(prometheus.Histogram)
	}
	return s, nil
}

func registerVec(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector.(*prometheus.CounterVec), nil
		}
		return nil, err
	}
	return c, nil
}

// RecordAssignment counts an assignment and observes its score.
func (s *PromSink) RecordAssignment(rec coremetrics.AssignmentRecord) error {
	s.assignments.WithLabelValues(carLabel(rec.Car), rec.Class.String()).Inc()
	s.score.Observe(float64(rec.Score))
	return nil
}

// RecordClaim counts a claim.
func (s *PromSink) RecordClaim(rec coremetrics.ClaimRecord) error {
	s.claims.WithLabelValues(carLabel(rec.Car), strconv.FormatBool(rec.Override)).Inc()
	return nil
}

// RecordCancellation counts a cancelled trip for the car that lost it.
func (s *PromSink) RecordCancellation(rec coremetrics.CancellationRecord) error {
	s.cancellations.WithLabelValues(carLabel(rec.Car)).Inc()
	return nil
}

// RecordPark counts a parking trip.
func (s *PromSink) RecordPark(rec coremetrics.ParkRecord) error {
	s.parks.WithLabelValues(carLabel(rec.Car)).Inc()
	return nil
}

func carLabel[T ~int](id T) string { return strconv.Itoa(int(id)) }
