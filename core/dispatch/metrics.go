package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	passesTotal        *prometheus.CounterVec
	passDuration       prometheus.Histogram
	violationsTotal    *prometheus.CounterVec
	hostContractErrors prometheus.Counter
	pendingHallCalls   prometheus.Gauge
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, prometheus.Histogram, *prometheus.CounterVec, prometheus.Counter, prometheus.Gauge) {
	passes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_assignment_passes_total",
			Help: "Number of assignment passes by outcome",
		},
		[]string{"outcome"},
	)
	dur := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dispatch_assignment_pass_seconds",
			Help:    "Duration of assignment passes that scanned cars",
			Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
		},
	)
	viol := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_invariant_violations_total",
			Help: "Number of commitment ledger violations that were skipped",
		},
		[]string{"kind"},
	)
	hostErr := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_host_contract_violations_total",
			Help: "Number of host reports contradicting the queue the core just mirrored",
		},
	)
	pending := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dispatch_pending_hall_calls",
			Help: "Number of outstanding hall calls",
		},
	)
	return passes, dur, viol, hostErr, pending
}

func init() {
	passesTotal, passDuration, violationsTotal, hostContractErrors, pendingHallCalls = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers dispatch metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(passesTotal, passDuration, violationsTotal, hostContractErrors, pendingHallCalls)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	passesTotal, passDuration, violationsTotal, hostContractErrors, pendingHallCalls = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
