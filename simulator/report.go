package simulator

import (
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarizes a sample of durations in ticks.
type Stats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	P50    float64 `json:"p50"`
	P95    float64 `json:"p95"`
	Max    float64 `json:"max"`
}

// Report is the outcome of a simulation run.
type Report struct {
	Ticks     int   `json:"ticks"`
	Spawned   int   `json:"spawned"`
	Delivered int   `json:"delivered"`
	Waiting   int   `json:"waiting"`
	Riding    int   `json:"riding"`
	Wait      Stats `json:"wait"`
	Ride      Stats `json:"ride"`
	// WaitHistogram counts delivered passengers by wait time in ticks.
	WaitHistogram []int `json:"wait_histogram,omitempty"`
}

// Report computes the statistics of the passengers delivered so far.
func (s *Simulation) Report() Report {
	r := Report{Ticks: s.tick, Spawned: s.spawned, Delivered: len(s.delivered)}
	for _, w := range s.waiting {
		r.Waiting += len(w)
	}
	for _, c := range s.cars {
		r.Riding += len(c.riders)
	}
	waits := make([]float64, 0, len(s.delivered))
	rides := make([]float64, 0, len(s.delivered))
	for _, p := range s.delivered {
		waits = append(waits, float64(p.Board-p.Spawn))
		rides = append(rides, float64(p.Exit-p.Board))
	}
	r.WaitHistogram = histogram(waits)
	r.Wait = summarize(waits)
	r.Ride = summarize(rides)
	return r
}

func summarize(xs []float64) Stats {
	if len(xs) == 0 {
		return Stats{}
	}
	slices.Sort(xs)
	st := Stats{
		Count: len(xs),
		Mean:  stat.Mean(xs, nil),
		P50:   stat.Quantile(0.5, stat.Empirical, xs, nil),
		P95:   stat.Quantile(0.95, stat.Empirical, xs, nil),
		Max:   floats.Max(xs),
	}
	if len(xs) > 1 {
		st.StdDev = stat.StdDev(xs, nil)
	}
	return st
}

func histogram(xs []float64) []int {
	if len(xs) == 0 {
		return nil
	}
	h := make([]int, int(floats.Max(xs))+1)
	for _, x := range xs {
		h[int(x)]++
	}
	return h
}
