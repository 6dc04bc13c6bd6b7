package metrics

// MultiSink fans records out to several sinks. Optional recorders are only
// forwarded to the sinks implementing them.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordAssignment forwards to all sinks, returning the first error encountered.
func (m *MultiSink) RecordAssignment(rec AssignmentRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordAssignment(rec); err != nil {
			return err
		}
	}
	return nil
}

// RecordClaim forwards claims.
func (m *MultiSink) RecordClaim(rec ClaimRecord) error {
	for _, s := range m.Sinks {
		if r, ok := s.(ClaimRecorder); ok {
			if err := r.RecordClaim(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordCancellation forwards cancellations.
func (m *MultiSink) RecordCancellation(rec CancellationRecord) error {
	for _, s := range m.Sinks {
		if r, ok := s.(CancellationRecorder); ok {
			if err := r.RecordCancellation(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordViolation forwards violations.
func (m *MultiSink) RecordViolation(rec ViolationRecord) error {
	for _, s := range m.Sinks {
		if r, ok := s.(ViolationRecorder); ok {
			if err := r.RecordViolation(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordPendingCalls forwards the pending call gauge.
func (m *MultiSink) RecordPendingCalls(n int) error {
	for _, s := range m.Sinks {
		if r, ok := s.(PendingCallsRecorder); ok {
			if err := r.RecordPendingCalls(n); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordPark forwards parking trips.
func (m *MultiSink) RecordPark(rec ParkRecord) error {
	for _, s := range m.Sinks {
		if r, ok := s.(ParkRecorder); ok {
			if err := r.RecordPark(rec); err != nil {
				return err
			}
		}
	}
	return nil
}
