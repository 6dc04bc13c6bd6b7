package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/liftdispatch/core/metrics"
	"github.com/kilianp07/liftdispatch/core/model"
	"github.com/kilianp07/liftdispatch/infra/logger"
)

// InfluxSink writes dispatch decisions to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close releases the HTTP client.
func (s *InfluxSink) Close() { s.client.Close() }

func (s *InfluxSink) write(p *write.Point) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordAssignment writes an assignment point.
func (s *InfluxSink) RecordAssignment(rec coremetrics.AssignmentRecord) error {
	p := callPoint("dispatch_assignment", rec.Car, rec.Call).
		AddTag("class", rec.Class.String()).
		AddTag("pass_id", rec.PassID).
		AddField("score", rec.Score).
		SetTime(rec.Time)
	return s.write(p)
}

// RecordClaim writes a claim point.
func (s *InfluxSink) RecordClaim(rec coremetrics.ClaimRecord) error {
	p := callPoint("dispatch_claim", rec.Car, rec.Call).
		AddTag("reason", rec.Reason).
		AddTag("override", strconv.FormatBool(rec.Override)).
		AddField("count", 1).
		SetTime(rec.Time)
	return s.write(p)
}

// RecordCancellation writes a cancelled trip.
func (s *InfluxSink) RecordCancellation(rec coremetrics.CancellationRecord) error {
	p := write.NewPointWithMeasurement("dispatch_cancellation").
		AddTag("car", strconv.Itoa(int(rec.Car))).
		AddTag("served_by", strconv.Itoa(int(rec.ServedBy))).
		AddField("floor", rec.Floor).
		SetTime(rec.Time)
	return s.write(p)
}

// RecordViolation writes a skipped invariant violation.
func (s *InfluxSink) RecordViolation(rec coremetrics.ViolationRecord) error {
	p := callPoint("dispatch_violation", rec.Car, rec.Call).
		AddTag("kind", rec.Kind).
		AddField("count", 1).
		SetTime(rec.Time)
	return s.write(p)
}

// RecordPendingCalls writes the number of outstanding hall calls.
func (s *InfluxSink) RecordPendingCalls(n int) error {
	p := write.NewPointWithMeasurement("dispatch_pending_calls").
		AddTag("component", "dispatch_engine").
		AddField("pending", n).
		SetTime(time.Now())
	return s.write(p)
}

func callPoint(measurement string, car model.CarID, call model.HallCall) *write.Point {
	return write.NewPointWithMeasurement(measurement).
		AddTag("car", strconv.Itoa(int(car))).
		AddTag("direction", call.Direction.String()).
		AddField("floor", call.Floor)
}
