// Package metrics provides standardized metric emission helpers for the
// generation pipeline.
package metrics

import (
	"time"

	"github.com/openpalette/genstudio/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultAllowed  = "allowed"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// AdmissionMetric captures one admission decision for metric emission.
type AdmissionMetric struct {
	Result string
	Reason string
	Plan   string
}

// EmitAdmission emits the admission decision counter.
func EmitAdmission(sink statsd.Sink, in AdmissionMetric) {
	if sink == nil {
		return
	}
	tags := map[string]string{"result": in.Result}
	if in.Reason != "" {
		tags["reason"] = in.Reason
	}
	if in.Plan != "" {
		tags["plan"] = in.Plan
	}
	sink.Count("admission.decision", 1, tags)
}

// TransitionMetric captures a job lifecycle transition for metric emission.
type TransitionMetric struct {
	Status     string
	ErrorType  string
	RetryCount int
	Duration   time.Duration
}

// EmitTransition emits standardized job lifecycle metrics.
func EmitTransition(sink statsd.Sink, in TransitionMetric) {
	if sink == nil {
		return
	}
	tags := map[string]string{"status": in.Status}
	if in.ErrorType != "" {
		tags["error_type"] = in.ErrorType
	}
	sink.Count("job.transition", 1, tags)
	if in.Duration > 0 {
		sink.Timing("job.processing_time", in.Duration, tags)
	}
	if in.RetryCount > 0 {
		sink.Gauge("job.retry_count", float64(in.RetryCount), nil)
	}
}

// EmitQueueDepth emits queue depth gauges from a stats snapshot.
func EmitQueueDepth(sink statsd.Sink, pending, processing int) {
	if sink == nil {
		return
	}
	sink.Gauge("queue.pending", float64(pending), nil)
	sink.Gauge("queue.processing", float64(processing), nil)
}

// SweepMetric captures one sweeper pass for metric emission.
type SweepMetric struct {
	TimedOut  int
	Deleted   int64
	Positions int
}

// EmitSweep emits sweeper pass counters.
func EmitSweep(sink statsd.Sink, in SweepMetric) {
	if sink == nil {
		return
	}
	sink.Count("sweeper.timed_out", int64(in.TimedOut), nil)
	sink.Count("sweeper.deleted", in.Deleted, nil)
	sink.Count("sweeper.positions_rewritten", int64(in.Positions), nil)
}
