package loopgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    detections *prometheus.CounterVec
//	    latency    prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordDetection(status loopgo.Status, d time.Duration, err error) {
//	    p.detections.WithLabelValues(status.String()).Inc()
//	    p.latency.Observe(d.Seconds())
//	}
type MetricsCollector interface {
	// RecordDetection is called after each detection call.
	// err is nil unless a collaborator failed.
	RecordDetection(status Status, duration time.Duration, err error)

	// RecordExtraction is called after each image processed by a Stream.
	RecordExtraction(features int, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordDetection(Status, time.Duration, error) {}
func (NoopMetricsCollector) RecordExtraction(int, time.Duration)         {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	DetectionCount       atomic.Int64
	DetectionErrors      atomic.Int64
	DetectionTotalNanos  atomic.Int64
	ExtractionCount      atomic.Int64
	ExtractedFeatures    atomic.Int64
	ExtractionTotalNanos atomic.Int64

	statuses [numStatuses]atomic.Int64
}

// RecordDetection implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDetection(status Status, duration time.Duration, err error) {
	b.DetectionCount.Add(1)
	b.DetectionTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.DetectionErrors.Add(1)
	}
	if status < numStatuses {
		b.statuses[status].Add(1)
	}
}

// RecordExtraction implements MetricsCollector.
func (b *BasicMetricsCollector) RecordExtraction(features int, duration time.Duration) {
	b.ExtractionCount.Add(1)
	b.ExtractedFeatures.Add(int64(features))
	b.ExtractionTotalNanos.Add(duration.Nanoseconds())
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	s := BasicMetricsStats{
		DetectionCount:     b.DetectionCount.Load(),
		DetectionErrors:    b.DetectionErrors.Load(),
		DetectionAvgNanos:  avg(b.DetectionTotalNanos.Load(), b.DetectionCount.Load()),
		ExtractionCount:    b.ExtractionCount.Load(),
		ExtractedFeatures:  b.ExtractedFeatures.Load(),
		ExtractionAvgNanos: avg(b.ExtractionTotalNanos.Load(), b.ExtractionCount.Load()),
		Statuses:           make(map[Status]int64),
	}
	for st := range numStatuses {
		if n := b.statuses[st].Load(); n > 0 {
			s.Statuses[st] = n
		}
	}
	s.Loops = s.Statuses[LoopDetected]
	return s
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	DetectionCount     int64
	DetectionErrors    int64
	DetectionAvgNanos  int64
	ExtractionCount    int64
	ExtractedFeatures  int64
	ExtractionAvgNanos int64
	Loops              int64
	// Statuses counts detections per outcome. Absent statuses did not occur.
	Statuses map[Status]int64
}
