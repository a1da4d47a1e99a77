package loopgo

import (
	"log/slog"
	"time"

	"github.com/hupe1980/loopgo/geometry"
)

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
	verifier         geometry.Verifier
	clock            func() time.Time
	vocabularyCache  int
}

// Option configures Detector construction.
type Option func(*options)

// WithMetricsCollector configures a metrics collector for monitoring detections.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &loopgo.BasicMetricsCollector{}
//	det, _ := loopgo.New(voc, db, params, loopgo.WithMetricsCollector(metrics))
//	// ... feed frames ...
//	stats := metrics.GetStats()
//	fmt.Printf("Loops: %d of %d frames\n", stats.Loops, stats.DetectionCount)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for detections.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := loopgo.NewJSONLogger(slog.LevelInfo)
//	det, _ := loopgo.New(voc, db, params, loopgo.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithVerifier replaces the fundamental matrix verifier built from the
// parameters. It is only consulted when GeometricCheck is not GeometryNone.
func WithVerifier(v geometry.Verifier) Option {
	return func(o *options) {
		o.verifier = v
	}
}

// WithClock sets the time source used for query timestamps and latencies.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.clock = now
	}
}

// WithVocabularyCache memoizes descriptor quantization in an LRU cache of
// the given capacity. Useful with slow vocabularies and repeated descriptors.
func WithVocabularyCache(capacity int) Option {
	return func(o *options) {
		o.vocabularyCache = capacity
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		clock:            time.Now,
	}
	for _, fn := range optFns {
		fn(&o)
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.clock == nil {
		o.clock = time.Now
	}
	return o
}
