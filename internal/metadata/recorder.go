package metadata

import (
	"time"

	"go.uber.org/zap"
)

/*
Metadata Collected
- Fetch outcomes and HTTP status codes
- Fetch durations and attempt counts
- Cache hits
- Batch summaries

Logging Goals
- Debuggable fetch behavior
- Failure diagnostics

Structured logging is preferred.

Allowed:
- Primitive values
- Timestamps
- URLs (as values, not objects with behavior)
- Status codes
- Durations

Metadata is write-only.
No component may read metadata to influence fetching or result assembly.
*/

/*
Recorder captures structured fetch events.
It must not:
- perform I/O decisions
- affect control flow
Ordering guarantees:
  - Events from a single fetch are recorded in the order they happen.
  - No global ordering across concurrent fetches is guaranteed.
*/
type Recorder struct {
	logger  *zap.Logger
	metrics *Metrics
}

// NewRecorder returns a Recorder writing to logger. metrics may be nil.
func NewRecorder(logger *zap.Logger, metrics *Metrics) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{
		logger:  logger,
		metrics: metrics,
	}
}

func (r *Recorder) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	errorString string,
	attrs []Attribute,
) {
	rec := ErrorRecord{
		packageName: packageName,
		action:      action,
		cause:       cause,
		errorString: errorString,
		observedAt:  observedAt,
		attrs:       attrs,
	}

	fields := []zap.Field{
		zap.String("package", rec.packageName),
		zap.String("action", rec.action),
		zap.String("cause", rec.cause.String()),
		zap.String("error", rec.errorString),
		zap.Time("observed_at", rec.observedAt),
	}
	for _, a := range rec.attrs {
		fields = append(fields, zap.String(string(a.Key), a.Value))
	}
	r.logger.Warn("fetch error", fields...)

	if r.metrics != nil {
		r.metrics.observeError(rec.packageName, rec.cause)
	}
}

func (r *Recorder) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	attempts int,
	cacheHit bool,
) {
	ev := FetchEvent{
		fetchUrl:   fetchUrl,
		httpStatus: httpStatus,
		duration:   duration,
		attempts:   attempts,
		cacheHit:   cacheHit,
	}

	r.logger.Debug("fetch",
		zap.String("url", ev.fetchUrl),
		zap.Int("http_status", ev.httpStatus),
		zap.Duration("duration", ev.duration),
		zap.Int("attempts", ev.attempts),
		zap.Bool("cache_hit", ev.cacheHit),
	)

	if r.metrics != nil {
		r.metrics.observeFetch(ev.outcome(), ev.duration.Seconds())
	}
}

func (e FetchEvent) outcome() string {
	switch {
	case e.cacheHit:
		return "cache_hit"
	case e.httpStatus >= 200 && e.httpStatus < 300:
		return "success"
	default:
		return "error"
	}
}

/*
RecordFinalBatchStats records a terminal, derived summary of a completed batch.

Contract:
  - MUST be called exactly once per batch execution.
  - MUST be called only after every fetch of the batch has resolved.
  - The provided stats MUST be derived from the collected results,
    not accumulated incrementally via the recorder.
  - Recorded stats MUST NOT influence result assembly.
*/
func (r *Recorder) RecordFinalBatchStats(
	totalURLs int,
	totalErrors int,
	totalTitles int,
	duration time.Duration,
) {
	stats := batchStats{
		totalURLs:   totalURLs,
		totalErrors: totalErrors,
		totalTitles: totalTitles,
		durationMs:  duration.Milliseconds(),
	}

	r.logger.Info("batch completed",
		zap.Int("total_urls", stats.totalURLs),
		zap.Int("total_errors", stats.totalErrors),
		zap.Int("total_titles", stats.totalTitles),
		zap.Int64("duration_ms", stats.durationMs),
	)

	if r.metrics != nil {
		r.metrics.observeBatch(stats.totalURLs)
	}
}

type MetadataSink interface {
	RecordError(
		observedAt time.Time,
		packageName string,
		action string,
		cause ErrorCause,
		details string,
		attrs []Attribute,
	)

	RecordFetch(
		fetchUrl string,
		httpStatus int,
		duration time.Duration,
		attempts int,
		cacheHit bool,
	)
}

type BatchFinalizer interface {
	RecordFinalBatchStats(
		totalURLs int,
		totalErrors int,
		totalTitles int,
		duration time.Duration,
	)
}

// NoopSink, struct that implements metadata.MetadataSink and
// metadata.BatchFinalizer but does nothing.
// Callers (or tests) decide whether to inject Recorder or NoopSink.

type NoopSink struct{}

func (n *NoopSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	errorString string,
	attrs []Attribute,
) {
}

func (n *NoopSink) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	attempts int,
	cacheHit bool,
) {
}

func (n *NoopSink) RecordFinalBatchStats(
	totalURLs int,
	totalErrors int,
	totalTitles int,
	duration time.Duration,
) {
}
