package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the trends service.
// Metrics are organized by subsystem: pipeline runs, source requests,
// records, keywords, and artifacts. All counters and histograms are
// registered via promauto for automatic registration with the default
// Prometheus registry.
type Metrics struct {
	// RunsStarted counts pipeline runs initiated, labeled by mode.
	RunsStarted *prometheus.CounterVec

	// RunsCompleted counts pipeline runs that finished successfully, labeled by mode.
	RunsCompleted *prometheus.CounterVec

	// RunsFailed counts pipeline runs that ended in failure, labeled by mode.
	RunsFailed *prometheus.CounterVec

	// RunDuration observes the end-to-end duration of pipeline runs in seconds, labeled by mode.
	RunDuration *prometheus.HistogramVec

	// SourceRequestsTotal counts HTTP requests to the literature source.
	SourceRequestsTotal prometheus.Counter

	// SourceRequestsFailed counts failed HTTP requests to the literature source, labeled by error type.
	SourceRequestsFailed *prometheus.CounterVec

	// SourceRequestDuration observes HTTP request duration to the literature source in seconds.
	SourceRequestDuration prometheus.Histogram

	// SourceRateLimited counts rate-limited responses from the literature source.
	SourceRateLimited prometheus.Counter

	// PagesFetched counts result pages retrieved from the literature source.
	PagesFetched prometheus.Counter

	// MonthsFetched counts month-range fetch cycles completed by the backfill orchestrator.
	MonthsFetched prometheus.Counter

	// MonthFetchFailures counts month-range fetch cycles that failed and were skipped.
	MonthFetchFailures prometheus.Counter

	// RecordsFetched counts raw records retrieved from the literature source.
	RecordsFetched prometheus.Counter

	// RecordsNormalized counts records successfully normalized into the canonical schema.
	RecordsNormalized prometheus.Counter

	// SentinelRecords counts records replaced by the sentinel after a normalization failure.
	SentinelRecords prometheus.Counter

	// SafetyMatches counts records classified as safety-relevant.
	SafetyMatches prometheus.Counter

	// RecordsPerFetch observes the distribution of records returned per fetch scope.
	RecordsPerFetch prometheus.Histogram

	// KeywordsExtracted counts keyword entries produced, labeled by ranking strategy.
	KeywordsExtracted *prometheus.CounterVec

	// KeywordExtractionFailures counts ranking computations that yielded an empty result on error, labeled by strategy.
	KeywordExtractionFailures *prometheus.CounterVec

	// BucketsMerged counts time buckets written by the merge engine, labeled by granularity.
	BucketsMerged *prometheus.CounterVec

	// ArtifactWrites counts successful artifact writes, labeled by artifact name.
	ArtifactWrites *prometheus.CounterVec

	// ArtifactWriteFailures counts failed artifact writes, labeled by artifact name.
	ArtifactWriteFailures *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The namespace is used as a prefix for all metric names.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		// Pipeline runs
		RunsStarted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_started_total",
			Help:      "Total number of pipeline runs started by mode",
		}, []string{"mode"}),
		RunsCompleted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_completed_total",
			Help:      "Total number of pipeline runs completed successfully by mode",
		}, []string{"mode"}),
		RunsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_failed_total",
			Help:      "Total number of pipeline runs that failed by mode",
		}, []string{"mode"}),
		RunDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of pipeline runs in seconds by mode",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600, 1200, 1800, 3600},
		}, []string{"mode"}),

		// Source requests
		SourceRequestsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_requests_total",
			Help:      "Total number of requests to the literature source",
		}),
		SourceRequestsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_requests_failed_total",
			Help:      "Total number of failed requests to the literature source by error type",
		}, []string{"error_type"}),
		SourceRequestDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_request_duration_seconds",
			Help:      "Duration of requests to the literature source in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		SourceRateLimited: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_rate_limited_total",
			Help:      "Total number of rate limit responses from the literature source",
		}),
		PagesFetched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_fetched_total",
			Help:      "Total number of result pages fetched from the literature source",
		}),
		MonthsFetched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "months_fetched_total",
			Help:      "Total number of month-range fetch cycles completed",
		}),
		MonthFetchFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "month_fetch_failures_total",
			Help:      "Total number of month-range fetch cycles that failed",
		}),

		// Records
		RecordsFetched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_fetched_total",
			Help:      "Total number of raw records fetched from the literature source",
		}),
		RecordsNormalized: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_normalized_total",
			Help:      "Total number of records normalized into the canonical schema",
		}),
		SentinelRecords: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sentinel_records_total",
			Help:      "Total number of records replaced by the sentinel on normalization failure",
		}),
		SafetyMatches: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "safety_matches_total",
			Help:      "Total number of records classified as safety-relevant",
		}),
		RecordsPerFetch: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "records_per_fetch",
			Help:      "Number of records returned per fetch scope",
			Buckets:   []float64{0, 1, 10, 50, 100, 250, 500, 1000, 2000},
		}),

		// Keywords
		KeywordsExtracted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keywords_extracted_total",
			Help:      "Total number of keyword entries produced by strategy",
		}, []string{"strategy"}),
		KeywordExtractionFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keyword_extraction_failures_total",
			Help:      "Total number of keyword ranking computations that failed by strategy",
		}, []string{"strategy"}),

		// Artifacts
		BucketsMerged: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "buckets_merged_total",
			Help:      "Total number of time buckets written by the merge engine by granularity",
		}, []string{"granularity"}),
		ArtifactWrites: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifact_writes_total",
			Help:      "Total number of successful artifact writes by artifact name",
		}, []string{"artifact"}),
		ArtifactWriteFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifact_write_failures_total",
			Help:      "Total number of failed artifact writes by artifact name",
		}, []string{"artifact"}),
	}
}

// RecordRunStarted records that a pipeline run has started.
func (m *Metrics) RecordRunStarted(mode string) {
	m.RunsStarted.WithLabelValues(mode).Inc()
}

// RecordRunCompleted records that a pipeline run has completed.
func (m *Metrics) RecordRunCompleted(mode string, durationSeconds float64) {
	m.RunsCompleted.WithLabelValues(mode).Inc()
	m.RunDuration.WithLabelValues(mode).Observe(durationSeconds)
}

// RecordRunFailed records that a pipeline run has failed.
func (m *Metrics) RecordRunFailed(mode string, durationSeconds float64) {
	m.RunsFailed.WithLabelValues(mode).Inc()
	m.RunDuration.WithLabelValues(mode).Observe(durationSeconds)
}

// RecordSourceRequest records a request to the literature source.
func (m *Metrics) RecordSourceRequest(durationSeconds float64) {
	m.SourceRequestsTotal.Inc()
	m.SourceRequestDuration.Observe(durationSeconds)
}

// RecordSourceRequestFailed records a failed request to the literature source.
func (m *Metrics) RecordSourceRequestFailed(errorType string) {
	m.SourceRequestsFailed.WithLabelValues(errorType).Inc()
}

// RecordSourceRateLimited records a rate limit response from the literature source.
func (m *Metrics) RecordSourceRateLimited() {
	m.SourceRateLimited.Inc()
}

// RecordPageFetched records one result page retrieved from the literature source.
func (m *Metrics) RecordPageFetched(recordCount int) {
	m.PagesFetched.Inc()
	m.RecordsFetched.Add(float64(recordCount))
}

// RecordMonthFetched records a completed month-range fetch cycle.
func (m *Metrics) RecordMonthFetched(recordCount int) {
	m.MonthsFetched.Inc()
	m.RecordsPerFetch.Observe(float64(recordCount))
}

// RecordMonthFetchFailed records a month-range fetch cycle that failed.
func (m *Metrics) RecordMonthFetchFailed() {
	m.MonthFetchFailures.Inc()
}

// RecordNormalized records normalization results for a batch.
func (m *Metrics) RecordNormalized(total, sentinels int) {
	m.RecordsNormalized.Add(float64(total - sentinels))
	m.SentinelRecords.Add(float64(sentinels))
}

// RecordSafetyMatches records records classified as safety-relevant.
func (m *Metrics) RecordSafetyMatches(count int) {
	m.SafetyMatches.Add(float64(count))
}

// RecordKeywordsExtracted records keyword ranking results for one strategy.
func (m *Metrics) RecordKeywordsExtracted(strategy string, count int) {
	m.KeywordsExtracted.WithLabelValues(strategy).Add(float64(count))
}

// RecordKeywordExtractionFailed records a failed keyword ranking computation.
func (m *Metrics) RecordKeywordExtractionFailed(strategy string) {
	m.KeywordExtractionFailures.WithLabelValues(strategy).Inc()
}

// RecordBucketsMerged records buckets written by the merge engine.
func (m *Metrics) RecordBucketsMerged(granularity string, count int) {
	m.BucketsMerged.WithLabelValues(granularity).Add(float64(count))
}

// RecordArtifactWrite records a successful artifact write.
func (m *Metrics) RecordArtifactWrite(artifact string) {
	m.ArtifactWrites.WithLabelValues(artifact).Inc()
}

// RecordArtifactWriteFailed records a failed artifact write.
func (m *Metrics) RecordArtifactWriteFailed(artifact string) {
	m.ArtifactWriteFailures.WithLabelValues(artifact).Inc()
}
