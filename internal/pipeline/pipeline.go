// Package pipeline orchestrates the two run modes: the incremental
// update over a trailing submission window and the historical backfill
// over month ranges. A run fetches, normalizes, classifies, aggregates,
// and merges into the persisted artifacts; zero fetched records end the
// run early with the artifacts untouched.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aegisml/arxiv-trends-service/internal/aggregate"
	"github.com/aegisml/arxiv-trends-service/internal/artifact"
	"github.com/aegisml/arxiv-trends-service/internal/arxiv"
	"github.com/aegisml/arxiv-trends-service/internal/config"
	"github.com/aegisml/arxiv-trends-service/internal/domain"
	"github.com/aegisml/arxiv-trends-service/internal/keywords"
	"github.com/aegisml/arxiv-trends-service/internal/observability"
)

// Run modes, used as the mode label in logs and metrics.
const (
	ModeIncremental = "incremental"
	ModeHistorical  = "historical"
)

// Fetcher is the slice of the literature client the pipeline needs.
type Fetcher interface {
	Search(ctx context.Context, q arxiv.SearchQuery) ([]domain.RawRecord, error)
}

// Summary reports what one run fetched and wrote.
type Summary struct {
	RunID        string
	Mode         string
	TotalRecords int
	SafetyCount  int
	Artifacts    []string
	Duration     time.Duration
}

// Pipeline executes runs against one artifact store. Runs are
// single-threaded; callers must not overlap runs that share a store.
type Pipeline struct {
	cfg        config.PipelineConfig
	fetcher    Fetcher
	store      *artifact.Store
	normalizer *domain.Normalizer
	classifier *domain.Classifier
	extractor  *keywords.Extractor
	logger     zerolog.Logger
	metrics    *observability.Metrics

	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
	newRunID func() string
}

// New assembles a pipeline from its stages. metrics may be nil.
func New(cfg config.PipelineConfig, fetcher Fetcher, store *artifact.Store, logger zerolog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		fetcher:    fetcher,
		store:      store,
		normalizer: domain.NewNormalizer(logger),
		classifier: domain.NewClassifier(cfg.SafetyTerms),
		extractor:  keywords.NewExtractor(cfg.KeywordLimit, logger, metrics),
		logger:     logger.With().Str("component", "pipeline").Logger(),
		metrics:    metrics,
		now:        time.Now,
		sleep:      sleepContext,
		newRunID:   uuid.NewString,
	}
}

// RunIncremental executes the incremental update: one windowed query,
// classify, aggregate daily and weekly, merge, write metadata.
func (p *Pipeline) RunIncremental(ctx context.Context) (*Summary, error) {
	return p.run(ctx, ModeIncremental, p.incremental)
}

// RunHistorical executes the month-by-month backfill.
func (p *Pipeline) RunHistorical(ctx context.Context) (*Summary, error) {
	return p.run(ctx, ModeHistorical, p.historical)
}

func (p *Pipeline) run(ctx context.Context, mode string, fn func(context.Context, string, zerolog.Logger) (*Summary, error)) (*Summary, error) {
	runID := p.newRunID()
	ctx = observability.WithRun(ctx, runID, mode)
	logger := p.logger.With().Str("mode", mode).Str("run_id", runID).Logger()

	if p.metrics != nil {
		p.metrics.RecordRunStarted(mode)
	}
	logger.Info().Msg("pipeline run starting")
	start := p.now()

	summary, err := fn(ctx, runID, logger)
	duration := p.now().Sub(start)

	switch {
	case errors.Is(err, domain.ErrNoRecords):
		logger.Warn().Dur("duration", duration).Msg("no records fetched, artifacts left untouched")
		if p.metrics != nil {
			p.metrics.RecordRunCompleted(mode, duration.Seconds())
		}
		summary = &Summary{Artifacts: []string{}}
	case err != nil:
		logger.Error().Err(err).Dur("duration", duration).Msg("pipeline run failed")
		if p.metrics != nil {
			p.metrics.RecordRunFailed(mode, duration.Seconds())
		}
		return nil, err
	default:
		logger.Info().
			Int("records", summary.TotalRecords).
			Int("safety_records", summary.SafetyCount).
			Strs("artifacts", summary.Artifacts).
			Dur("duration", duration).
			Msg("pipeline run complete")
		if p.metrics != nil {
			p.metrics.RecordRunCompleted(mode, duration.Seconds())
		}
	}

	summary.RunID = runID
	summary.Mode = mode
	summary.Duration = duration
	return summary, nil
}

// prepare runs one batch of raw records through normalization and
// classification, recording the batch outcome.
func (p *Pipeline) prepare(logger zerolog.Logger, raws []domain.RawRecord) []domain.Record {
	records := p.classifier.ClassifyAll(p.normalizer.NormalizeAll(raws))

	sentinels, safety := 0, 0
	for i := range records {
		if records[i].IsSentinel() {
			sentinels++
		}
		if records[i].IsSafetyPaper {
			safety++
		}
	}
	if p.metrics != nil {
		p.metrics.RecordNormalized(len(records), sentinels)
		p.metrics.RecordSafetyMatches(safety)
	}
	logger.Debug().
		Int("records", len(records)).
		Int("sentinels", sentinels).
		Int("safety_records", safety).
		Msg("batch classified")
	return records
}

func (p *Pipeline) metadata(runID string, total, safety int) artifact.MetadataDocument {
	return artifact.MetadataDocument{
		LastUpdated:       p.now().Format(artifact.MetadataTimeFormat),
		RunID:             runID,
		TotalPapers:       total,
		SafetyPapersCount: safety,
		Categories:        append([]string(nil), p.cfg.Categories...),
		SafetyTerms:       p.classifier.Terms(),
	}
}

func (p *Pipeline) recordBucketsMerged(fresh aggregate.Counts, granularities []aggregate.Granularity) {
	if p.metrics == nil {
		return
	}
	for _, g := range granularities {
		p.metrics.RecordBucketsMerged(string(g), len(fresh.ByGranularity(g)))
	}
}

// persister accumulates the artifact names written by one run. A failed
// load, merge, or write is logged and that artifact skipped; the
// remaining artifacts are still written.
type persister struct {
	logger  zerolog.Logger
	written []string
}

func (w *persister) do(name string, fn func() error) {
	if err := fn(); err != nil {
		w.logger.Warn().Err(err).Str("artifact", name).Msg("artifact skipped")
		return
	}
	w.written = append(w.written, name)
}

func collectAbstracts(records []domain.Record) []string {
	texts := make([]string, 0, len(records))
	for i := range records {
		if records[i].Abstract != "" {
			texts = append(texts, records[i].Abstract)
		}
	}
	return texts
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
