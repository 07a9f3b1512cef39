// Package keywords ranks terms from record abstracts for keyword cloud
// artifacts. Two strategies are provided: frequency, which counts
// stemmed token occurrences, and importance, which scores unigrams and
// bigrams by total TF-IDF weight.
package keywords

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/aegisml/arxiv-trends-service/internal/domain"
	"github.com/aegisml/arxiv-trends-service/internal/observability"
)

// DefaultLimit caps rankings at the number of terms the keyword cloud
// renders.
const DefaultLimit = 100

// Strategy labels used in logs and metrics.
const (
	StrategyFrequency  = "frequency"
	StrategyImportance = "importance"
)

// Extractor runs keyword rankings with logging and metrics attached.
// The zero number of texts is valid and yields an empty ranking.
type Extractor struct {
	limit   int
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// NewExtractor creates an extractor that caps every ranking at limit
// terms. A non-positive limit falls back to DefaultLimit. The metrics
// parameter may be nil.
func NewExtractor(limit int, logger zerolog.Logger, metrics *observability.Metrics) *Extractor {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Extractor{
		limit:   limit,
		logger:  logger.With().Str("component", "keyword_extractor").Logger(),
		metrics: metrics,
	}
}

// Frequency ranks stemmed terms by occurrence count across the texts.
func (e *Extractor) Frequency(texts []string) []domain.KeywordEntry {
	return e.run(StrategyFrequency, texts, RankByFrequency)
}

// Importance ranks unigrams and bigrams by total TF-IDF score across
// the texts.
func (e *Extractor) Importance(texts []string) []domain.KeywordEntry {
	return e.run(StrategyImportance, texts, RankByImportance)
}

// run executes one ranking strategy. A panic inside the ranking is
// contained here so a malformed corpus degrades to an empty ranking
// instead of aborting the whole pipeline run.
func (e *Extractor) run(strategy string, texts []string, rank func([]string, int) []domain.KeywordEntry) (entries []domain.KeywordEntry) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			e.logger.Error().
				Str("strategy", strategy).
				Interface("panic", p).
				Msg("keyword ranking panicked")
			if e.metrics != nil {
				e.metrics.RecordKeywordExtractionFailed(strategy)
			}
			entries = []domain.KeywordEntry{}
		}
	}()

	entries = rank(texts, e.limit)

	if e.metrics != nil {
		e.metrics.RecordKeywordsExtracted(strategy, len(entries))
	}
	e.logger.Debug().
		Str("strategy", strategy).
		Int("documents", len(texts)).
		Int("keywords", len(entries)).
		Dur("duration", time.Since(start)).
		Msg("keyword ranking complete")
	return entries
}
