package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aegisml/arxiv-trends-service/internal/aggregate"
	"github.com/aegisml/arxiv-trends-service/internal/artifact"
	"github.com/aegisml/arxiv-trends-service/internal/arxiv"
	"github.com/aegisml/arxiv-trends-service/internal/domain"
)

// incrementalGranularities are the count sections an incremental run
// recomputes; the monthly section belongs to the backfill.
var incrementalGranularities = []aggregate.Granularity{aggregate.Daily, aggregate.Weekly}

func (p *Pipeline) incremental(ctx context.Context, runID string, logger zerolog.Logger) (*Summary, error) {
	now := p.now()
	query := arxiv.SearchQuery{
		Categories: p.cfg.Categories,
		From:       now.AddDate(0, 0, -p.cfg.DaysToFetch),
		To:         now,
		MaxResults: p.cfg.MaxResults,
	}
	logger.Info().
		Str("from", query.From.Format(domain.DateFormat)).
		Str("to", query.To.Format(domain.DateFormat)).
		Int("max_results", query.MaxResults).
		Msg("fetching incremental window")

	raws, err := p.fetcher.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetching incremental window: %w", err)
	}
	if len(raws) == 0 {
		return nil, domain.ErrNoRecords
	}

	records := p.prepare(logger, raws)
	safetyRecords := aggregate.SafetyRecords(records)
	counts := aggregate.Aggregate(records)
	keywordEntries := p.extractor.Importance(collectAbstracts(records))

	written := p.persistIncremental(logger, runID, records, safetyRecords, counts, keywordEntries)

	return &Summary{
		TotalRecords: len(records),
		SafetyCount:  len(safetyRecords),
		Artifacts:    written,
	}, nil
}

func (p *Pipeline) persistIncremental(logger zerolog.Logger, runID string, records, safetyRecords []domain.Record, counts aggregate.Counts, keywordEntries []domain.KeywordEntry) []string {
	w := &persister{logger: logger, written: make([]string, 0, 5)}

	w.do(artifact.CountsFile, func() error {
		current, err := p.store.LoadCounts()
		if err != nil {
			return err
		}
		if err := p.store.SaveCounts(artifact.MergeCounts(current, counts, incrementalGranularities)); err != nil {
			return err
		}
		p.recordBucketsMerged(counts, incrementalGranularities)
		return nil
	})

	w.do(artifact.PapersFile, func() error {
		current, err := p.store.LoadRecords(artifact.PapersFile)
		if err != nil {
			return err
		}
		merged := artifact.MergeRecords(current, domain.SimplifyAll(records))
		return p.store.SaveRecords(artifact.PapersFile, merged)
	})

	w.do(artifact.SafetyPapersFile, func() error {
		current, err := p.store.LoadRecords(artifact.SafetyPapersFile)
		if err != nil {
			return err
		}
		merged := artifact.MergeRecords(current, domain.SimplifyAll(safetyRecords))
		return p.store.SaveRecords(artifact.SafetyPapersFile, merged)
	})

	w.do(artifact.KeywordsFile, func() error {
		return p.store.SaveKeywords(artifact.KeywordsFile, keywordEntries)
	})

	w.do(artifact.MetadataFile, func() error {
		return p.store.SaveMetadata(p.metadata(runID, len(records), len(safetyRecords)))
	})

	return w.written
}
