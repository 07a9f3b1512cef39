package pipeline

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/aegisml/arxiv-trends-service/internal/aggregate"
	"github.com/aegisml/arxiv-trends-service/internal/artifact"
	"github.com/aegisml/arxiv-trends-service/internal/arxiv"
	"github.com/aegisml/arxiv-trends-service/internal/domain"
)

var historicalGranularities = []aggregate.Granularity{aggregate.Monthly}

func (p *Pipeline) historical(ctx context.Context, runID string, logger zerolog.Logger) (*Summary, error) {
	months := aggregate.MonthRanges(p.now(), p.cfg.MonthsToFetch)
	logger.Info().Int("months", len(months)).Msg("starting historical backfill")

	all := make([]domain.Record, 0)
	for i, mr := range months {
		monthLogger := logger.With().Str("month", mr.Label).Logger()

		raws, err := p.fetchMonth(ctx, mr)
		switch {
		case err != nil && ctx.Err() != nil:
			return nil, ctx.Err()
		case err != nil:
			// One month's failure leaves that month empty; the remaining
			// months are still fetched.
			monthLogger.Error().Err(err).Msg("month fetch failed, skipping month")
			if p.metrics != nil {
				p.metrics.RecordMonthFetchFailed()
			}
		default:
			records := p.prepareBatched(monthLogger, raws)
			all = append(all, records...)
			if p.metrics != nil {
				p.metrics.RecordMonthFetched(len(records))
			}
			monthLogger.Info().Int("records", len(records)).Msg("month processed")
		}

		if i < len(months)-1 && p.cfg.PauseBetweenMonths > 0 {
			if err := p.sleep(ctx, p.cfg.PauseBetweenMonths); err != nil {
				return nil, err
			}
		}
	}

	if len(all) == 0 {
		return nil, domain.ErrNoRecords
	}

	safetyRecords := aggregate.SafetyRecords(all)
	counts := aggregate.Aggregate(all)
	trends := aggregate.SafetyByMonth(all)
	monthly := p.monthlyKeywords(aggregate.AbstractsByMonth(all))

	written := p.persistHistorical(logger, runID, all, safetyRecords, counts, trends, monthly)

	return &Summary{
		TotalRecords: len(all),
		SafetyCount:  len(safetyRecords),
		Artifacts:    written,
	}, nil
}

func (p *Pipeline) fetchMonth(ctx context.Context, mr aggregate.MonthRange) ([]domain.RawRecord, error) {
	return p.fetcher.Search(ctx, arxiv.SearchQuery{
		Categories: p.cfg.Categories,
		From:       mr.From,
		To:         mr.To,
		MaxResults: p.cfg.MaxResultsPerMonth,
	})
}

// prepareBatched normalizes and classifies one month's records in
// bounded batches so a large month is processed incrementally.
func (p *Pipeline) prepareBatched(logger zerolog.Logger, raws []domain.RawRecord) []domain.Record {
	batch := p.cfg.BatchSize
	if batch <= 0 {
		return p.prepare(logger, raws)
	}

	records := make([]domain.Record, 0, len(raws))
	for start := 0; start < len(raws); start += batch {
		end := start + batch
		if end > len(raws) {
			end = len(raws)
		}
		records = append(records, p.prepare(logger, raws[start:end])...)
	}
	return records
}

// monthlyKeywords runs the frequency ranking over each month's
// abstracts.
func (p *Pipeline) monthlyKeywords(byMonth map[string][]string) artifact.MonthlyKeywords {
	monthly := make(artifact.MonthlyKeywords, len(byMonth))
	for month, texts := range byMonth {
		monthly[month] = p.extractor.Frequency(texts)
	}
	return monthly
}

func (p *Pipeline) persistHistorical(logger zerolog.Logger, runID string, records, safetyRecords []domain.Record, counts aggregate.Counts, trends map[string]int, monthly artifact.MonthlyKeywords) []string {
	w := &persister{logger: logger, written: make([]string, 0, 6)}

	w.do(artifact.CountsFile, func() error {
		current, err := p.store.LoadCounts()
		if err != nil {
			return err
		}
		if err := p.store.SaveCounts(artifact.MergeCounts(current, counts, historicalGranularities)); err != nil {
			return err
		}
		p.recordBucketsMerged(counts, historicalGranularities)
		return nil
	})

	w.do(artifact.MonthlyKeywordsFile, func() error {
		current, err := p.store.LoadMonthlyKeywords()
		if err != nil {
			return err
		}
		return p.store.SaveMonthlyKeywords(artifact.MergeMonthlyKeywords(current, monthly))
	})

	w.do(artifact.SafetyTrendsFile, func() error {
		current, err := p.store.LoadSafetyTrends()
		if err != nil {
			return err
		}
		return p.store.SaveSafetyTrends(artifact.MergeSafetyTrends(current, trends))
	})

	w.do(artifact.HistoricalPapersFile, func() error {
		current, err := p.store.LoadRecords(artifact.HistoricalPapersFile)
		if err != nil {
			return err
		}
		merged := artifact.MergeRecords(current, domain.SimplifyAll(records))
		return p.store.SaveRecords(artifact.HistoricalPapersFile, merged)
	})

	w.do(artifact.HistoricalSafetyPapersFile, func() error {
		current, err := p.store.LoadRecords(artifact.HistoricalSafetyPapersFile)
		if err != nil {
			return err
		}
		merged := artifact.MergeRecords(current, domain.SimplifyAll(safetyRecords))
		return p.store.SaveRecords(artifact.HistoricalSafetyPapersFile, merged)
	})

	w.do(artifact.MetadataFile, func() error {
		return p.store.SaveMetadata(p.metadata(runID, len(records), len(safetyRecords)))
	})

	return w.written
}
