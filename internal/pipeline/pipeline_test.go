package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegisml/arxiv-trends-service/internal/artifact"
	"github.com/aegisml/arxiv-trends-service/internal/arxiv"
	"github.com/aegisml/arxiv-trends-service/internal/config"
	"github.com/aegisml/arxiv-trends-service/internal/domain"
	"github.com/aegisml/arxiv-trends-service/internal/observability"
)

// fakeFetcher replays canned pages, one per Search call, and records
// the queries it saw.
type fakeFetcher struct {
	queries []arxiv.SearchQuery
	pages   [][]domain.RawRecord
	errs    []error
	lastCtx context.Context
}

func (f *fakeFetcher) Search(ctx context.Context, q arxiv.SearchQuery) ([]domain.RawRecord, error) {
	f.lastCtx = ctx
	call := len(f.queries)
	f.queries = append(f.queries, q)

	var err error
	if call < len(f.errs) {
		err = f.errs[call]
	}
	var raws []domain.RawRecord
	if call < len(f.pages) {
		raws = f.pages[call]
	}
	return raws, err
}

func testPipelineConfig() config.PipelineConfig {
	return config.PipelineConfig{
		Categories:         []string{"cs.AI", "cs.LG", "cs.CV"},
		SafetyTerms:        []string{"alignment", "reward hacking", "safety"},
		DaysToFetch:        7,
		MaxResults:         1000,
		MonthsToFetch:      2,
		MaxResultsPerMonth: 2000,
		BatchSize:          500,
		PauseBetweenMonths: 5 * time.Second,
		KeywordLimit:       100,
	}
}

// newTestPipeline pins the clock to 2024-03-18 06:00 UTC, disables the
// inter-month pause, and fixes the run ID.
func newTestPipeline(t *testing.T, fetcher Fetcher, metrics *observability.Metrics) (*Pipeline, *artifact.Store) {
	t.Helper()
	store := artifact.NewStore(t.TempDir(), zerolog.Nop(), metrics)
	p := New(testPipelineConfig(), fetcher, store, zerolog.Nop(), metrics)
	p.now = func() time.Time { return time.Date(2024, 3, 18, 6, 0, 0, 0, time.UTC) }
	p.sleep = func(context.Context, time.Duration) error { return nil }
	p.newRunID = func() string { return "run-1" }
	return p, store
}

func rawPaper(id, title, abstract, primary string, categories []string, date time.Time) domain.RawRecord {
	return domain.RawRecord{
		ID:              id,
		Title:           title,
		Authors:         []string{"A. Author"},
		Abstract:        abstract,
		Categories:      categories,
		PrimaryCategory: primary,
		Published:       date,
		Updated:         date,
	}
}

func incrementalFixture() []domain.RawRecord {
	date := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	return []domain.RawRecord{
		rawPaper("2403.01234", "Reward Hacking in RL Agents",
			"We study reward hacking in reinforcement learning agents.",
			"cs.LG", []string{"cs.LG", "cs.AI"}, date),
		rawPaper("2403.05678", "Image Segmentation",
			"A study of image segmentation.",
			"cs.CV", []string{"cs.CV"}, date),
	}
}

func TestRunIncremental_EndToEnd(t *testing.T) {
	fetcher := &fakeFetcher{pages: [][]domain.RawRecord{incrementalFixture()}}
	p, store := newTestPipeline(t, fetcher, nil)

	summary, err := p.RunIncremental(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "run-1", summary.RunID)
	assert.Equal(t, ModeIncremental, summary.Mode)
	assert.Equal(t, 2, summary.TotalRecords)
	assert.Equal(t, 1, summary.SafetyCount)
	assert.ElementsMatch(t, []string{
		artifact.CountsFile,
		artifact.PapersFile,
		artifact.SafetyPapersFile,
		artifact.KeywordsFile,
		artifact.MetadataFile,
	}, summary.Artifacts)

	// The run identity travels on the context handed to the fetcher.
	runID, mode := observability.RunFromContext(fetcher.lastCtx)
	assert.Equal(t, "run-1", runID)
	assert.Equal(t, ModeIncremental, mode)

	// The query covers the trailing window across all categories.
	require.Len(t, fetcher.queries, 1)
	q := fetcher.queries[0]
	assert.Equal(t, []string{"cs.AI", "cs.LG", "cs.CV"}, q.Categories)
	assert.Equal(t, "2024-03-11", q.From.Format(domain.DateFormat))
	assert.Equal(t, "2024-03-18", q.To.Format(domain.DateFormat))
	assert.Equal(t, 1000, q.MaxResults)

	counts, err := store.LoadCounts()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"cs.LG": 1, "cs.CV": 1}, counts.Daily["2024-03-15"])
	assert.Equal(t, map[string]int{"cs.LG": 1, "cs.CV": 1}, counts.Weekly["2024-W11"])
	assert.Empty(t, counts.Monthly)

	papers, err := store.LoadRecords(artifact.PapersFile)
	require.NoError(t, err)
	require.Len(t, papers, 2)
	assert.Equal(t, "2403.01234", papers[0].ID)
	assert.Equal(t, "2403.05678", papers[1].ID)

	safety, err := store.LoadRecords(artifact.SafetyPapersFile)
	require.NoError(t, err)
	require.Len(t, safety, 1)
	assert.Equal(t, "2403.01234", safety[0].ID)
	assert.Equal(t, []string{"reward hacking"}, safety[0].SafetyKeywords)
	assert.True(t, safety[0].IsSafetyPaper)

	var entries []domain.KeywordEntry
	raw, err := os.ReadFile(store.Path(artifact.KeywordsFile))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &entries))
	require.NotEmpty(t, entries)
	found := false
	for _, e := range entries {
		if e.Text == "reward hacking" {
			found = true
			assert.Positive(t, e.Value)
		}
	}
	assert.True(t, found, "expected a reward hacking keyword entry")

	raw, err = os.ReadFile(store.Path(artifact.MetadataFile))
	require.NoError(t, err)
	var meta artifact.MetadataDocument
	require.NoError(t, json.Unmarshal(raw, &meta))
	assert.Equal(t, "2024-03-18 06:00:00", meta.LastUpdated)
	assert.Equal(t, "run-1", meta.RunID)
	assert.Equal(t, 2, meta.TotalPapers)
	assert.Equal(t, 1, meta.SafetyPapersCount)
	assert.Equal(t, []string{"cs.AI", "cs.LG", "cs.CV"}, meta.Categories)
	assert.Equal(t, []string{"alignment", "reward hacking", "safety"}, meta.SafetyTerms)
}

func TestRunIncremental_MergesWithPriorState(t *testing.T) {
	fetcher := &fakeFetcher{pages: [][]domain.RawRecord{incrementalFixture()}}
	p, store := newTestPipeline(t, fetcher, nil)

	seed := artifact.NewCountsDocument()
	seed.Daily["2024-03-14"] = map[string]int{"cs.AI": 4}
	seed.Daily["2024-03-15"] = map[string]int{"cs.AI": 9}
	seed.Monthly["2024-02"] = map[string]int{"cs.LG": 7}
	require.NoError(t, store.SaveCounts(seed))
	require.NoError(t, store.SaveRecords(artifact.PapersFile,
		[]domain.SimplifiedRecord{{ID: "2402.99999", Title: "Prior"}}))

	_, err := p.RunIncremental(context.Background())
	require.NoError(t, err)

	counts, err := store.LoadCounts()
	require.NoError(t, err)
	// Untouched buckets and the monthly section survive; the refetched
	// daily bucket is replaced with this run's values.
	assert.Equal(t, map[string]int{"cs.AI": 4}, counts.Daily["2024-03-14"])
	assert.Equal(t, map[string]int{"cs.LG": 1, "cs.CV": 1}, counts.Daily["2024-03-15"])
	assert.Equal(t, map[string]int{"cs.LG": 7}, counts.Monthly["2024-02"])

	papers, err := store.LoadRecords(artifact.PapersFile)
	require.NoError(t, err)
	require.Len(t, papers, 3)
	assert.Equal(t, "2402.99999", papers[0].ID)
	assert.Equal(t, "2403.01234", papers[1].ID)
}

func TestRunIncremental_NoRecords(t *testing.T) {
	fetcher := &fakeFetcher{pages: [][]domain.RawRecord{{}}}
	p, store := newTestPipeline(t, fetcher, nil)

	summary, err := p.RunIncremental(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.TotalRecords)
	assert.Empty(t, summary.Artifacts)

	names, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, names, "an empty fetch must not write artifacts")
}

func TestRunIncremental_FetchError(t *testing.T) {
	fetcher := &fakeFetcher{errs: []error{errors.New("connection refused")}}
	p, store := newTestPipeline(t, fetcher, nil)

	_, err := p.RunIncremental(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "connection refused")

	names, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestRunHistorical_EndToEnd(t *testing.T) {
	marchRecords := []domain.RawRecord{
		rawPaper("2403.01111", "Alignment Faking in LLMs",
			"We analyse alignment stability in large language models.",
			"cs.AI", []string{"cs.AI"}, time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)),
		rawPaper("2403.02222", "Graph Networks",
			"Graph neural networks for physics models.",
			"cs.LG", []string{"cs.LG"}, time.Date(2024, 3, 7, 9, 0, 0, 0, time.UTC)),
	}
	febRecords := []domain.RawRecord{
		rawPaper("2402.03333", "Diffusion Survey",
			"Image synthesis with diffusion models.",
			"cs.CV", []string{"cs.CV"}, time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC)),
	}
	fetcher := &fakeFetcher{pages: [][]domain.RawRecord{marchRecords, febRecords}}
	p, store := newTestPipeline(t, fetcher, nil)

	pauses := 0
	p.sleep = func(_ context.Context, d time.Duration) error {
		pauses++
		assert.Equal(t, 5*time.Second, d)
		return nil
	}

	summary, err := p.RunHistorical(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ModeHistorical, summary.Mode)
	assert.Equal(t, 3, summary.TotalRecords)
	assert.Equal(t, 1, summary.SafetyCount)
	assert.ElementsMatch(t, []string{
		artifact.CountsFile,
		artifact.MonthlyKeywordsFile,
		artifact.SafetyTrendsFile,
		artifact.HistoricalPapersFile,
		artifact.HistoricalSafetyPapersFile,
		artifact.MetadataFile,
	}, summary.Artifacts)

	// Newest month first, whole calendar months, one pause in between.
	require.Len(t, fetcher.queries, 2)
	assert.Equal(t, "2024-03-01", fetcher.queries[0].From.Format(domain.DateFormat))
	assert.Equal(t, "2024-03-31", fetcher.queries[0].To.Format(domain.DateFormat))
	assert.Equal(t, "2024-02-01", fetcher.queries[1].From.Format(domain.DateFormat))
	assert.Equal(t, "2024-02-29", fetcher.queries[1].To.Format(domain.DateFormat))
	assert.Equal(t, 2000, fetcher.queries[0].MaxResults)
	assert.Equal(t, 1, pauses)

	counts, err := store.LoadCounts()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"cs.AI": 1, "cs.LG": 1}, counts.Monthly["2024-03"])
	assert.Equal(t, map[string]int{"cs.CV": 1}, counts.Monthly["2024-02"])
	assert.Empty(t, counts.Daily)
	assert.Empty(t, counts.Weekly)

	trends, err := store.LoadSafetyTrends()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"2024-03": 1}, trends.MonthlyCounts)

	monthly, err := store.LoadMonthlyKeywords()
	require.NoError(t, err)
	require.Contains(t, monthly, "2024-03")
	require.Contains(t, monthly, "2024-02")
	assert.Contains(t, monthly["2024-02"], domain.KeywordEntry{Text: "model", Value: 1})

	papers, err := store.LoadRecords(artifact.HistoricalPapersFile)
	require.NoError(t, err)
	require.Len(t, papers, 3)
	assert.Equal(t, "2403.01111", papers[0].ID)
	assert.Equal(t, "2402.03333", papers[2].ID)

	safety, err := store.LoadRecords(artifact.HistoricalSafetyPapersFile)
	require.NoError(t, err)
	require.Len(t, safety, 1)
	assert.Equal(t, "2403.01111", safety[0].ID)

	// The incremental-only artifacts are not touched by a backfill.
	names, err := store.List()
	require.NoError(t, err)
	assert.NotContains(t, names, artifact.PapersFile)
	assert.NotContains(t, names, artifact.KeywordsFile)
	assert.NotContains(t, names, artifact.SafetyPapersFile)
}

func TestRunHistorical_MonthFailureIsolated(t *testing.T) {
	febRecords := []domain.RawRecord{
		rawPaper("2402.03333", "Diffusion Survey",
			"Image synthesis with diffusion models.",
			"cs.CV", []string{"cs.CV"}, time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC)),
	}
	fetcher := &fakeFetcher{
		pages: [][]domain.RawRecord{nil, febRecords},
		errs:  []error{domain.NewSourceError("arxiv", 503, "unavailable", nil), nil},
	}
	metrics := observability.NewMetrics("pipeline_backfill_metrics_test")
	p, store := newTestPipeline(t, fetcher, metrics)

	summary, err := p.RunHistorical(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.TotalRecords)
	require.Len(t, fetcher.queries, 2, "a failed month must not stop the walk")

	counts, err := store.LoadCounts()
	require.NoError(t, err)
	assert.NotContains(t, counts.Monthly, "2024-03")
	assert.Equal(t, map[string]int{"cs.CV": 1}, counts.Monthly["2024-02"])

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.MonthFetchFailures))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.MonthsFetched))
}

func TestRunHistorical_AllMonthsEmpty(t *testing.T) {
	fetcher := &fakeFetcher{pages: [][]domain.RawRecord{{}, {}}}
	p, store := newTestPipeline(t, fetcher, nil)

	summary, err := p.RunHistorical(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.TotalRecords)
	assert.Empty(t, summary.Artifacts)

	names, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestRunHistorical_CancelledDuringPause(t *testing.T) {
	marchRecords := incrementalFixture()
	fetcher := &fakeFetcher{pages: [][]domain.RawRecord{marchRecords}}
	p, store := newTestPipeline(t, fetcher, nil)
	p.sleep = func(context.Context, time.Duration) error { return context.Canceled }

	_, err := p.RunHistorical(context.Background())
	require.ErrorIs(t, err, context.Canceled)

	names, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, names, "cancellation must abort before artifacts are rewritten")
}

func TestRunIncremental_Metrics(t *testing.T) {
	fetcher := &fakeFetcher{pages: [][]domain.RawRecord{incrementalFixture()}}
	metrics := observability.NewMetrics("pipeline_metrics_test")
	p, _ := newTestPipeline(t, fetcher, metrics)

	_, err := p.RunIncremental(context.Background())
	require.NoError(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.RunsStarted.WithLabelValues(ModeIncremental)))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.RunsCompleted.WithLabelValues(ModeIncremental)))
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.RecordsNormalized))
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.SentinelRecords))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.SafetyMatches))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.BucketsMerged.WithLabelValues("daily")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.BucketsMerged.WithLabelValues("weekly")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.ArtifactWrites.WithLabelValues(artifact.MetadataFile)))
}

func TestPrepare_SentinelsCounted(t *testing.T) {
	fetcher := &fakeFetcher{}
	metrics := observability.NewMetrics("pipeline_prepare_metrics_test")
	p, _ := newTestPipeline(t, fetcher, metrics)

	raws := []domain.RawRecord{
		{ID: "", Title: "No identifier"},
		rawPaper("2403.07777", "Fine", "An abstract.", "cs.AI",
			[]string{"cs.AI"}, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)),
	}
	records := p.prepare(zerolog.Nop(), raws)

	require.Len(t, records, 2)
	assert.True(t, records[0].IsSentinel())
	assert.False(t, records[1].IsSentinel())
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.RecordsNormalized))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.SentinelRecords))
}
