package artifact

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegisml/arxiv-trends-service/internal/aggregate"
	"github.com/aegisml/arxiv-trends-service/internal/domain"
	"github.com/aegisml/arxiv-trends-service/internal/observability"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(t.TempDir(), zerolog.Nop(), nil)
}

func TestStore_CountsRoundTrip(t *testing.T) {
	store := newTestStore(t)

	doc := NewCountsDocument()
	doc.Daily["2024-03-15"] = map[string]int{"cs.AI": 3, "cs.LG": 1}
	doc.Weekly["2024-W11"] = map[string]int{"cs.AI": 3}
	doc.Monthly["2024-03"] = map[string]int{"cs.AI": 12}

	require.NoError(t, store.SaveCounts(doc))

	loaded, err := store.LoadCounts()
	require.NoError(t, err)
	assert.Equal(t, doc, loaded)

	raw, err := os.ReadFile(store.Path(CountsFile))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(raw), "\n"))
	assert.Contains(t, string(raw), "\"daily\"")
	assert.Contains(t, string(raw), "\"weekly\"")
	assert.Contains(t, string(raw), "\"monthly\"")
}

func TestStore_LoadCounts_Missing(t *testing.T) {
	store := newTestStore(t)

	doc, err := store.LoadCounts()
	require.NoError(t, err)
	assert.NotNil(t, doc.Daily)
	assert.NotNil(t, doc.Weekly)
	assert.NotNil(t, doc.Monthly)
	assert.Empty(t, doc.Daily)
}

func TestStore_LoadCounts_Corrupt(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.MkdirAll(store.Dir(), 0o755))
	require.NoError(t, os.WriteFile(store.Path(CountsFile), []byte("{not json"), 0o644))

	_, err := store.LoadCounts()
	require.Error(t, err)

	var artErr *domain.ArtifactError
	require.ErrorAs(t, err, &artErr)
	assert.Equal(t, CountsFile, artErr.Name)
	assert.Equal(t, "decode", artErr.Op)
}

func TestStore_RecordsRoundTrip(t *testing.T) {
	store := newTestStore(t)

	missing, err := store.LoadRecords(PapersFile)
	require.NoError(t, err)
	assert.NotNil(t, missing)
	assert.Empty(t, missing)

	records := []domain.SimplifiedRecord{
		{
			ID:              "2403.01234",
			Title:           "Reward Hacking in RL Agents",
			Authors:         []string{"A. Author"},
			AbstractSnippet: "We study reward hacking...",
			Categories:      []string{"cs.LG", "cs.AI"},
			PrimaryCategory: "cs.LG",
			SubmittedDate:   "2024-03-15",
			LastUpdated:     "2024-03-16",
			SafetyKeywords:  []string{"reward hacking"},
			IsSafetyPaper:   true,
			Month:           "2024-03",
		},
		{
			ID:              "2403.05678",
			Title:           "Image Segmentation at Scale",
			Authors:         []string{"B. Builder"},
			Categories:      []string{"cs.CV"},
			PrimaryCategory: "cs.CV",
			SubmittedDate:   "2024-03-18",
			LastUpdated:     "2024-03-18",
			SafetyKeywords:  []string{},
			Month:           "2024-03",
		},
	}
	require.NoError(t, store.SaveRecords(PapersFile, records))

	loaded, err := store.LoadRecords(PapersFile)
	require.NoError(t, err)
	assert.Equal(t, records, loaded)
}

func TestStore_MonthlyDocumentsRoundTrip(t *testing.T) {
	store := newTestStore(t)

	keywords, err := store.LoadMonthlyKeywords()
	require.NoError(t, err)
	assert.Empty(t, keywords)

	keywords = MonthlyKeywords{
		"2024-03": {{Text: "align", Value: 7}, {Text: "model", Value: 4}},
		"2024-02": {{Text: "agent", Value: 2}},
	}
	require.NoError(t, store.SaveMonthlyKeywords(keywords))

	loadedKeywords, err := store.LoadMonthlyKeywords()
	require.NoError(t, err)
	assert.Equal(t, keywords, loadedKeywords)

	trends, err := store.LoadSafetyTrends()
	require.NoError(t, err)
	assert.NotNil(t, trends.MonthlyCounts)
	assert.Empty(t, trends.MonthlyCounts)

	trends = SafetyTrendsDocument{MonthlyCounts: map[string]int{"2024-03": 5, "2024-02": 2}}
	require.NoError(t, store.SaveSafetyTrends(trends))

	loadedTrends, err := store.LoadSafetyTrends()
	require.NoError(t, err)
	assert.Equal(t, trends, loadedTrends)
}

func TestStore_SaveMetadata(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SaveMetadata(MetadataDocument{
		LastUpdated:       "2024-03-18 06:00:00",
		RunID:             "f1f9c0ba-0000-4000-8000-000000000000",
		TotalPapers:       42,
		SafetyPapersCount: 7,
		Categories:        []string{"cs.AI", "cs.LG"},
		SafetyTerms:       []string{"alignment", "reward hacking"},
	}))

	raw, err := os.ReadFile(store.Path(MetadataFile))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "2024-03-18 06:00:00", decoded["last_updated"])
	assert.Equal(t, "f1f9c0ba-0000-4000-8000-000000000000", decoded["run_id"])
	assert.Equal(t, float64(42), decoded["total_papers"])
	assert.Equal(t, float64(7), decoded["safety_papers_count"])
}

func TestStore_OverwriteReplacesDocument(t *testing.T) {
	store := newTestStore(t)

	first := NewCountsDocument()
	first.Daily["2024-03-15"] = map[string]int{"cs.AI": 1}
	require.NoError(t, store.SaveCounts(first))

	second := NewCountsDocument()
	second.Daily["2024-03-16"] = map[string]int{"cs.CV": 2}
	require.NoError(t, store.SaveCounts(second))

	loaded, err := store.LoadCounts()
	require.NoError(t, err)
	assert.Equal(t, second, loaded)
}

func TestStore_WriteLeavesNoTempFiles(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SaveCounts(NewCountsDocument()))
	require.NoError(t, store.SaveKeywords(KeywordsFile, []domain.KeywordEntry{{Text: "align", Value: 3}}))

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	for _, entry := range entries {
		assert.Equal(t, ".json", filepath.Ext(entry.Name()), "unexpected file %q", entry.Name())
	}
}

func TestStore_List(t *testing.T) {
	store := newTestStore(t)

	names, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, names)

	require.NoError(t, store.SaveCounts(NewCountsDocument()))
	require.NoError(t, store.SaveRecords(PapersFile, []domain.SimplifiedRecord{}))
	require.NoError(t, os.WriteFile(store.Path("notes.txt"), []byte("ignore me"), 0o644))

	names, err = store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{CountsFile, PapersFile}, names)
}

func TestStore_Metrics(t *testing.T) {
	metrics := observability.NewMetrics("artifact_store_metrics_test")
	store := NewStore(t.TempDir(), zerolog.Nop(), metrics)

	require.NoError(t, store.SaveCounts(NewCountsDocument()))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.ArtifactWrites.WithLabelValues(CountsFile)))

	// Point the store at a path whose parent is a regular file so the
	// directory cannot be created.
	blockedParent := filepath.Join(t.TempDir(), "occupied")
	require.NoError(t, os.WriteFile(blockedParent, []byte("file"), 0o644))
	blocked := NewStore(filepath.Join(blockedParent, "artifacts"), zerolog.Nop(), metrics)

	err := blocked.SaveCounts(NewCountsDocument())
	require.Error(t, err)

	var artErr *domain.ArtifactError
	require.ErrorAs(t, err, &artErr)
	assert.Equal(t, "write", artErr.Op)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.ArtifactWriteFailures.WithLabelValues(CountsFile)))
}

func TestStore_ByGranularity(t *testing.T) {
	doc := NewCountsDocument()
	doc.Weekly["2024-W11"] = map[string]int{"cs.AI": 3}

	assert.Equal(t, doc.Weekly, doc.ByGranularity(aggregate.Weekly))
	assert.Empty(t, doc.ByGranularity(aggregate.Daily))
	assert.Nil(t, doc.ByGranularity(aggregate.Granularity("hourly")))
}
