package artifact

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aegisml/arxiv-trends-service/internal/aggregate"
	"github.com/aegisml/arxiv-trends-service/internal/domain"
)

func TestMergeCounts(t *testing.T) {
	t.Run("adds and replaces buckets per granularity", func(t *testing.T) {
		current := NewCountsDocument()
		current.Daily["2024-03-10"] = map[string]int{"cs.AI": 5, "cs.CL": 3}
		current.Monthly["2024-02"] = map[string]int{"cs.LG": 40}

		fresh := aggregate.NewCounts()
		fresh.Daily["2024-03-10"] = map[string]int{"cs.AI": 7}
		fresh.Daily["2024-03-11"] = map[string]int{"cs.CV": 2}
		fresh.Weekly["2024-W11"] = map[string]int{"cs.AI": 9}

		merged := MergeCounts(current, fresh, []aggregate.Granularity{aggregate.Daily, aggregate.Weekly})

		// The refetched bucket is replaced wholesale, not summed into.
		assert.Equal(t, map[string]int{"cs.AI": 7}, merged.Daily["2024-03-10"])
		assert.Equal(t, map[string]int{"cs.CV": 2}, merged.Daily["2024-03-11"])
		assert.Equal(t, map[string]int{"cs.AI": 9}, merged.Weekly["2024-W11"])
		assert.Equal(t, map[string]int{"cs.LG": 40}, merged.Monthly["2024-02"])
	})

	t.Run("ignores granularities outside the run's set", func(t *testing.T) {
		current := NewCountsDocument()
		current.Monthly["2024-02"] = map[string]int{"cs.LG": 40}

		fresh := aggregate.NewCounts()
		fresh.Daily["2024-03-11"] = map[string]int{"cs.CV": 2}
		fresh.Monthly["2024-03"] = map[string]int{"cs.AI": 99}

		merged := MergeCounts(current, fresh, []aggregate.Granularity{aggregate.Daily})

		assert.Equal(t, map[string]int{"cs.CV": 2}, merged.Daily["2024-03-11"])
		// Monthly was not in the run's set, so the fresh monthly buckets
		// are dropped and the stored section survives as is.
		assert.Equal(t, aggregate.BucketCounts{"2024-02": {"cs.LG": 40}}, merged.Monthly)
	})

	t.Run("replaying the same run is a no-op", func(t *testing.T) {
		current := NewCountsDocument()
		current.Daily["2024-03-10"] = map[string]int{"cs.AI": 5}

		fresh := aggregate.NewCounts()
		fresh.Daily["2024-03-10"] = map[string]int{"cs.AI": 7}
		fresh.Weekly["2024-W11"] = map[string]int{"cs.AI": 7}

		granularities := []aggregate.Granularity{aggregate.Daily, aggregate.Weekly}
		once := MergeCounts(current, fresh, granularities)
		twice := MergeCounts(once, fresh, granularities)

		assert.Equal(t, once, twice)
	})

	t.Run("does not alias its inputs", func(t *testing.T) {
		current := NewCountsDocument()
		current.Daily["2024-03-10"] = map[string]int{"cs.AI": 5}

		fresh := aggregate.NewCounts()
		fresh.Daily["2024-03-11"] = map[string]int{"cs.CV": 2}

		merged := MergeCounts(current, fresh, []aggregate.Granularity{aggregate.Daily})
		merged.Daily["2024-03-10"]["cs.AI"] = 100
		merged.Daily["2024-03-11"]["cs.CV"] = 100

		assert.Equal(t, 5, current.Daily["2024-03-10"]["cs.AI"])
		assert.Equal(t, 2, fresh.Daily["2024-03-11"]["cs.CV"])
	})

	t.Run("initializes sections missing from the stored document", func(t *testing.T) {
		// A counts.json written by backfill alone has only a monthly section.
		current := CountsDocument{
			Monthly: aggregate.BucketCounts{"2024-02": {"cs.LG": 40}},
		}

		fresh := aggregate.NewCounts()
		fresh.Daily["2024-03-11"] = map[string]int{"cs.CV": 2}

		merged := MergeCounts(current, fresh, []aggregate.Granularity{aggregate.Daily, aggregate.Weekly})

		assert.Equal(t, map[string]int{"cs.CV": 2}, merged.Daily["2024-03-11"])
		assert.NotNil(t, merged.Weekly)
		assert.Equal(t, map[string]int{"cs.LG": 40}, merged.Monthly["2024-02"])
	})
}

func TestMergeRecords(t *testing.T) {
	current := []domain.SimplifiedRecord{
		{ID: "2402.00001", Title: "First"},
		{ID: "2402.00002", Title: "Second"},
	}
	fresh := []domain.SimplifiedRecord{
		{ID: "2403.00001", Title: "Third"},
		{ID: "2402.00002", Title: "Second"},
	}

	merged := MergeRecords(current, fresh)

	// Plain concatenation: order preserved, the overlapping record appears twice.
	assert.Equal(t, []string{"2402.00001", "2402.00002", "2403.00001", "2402.00002"}, recordIDs(merged))
	assert.Len(t, current, 2)

	assert.Equal(t, fresh, MergeRecords(nil, fresh))
	assert.Equal(t, current, MergeRecords(current, nil))
	assert.Empty(t, MergeRecords(nil, nil))
	assert.NotNil(t, MergeRecords(nil, nil))
}

func recordIDs(records []domain.SimplifiedRecord) []string {
	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ID)
	}
	return ids
}

func TestMergeMonthlyKeywords(t *testing.T) {
	current := MonthlyKeywords{
		"2024-01": {{Text: "agent", Value: 3}},
		"2024-02": {{Text: "model", Value: 9}},
	}
	fresh := MonthlyKeywords{
		"2024-02": {{Text: "align", Value: 4}},
		"2024-03": {{Text: "reward", Value: 2}},
	}

	merged := MergeMonthlyKeywords(current, fresh)

	assert.Equal(t, MonthlyKeywords{
		"2024-01": {{Text: "agent", Value: 3}},
		"2024-02": {{Text: "align", Value: 4}},
		"2024-03": {{Text: "reward", Value: 2}},
	}, merged)

	// Inputs are left untouched.
	assert.Equal(t, []domain.KeywordEntry{{Text: "model", Value: 9}}, current["2024-02"])
}

func TestMergeSafetyTrends(t *testing.T) {
	current := SafetyTrendsDocument{MonthlyCounts: map[string]int{"2024-01": 4, "2024-02": 6}}
	fresh := map[string]int{"2024-02": 8, "2024-03": 1}

	merged := MergeSafetyTrends(current, fresh)

	assert.Equal(t, map[string]int{"2024-01": 4, "2024-02": 8, "2024-03": 1}, merged.MonthlyCounts)
	assert.Equal(t, 6, current.MonthlyCounts["2024-02"])

	empty := MergeSafetyTrends(SafetyTrendsDocument{}, nil)
	assert.NotNil(t, empty.MonthlyCounts)
	assert.Empty(t, empty.MonthlyCounts)
}
