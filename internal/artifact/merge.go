package artifact

import (
	"github.com/aegisml/arxiv-trends-service/internal/aggregate"
	"github.com/aegisml/arxiv-trends-service/internal/domain"
)

// MergeCounts folds a fresh run's counts into the stored document under
// the bucket-replace rule: for each granularity in granularities, fresh
// buckets are added and already-present buckets are replaced wholesale
// with the fresh category map. Sections for granularities the run did
// not compute carry over untouched. Neither input is modified, so
// replaying the same run yields the same document.
func MergeCounts(current CountsDocument, fresh aggregate.Counts, granularities []aggregate.Granularity) CountsDocument {
	merged := current.clone()
	for _, g := range granularities {
		section := merged.ByGranularity(g)
		if section == nil {
			continue
		}
		for bucket, categories := range fresh.ByGranularity(g) {
			section[bucket] = copyCategoryCounts(categories)
		}
	}
	return merged
}

func copyCategoryCounts(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for category, count := range in {
		out[category] = count
	}
	return out
}

// MergeRecords appends the fresh run's records to the accumulated list,
// preserving arrival order. Records are not deduplicated; each run
// contributes exactly what it fetched.
func MergeRecords(current, fresh []domain.SimplifiedRecord) []domain.SimplifiedRecord {
	out := make([]domain.SimplifiedRecord, 0, len(current)+len(fresh))
	out = append(out, current...)
	out = append(out, fresh...)
	return out
}

// MergeMonthlyKeywords upserts the fresh per-month rankings: a month
// recomputed by this run replaces its stored ranking, months the run
// did not cover keep theirs.
func MergeMonthlyKeywords(current, fresh MonthlyKeywords) MonthlyKeywords {
	out := make(MonthlyKeywords, len(current)+len(fresh))
	for month, entries := range current {
		out[month] = entries
	}
	for month, entries := range fresh {
		out[month] = entries
	}
	return out
}

// MergeSafetyTrends upserts the fresh per-month safety counts, same
// month-replace rule as MergeMonthlyKeywords.
func MergeSafetyTrends(current SafetyTrendsDocument, fresh map[string]int) SafetyTrendsDocument {
	out := SafetyTrendsDocument{
		MonthlyCounts: make(map[string]int, len(current.MonthlyCounts)+len(fresh)),
	}
	for month, count := range current.MonthlyCounts {
		out.MonthlyCounts[month] = count
	}
	for month, count := range fresh {
		out.MonthlyCounts[month] = count
	}
	return out
}
