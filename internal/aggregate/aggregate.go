// Package aggregate buckets classified records into per-period category
// counts and the month-grouped views behind the historical artifacts.
package aggregate

import (
	"github.com/aegisml/arxiv-trends-service/internal/domain"
)

// Granularity identifies one bucket granularity of the counts artifact.
type Granularity string

// Bucket granularities. Incremental runs maintain Daily and Weekly,
// historical runs Monthly.
const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
)

// BucketCounts maps a bucket key to per-category record counts.
type BucketCounts map[string]map[string]int

func (b BucketCounts) add(bucket, category string) {
	if b[bucket] == nil {
		b[bucket] = make(map[string]int)
	}
	b[bucket][category]++
}

// Clone returns a deep copy.
func (b BucketCounts) Clone() BucketCounts {
	out := make(BucketCounts, len(b))
	for bucket, categories := range b {
		inner := make(map[string]int, len(categories))
		for category, count := range categories {
			inner[category] = count
		}
		out[bucket] = inner
	}
	return out
}

// Counts holds category counts per bucket at every granularity produced
// by one aggregation pass.
type Counts struct {
	Daily   BucketCounts
	Weekly  BucketCounts
	Monthly BucketCounts
}

// NewCounts returns an empty Counts with all granularities initialized.
func NewCounts() Counts {
	return Counts{
		Daily:   make(BucketCounts),
		Weekly:  make(BucketCounts),
		Monthly: make(BucketCounts),
	}
}

// ByGranularity returns the bucket counts for g, or nil for an unknown
// granularity.
func (c Counts) ByGranularity(g Granularity) BucketCounts {
	switch g {
	case Daily:
		return c.Daily
	case Weekly:
		return c.Weekly
	case Monthly:
		return c.Monthly
	default:
		return nil
	}
}

// Aggregate counts records per day, ISO week, and month keyed by
// category. A record with no primary category falls back to its first
// category; with no categories at all it is left out of category counts
// entirely (run totals still include it). Counting is a pure sum, so
// any permutation of the input yields identical mappings.
func Aggregate(records []domain.Record) Counts {
	counts := NewCounts()
	for i := range records {
		rec := &records[i]
		category := categoryFor(rec)
		if category == "" {
			continue
		}
		counts.Daily.add(rec.Day(), category)
		counts.Weekly.add(rec.ISOWeek(), category)
		counts.Monthly.add(rec.Month(), category)
	}
	return counts
}

func categoryFor(rec *domain.Record) string {
	if rec.PrimaryCategory != "" {
		return rec.PrimaryCategory
	}
	if len(rec.Categories) > 0 {
		return rec.Categories[0]
	}
	return ""
}

// SafetyByMonth counts safety-classified records per month bucket.
func SafetyByMonth(records []domain.Record) map[string]int {
	counts := make(map[string]int)
	for i := range records {
		if records[i].IsSafetyPaper {
			counts[records[i].Month()]++
		}
	}
	return counts
}

// AbstractsByMonth groups non-empty abstracts by month bucket, the
// corpora for per-month keyword rankings.
func AbstractsByMonth(records []domain.Record) map[string][]string {
	byMonth := make(map[string][]string)
	for i := range records {
		rec := &records[i]
		if rec.Abstract == "" {
			continue
		}
		month := rec.Month()
		byMonth[month] = append(byMonth[month], rec.Abstract)
	}
	return byMonth
}

// SafetyRecords returns the safety-classified subset in input order.
func SafetyRecords(records []domain.Record) []domain.Record {
	out := make([]domain.Record, 0)
	for i := range records {
		if records[i].IsSafetyPaper {
			out = append(out, records[i])
		}
	}
	return out
}
