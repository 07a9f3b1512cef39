// Package artifact persists and merges the JSON documents behind the
// dashboard: whole-file reads and atomic writes through Store, plus the
// pure merge rules that combine a fresh run's output with prior state.
package artifact

import (
	"github.com/aegisml/arxiv-trends-service/internal/aggregate"
	"github.com/aegisml/arxiv-trends-service/internal/domain"
)

// Artifact file names.
const (
	PapersFile                 = "papers.json"
	CountsFile                 = "counts.json"
	KeywordsFile               = "keywords.json"
	SafetyPapersFile           = "safety_papers.json"
	MetadataFile               = "metadata.json"
	MonthlyKeywordsFile        = "monthly_keywords.json"
	SafetyTrendsFile           = "safety_trends.json"
	HistoricalPapersFile       = "historical_papers.json"
	HistoricalSafetyPapersFile = "historical_safety_papers.json"
)

// MetadataTimeFormat is the last_updated layout in metadata.json.
const MetadataTimeFormat = "2006-01-02 15:04:05"

// CountsDocument is the cumulative category-count state in counts.json.
// Incremental runs maintain the daily and weekly sections, historical
// runs the monthly section; a merge never drops a section the current
// run did not compute.
type CountsDocument struct {
	Daily   aggregate.BucketCounts `json:"daily"`
	Weekly  aggregate.BucketCounts `json:"weekly"`
	Monthly aggregate.BucketCounts `json:"monthly"`
}

// NewCountsDocument returns an empty counts document with every section
// initialized.
func NewCountsDocument() CountsDocument {
	return CountsDocument{
		Daily:   make(aggregate.BucketCounts),
		Weekly:  make(aggregate.BucketCounts),
		Monthly: make(aggregate.BucketCounts),
	}
}

// ByGranularity returns the section for g, or nil for an unknown
// granularity.
func (d *CountsDocument) ByGranularity(g aggregate.Granularity) aggregate.BucketCounts {
	switch g {
	case aggregate.Daily:
		return d.Daily
	case aggregate.Weekly:
		return d.Weekly
	case aggregate.Monthly:
		return d.Monthly
	default:
		return nil
	}
}

func (d CountsDocument) clone() CountsDocument {
	return CountsDocument{
		Daily:   d.Daily.Clone(),
		Weekly:  d.Weekly.Clone(),
		Monthly: d.Monthly.Clone(),
	}
}

// MonthlyKeywords maps month buckets to that month's frequency ranking,
// the shape of monthly_keywords.json.
type MonthlyKeywords map[string][]domain.KeywordEntry

// SafetyTrendsDocument holds per-month safety paper counts, the shape
// of safety_trends.json.
type SafetyTrendsDocument struct {
	MonthlyCounts map[string]int `json:"monthly_counts"`
}

// MetadataDocument is the run metadata in metadata.json. Categories and
// SafetyTerms snapshot the exact vocabularies the run classified with.
type MetadataDocument struct {
	LastUpdated       string   `json:"last_updated"`
	RunID             string   `json:"run_id"`
	TotalPapers       int      `json:"total_papers"`
	SafetyPapersCount int      `json:"safety_papers_count"`
	Categories        []string `json:"categories"`
	SafetyTerms       []string `json:"safety_terms"`
}
