// Package domain defines the canonical paper record schema and the
// normalization and classification stages that produce it.
package domain

import (
	"fmt"
	"time"
)

// Date layouts used in persisted records and bucket keys.
const (
	// DateFormat is the calendar-date layout for submitted/updated dates
	// and daily bucket keys.
	DateFormat = "2006-01-02"

	// MonthFormat is the month-bucket layout derived from the submitted date.
	MonthFormat = "2006-01"
)

// SnippetLength bounds abstract snippets in simplified records.
const SnippetLength = 200

// Record is one paper's metadata in the canonical schema. All fields are
// populated by the Normalizer; SafetyKeywords and IsSafetyPaper are filled
// in by the Classifier.
type Record struct {
	// ID is the stable paper identifier, derived from the trailing path
	// segment of the source entry URL with any version suffix stripped.
	ID string

	// Title is the whitespace-normalized paper title.
	Title string

	// Authors is the ordered author name list.
	Authors []string

	// Abstract is the full abstract text. May be empty for sentinel records.
	Abstract string

	// Categories is the set of subject categories, at least the primary.
	Categories []string

	// PrimaryCategory is the primary subject category, falling back to the
	// first category or "unknown".
	PrimaryCategory string

	// SubmittedDate is the original submission date.
	SubmittedDate time.Time

	// LastUpdated is the date of the latest revision.
	LastUpdated time.Time

	// SafetyKeywords holds the vocabulary terms matched against the title
	// and abstract, in vocabulary order.
	SafetyKeywords []string

	// IsSafetyPaper is true iff SafetyKeywords is non-empty.
	IsSafetyPaper bool
}

// Month returns the "YYYY-MM" bucket the record belongs to.
func (r *Record) Month() string {
	return r.SubmittedDate.Format(MonthFormat)
}

// Day returns the "YYYY-MM-DD" daily bucket key.
func (r *Record) Day() string {
	return r.SubmittedDate.Format(DateFormat)
}

// ISOWeek returns the "YYYY-Www" weekly bucket key using the ISO calendar.
func (r *Record) ISOWeek() string {
	return ISOWeekKey(r.SubmittedDate)
}

// SimplifiedRecord is the persisted form of a Record. The full abstract is
// replaced with a bounded snippet to keep artifacts small.
type SimplifiedRecord struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Authors         []string `json:"authors"`
	AbstractSnippet string   `json:"abstract_snippet"`
	Categories      []string `json:"categories"`
	PrimaryCategory string   `json:"primary_category"`
	SubmittedDate   string   `json:"submitted_date"`
	LastUpdated     string   `json:"last_updated"`
	SafetyKeywords  []string `json:"safety_keywords_found"`
	IsSafetyPaper   bool     `json:"is_safety_paper"`
	Month           string   `json:"month"`
}

// Simplify converts the record to its persisted form. The abstract is
// truncated to SnippetLength characters with a trailing ellipsis marker when
// truncation occurred.
func (r *Record) Simplify() SimplifiedRecord {
	snippet := r.Abstract
	if runes := []rune(snippet); len(runes) > SnippetLength {
		snippet = string(runes[:SnippetLength]) + "..."
	}

	return SimplifiedRecord{
		ID:              r.ID,
		Title:           r.Title,
		Authors:         cloneStrings(r.Authors),
		AbstractSnippet: snippet,
		Categories:      cloneStrings(r.Categories),
		PrimaryCategory: r.PrimaryCategory,
		SubmittedDate:   r.SubmittedDate.Format(DateFormat),
		LastUpdated:     r.LastUpdated.Format(DateFormat),
		SafetyKeywords:  cloneStrings(r.SafetyKeywords),
		IsSafetyPaper:   r.IsSafetyPaper,
		Month:           r.Month(),
	}
}

// SimplifyAll converts a record slice to its persisted form, preserving order.
func SimplifyAll(records []Record) []SimplifiedRecord {
	out := make([]SimplifiedRecord, 0, len(records))
	for i := range records {
		out = append(out, records[i].Simplify())
	}
	return out
}

// ISOWeekKey formats the ISO calendar week of t as "YYYY-Www" with a
// zero-padded 2-digit week number. The year is the ISO week year, which can
// differ from the calendar year near year boundaries.
func ISOWeekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// Sentinel record field values. A sentinel is substituted whenever
// normalization of a raw record fails.
const (
	// SentinelID is the identifier carried by sentinel records.
	SentinelID = "unknown"

	// SentinelTitle is the title carried by sentinel records.
	SentinelTitle = "Error processing paper"

	// UnknownCategory is the fallback primary category.
	UnknownCategory = "unknown"
)

// NewSentinelRecord returns the placeholder record substituted when a raw
// record cannot be normalized. It carries the given time as both dates so
// the failure still lands in a visible bucket.
func NewSentinelRecord(now time.Time) Record {
	return Record{
		ID:              SentinelID,
		Title:           SentinelTitle,
		Authors:         []string{},
		Abstract:        "",
		Categories:      []string{},
		PrimaryCategory: UnknownCategory,
		SubmittedDate:   now,
		LastUpdated:     now,
		SafetyKeywords:  []string{},
		IsSafetyPaper:   false,
	}
}

// IsSentinel reports whether the record is the normalization-failure
// placeholder.
func (r *Record) IsSentinel() bool {
	return r.ID == SentinelID
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
