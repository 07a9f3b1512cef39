package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Normalizer converts raw source records into canonical Records. It is
// total: a raw record that cannot be parsed becomes a sentinel record and is
// logged, never an error. A malformed record must not abort the batch it
// arrived in.
type Normalizer struct {
	logger zerolog.Logger
	now    func() time.Time
}

// NewNormalizer creates a Normalizer logging through the given logger.
func NewNormalizer(logger zerolog.Logger) *Normalizer {
	return &Normalizer{
		logger: logger.With().Str("component", "normalizer").Logger(),
		now:    time.Now,
	}
}

// Normalize converts one raw record into the canonical schema. On any
// parsing fault the sentinel record is returned instead.
func (n *Normalizer) Normalize(raw RawRecord) (rec Record) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Warn().
				Str("raw_id", raw.ID).
				Interface("cause", r).
				Msg("failed to normalize record, substituting sentinel")
			rec = NewSentinelRecord(n.now())
		}
	}()

	id := strings.TrimSpace(raw.ID)
	if id == "" {
		n.logger.Warn().
			Str("title", raw.Title).
			Msg("record has no identifier, substituting sentinel")
		return NewSentinelRecord(n.now())
	}

	categories := parseCategories(raw.Categories)

	return Record{
		ID:              id,
		Title:           normalizeWhitespace(raw.Title),
		Authors:         cloneStrings(raw.Authors),
		Abstract:        strings.TrimSpace(raw.Abstract),
		Categories:      categories,
		PrimaryCategory: parsePrimaryCategory(raw.PrimaryCategory, categories),
		SubmittedDate:   raw.Published,
		LastUpdated:     raw.Updated,
		SafetyKeywords:  []string{},
		IsSafetyPaper:   false,
	}
}

// NormalizeAll converts a batch of raw records, preserving order. The output
// always has the same length as the input.
func (n *Normalizer) NormalizeAll(raws []RawRecord) []Record {
	records := make([]Record, 0, len(raws))
	for _, raw := range raws {
		records = append(records, n.Normalize(raw))
	}
	return records
}

// parseCategories interprets the loosely-typed categories field. A plain
// string is split on whitespace; list elements are trimmed and empty tokens
// dropped; anything else is string-converted first.
func parseCategories(v any) []string {
	switch cats := v.(type) {
	case nil:
		return []string{}
	case []string:
		out := make([]string, 0, len(cats))
		for _, c := range cats {
			if c = strings.TrimSpace(c); c != "" {
				out = append(out, c)
			}
		}
		return out
	case string:
		return strings.Fields(cats)
	case []any:
		out := make([]string, 0, len(cats))
		for _, c := range cats {
			if s := strings.TrimSpace(fmt.Sprint(c)); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return strings.Fields(fmt.Sprint(cats))
	}
}

// parsePrimaryCategory resolves the loosely-typed primary category field. A
// non-empty string wins; other values are string-converted; failing that the
// first parsed category is used, then "unknown".
func parsePrimaryCategory(v any, categories []string) string {
	switch p := v.(type) {
	case nil:
		// fall through to the category fallback
	case string:
		if s := strings.TrimSpace(p); s != "" {
			return s
		}
	case fmt.Stringer:
		if s := strings.TrimSpace(p.String()); s != "" {
			return s
		}
	default:
		if s := strings.TrimSpace(fmt.Sprint(p)); s != "" {
			return s
		}
	}

	if len(categories) > 0 {
		return categories[0]
	}
	return UnknownCategory
}

// normalizeWhitespace collapses runs of whitespace (including newlines from
// the source feed) into single spaces.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
