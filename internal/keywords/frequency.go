package keywords

import (
	"sort"

	"github.com/aegisml/arxiv-trends-service/internal/domain"
)

// RankByFrequency counts stemmed token occurrences across texts and
// returns the limit highest-count terms. Ties are broken by the order
// in which terms first appeared in the corpus, so the ranking is
// deterministic for a given input order. A non-positive limit returns
// the full ranking.
func RankByFrequency(texts []string, limit int) []domain.KeywordEntry {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	for _, text := range texts {
		for _, tok := range FrequencyTokens(text) {
			if _, ok := counts[tok]; !ok {
				firstSeen[tok] = len(firstSeen)
			}
			counts[tok]++
		}
	}

	entries := make([]domain.KeywordEntry, 0, len(counts))
	for term, count := range counts {
		entries = append(entries, domain.KeywordEntry{Text: term, Value: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Value != entries[j].Value {
			return entries[i].Value > entries[j].Value
		}
		return firstSeen[entries[i].Text] < firstSeen[entries[j].Text]
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}
