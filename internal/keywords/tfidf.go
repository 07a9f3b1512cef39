package keywords

import (
	"math"
	"sort"

	"github.com/aegisml/arxiv-trends-service/internal/domain"
)

// importanceScale converts unit-normalized TF-IDF sums into integer
// display weights.
const importanceScale = 100

// RankByImportance scores unigrams and adjacent-word bigrams with
// TF-IDF and returns the limit terms with the highest total score
// across the corpus. Term frequency is the raw in-document count;
// document frequency is smoothed, idf = ln((1+n)/(1+df)) + 1, so terms
// present in every document still score. Each document's term vector
// is L2-normalized before per-term scores are summed across documents,
// which keeps long abstracts from dominating the ranking. Summed
// scores are scaled by importanceScale and truncated to integers for
// display. Ties are broken by the order in which terms first appeared;
// a non-positive limit returns the full ranking.
func RankByImportance(texts []string, limit int) []domain.KeywordEntry {
	type document struct {
		terms []string
		tf    map[string]int
	}

	docs := make([]document, 0, len(texts))
	df := make(map[string]int)
	firstSeen := make(map[string]int)
	for _, text := range texts {
		doc := document{tf: make(map[string]int)}
		for _, term := range importanceTerms(text) {
			if _, ok := doc.tf[term]; !ok {
				doc.terms = append(doc.terms, term)
				df[term]++
			}
			doc.tf[term]++
			if _, ok := firstSeen[term]; !ok {
				firstSeen[term] = len(firstSeen)
			}
		}
		docs = append(docs, doc)
	}

	n := float64(len(texts))
	idf := make(map[string]float64, len(df))
	for term, count := range df {
		idf[term] = math.Log((1+n)/(1+float64(count))) + 1
	}

	// Weights are summed in first-seen term order, not map order, so
	// scores and tie ranks are reproducible across runs.
	scores := make(map[string]float64, len(df))
	for _, doc := range docs {
		weights := make([]float64, len(doc.terms))
		var norm float64
		for i, term := range doc.terms {
			w := float64(doc.tf[term]) * idf[term]
			weights[i] = w
			norm += w * w
		}
		if norm == 0 {
			continue
		}
		norm = math.Sqrt(norm)
		for i, term := range doc.terms {
			scores[term] += weights[i] / norm
		}
	}

	type scoredTerm struct {
		term  string
		score float64
	}
	ranked := make([]scoredTerm, 0, len(scores))
	for term, score := range scores {
		ranked = append(ranked, scoredTerm{term: term, score: score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return firstSeen[ranked[i].term] < firstSeen[ranked[j].term]
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	entries := make([]domain.KeywordEntry, 0, len(ranked))
	for _, s := range ranked {
		entries = append(entries, domain.KeywordEntry{
			Text:  s.term,
			Value: int(s.score * importanceScale),
		})
	}
	return entries
}

// importanceTerms expands one text into its scored term sequence:
// stopword-filtered unigrams followed by bigrams formed from adjacent
// surviving unigrams, so "state of the art" yields the bigram
// "state art".
func importanceTerms(text string) []string {
	tokens := ImportanceTokens(text)
	if len(tokens) == 0 {
		return nil
	}
	terms := make([]string, 0, 2*len(tokens)-1)
	terms = append(terms, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		terms = append(terms, tokens[i]+" "+tokens[i+1])
	}
	return terms
}
