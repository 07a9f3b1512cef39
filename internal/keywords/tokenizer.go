package keywords

import (
	"regexp"
	"strings"

	snowballeng "github.com/kljensen/snowball/english"
)

var (
	// alphaTokenRegex matches purely alphabetic runs in lowercased text.
	alphaTokenRegex = regexp.MustCompile(`[a-z]+`)

	// wordTokenRegex matches word-character runs of two or more
	// characters, so version-bearing tokens like "llama2" survive while
	// single letters and punctuation are dropped.
	wordTokenRegex = regexp.MustCompile(`\b\w\w+\b`)
)

// FrequencyTokens tokenizes text for frequency ranking: lowercase,
// alphabetic runs only, stopwords and tokens shorter than three
// characters removed, each surviving token reduced to its stem so
// inflected forms ("model", "models", "modeling") count together.
func FrequencyTokens(text string) []string {
	raw := alphaTokenRegex.FindAllString(strings.ToLower(text), -1)
	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		if len(tok) <= 2 || isStopword(tok) {
			continue
		}
		tokens = append(tokens, snowballeng.Stem(tok, false))
	}
	return tokens
}

// ImportanceTokens tokenizes text for TF-IDF scoring: lowercase,
// word-character runs of at least two characters, stopwords removed.
// Tokens keep their surface form so the scored terms stay readable.
func ImportanceTokens(text string) []string {
	raw := wordTokenRegex.FindAllString(strings.ToLower(text), -1)
	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		if isStopword(tok) {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}
