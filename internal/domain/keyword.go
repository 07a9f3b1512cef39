package domain

// KeywordEntry is one ranked term in a keyword cloud artifact. Text is
// the term itself, a single word or a space-joined word pair. Value is
// the integer weight used to size the term when rendered: a raw
// occurrence count for frequency rankings, a scaled TF-IDF score for
// importance rankings.
type KeywordEntry struct {
	Text  string `json:"text"`
	Value int    `json:"value"`
}
