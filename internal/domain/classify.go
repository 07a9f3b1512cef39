package domain

import "strings"

// Classifier tags records against a fixed, ordered vocabulary of
// safety-related terms. The vocabulary is immutable for the lifetime of the
// classifier; reports that reference "safety terms" must snapshot it via
// Terms so the recorded vocabulary always matches the one used for
// classification.
type Classifier struct {
	terms []string
	lower []string
}

// NewClassifier builds a classifier over the given vocabulary. Term order is
// preserved: matched keywords are always reported in vocabulary order, not
// match position.
func NewClassifier(terms []string) *Classifier {
	c := &Classifier{
		terms: append([]string(nil), terms...),
		lower: make([]string, len(terms)),
	}
	for i, t := range c.terms {
		c.lower[i] = strings.ToLower(t)
	}
	return c
}

// Classify returns a copy of the record with SafetyKeywords and
// IsSafetyPaper populated. Matching is case-insensitive and substring-based
// over the title and the abstract, so a term may match inside a longer word
// ("AI-Alignment-focused" matches "alignment").
func (c *Classifier) Classify(rec Record) Record {
	title := strings.ToLower(rec.Title)
	abstract := strings.ToLower(rec.Abstract)

	found := []string{}
	for i, term := range c.lower {
		if strings.Contains(title, term) || strings.Contains(abstract, term) {
			found = append(found, c.terms[i])
		}
	}

	rec.SafetyKeywords = found
	rec.IsSafetyPaper = len(found) > 0
	return rec
}

// ClassifyAll classifies a batch of records in place order.
func (c *Classifier) ClassifyAll(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		out = append(out, c.Classify(rec))
	}
	return out
}

// Terms returns a copy of the vocabulary in classification order.
func (c *Classifier) Terms() []string {
	return append([]string(nil), c.terms...)
}
