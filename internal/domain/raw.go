package domain

import "time"

// RawRecord is a paper as returned by the external source, before
// normalization. Categories and the primary category are deliberately
// loosely typed: depending on the upstream feed they may arrive as a list of
// strings, a single whitespace-separated string, or something else entirely.
// The Normalizer is the only consumer of this type.
type RawRecord struct {
	// ID is the identifier extracted from the source entry URL.
	ID string

	// Title is the raw title text.
	Title string

	// Authors is the ordered author name list.
	Authors []string

	// Abstract is the raw abstract text.
	Abstract string

	// Categories is either a []string, a whitespace-separated string, or an
	// arbitrary value that will be string-converted.
	Categories any

	// PrimaryCategory is either a string or an arbitrary value that will be
	// string-converted, falling back to the first parsed category.
	PrimaryCategory any

	// Published is the original submission time.
	Published time.Time

	// Updated is the time of the latest revision.
	Updated time.Time
}
