// internal/extract/types.go
package extract

import "strings"

// RawEvent is the loosely-typed intermediate record an extraction strategy
// projects source payloads into. Which fields are present varies by source and
// strategy; a record without both team names is worthless and every strategy
// drops it before returning.
type RawEvent struct {
	Home string
	Away string

	// Timestamp carries a fully-qualified datetime string when the source
	// reported one. Otherwise DateToken/TimeToken hold the partial pieces.
	Timestamp string
	DateToken string
	TimeToken string

	Venue       string
	Status      string
	Competition string
	Round       string

	// EventID is the source's native event identifier when one exists.
	EventID string
}

// Complete reports whether the event carries both team names, the minimum for
// normalization to be attempted.
func (e RawEvent) Complete() bool {
	return strings.TrimSpace(e.Home) != "" && strings.TrimSpace(e.Away) != ""
}
