// Package models contains domain types for the mock experiment service:
// read-only view projections whose field sets match what the real service
// returns for each logical call and granularity.
package models

import "time"

// Granularity selects the level of detail returned for a profile or game
// read.
type Granularity string

const (
	GranularityStructure    Granularity = "structure"
	GranularitySummary      Granularity = "summary"
	GranularityObservations Granularity = "observations"
	GranularityFull         Granularity = "full"
)

// Valid reports whether g names a known granularity.
func (g Granularity) Valid() bool {
	switch g {
	case GranularityStructure, GranularitySummary, GranularityObservations, GranularityFull:
		return true
	}
	return false
}

// TimeFormat is the timestamp layout the service renders, UTC with
// truncated milliseconds.
const TimeFormat = "2006-01-02T15:04:05.000Z"

// FormatTime renders a timestamp the way the service does.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}
