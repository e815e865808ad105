package types

import "time"

// SearchTier identifies which fallback tier produced a result set.
type SearchTier string

const (
	TierPrimary   SearchTier = "primary"   // Weighted query against the search surface
	TierSecondary SearchTier = "secondary" // Direct query against the trips table
	TierEmergency SearchTier = "emergency" // Narrow query against traveler records
	TierExhausted SearchTier = "exhausted" // Every tier came back empty
)

// RankedMatch is one scored search result. MatchedTokens and Reasons are
// retained so a ranking can be explained and asserted on in tests.
type RankedMatch struct {
	TripID        int64
	TripName      string
	Slug          string
	Status        TripStatus
	Destinations  string
	Score         float64
	MatchedTokens []string
	Reasons       []string
	LastSynced    time.Time
}

// SemanticMatch is one result from the component-based search path.
type SemanticMatch struct {
	TripID     int64
	TripName   string
	Score      float64 // Normalized to [0, 1.5]: weight ratio plus multi-component bonus
	Components []string
}

// SearchOutcome is the structured response from the fallback pipeline.
// An empty outcome is not an error: Suggestion always carries an actionable
// hint when Matches is empty.
type SearchOutcome struct {
	Query      string
	Tier       SearchTier
	Matches    []RankedMatch
	Suggestion string
	Duration   time.Duration
	CacheHit   bool
}

// Empty reports whether the outcome carries no matches.
func (o *SearchOutcome) Empty() bool {
	return len(o.Matches) == 0
}
