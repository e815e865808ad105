// Package types provides shared type definitions for the TripSearch MCP server.
//
// This package defines the domain types used across the search, ranking, and
// facts-recomputation components: source trip records, traveler rosters,
// schedule items, and the structured search outcomes returned by the tools
// layer.
//
// # Core Types
//
// Trip is the system-of-record trip entity. Travelers and schedule items are
// normalized child records rather than embedded JSON:
//
//	trip := &types.Trip{
//	    Name:         "Sara and Darren's Anniversary Trip",
//	    Status:       types.StatusConfirmed,
//	    Destinations: "Bath, Bristol",
//	    PrimaryEmail: "sara.jones@email.com",
//	}
//
// # Search Outcomes
//
// SearchOutcome is the structured response from the fallback search pipeline.
// It is never an error: when every tier comes back empty it carries a
// human-readable suggestion instead of raising.
//
//	outcome, err := searcher.Search(ctx, req)
//	if outcome.Empty() {
//	    fmt.Println(outcome.Suggestion)
//	}
//
// RankedMatch carries the per-result score, the matched tokens, and the
// reasons that contributed to the score so rankings are explainable.
package types
