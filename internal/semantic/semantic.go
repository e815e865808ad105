package semantic

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/voyagehq/tripsearch-mcp/internal/config"
	"github.com/voyagehq/tripsearch-mcp/internal/storage"
	"github.com/voyagehq/tripsearch-mcp/pkg/types"
)

// DefaultMaxResults bounds semantic search output when the caller doesn't
// ask for a limit.
const DefaultMaxResults = 5

// multiComponentBonus is added per matched component past the first, capped.
const (
	multiComponentBonusStep = 0.1
	multiComponentBonusCap  = 0.5
)

// candidateComponentLimit bounds how many stored components one search pulls
// back for scoring.
const candidateComponentLimit = 200

// Indexer extracts and persists semantic components and runs the
// component-based search path.
type Indexer struct {
	store    storage.Storage
	bonusCap float64
}

// NewIndexer creates an Indexer backed by the given store. The config caps
// the multi-component score bonus; nil means defaults.
func NewIndexer(store storage.Storage, cfg *config.Config) *Indexer {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Indexer{store: store, bonusCap: cfg.Scoring.SemanticMultiBonus}
}

// Reindex rebuilds the semantic components for one trip from its source
// rows. The write is a full replace, so reindexing is idempotent.
func (ix *Indexer) Reindex(ctx context.Context, tripID int64) error {
	trip, err := ix.store.GetTrip(ctx, tripID)
	if err != nil {
		return fmt.Errorf("reindex trip %d: %w", tripID, err)
	}
	travelers, err := ix.store.ListTravelers(ctx, tripID)
	if err != nil {
		return fmt.Errorf("reindex trip %d: %w", tripID, err)
	}
	schedule, err := ix.store.ListSchedule(ctx, tripID)
	if err != nil {
		return fmt.Errorf("reindex trip %d: %w", tripID, err)
	}

	components := Extract(trip, travelers, schedule)
	if err := ix.store.ReplaceComponents(ctx, tripID, components); err != nil {
		return fmt.Errorf("reindex trip %d: %w", tripID, err)
	}
	return nil
}

// Search matches query components against stored trip components and
// returns trips ranked by normalized matched weight.
func (ix *Indexer) Search(ctx context.Context, queryText string, maxResults int) ([]types.SemanticMatch, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	queryComponents := ExtractQuery(queryText)
	if len(queryComponents) == 0 {
		return nil, nil
	}

	candidates, err := ix.store.MatchComponents(ctx, Values(queryComponents), candidateComponentLimit)
	if err != nil {
		return nil, fmt.Errorf("semantic search: %w", err)
	}

	byTrip := make(map[int64][]storage.Component)
	for _, c := range candidates {
		byTrip[c.TripID] = append(byTrip[c.TripID], c)
	}

	var matches []types.SemanticMatch
	for tripID, tripComponents := range byTrip {
		score, matched := ScoreWithBonusCap(queryComponents, tripComponents, ix.bonusCap)
		if score <= 0 {
			continue
		}
		trip, err := ix.store.GetTrip(ctx, tripID)
		if err != nil {
			// The trip may have been deleted between match and fetch.
			continue
		}
		matches = append(matches, types.SemanticMatch{
			TripID:     tripID,
			TripName:   trip.Name,
			Score:      score,
			Components: matched,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].TripID > matches[j].TripID
	})
	if len(matches) > maxResults {
		matches = matches[:maxResults]
	}
	return matches, nil
}

// Score matches query components type-to-type against a trip's components.
// The result is matched weight normalized against the total possible query
// weight, plus a small bonus for matching several distinct components.
func Score(queryComponents []QueryComponent, tripComponents []storage.Component) (float64, []string) {
	return ScoreWithBonusCap(queryComponents, tripComponents, multiComponentBonusCap)
}

// ScoreWithBonusCap is Score with a caller-supplied ceiling on the
// multi-component bonus.
func ScoreWithBonusCap(queryComponents []QueryComponent, tripComponents []storage.Component, bonusCap float64) (float64, []string) {
	totalPossible := 0.0
	for _, qc := range queryComponents {
		totalPossible += qc.Weight
	}
	if totalPossible == 0 {
		return 0, nil
	}

	matchedWeight := 0.0
	var matched []string
	for _, qc := range queryComponents {
		for _, tc := range tripComponents {
			if qc.Type != tc.Type {
				continue
			}
			if !componentMatches(qc.Value, tc) {
				continue
			}
			matchedWeight += qc.Weight
			matched = append(matched, string(tc.Type)+":"+tc.Value)
			break
		}
	}
	if matchedWeight == 0 {
		return 0, nil
	}

	bonus := multiComponentBonusStep * float64(len(matched)-1)
	if bonus > bonusCap {
		bonus = bonusCap
	}
	return matchedWeight/totalPossible + bonus, matched
}

// componentMatches reports whether a query value hits a stored component
// directly or through one of its synonyms.
func componentMatches(queryValue string, tc storage.Component) bool {
	if strings.Contains(tc.Value, queryValue) || strings.Contains(queryValue, tc.Value) {
		return true
	}
	for _, syn := range tc.Synonyms {
		if strings.Contains(syn, queryValue) || strings.Contains(queryValue, syn) {
			return true
		}
	}
	return false
}
