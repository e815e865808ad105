package searcher

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/voyagehq/tripsearch-mcp/internal/facts"
	"github.com/voyagehq/tripsearch-mcp/internal/query"
	"github.com/voyagehq/tripsearch-mcp/internal/storage"
	"github.com/voyagehq/tripsearch-mcp/internal/terms"
	"github.com/voyagehq/tripsearch-mcp/pkg/types"
)

// Store is the slice of the storage layer the search pipeline needs.
type Store interface {
	QuerySurfaces(ctx context.Context, where string, args []interface{}, limit int) ([]*storage.SurfaceRow, error)
	QueryTrips(ctx context.Context, where string, args []interface{}, limit int) ([]*types.Trip, error)
	QueryTravelers(ctx context.Context, where string, args []interface{}, limit int) ([]types.Traveler, error)
	GetSurface(ctx context.Context, tripID int64) (*storage.SurfaceRow, error)
	GetTrip(ctx context.Context, tripID int64) (*types.Trip, error)
}

// executor walks the fallback tiers in order of specificity. A tier is
// abandoned for the next one when the engine rejects its pattern as too
// complex or it returns nothing; data errors propagate immediately.
type executor struct {
	store    Store
	pool     int // Candidate pool bound per tier
	tierWarn time.Duration
}

// run returns the first tier's candidates along with the tier that produced
// them. A (nil, TierExhausted, nil) return means every tier came back empty.
func (ex *executor) run(ctx context.Context, queryText string, classification terms.Classification) ([]*storage.SurfaceRow, types.SearchTier, error) {
	tiers := []struct {
		tier types.SearchTier
		fn   func(context.Context, string, terms.Classification) ([]*storage.SurfaceRow, error)
	}{
		{types.TierPrimary, ex.primaryTier},
		{types.TierSecondary, ex.secondaryTier},
		{types.TierEmergency, ex.emergencyTier},
	}

	for _, t := range tiers {
		start := time.Now()
		rows, err := t.fn(ctx, queryText, classification)
		elapsed := time.Since(start)
		if elapsed > ex.tierWarn {
			log.Printf("search: %s tier took %s for %q (near timeout)", t.tier, elapsed.Round(time.Millisecond), queryText)
		}
		if err != nil {
			if storage.IsComplexityError(err) {
				log.Printf("search: %s tier rejected as too complex, degrading: %v", t.tier, err)
				continue
			}
			return nil, t.tier, err
		}
		if len(rows) > 0 {
			return rows, t.tier, nil
		}
	}
	return nil, types.TierExhausted, nil
}

// primaryTier runs the strategy ladder against the denormalized search
// surface: an equality lookup first when the query is an exact identifier or
// email, then the weighted or comprehensive clause, then the simplified
// single-column clause when those fail or find nothing.
func (ex *executor) primaryTier(ctx context.Context, _ string, classification terms.Classification) ([]*storage.SurfaceRow, error) {
	if pred, ok := exactPredicate(classification); ok {
		where, args := query.Render(pred)
		rows, err := ex.store.QuerySurfaces(ctx, where, args, ex.pool)
		if err != nil && !storage.IsComplexityError(err) {
			return nil, err
		}
		if len(rows) > 0 {
			return rows, nil
		}
	}

	var lastErr error
	for _, strategy := range query.BuildStrategies(classification.Terms, storage.SurfaceColumns) {
		rows, err := ex.store.QuerySurfaces(ctx, strategy.SQL, strategy.Args, ex.pool)
		if err != nil {
			if storage.IsComplexityError(err) {
				lastErr = err
				continue
			}
			return nil, err
		}
		if len(rows) > 0 {
			return rows, nil
		}
	}
	return nil, lastErr
}

// exactPredicate maps an exact-kind classification onto an equality lookup:
// a bare number hits trip_id, an email query the lowercased primary email.
func exactPredicate(classification terms.Classification) (query.Pred, bool) {
	switch classification.Kind {
	case terms.KindExactID:
		if len(classification.Terms) == 0 {
			return nil, false
		}
		id, err := strconv.ParseInt(classification.Terms[0].Term, 10, 64)
		if err != nil {
			return nil, false
		}
		return query.Eq{Column: "trip_id", Value: id}, true
	case terms.KindExactEmail:
		for _, ct := range classification.Terms {
			if ct.Category == terms.CategoryEmail {
				return query.Eq{Column: "lower(primary_email)", Value: ct.Term}, true
			}
		}
	}
	return nil, false
}

// secondaryTier bypasses the surface and queries the plain trips table,
// synthesizing throwaway surface rows so scoring stays uniform.
func (ex *executor) secondaryTier(ctx context.Context, _ string, classification terms.Classification) ([]*storage.SurfaceRow, error) {
	var lastErr error
	for _, strategy := range query.BuildStrategies(classification.Terms, storage.TripColumns) {
		trips, err := ex.store.QueryTrips(ctx, strategy.SQL, strategy.Args, ex.pool)
		if err != nil {
			if storage.IsComplexityError(err) {
				lastErr = err
				continue
			}
			return nil, err
		}
		if len(trips) > 0 {
			rows := make([]*storage.SurfaceRow, 0, len(trips))
			for _, trip := range trips {
				rows = append(rows, facts.BuildSurface(trip, nil, trip.UpdatedAt))
			}
			return rows, nil
		}
	}
	return nil, lastErr
}

// emergencyTier searches only the traveler table on a single derived term
// and maps the hits back to their trips.
func (ex *executor) emergencyTier(ctx context.Context, queryText string, _ terms.Classification) ([]*storage.SurfaceRow, error) {
	primary := terms.PrimaryTerm(queryText)
	if primary == "" {
		return nil, nil
	}

	where, args := query.Render(query.Or{
		query.Like{Column: storage.TravelerColumns[0], Value: primary},
		query.Like{Column: storage.TravelerColumns[1], Value: primary},
	})
	travelers, err := ex.store.QueryTravelers(ctx, where, args, ex.pool)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]bool)
	var rows []*storage.SurfaceRow
	for _, tr := range travelers {
		if seen[tr.TripID] {
			continue
		}
		seen[tr.TripID] = true
		row, err := ex.surfaceForTrip(ctx, tr.TripID)
		if err != nil {
			return nil, err
		}
		if row != nil {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// surfaceForTrip prefers the stored surface row and falls back to building
// one from the source trip when recomputation hasn't caught up yet.
func (ex *executor) surfaceForTrip(ctx context.Context, tripID int64) (*storage.SurfaceRow, error) {
	row, err := ex.store.GetSurface(ctx, tripID)
	if err == nil {
		return row, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	trip, err := ex.store.GetTrip(ctx, tripID)
	if errors.Is(err, storage.ErrNotFound) {
		// The trip vanished between the traveler hit and the fetch.
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return facts.BuildSurface(trip, nil, trip.UpdatedAt), nil
}

// suggestion builds the actionable hint returned when every tier exhausts.
func suggestion(queryText string) string {
	primary := terms.PrimaryTerm(queryText)
	if primary == "" {
		return "Try searching with a client name, destination, or trip number."
	}
	return fmt.Sprintf("No trips matched %q. Try a client last name, a destination, or the trip number.", primary)
}
