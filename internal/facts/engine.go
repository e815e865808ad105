// Package facts keeps the derived rows for each trip consistent with its
// source records: the precomputed aggregates (facts row) and the
// denormalized search surface. Consistency is eventual, driven by the dirty
// queue, and recomputation is an idempotent upsert keyed by trip id.
package facts

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/voyagehq/tripsearch-mcp/internal/storage"
	"github.com/voyagehq/tripsearch-mcp/pkg/types"
)

// DefaultBatchLimit bounds a batch sweep when the caller doesn't ask for one.
const DefaultBatchLimit = 50

// batchWorkers bounds concurrent recomputations in a sweep. Safe to run in
// parallel because each recomputation is a keyed upsert.
const batchWorkers = 4

// smallTripActivityMax is the inline-refresh threshold for the reactive
// accessor: trips with at most this many activities refresh synchronously.
const smallTripActivityMax = 10

// Engine recomputes facts and search-surface rows from source records.
type Engine struct {
	store storage.Storage
}

// NewEngine creates an Engine backed by the given store.
func NewEngine(store storage.Storage) *Engine {
	return &Engine{store: store}
}

// EnsureFresh checks a trip's dirtiness and recomputes inline when stale.
// Returns true when a recomputation ran.
func (e *Engine) EnsureFresh(ctx context.Context, tripID int64) (bool, error) {
	dirty, err := e.isDirty(ctx, tripID)
	if err != nil {
		return false, err
	}
	if !dirty {
		return false, nil
	}
	if err := e.Recompute(ctx, tripID); err != nil {
		return false, err
	}
	return true, nil
}

// TripWithFacts is the reactive accessor: it returns a trip and its facts,
// refreshing inline when the trip is small enough that recomputation is
// cheap. Larger stale trips keep their stale row and heal on the next batch
// sweep.
func (e *Engine) TripWithFacts(ctx context.Context, tripID int64) (*types.Trip, *storage.FactsRow, error) {
	trip, err := e.store.GetTrip(ctx, tripID)
	if err != nil {
		return nil, nil, err
	}

	dirty, err := e.isDirty(ctx, tripID)
	if err != nil {
		return nil, nil, err
	}
	if dirty {
		row, err := e.store.GetFacts(ctx, tripID)
		missing := errors.Is(err, storage.ErrNotFound)
		if err != nil && !missing {
			return nil, nil, err
		}
		if missing || row.ActivityCount <= smallTripActivityMax {
			if err := e.Recompute(ctx, tripID); err != nil {
				return nil, nil, err
			}
		}
	}

	row, err := e.store.GetFacts(ctx, tripID)
	if err != nil {
		return nil, nil, err
	}
	return trip, row, nil
}

// RefreshBatch sweeps up to limit stale trips, oldest mutation first, and
// recomputes each. Returns the number of trips refreshed.
func (e *Engine) RefreshBatch(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		limit = DefaultBatchLimit
	}
	ids, err := e.store.StaleTripIDs(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("batch refresh: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchWorkers)
	for _, id := range ids {
		g.Go(func() error {
			return e.Recompute(gctx, id)
		})
	}
	if err := g.Wait(); err != nil {
		return 0, fmt.Errorf("batch refresh: %w", err)
	}

	log.Printf("facts: refreshed %d trips in %s", len(ids), time.Since(start).Round(time.Millisecond))
	return len(ids), nil
}

// Recompute reads every contributing source row for a trip, derives the
// facts and search-surface rows, and writes both back with single-statement
// upserts. Running it twice without an intervening mutation yields identical
// rows except the version and timestamp bookkeeping.
func (e *Engine) Recompute(ctx context.Context, tripID int64) error {
	now := time.Now().UTC()

	trip, err := e.store.GetTrip(ctx, tripID)
	if errors.Is(err, storage.ErrNotFound) {
		// Deleted trip: the cascade already removed the derived rows, just
		// drain the markers.
		return e.store.ClearDirty(ctx, tripID, now)
	}
	if err != nil {
		return fmt.Errorf("recompute trip %d: %w", tripID, err)
	}

	travelers, err := e.store.ListTravelers(ctx, tripID)
	if err != nil {
		return fmt.Errorf("recompute trip %d: %w", tripID, err)
	}
	schedule, err := e.store.ListSchedule(ctx, tripID)
	if err != nil {
		return fmt.Errorf("recompute trip %d: %w", tripID, err)
	}

	row := Aggregate(trip, travelers, schedule)
	row.LastComputed = now
	if err := e.store.UpsertFacts(ctx, row); err != nil {
		return fmt.Errorf("recompute trip %d: %w", tripID, err)
	}

	if err := e.store.UpsertSurface(ctx, BuildSurface(trip, travelers, now)); err != nil {
		return fmt.Errorf("recompute trip %d: %w", tripID, err)
	}

	return e.store.ClearDirty(ctx, tripID, now)
}

// Aggregate derives the facts row from the trip's source rows. Pure.
func Aggregate(trip *types.Trip, travelers []types.Traveler, schedule []types.ScheduleItem) *storage.FactsRow {
	row := &storage.FactsRow{
		TripID:        trip.ID,
		TravelerCount: len(travelers),
	}

	scheduleCost := 0.0
	for _, item := range schedule {
		switch item.Kind {
		case types.ScheduleHotel:
			row.HotelCount++
			row.TotalNights += item.Nights
		case types.ScheduleActivity:
			row.ActivityCount++
		case types.ScheduleTransit:
			row.TransitMinutes += item.TransitMinutes
		}
		scheduleCost += item.Cost
	}

	// The itemized schedule wins when present; the trip-level total covers
	// trips whose costs were never broken out.
	row.TotalCost = trip.TotalCost
	if scheduleCost > 0 {
		row.TotalCost = scheduleCost
	}

	var names, emails []string
	for _, tr := range travelers {
		if tr.Name != "" {
			names = append(names, tr.Name)
		}
		if tr.Email != "" {
			emails = append(emails, tr.Email)
		}
	}
	row.TravelerNames = strings.Join(names, ", ")
	row.TravelerEmails = strings.Join(emails, ", ")

	return row
}

func (e *Engine) isDirty(ctx context.Context, tripID int64) (bool, error) {
	n, err := e.store.CountDirty(ctx, tripID)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}

	row, err := e.store.GetFacts(ctx, tripID)
	if errors.Is(err, storage.ErrNotFound) {
		// Mark the gap on the queue so a batch sweep heals it even if the
		// inline recompute fails.
		if err := e.store.EnqueueDirty(ctx, tripID, storage.ReasonMissingFactsRow); err != nil {
			return false, err
		}
		return true, nil
	}
	if err != nil {
		return false, err
	}

	trip, err := e.store.GetTrip(ctx, tripID)
	if err != nil {
		return false, err
	}
	return row.LastComputed.Before(trip.UpdatedAt), nil
}
