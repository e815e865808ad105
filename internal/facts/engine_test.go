package facts

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyagehq/tripsearch-mcp/internal/storage"
	"github.com/voyagehq/tripsearch-mcp/pkg/types"
)

func setupEngine(t *testing.T) (*Engine, *storage.SQLiteStorage) {
	t.Helper()
	s, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "facts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return NewEngine(s), s
}

func seedTrip(t *testing.T, s *storage.SQLiteStorage) *types.Trip {
	t.Helper()
	ctx := context.Background()
	trip := &types.Trip{
		Name:         "Sara and Darren's Anniversary Trip",
		Status:       types.StatusConfirmed,
		StartDate:    time.Date(2025, 10, 5, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2025, 10, 12, 0, 0, 0, 0, time.UTC),
		Destinations: "Bath, Bristol",
		TotalCost:    4200,
		PrimaryEmail: "sara.jones@email.com",
	}
	require.NoError(t, s.UpsertTrip(ctx, trip))
	require.NoError(t, s.ReplaceTravelers(ctx, trip.ID, []types.Traveler{
		{Name: "Sara Jones", Email: "sara.jones@email.com", Role: types.RolePrimary},
		{Name: "Darren Jones", Email: "darren.j@email.com", Role: types.RoleCompanion},
	}))
	require.NoError(t, s.ReplaceSchedule(ctx, trip.ID, []types.ScheduleItem{
		{Kind: types.ScheduleHotel, Title: "Royal Crescent", Nights: 4, Cost: 1800},
		{Kind: types.ScheduleHotel, Title: "Harbour Hotel", Nights: 3, Cost: 1200},
		{Kind: types.ScheduleActivity, Title: "Thermae Spa", Cost: 200},
		{Kind: types.ScheduleTransit, Title: "Rail Bath-Bristol", TransitMinutes: 15, Cost: 40},
	}))
	return trip
}

func TestEnsureFreshRecomputesDirtyTrip(t *testing.T) {
	engine, s := setupEngine(t)
	ctx := context.Background()
	trip := seedTrip(t, s)

	refreshed, err := engine.EnsureFresh(ctx, trip.ID)
	require.NoError(t, err)
	assert.True(t, refreshed)

	row, err := s.GetFacts(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, row.TotalNights)
	assert.Equal(t, 2, row.HotelCount)
	assert.Equal(t, 1, row.ActivityCount)
	assert.Equal(t, 15, row.TransitMinutes)
	assert.InDelta(t, 3240, row.TotalCost, 0.001)
	assert.Equal(t, 2, row.TravelerCount)
	assert.Contains(t, row.TravelerNames, "Sara Jones")
	assert.Contains(t, row.TravelerEmails, "darren.j@email.com")

	// Markers drained, facts current: a second call is a no-op.
	refreshed, err = engine.EnsureFresh(ctx, trip.ID)
	require.NoError(t, err)
	assert.False(t, refreshed)
}

func TestEnsureFreshHealsMissingFactsRow(t *testing.T) {
	engine, s := setupEngine(t)
	ctx := context.Background()
	trip := seedTrip(t, s)

	// Drain the mutation markers without computing facts: the trip now has
	// a clean queue but no facts row at all.
	require.NoError(t, s.ClearDirty(ctx, trip.ID, time.Now().UTC().Add(time.Second)))

	refreshed, err := engine.EnsureFresh(ctx, trip.ID)
	require.NoError(t, err)
	assert.True(t, refreshed, "a missing facts row counts as stale")

	row, err := s.GetFacts(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, row.TotalNights)
}

func TestRecomputeIsIdempotent(t *testing.T) {
	engine, s := setupEngine(t)
	ctx := context.Background()
	trip := seedTrip(t, s)

	require.NoError(t, engine.Recompute(ctx, trip.ID))
	first, err := s.GetFacts(ctx, trip.ID)
	require.NoError(t, err)

	require.NoError(t, engine.Recompute(ctx, trip.ID))
	second, err := s.GetFacts(ctx, trip.ID)
	require.NoError(t, err)

	// Identical except bookkeeping.
	assert.Equal(t, first.TotalNights, second.TotalNights)
	assert.Equal(t, first.HotelCount, second.HotelCount)
	assert.Equal(t, first.ActivityCount, second.ActivityCount)
	assert.Equal(t, first.TotalCost, second.TotalCost)
	assert.Equal(t, first.TransitMinutes, second.TransitMinutes)
	assert.Equal(t, first.TravelerNames, second.TravelerNames)
	assert.Equal(t, first.TravelerEmails, second.TravelerEmails)
	assert.Equal(t, first.Version+1, second.Version)
	assert.False(t, second.LastComputed.Before(first.LastComputed))
}

func TestRecomputeBuildsSurface(t *testing.T) {
	engine, s := setupEngine(t)
	ctx := context.Background()
	trip := seedTrip(t, s)

	require.NoError(t, engine.Recompute(ctx, trip.ID))

	surface, err := s.GetSurface(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, trip.Name, surface.TripName)
	assert.Equal(t, "sara and darrens anniversary trip", surface.NameNormalized)
	assert.Equal(t, "Sara Jones", surface.PrimaryClientName)
	assert.Equal(t, "sara.jones@email.com", surface.PrimaryEmail)
	assert.Equal(t, 2, surface.TravelerCount)
	assert.Contains(t, surface.SearchTokens, "bristol")
	assert.Contains(t, surface.SearchTokens, "sara")
	assert.Contains(t, surface.PhoneticTokens, Phonetic("sara"))
	assert.False(t, surface.LastSynced.IsZero())
}

func TestRecomputeDeletedTripDrainsQueue(t *testing.T) {
	engine, s := setupEngine(t)
	ctx := context.Background()
	trip := seedTrip(t, s)
	require.NoError(t, s.DeleteTrip(ctx, trip.ID))

	require.NoError(t, engine.Recompute(ctx, trip.ID))

	n, err := s.CountDirty(ctx, trip.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRefreshBatch(t *testing.T) {
	engine, s := setupEngine(t)
	ctx := context.Background()

	for _, name := range []string{"Trip One", "Trip Two", "Trip Three"} {
		trip := &types.Trip{Name: name, Status: types.StatusPlanning}
		require.NoError(t, s.UpsertTrip(ctx, trip))
	}

	count, err := engine.RefreshBatch(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	count, err = engine.RefreshBatch(ctx, 10)
	require.NoError(t, err)
	assert.Zero(t, count, "a second sweep finds nothing stale")
}

func TestRefreshBatchRespectsLimit(t *testing.T) {
	engine, s := setupEngine(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		trip := &types.Trip{Name: "Bulk Trip", Slug: storage.Slugify("Bulk Trip") + string(rune('a'+i)), Status: types.StatusPlanning}
		require.NoError(t, s.UpsertTrip(ctx, trip))
	}

	count, err := engine.RefreshBatch(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestTripWithFactsInlineRefresh(t *testing.T) {
	engine, s := setupEngine(t)
	ctx := context.Background()
	trip := seedTrip(t, s)

	got, row, err := engine.TripWithFacts(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, trip.ID, got.ID)
	require.NotNil(t, row)
	assert.Equal(t, 7, row.TotalNights, "small trip refreshes inline on access")
}

func TestAggregateWithoutSchedule(t *testing.T) {
	trip := &types.Trip{ID: 9, TotalCost: 12000}
	row := Aggregate(trip, nil, nil)

	assert.InDelta(t, 12000, row.TotalCost, 0.001, "trip-level cost stands in when no schedule exists")
	assert.Zero(t, row.TotalNights)
	assert.Zero(t, row.TravelerCount)
}

func TestPhonetic(t *testing.T) {
	assert.Equal(t, Phonetic("Sara"), Phonetic("Sarah"))
	assert.Equal(t, "S600", Phonetic("sara"))
	assert.NotEqual(t, Phonetic("bristol"), Phonetic("bath"))
	assert.Equal(t, "", Phonetic("1234"))
}
