package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyagehq/tripsearch-mcp/pkg/types"
)

func setupTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testTrip(name string) *types.Trip {
	return &types.Trip{
		Name:         name,
		Status:       types.StatusConfirmed,
		StartDate:    time.Date(2025, 10, 5, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2025, 10, 12, 0, 0, 0, 0, time.UTC),
		Destinations: "Bath, Bristol",
		TotalCost:    4200,
		PrimaryEmail: "sara.jones@email.com",
	}
}

func TestUpsertAndGetTrip(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()

	trip := testTrip("Sara and Darren's Anniversary Trip")
	require.NoError(t, s.UpsertTrip(ctx, trip))
	require.NotZero(t, trip.ID)
	assert.Equal(t, "sara-and-darrens-anniversary-trip", trip.Slug)

	got, err := s.GetTrip(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, trip.Name, got.Name)
	assert.Equal(t, types.StatusConfirmed, got.Status)
	assert.Equal(t, "Bath, Bristol", got.Destinations)
}

func TestGetTripNotFound(t *testing.T) {
	s := setupTestStorage(t)

	_, err := s.GetTrip(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpsertTripValidates(t *testing.T) {
	s := setupTestStorage(t)

	err := s.UpsertTrip(context.Background(), &types.Trip{Name: "", Status: types.StatusPlanning})
	assert.ErrorIs(t, err, types.ErrEmptyTripName)

	err = s.UpsertTrip(context.Background(), &types.Trip{Name: "x", Status: "bogus"})
	assert.ErrorIs(t, err, types.ErrInvalidStatus)
}

func TestUpsertTripUpdateNotFound(t *testing.T) {
	s := setupTestStorage(t)

	err := s.UpsertTrip(context.Background(), &types.Trip{
		ID:     999,
		Name:   "Ghost Trip",
		Status: types.StatusPlanning,
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMutationsEnqueueDirtyMarkers(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()

	trip := testTrip("Hawaii Honeymoon")
	require.NoError(t, s.UpsertTrip(ctx, trip))
	require.NoError(t, s.ReplaceTravelers(ctx, trip.ID, []types.Traveler{
		{Name: "Sara Jones", Email: "sara.jones@email.com", Role: types.RolePrimary},
	}))
	require.NoError(t, s.ReplaceSchedule(ctx, trip.ID, []types.ScheduleItem{
		{Kind: types.ScheduleHotel, Title: "Grand Wailea", Nights: 5, Cost: 3000},
	}))

	// Three distinct mutations, at least three markers.
	n, err := s.CountDirty(ctx, trip.ID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 3)
}

func TestDeleteTripCascades(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()

	trip := testTrip("Tuscany Wine Tour")
	require.NoError(t, s.UpsertTrip(ctx, trip))
	require.NoError(t, s.ReplaceTravelers(ctx, trip.ID, []types.Traveler{
		{Name: "Ann Li", Role: types.RolePrimary},
	}))
	require.NoError(t, s.UpsertSurface(ctx, &SurfaceRow{
		TripID: trip.ID, TripName: trip.Name, LastSynced: time.Now().UTC(),
	}))
	require.NoError(t, s.UpsertFacts(ctx, &FactsRow{
		TripID: trip.ID, LastComputed: time.Now().UTC(),
	}))
	require.NoError(t, s.ReplaceComponents(ctx, trip.ID, []Component{
		{Type: ComponentDestination, Value: "tuscany", Weight: 1.5},
	}))

	require.NoError(t, s.DeleteTrip(ctx, trip.ID))

	_, err := s.GetTrip(ctx, trip.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetSurface(ctx, trip.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetFacts(ctx, trip.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	travelers, err := s.ListTravelers(ctx, trip.ID)
	require.NoError(t, err)
	assert.Empty(t, travelers)
	components, err := s.ListComponents(ctx, trip.ID)
	require.NoError(t, err)
	assert.Empty(t, components)
}

func TestDeleteTripNotFound(t *testing.T) {
	s := setupTestStorage(t)
	assert.ErrorIs(t, s.DeleteTrip(context.Background(), 12345), ErrNotFound)
}

func TestReplaceTravelersIsFullReplace(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()

	trip := testTrip("Fiji Escape")
	require.NoError(t, s.UpsertTrip(ctx, trip))

	first := []types.Traveler{
		{Name: "Maya Chen", Email: "maya@example.com", Role: types.RolePrimary},
		{Name: "Leo Chen", Role: types.RoleCompanion},
	}
	require.NoError(t, s.ReplaceTravelers(ctx, trip.ID, first))

	second := []types.Traveler{
		{Name: "Maya Chen", Email: "maya@example.com", Role: types.RolePrimary},
	}
	require.NoError(t, s.ReplaceTravelers(ctx, trip.ID, second))

	got, err := s.ListTravelers(ctx, trip.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Maya Chen", got[0].Name)
	assert.Equal(t, types.RolePrimary, got[0].Role)
}

func TestUpsertFactsVersionMonotonic(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()

	trip := testTrip("Patagonia Trek")
	require.NoError(t, s.UpsertTrip(ctx, trip))

	row := &FactsRow{TripID: trip.ID, TotalNights: 7, TotalCost: 5100, LastComputed: time.Now().UTC()}
	require.NoError(t, s.UpsertFacts(ctx, row))
	first, err := s.GetFacts(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Version)

	require.NoError(t, s.UpsertFacts(ctx, row))
	second, err := s.GetFacts(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Version)
	assert.Equal(t, first.TotalNights, second.TotalNights)
	assert.Equal(t, first.TotalCost, second.TotalCost)
}

func TestStaleTripIDs(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()

	stale := testTrip("No Facts Yet")
	require.NoError(t, s.UpsertTrip(ctx, stale))

	fresh := testTrip("Fresh Trip")
	require.NoError(t, s.UpsertTrip(ctx, fresh))
	require.NoError(t, s.ClearDirty(ctx, fresh.ID, time.Now().UTC().Add(time.Second)))
	require.NoError(t, s.UpsertFacts(ctx, &FactsRow{
		TripID:       fresh.ID,
		LastComputed: time.Now().UTC().Add(time.Minute),
	}))

	ids, err := s.StaleTripIDs(ctx, 10)
	require.NoError(t, err)
	assert.Contains(t, ids, stale.ID)
	assert.NotContains(t, ids, fresh.ID)
}

func TestEnqueueDirtyIdempotentPerTimestamp(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()

	trip := testTrip("Kyoto in Autumn")
	require.NoError(t, s.UpsertTrip(ctx, trip))
	require.NoError(t, s.ClearDirty(ctx, trip.ID, time.Now().UTC().Add(time.Second)))

	// Repeated markers are harmless; the queue only guarantees at-least-once.
	require.NoError(t, s.EnqueueDirty(ctx, trip.ID, ReasonManualReindex))
	require.NoError(t, s.EnqueueDirty(ctx, trip.ID, ReasonManualReindex))

	n, err := s.CountDirty(ctx, trip.ID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 1)

	require.NoError(t, s.ClearDirty(ctx, trip.ID, time.Now().UTC().Add(time.Second)))
	n, err = s.CountDirty(ctx, trip.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReplaceComponentsFullReplace(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()

	trip := testTrip("Hawaii Honeymoon")
	require.NoError(t, s.UpsertTrip(ctx, trip))

	set := []Component{
		{Type: ComponentDestination, Value: "hawaii", Weight: 1.5, Synonyms: []string{"hawaiian islands", "aloha state"}},
		{Type: ComponentDescriptor, Value: "honeymoon", Weight: 1.3},
	}
	require.NoError(t, s.ReplaceComponents(ctx, trip.ID, set))
	require.NoError(t, s.ReplaceComponents(ctx, trip.ID, set))

	got, err := s.ListComponents(ctx, trip.ID)
	require.NoError(t, err)
	require.Len(t, got, 2, "re-extraction must not grow the component set")
	assert.Equal(t, []string{"hawaiian islands", "aloha state"}, got[0].Synonyms)
}

func TestMatchComponents(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()

	trip := testTrip("Hawaii Honeymoon")
	require.NoError(t, s.UpsertTrip(ctx, trip))
	require.NoError(t, s.ReplaceComponents(ctx, trip.ID, []Component{
		{Type: ComponentDestination, Value: "hawaii", Weight: 1.5, Synonyms: []string{"aloha state"}},
		{Type: ComponentStatus, Value: "confirmed", Weight: 1.0},
	}))

	got, err := s.MatchComponents(ctx, []string{"hawaii"}, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, ComponentDestination, got[0].Type)

	// Synonym text is matched in the stored JSON too.
	got, err = s.MatchComponents(ctx, []string{"aloha"}, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestIsComplexityError(t *testing.T) {
	assert.True(t, IsComplexityError(errors.New("LIKE or GLOB pattern too complex")))
	assert.True(t, IsComplexityError(errors.New("query timeout exceeded")))
	assert.True(t, IsComplexityError(context.DeadlineExceeded))
	assert.False(t, IsComplexityError(nil))
	assert.False(t, IsComplexityError(errors.New("UNIQUE constraint failed: trips.slug")))
	assert.False(t, IsComplexityError(errors.New("no such column: bogus")))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "sara-and-darrens-anniversary-trip", Slugify("Sara and Darren's Anniversary Trip"))
	assert.Equal(t, "moms-big-adventure", Slugify(`Mom's "Big" Adventure`))
	assert.Equal(t, "trip-42", Slugify("Trip #42"))
	assert.Equal(t, "", Slugify("!!!"))
}
