package storage

import (
	"context"
	"time"

	"github.com/voyagehq/tripsearch-mcp/pkg/types"
)

// Storage defines the interface for persisting trips and their derived rows.
// Derived rows (surface, facts, components) are caches: safe to rebuild from
// the source trip at any time, never sources of truth.
type Storage interface {
	// Trip operations (system of record)
	UpsertTrip(ctx context.Context, trip *types.Trip) error
	GetTrip(ctx context.Context, tripID int64) (*types.Trip, error)
	DeleteTrip(ctx context.Context, tripID int64) error
	ListTrips(ctx context.Context, limit int) ([]*types.Trip, error)
	QueryTrips(ctx context.Context, where string, args []interface{}, limit int) ([]*types.Trip, error)

	// Traveler / schedule operations
	ReplaceTravelers(ctx context.Context, tripID int64, travelers []types.Traveler) error
	ListTravelers(ctx context.Context, tripID int64) ([]types.Traveler, error)
	QueryTravelers(ctx context.Context, where string, args []interface{}, limit int) ([]types.Traveler, error)
	ReplaceSchedule(ctx context.Context, tripID int64, items []types.ScheduleItem) error
	ListSchedule(ctx context.Context, tripID int64) ([]types.ScheduleItem, error)

	// Search surface operations
	UpsertSurface(ctx context.Context, row *SurfaceRow) error
	GetSurface(ctx context.Context, tripID int64) (*SurfaceRow, error)
	QuerySurfaces(ctx context.Context, where string, args []interface{}, limit int) ([]*SurfaceRow, error)

	// Facts operations
	UpsertFacts(ctx context.Context, row *FactsRow) error
	GetFacts(ctx context.Context, tripID int64) (*FactsRow, error)

	// Dirty queue operations
	EnqueueDirty(ctx context.Context, tripID int64, reason string) error
	CountDirty(ctx context.Context, tripID int64) (int, error)
	ClearDirty(ctx context.Context, tripID int64, before time.Time) error
	StaleTripIDs(ctx context.Context, limit int) ([]int64, error)

	// Semantic component operations
	ReplaceComponents(ctx context.Context, tripID int64, components []Component) error
	ListComponents(ctx context.Context, tripID int64) ([]Component, error)
	MatchComponents(ctx context.Context, values []string, limit int) ([]Component, error)

	// Database operations
	Close() error
}

// ChangeRecorder receives a work item whenever a tracked source table is
// mutated. The default implementation appends to the dirty queue; swapping
// it out ports the mechanism to an outbox table or a CDC hook.
type ChangeRecorder interface {
	RecordChange(ctx context.Context, tripID int64, reason string) error
}

// Mutation reasons recorded on the dirty queue.
const (
	ReasonTripUpsert      = "trip_upsert"
	ReasonTripDelete      = "trip_delete"
	ReasonTravelerChange  = "traveler_change"
	ReasonScheduleChange  = "schedule_change"
	ReasonManualReindex   = "manual_reindex"
	ReasonMissingFactsRow = "missing_facts"
)

// SurfaceRow is the denormalized per-trip search projection. One row per
// trip, rebuilt whenever the trip is marked dirty; stale between mutation
// and recomputation.
type SurfaceRow struct {
	TripID            int64
	TripName          string
	NameNormalized    string
	Slug              string
	Destinations      string
	DestNormalized    string
	TravelerNames     string
	NamesNormalized   string
	TravelerEmails    string
	EmailsNormalized  string
	PrimaryClientName string
	PrimaryEmail      string
	Status            string
	TravelerCount     int
	PhoneticTokens    string // Space-separated phonetic codes
	SearchTokens      string // Space-separated plain tokens
	LastSynced        time.Time
}

// FactsRow holds derived aggregates for one trip. Version is monotonically
// increasing; LastComputed >= the trip's UpdatedAt once consistent.
type FactsRow struct {
	TripID         int64
	TotalNights    int
	HotelCount     int
	ActivityCount  int
	TotalCost      float64
	TransitMinutes int
	TravelerCount  int
	TravelerNames  string
	TravelerEmails string
	Version        int64
	LastComputed   time.Time
}

// ComponentType labels a semantic component.
type ComponentType string

const (
	ComponentClient      ComponentType = "client"
	ComponentDestination ComponentType = "destination"
	ComponentDate        ComponentType = "date"
	ComponentActivity    ComponentType = "activity"
	ComponentCost        ComponentType = "cost"
	ComponentDescriptor  ComponentType = "descriptor"
	ComponentStatus      ComponentType = "status"
)

// Component is one typed, weighted fact extracted from a trip for
// structured semantic matching.
type Component struct {
	TripID   int64
	Type     ComponentType
	Value    string
	Weight   float64
	Synonyms []string
}
