package types

import "time"

// TripStatus is the lifecycle state of a trip.
type TripStatus string

const (
	StatusPlanning   TripStatus = "planning"
	StatusConfirmed  TripStatus = "confirmed"
	StatusInProgress TripStatus = "in_progress"
	StatusCompleted  TripStatus = "completed"
	StatusCancelled  TripStatus = "cancelled"
)

// ValidStatus reports whether s is one of the known trip statuses.
func ValidStatus(s TripStatus) bool {
	switch s {
	case StatusPlanning, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// TravelerRole distinguishes the booking client from companions.
type TravelerRole string

const (
	RolePrimary   TravelerRole = "primary"
	RoleCompanion TravelerRole = "companion"
)

// ScheduleKind is the type of a schedule item.
type ScheduleKind string

const (
	ScheduleHotel    ScheduleKind = "hotel"
	ScheduleActivity ScheduleKind = "activity"
	ScheduleTransit  ScheduleKind = "transit"
)

// Trip is the system-of-record trip entity. It is owned and mutated by
// trip-management operations; every derived row (facts, search surface,
// semantic components) can be rebuilt from it at any time.
type Trip struct {
	ID           int64
	Name         string
	Slug         string
	Status       TripStatus
	StartDate    time.Time
	EndDate      time.Time
	Destinations string // Free text, comma/semicolon separated
	TotalCost    float64
	Notes        string
	PrimaryEmail string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Traveler is a person attached to a trip.
type Traveler struct {
	ID     int64
	TripID int64
	Name   string
	Email  string
	Role   TravelerRole
}

// ScheduleItem is one entry in a trip's itinerary.
type ScheduleItem struct {
	ID             int64
	TripID         int64
	Kind           ScheduleKind
	Title          string
	Nights         int
	Cost           float64
	TransitMinutes int
}

// Validate checks the trip's required fields.
func (t *Trip) Validate() error {
	if t.Name == "" {
		return ErrEmptyTripName
	}
	if !ValidStatus(t.Status) {
		return ErrInvalidStatus
	}
	return nil
}
