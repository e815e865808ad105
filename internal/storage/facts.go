package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// UpsertFacts writes the derived aggregates for one trip. Version increments
// monotonically on every write; the statement is a single idempotent upsert
// so concurrent recomputations cannot expose partial state.
func (s *SQLiteStorage) UpsertFacts(ctx context.Context, row *FactsRow) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trip_facts (trip_id, total_nights, hotel_count, activity_count,
		    total_cost, transit_minutes, traveler_count, traveler_names,
		    traveler_emails, version, last_computed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?)
		ON CONFLICT(trip_id) DO UPDATE SET
		    total_nights = excluded.total_nights,
		    hotel_count = excluded.hotel_count,
		    activity_count = excluded.activity_count,
		    total_cost = excluded.total_cost,
		    transit_minutes = excluded.transit_minutes,
		    traveler_count = excluded.traveler_count,
		    traveler_names = excluded.traveler_names,
		    traveler_emails = excluded.traveler_emails,
		    version = trip_facts.version + 1,
		    last_computed = excluded.last_computed`,
		row.TripID, row.TotalNights, row.HotelCount, row.ActivityCount,
		row.TotalCost, row.TransitMinutes, row.TravelerCount,
		row.TravelerNames, row.TravelerEmails, row.LastComputed)
	if err != nil {
		return fmt.Errorf("failed to upsert facts for trip %d: %w", row.TripID, err)
	}
	return nil
}

// GetFacts returns the facts row for one trip, or ErrNotFound when no
// recomputation has run yet.
func (s *SQLiteStorage) GetFacts(ctx context.Context, tripID int64) (*FactsRow, error) {
	var row FactsRow
	var names, emails sql.NullString
	var lastComputed sql.NullTime
	err := s.db.QueryRowContext(ctx, `
		SELECT trip_id, total_nights, hotel_count, activity_count, total_cost,
		       transit_minutes, traveler_count, traveler_names, traveler_emails,
		       version, last_computed
		FROM trip_facts WHERE trip_id = ?`, tripID).
		Scan(&row.TripID, &row.TotalNights, &row.HotelCount, &row.ActivityCount,
			&row.TotalCost, &row.TransitMinutes, &row.TravelerCount,
			&names, &emails, &row.Version, &lastComputed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("facts for trip %d: %w", tripID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get facts for trip %d: %w", tripID, err)
	}
	row.TravelerNames = names.String
	row.TravelerEmails = emails.String
	row.LastComputed = lastComputed.Time
	return &row, nil
}

// Dirty queue operations

// EnqueueDirty appends a work marker for a trip. Insert-or-ignore, so
// duplicate markers for the same (trip, reason, timestamp) are free.
func (s *SQLiteStorage) EnqueueDirty(ctx context.Context, tripID int64, reason string) error {
	return (&queueRecorder{db: s.db}).RecordChange(ctx, tripID, reason)
}

// CountDirty returns the number of pending markers for a trip.
func (s *SQLiteStorage) CountDirty(ctx context.Context, tripID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM dirty_queue WHERE trip_id = ?", tripID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count dirty markers for trip %d: %w", tripID, err)
	}
	return n, nil
}

// ClearDirty drains markers recorded at or before the cutoff. Markers that
// arrive during a recomputation survive and trigger the next pass.
func (s *SQLiteStorage) ClearDirty(ctx context.Context, tripID int64, before time.Time) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM dirty_queue WHERE trip_id = ? AND created_at <= ?", tripID, before)
	if err != nil {
		return fmt.Errorf("failed to clear dirty markers for trip %d: %w", tripID, err)
	}
	return nil
}

// StaleTripIDs returns trips needing recomputation, oldest updated first:
// trips with a pending dirty marker, no facts row at all, or a facts row
// computed before the trip's last mutation.
func (s *SQLiteStorage) StaleTripIDs(ctx context.Context, limit int) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id FROM trips t
		LEFT JOIN trip_facts f ON f.trip_id = t.id
		WHERE f.trip_id IS NULL
		   OR f.last_computed < t.updated_at
		   OR EXISTS (SELECT 1 FROM dirty_queue d WHERE d.trip_id = t.id)
		ORDER BY t.updated_at ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale trips: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
