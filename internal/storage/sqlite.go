package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/voyagehq/tripsearch-mcp/pkg/types"
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db      *sql.DB
	changes ChangeRecorder
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	s := &SQLiteStorage{db: db}
	s.changes = &queueRecorder{db: db}
	return s, nil
}

// SetChangeRecorder swaps out the dirty-tracking mechanism, e.g. for an
// outbox table or an external change-data-capture hook.
func (s *SQLiteStorage) SetChangeRecorder(r ChangeRecorder) {
	s.changes = r
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// queueRecorder is the default ChangeRecorder: a single-statement
// insert-or-ignore append to the dirty queue.
type queueRecorder struct {
	db *sql.DB
}

func (r *queueRecorder) RecordChange(ctx context.Context, tripID int64, reason string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO dirty_queue (trip_id, reason, created_at) VALUES (?, ?, ?)",
		tripID, reason, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to record change for trip %d: %w", tripID, err)
	}
	return nil
}

// Trip operations

// UpsertTrip inserts or updates a trip and records a dirty marker. The slug
// is derived from the name when empty.
func (s *SQLiteStorage) UpsertTrip(ctx context.Context, trip *types.Trip) error {
	if err := trip.Validate(); err != nil {
		return err
	}
	if trip.Slug == "" {
		trip.Slug = Slugify(trip.Name)
	}
	now := time.Now().UTC()

	if trip.ID == 0 {
		result, err := s.db.ExecContext(ctx, `
			INSERT INTO trips (name, slug, status, start_date, end_date, destinations,
			                   total_cost, notes, primary_email, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			trip.Name, trip.Slug, string(trip.Status), trip.StartDate, trip.EndDate,
			trip.Destinations, trip.TotalCost, trip.Notes, trip.PrimaryEmail, now, now)
		if err != nil {
			return fmt.Errorf("failed to create trip: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return err
		}
		trip.ID = id
		trip.CreatedAt = now
	} else {
		result, err := s.db.ExecContext(ctx, `
			UPDATE trips SET name = ?, slug = ?, status = ?, start_date = ?, end_date = ?,
			       destinations = ?, total_cost = ?, notes = ?, primary_email = ?, updated_at = ?
			WHERE id = ?`,
			trip.Name, trip.Slug, string(trip.Status), trip.StartDate, trip.EndDate,
			trip.Destinations, trip.TotalCost, trip.Notes, trip.PrimaryEmail, now, trip.ID)
		if err != nil {
			return fmt.Errorf("failed to update trip %d: %w", trip.ID, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("trip %d: %w", trip.ID, ErrNotFound)
		}
	}
	trip.UpdatedAt = now

	return s.changes.RecordChange(ctx, trip.ID, ReasonTripUpsert)
}

const tripColumns = `id, name, slug, status, start_date, end_date, destinations,
       total_cost, notes, primary_email, created_at, updated_at`

// GetTrip returns a trip by id, or ErrNotFound.
func (s *SQLiteStorage) GetTrip(ctx context.Context, tripID int64) (*types.Trip, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+tripColumns+" FROM trips WHERE id = ?", tripID)
	trip, err := scanTrip(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("trip %d: %w", tripID, ErrNotFound)
	}
	return trip, err
}

// DeleteTrip removes a trip. Foreign keys cascade the delete to every
// derived row; a final dirty marker is still recorded so consumers can
// observe the deletion.
func (s *SQLiteStorage) DeleteTrip(ctx context.Context, tripID int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM trips WHERE id = ?", tripID)
	if err != nil {
		return fmt.Errorf("failed to delete trip %d: %w", tripID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("trip %d: %w", tripID, ErrNotFound)
	}
	return s.changes.RecordChange(ctx, tripID, ReasonTripDelete)
}

// ListTrips returns trips most recently updated first.
func (s *SQLiteStorage) ListTrips(ctx context.Context, limit int) ([]*types.Trip, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+tripColumns+" FROM trips ORDER BY updated_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanTrips(rows)
}

// QueryTrips runs a caller-built WHERE fragment against the trips table.
// The fragment comes from the typed predicate builder; values are bound.
func (s *SQLiteStorage) QueryTrips(ctx context.Context, where string, args []interface{}, limit int) ([]*types.Trip, error) {
	q := "SELECT " + tripColumns + " FROM trips WHERE " + where +
		" ORDER BY updated_at DESC LIMIT ?"
	rows, err := s.db.QueryContext(ctx, q, append(args, limit)...)
	if err != nil {
		return nil, fmt.Errorf("trip query failed: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanTrips(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTrip(r rowScanner) (*types.Trip, error) {
	var t types.Trip
	var status string
	var startDate, endDate sql.NullTime
	var destinations, notes, primaryEmail sql.NullString
	err := r.Scan(&t.ID, &t.Name, &t.Slug, &status, &startDate, &endDate,
		&destinations, &t.TotalCost, &notes, &primaryEmail, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.Status = types.TripStatus(status)
	t.StartDate = startDate.Time
	t.EndDate = endDate.Time
	t.Destinations = destinations.String
	t.Notes = notes.String
	t.PrimaryEmail = primaryEmail.String
	return &t, nil
}

func scanTrips(rows *sql.Rows) ([]*types.Trip, error) {
	var trips []*types.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

// Traveler operations

// ReplaceTravelers swaps out a trip's traveler roster in one transaction
// and records a dirty marker.
func (s *SQLiteStorage) ReplaceTravelers(ctx context.Context, tripID int64, travelers []types.Traveler) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM travelers WHERE trip_id = ?", tripID); err != nil {
		return fmt.Errorf("failed to clear travelers for trip %d: %w", tripID, err)
	}
	for i := range travelers {
		travelers[i].TripID = tripID
		result, err := tx.ExecContext(ctx,
			"INSERT INTO travelers (trip_id, name, email, role) VALUES (?, ?, ?, ?)",
			tripID, travelers[i].Name, travelers[i].Email, string(travelers[i].Role))
		if err != nil {
			return fmt.Errorf("failed to insert traveler: %w", err)
		}
		if id, err := result.LastInsertId(); err == nil {
			travelers[i].ID = id
		}
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE trips SET updated_at = ? WHERE id = ?", time.Now().UTC(), tripID); err != nil {
		return fmt.Errorf("failed to touch trip %d: %w", tripID, err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	return s.changes.RecordChange(ctx, tripID, ReasonTravelerChange)
}

// ListTravelers returns a trip's travelers, primary client first.
func (s *SQLiteStorage) ListTravelers(ctx context.Context, tripID int64) ([]types.Traveler, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, trip_id, name, email, role FROM travelers
		WHERE trip_id = ?
		ORDER BY CASE role WHEN 'primary' THEN 0 ELSE 1 END, id`, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list travelers for trip %d: %w", tripID, err)
	}
	defer func() { _ = rows.Close() }()
	return scanTravelers(rows)
}

// QueryTravelers runs a caller-built WHERE fragment against the travelers
// table (the emergency fallback tier).
func (s *SQLiteStorage) QueryTravelers(ctx context.Context, where string, args []interface{}, limit int) ([]types.Traveler, error) {
	q := "SELECT id, trip_id, name, email, role FROM travelers WHERE " + where + " LIMIT ?"
	rows, err := s.db.QueryContext(ctx, q, append(args, limit)...)
	if err != nil {
		return nil, fmt.Errorf("traveler query failed: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanTravelers(rows)
}

func scanTravelers(rows *sql.Rows) ([]types.Traveler, error) {
	var travelers []types.Traveler
	for rows.Next() {
		var tr types.Traveler
		var email sql.NullString
		var role string
		if err := rows.Scan(&tr.ID, &tr.TripID, &tr.Name, &email, &role); err != nil {
			return nil, err
		}
		tr.Email = email.String
		tr.Role = types.TravelerRole(role)
		travelers = append(travelers, tr)
	}
	return travelers, rows.Err()
}

// Schedule operations

// ReplaceSchedule swaps out a trip's schedule in one transaction and
// records a dirty marker.
func (s *SQLiteStorage) ReplaceSchedule(ctx context.Context, tripID int64, items []types.ScheduleItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM schedule_items WHERE trip_id = ?", tripID); err != nil {
		return fmt.Errorf("failed to clear schedule for trip %d: %w", tripID, err)
	}
	for i := range items {
		items[i].TripID = tripID
		result, err := tx.ExecContext(ctx, `
			INSERT INTO schedule_items (trip_id, kind, title, nights, cost, transit_minutes)
			VALUES (?, ?, ?, ?, ?, ?)`,
			tripID, string(items[i].Kind), items[i].Title, items[i].Nights,
			items[i].Cost, items[i].TransitMinutes)
		if err != nil {
			return fmt.Errorf("failed to insert schedule item: %w", err)
		}
		if id, err := result.LastInsertId(); err == nil {
			items[i].ID = id
		}
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE trips SET updated_at = ? WHERE id = ?", time.Now().UTC(), tripID); err != nil {
		return fmt.Errorf("failed to touch trip %d: %w", tripID, err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	return s.changes.RecordChange(ctx, tripID, ReasonScheduleChange)
}

// ListSchedule returns a trip's schedule items.
func (s *SQLiteStorage) ListSchedule(ctx context.Context, tripID int64) ([]types.ScheduleItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, trip_id, kind, title, nights, cost, transit_minutes
		FROM schedule_items WHERE trip_id = ? ORDER BY id`, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule for trip %d: %w", tripID, err)
	}
	defer func() { _ = rows.Close() }()

	var items []types.ScheduleItem
	for rows.Next() {
		var it types.ScheduleItem
		var kind string
		var title sql.NullString
		if err := rows.Scan(&it.ID, &it.TripID, &kind, &title, &it.Nights, &it.Cost, &it.TransitMinutes); err != nil {
			return nil, err
		}
		it.Kind = types.ScheduleKind(kind)
		it.Title = title.String
		items = append(items, it)
	}
	return items, rows.Err()
}

// Slugify turns a trip name into a URL-safe slug. Quotes vanish rather than
// becoming separators, matching query normalization: "Darren's" slugs to
// "darrens", not "darren-s".
func Slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case r == '\'' || r == '"':
			// skip
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}
