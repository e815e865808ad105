package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SurfaceColumns are the LIKE-searchable columns of the search surface,
// ordered by selectivity. The first entry is the primary column for the
// simplified fallback strategies.
var SurfaceColumns = []string{
	"search_tokens",
	"trip_name",
	"destinations",
	"traveler_names",
	"traveler_emails",
}

// TripColumns are the searchable columns of the plain trips table, used by
// the secondary fallback tier.
var TripColumns = []string{"name", "destinations", "notes"}

// TravelerColumns are the narrow columns used by the emergency tier.
var TravelerColumns = []string{"name", "email"}

const surfaceColumnList = `trip_id, trip_name, name_normalized, slug, destinations,
       destinations_normalized, traveler_names, traveler_names_normalized,
       traveler_emails, emails_normalized, primary_client_name, primary_email,
       status, traveler_count, phonetic_tokens, search_tokens, last_synced`

// UpsertSurface writes the search-surface projection for one trip. A
// single-statement upsert so concurrent recomputations are last-writer-wins
// with no partial state.
func (s *SQLiteStorage) UpsertSurface(ctx context.Context, row *SurfaceRow) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO search_surface (trip_id, trip_name, name_normalized, slug,
		    destinations, destinations_normalized, traveler_names,
		    traveler_names_normalized, traveler_emails, emails_normalized,
		    primary_client_name, primary_email, status, traveler_count,
		    phonetic_tokens, search_tokens, last_synced)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(trip_id) DO UPDATE SET
		    trip_name = excluded.trip_name,
		    name_normalized = excluded.name_normalized,
		    slug = excluded.slug,
		    destinations = excluded.destinations,
		    destinations_normalized = excluded.destinations_normalized,
		    traveler_names = excluded.traveler_names,
		    traveler_names_normalized = excluded.traveler_names_normalized,
		    traveler_emails = excluded.traveler_emails,
		    emails_normalized = excluded.emails_normalized,
		    primary_client_name = excluded.primary_client_name,
		    primary_email = excluded.primary_email,
		    status = excluded.status,
		    traveler_count = excluded.traveler_count,
		    phonetic_tokens = excluded.phonetic_tokens,
		    search_tokens = excluded.search_tokens,
		    last_synced = excluded.last_synced`,
		row.TripID, row.TripName, row.NameNormalized, row.Slug,
		row.Destinations, row.DestNormalized, row.TravelerNames,
		row.NamesNormalized, row.TravelerEmails, row.EmailsNormalized,
		row.PrimaryClientName, row.PrimaryEmail, row.Status, row.TravelerCount,
		row.PhoneticTokens, row.SearchTokens, row.LastSynced)
	if err != nil {
		return fmt.Errorf("failed to upsert surface for trip %d: %w", row.TripID, err)
	}
	return nil
}

// GetSurface returns the surface row for one trip, or ErrNotFound.
func (s *SQLiteStorage) GetSurface(ctx context.Context, tripID int64) (*SurfaceRow, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+surfaceColumnList+" FROM search_surface WHERE trip_id = ?", tripID)
	surface, err := scanSurface(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("surface for trip %d: %w", tripID, ErrNotFound)
	}
	return surface, err
}

// QuerySurfaces runs a caller-built WHERE fragment against the search
// surface (the primary fallback tier).
func (s *SQLiteStorage) QuerySurfaces(ctx context.Context, where string, args []interface{}, limit int) ([]*SurfaceRow, error) {
	q := "SELECT " + surfaceColumnList + " FROM search_surface WHERE " + where +
		" ORDER BY last_synced DESC LIMIT ?"
	rows, err := s.db.QueryContext(ctx, q, append(args, limit)...)
	if err != nil {
		return nil, fmt.Errorf("surface query failed: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanSurfaces(rows)
}

func scanSurface(r rowScanner) (*SurfaceRow, error) {
	var row SurfaceRow
	var nameNorm, slug, dest, destNorm, names, namesNorm sql.NullString
	var emails, emailsNorm, client, primaryEmail, status, phonetic, tokens sql.NullString
	var lastSynced sql.NullTime
	err := r.Scan(&row.TripID, &row.TripName, &nameNorm, &slug, &dest, &destNorm,
		&names, &namesNorm, &emails, &emailsNorm, &client, &primaryEmail,
		&status, &row.TravelerCount, &phonetic, &tokens, &lastSynced)
	if err != nil {
		return nil, err
	}
	row.NameNormalized = nameNorm.String
	row.Slug = slug.String
	row.Destinations = dest.String
	row.DestNormalized = destNorm.String
	row.TravelerNames = names.String
	row.NamesNormalized = namesNorm.String
	row.TravelerEmails = emails.String
	row.EmailsNormalized = emailsNorm.String
	row.PrimaryClientName = client.String
	row.PrimaryEmail = primaryEmail.String
	row.Status = status.String
	row.PhoneticTokens = phonetic.String
	row.SearchTokens = tokens.String
	row.LastSynced = lastSynced.Time
	return &row, nil
}

func scanSurfaces(rows *sql.Rows) ([]*SurfaceRow, error) {
	var surfaces []*SurfaceRow
	for rows.Next() {
		row, err := scanSurface(rows)
		if err != nil {
			return nil, err
		}
		surfaces = append(surfaces, row)
	}
	return surfaces, rows.Err()
}
