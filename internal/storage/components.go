package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/voyagehq/tripsearch-mcp/internal/query"
)

// ReplaceComponents swaps out a trip's semantic components in one
// transaction: re-extraction is a full replace, never additive.
func (s *SQLiteStorage) ReplaceComponents(ctx context.Context, tripID int64, components []Component) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM semantic_components WHERE trip_id = ?", tripID); err != nil {
		return fmt.Errorf("failed to clear components for trip %d: %w", tripID, err)
	}
	for _, c := range components {
		synonyms, err := json.Marshal(c.Synonyms)
		if err != nil {
			return fmt.Errorf("failed to encode synonyms: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO semantic_components (trip_id, component_type, value, weight, synonyms)
			VALUES (?, ?, ?, ?, ?)`,
			tripID, string(c.Type), c.Value, c.Weight, string(synonyms)); err != nil {
			return fmt.Errorf("failed to insert component: %w", err)
		}
	}
	return tx.Commit()
}

const componentColumns = "trip_id, component_type, value, weight, synonyms"

// ListComponents returns a trip's semantic components.
func (s *SQLiteStorage) ListComponents(ctx context.Context, tripID int64) ([]Component, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+componentColumns+" FROM semantic_components WHERE trip_id = ? ORDER BY weight DESC, id",
		tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list components for trip %d: %w", tripID, err)
	}
	defer func() { _ = rows.Close() }()
	return scanComponents(rows)
}

// MatchComponents returns components whose value matches any of the query
// values. Synonym matching happens in Go after retrieval; this only narrows
// the candidate set with bounded LIKE clauses.
func (s *SQLiteStorage) MatchComponents(ctx context.Context, values []string, limit int) ([]Component, error) {
	if len(values) == 0 {
		return nil, nil
	}
	var disj query.Or
	for _, v := range values {
		disj = append(disj, query.Like{Column: "value", Value: v})
		disj = append(disj, query.Like{Column: "synonyms", Value: v})
	}
	where, args := query.Render(disj)

	q := "SELECT " + componentColumns + " FROM semantic_components WHERE " + where +
		" ORDER BY weight DESC LIMIT ?"
	rows, err := s.db.QueryContext(ctx, q, append(args, limit)...)
	if err != nil {
		return nil, fmt.Errorf("component match failed: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanComponents(rows)
}

func scanComponents(rows *sql.Rows) ([]Component, error) {
	var components []Component
	for rows.Next() {
		var c Component
		var ctype string
		var synonyms sql.NullString
		if err := rows.Scan(&c.TripID, &ctype, &c.Value, &c.Weight, &synonyms); err != nil {
			return nil, err
		}
		c.Type = ComponentType(ctype)
		if synonyms.Valid && synonyms.String != "" {
			if err := json.Unmarshal([]byte(synonyms.String), &c.Synonyms); err != nil {
				return nil, fmt.Errorf("corrupt synonyms for trip %d component %q: %w", c.TripID, c.Value, err)
			}
		}
		components = append(components, c)
	}
	return components, rows.Err()
}
