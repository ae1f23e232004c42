package db

import (
	"context"
	"encoding/json"
	"fmt"
)

// RecordEvent stores an analysis event and prunes the log to the newest
// MaxEvents entries.
func (db *DB) RecordEvent(ctx context.Context, eventType string, data map[string]any) error {
	if data == nil {
		data = map[string]any{}
	}
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO events (event_type, data) VALUES ($1, $2)`,
		eventType, dataJSON,
	); err != nil {
		return fmt.Errorf("failed to record event %s: %w", eventType, err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM events WHERE id NOT IN (
		   SELECT id FROM events ORDER BY created_at DESC, id DESC LIMIT $1
		 )`,
		MaxEvents,
	); err != nil {
		return fmt.Errorf("failed to prune events: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit event: %w", err)
	}
	return nil
}

// ListEvents returns the newest events first, optionally filtered by type.
func (db *DB) ListEvents(ctx context.Context, eventType string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `SELECT id, event_type, data, created_at FROM events`
	args := []any{limit}
	if eventType != "" {
		query += ` WHERE event_type = $2`
		args = append(args, eventType)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT $1`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	events := make([]Event, 0)
	for rows.Next() {
		var (
			e    Event
			data []byte
		)
		if err := rows.Scan(&e.ID, &e.Type, &data, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.Data = json.RawMessage(data)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}
