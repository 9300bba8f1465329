package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// SQLStore keeps events in the analytics_events table.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Record inserts evt. A timestamp that does not parse is replaced by now.
func (s *SQLStore) Record(ctx context.Context, evt Event) error {
	occurredAt, err := time.Parse(timestampLayout, evt.Timestamp)
	if err != nil {
		occurredAt = time.Now().UTC()
	}
	data, err := json.Marshal(evt.Data)
	if err != nil {
		return fmt.Errorf("analytics: marshal data: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analytics_events (occurred_at, event, data, session)
		VALUES ($1, $2, $3, $4)`,
		occurredAt, evt.Event, data, sql.NullString{String: evt.Session, Valid: evt.Session != ""})
	if err != nil {
		return fmt.Errorf("analytics: insert event: %w", err)
	}
	return nil
}

// List returns all events in the order they occurred.
func (s *SQLStore) List(ctx context.Context) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT occurred_at, event, data, session
		FROM analytics_events ORDER BY occurred_at, id`)
	if err != nil {
		return nil, fmt.Errorf("analytics: list events: %w", err)
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		var (
			occurredAt time.Time
			name       string
			raw        []byte
			session    sql.NullString
		)
		if err := rows.Scan(&occurredAt, &name, &raw, &session); err != nil {
			return nil, fmt.Errorf("analytics: scan event: %w", err)
		}
		data := map[string]any{}
		if len(raw) > 0 {
			// Rows with undecodable data are still listed, with empty data.
			_ = json.Unmarshal(raw, &data)
		}
		out = append(out, NewEvent(occurredAt, name, data, session.String))
	}
	return out, rows.Err()
}

// CountByName returns totals for the given event names. Names with no
// events are absent from the result.
func (s *SQLStore) CountByName(ctx context.Context, names []string) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT event, COUNT(*) FROM analytics_events
		WHERE event = ANY($1) GROUP BY event`, pq.Array(names))
	if err != nil {
		return nil, fmt.Errorf("analytics: count events: %w", err)
	}
	defer rows.Close()

	out := map[string]int64{}
	for rows.Next() {
		var (
			name  string
			count int64
		)
		if err := rows.Scan(&name, &count); err != nil {
			return nil, fmt.Errorf("analytics: scan count: %w", err)
		}
		out[name] = count
	}
	return out, rows.Err()
}

var _ Store = (*SQLStore)(nil)
