package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/antoniostano/adpulse/internal/trace"
)

// PostgresStore mirrors appended events into a trace_events table for
// offline analytics queries.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, strings.TrimSpace(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := initArchiveSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool}, nil
}

func initArchiveSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS trace_events (
			event_id TEXT PRIMARY KEY,
			conversation_id TEXT NOT NULL,
			event_type TEXT NOT NULL,
			ts TIMESTAMPTZ NOT NULL,
			content JSONB NOT NULL DEFAULT '{}',
			metadata JSONB NOT NULL DEFAULT '{}'
		);`,
		`CREATE INDEX IF NOT EXISTS idx_trace_events_conversation_ts ON trace_events (conversation_id, ts);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init archive schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) RecordEvent(ctx context.Context, ev trace.Event) error {
	content, err := json.Marshal(ev.Content)
	if err != nil {
		return fmt.Errorf("marshal event content: %w", err)
	}
	metadata, err := json.Marshal(ev.Metadata)
	if err != nil {
		return fmt.Errorf("marshal event metadata: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO trace_events (event_id, conversation_id, event_type, ts, content, metadata)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (event_id) DO NOTHING`,
		ev.EventID, ev.ConversationID, string(ev.EventType), ev.Timestamp, content, metadata,
	)
	if err != nil {
		return fmt.Errorf("archive event %s: %w", ev.EventID, err)
	}
	return nil
}

func (s *PostgresStore) EventCount(ctx context.Context, conversationID string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM trace_events WHERE conversation_id = $1`,
		conversationID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count archived events: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
