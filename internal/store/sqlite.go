package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tessera-ai/eventgate/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS runtimes (
			agent_name TEXT PRIMARY KEY,
			runtime_id TEXT NOT NULL,
			version TEXT NOT NULL,
			architecture_type TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS runtime_events (
			event_id TEXT PRIMARY KEY,
			agent_name TEXT NOT NULL,
			status TEXT,
			message TEXT,
			payload TEXT,
			ts INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runtime_events_agent ON runtime_events(agent_name, ts)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRuntime(ctx context.Context, runtime *domain.Runtime) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runtimes (agent_name, runtime_id, version, architecture_type, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runtime.AgentName, runtime.RuntimeID, runtime.Version, runtime.Architecture,
		runtime.Status, runtime.CreatedAt, runtime.UpdatedAt)
	return err
}

func (s *SQLiteStore) GetRuntime(ctx context.Context, agentName string) (*domain.Runtime, error) {
	var rt domain.Runtime
	err := s.db.QueryRowContext(ctx,
		`SELECT agent_name, runtime_id, version, architecture_type, status, created_at, updated_at
		 FROM runtimes WHERE agent_name = ?`,
		agentName).Scan(&rt.AgentName, &rt.RuntimeID, &rt.Version, &rt.Architecture,
		&rt.Status, &rt.CreatedAt, &rt.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

func (s *SQLiteStore) ListRuntimes(ctx context.Context) ([]domain.Runtime, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT agent_name, runtime_id, version, architecture_type, status, created_at, updated_at
		 FROM runtimes ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runtimes []domain.Runtime
	for rows.Next() {
		var rt domain.Runtime
		if err := rows.Scan(&rt.AgentName, &rt.RuntimeID, &rt.Version, &rt.Architecture,
			&rt.Status, &rt.CreatedAt, &rt.UpdatedAt); err != nil {
			return nil, err
		}
		runtimes = append(runtimes, rt)
	}
	return runtimes, rows.Err()
}

func (s *SQLiteStore) UpdateRuntimeStatus(ctx context.Context, agentName string, status domain.RuntimeStatus) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE runtimes SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE agent_name = ?`,
		status, agentName)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("runtime not found: %s", agentName)
	}
	return nil
}

func (s *SQLiteStore) DeleteRuntime(ctx context.Context, agentName string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM runtimes WHERE agent_name = ?`, agentName)
	return err
}

func (s *SQLiteStore) CreateEvent(ctx context.Context, event *domain.RuntimeEvent) error {
	var payload any
	if event.Payload != nil {
		payload = string(event.Payload)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runtime_events (event_id, agent_name, status, message, payload, ts)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		event.EventID, event.AgentName, event.Status, event.Message, payload, event.Ts)
	return err
}

func (s *SQLiteStore) ListEvents(ctx context.Context, agentName string, afterTs int64, limit int) ([]domain.RuntimeEvent, error) {
	query := `SELECT event_id, agent_name, status, message, payload, ts
		 FROM runtime_events WHERE agent_name = ? AND ts > ? ORDER BY ts, rowid`
	args := []any{agentName, afterTs}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.RuntimeEvent
	for rows.Next() {
		var ev domain.RuntimeEvent
		var status, message, payload sql.NullString
		if err := rows.Scan(&ev.EventID, &ev.AgentName, &status, &message, &payload, &ev.Ts); err != nil {
			return nil, err
		}
		if status.Valid {
			ev.Status = domain.RuntimeStatus(status.String)
		}
		if message.Valid {
			ev.Message = message.String
		}
		if payload.Valid {
			ev.Payload = []byte(payload.String)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
