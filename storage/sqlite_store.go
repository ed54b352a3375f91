package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chhz0/tasktrack/types"
	"github.com/google/uuid"
	_ "modernc.org/sqlite" // 纯Go SQLite驱动
)

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLiteJournal(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite journal: %w", err)
	}

	// 创建表结构
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS events (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			kind TEXT NOT NULL,
			task_id INTEGER NOT NULL,
			description TEXT NOT NULL,
			priority INTEGER NOT NULL,
			tags TEXT NOT NULL,
			at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_kind ON events(kind)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create events table: %w", err)
		}
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) Append(ctx context.Context, ev *types.Event) error {
	if ev == nil {
		return ErrNilEvent
	}
	tags, err := json.Marshal(ev.Task.Tags)
	if err != nil {
		return err
	}

	_, err = j.db.ExecContext(ctx,
		`INSERT INTO events
		(id, kind, task_id, description, priority, tags, at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.ID.String(), string(ev.Kind), ev.Task.ID, ev.Task.Description,
		int64(ev.Task.Priority), string(tags), ev.At.UnixNano(),
	)
	return err
}

func (j *SQLiteJournal) Events(ctx context.Context, limit int) ([]*types.Event, error) {
	if limit <= 0 {
		limit = -1 // sqlite: no limit
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, kind, task_id, description, priority, tags, at
		FROM events
		ORDER BY seq ASC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*types.Event
	for rows.Next() {
		var (
			ev       types.Event
			id, kind string
			tags     string
			priority int64
			at       int64
		)
		err := rows.Scan(&id, &kind, &ev.Task.ID, &ev.Task.Description, &priority, &tags, &at)
		if err != nil {
			return nil, err
		}
		if ev.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse event id %q: %w", id, err)
		}
		if err := json.Unmarshal([]byte(tags), &ev.Task.Tags); err != nil {
			return nil, fmt.Errorf("decode tags for event %s: %w", id, err)
		}
		ev.Kind = types.EventKind(kind)
		ev.Task.Priority = uint32(priority)
		ev.At = time.Unix(0, at).UTC()
		events = append(events, &ev)
	}
	return events, rows.Err()
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
