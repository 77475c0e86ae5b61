package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/evanschultz/taskboard/internal/app"
	"github.com/evanschultz/taskboard/internal/board"
	"github.com/evanschultz/taskboard/internal/domain"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// Repository stores the board as positioned column and task rows plus a change ledger.
type Repository struct {
	db *sql.DB
}

// Open opens (and migrates) the database at path, creating its directory.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// OpenInMemory opens a private in-memory database.
func OpenInMemory() (*Repository, error) {
	db, err := sql.Open(driverName, ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	// Every pooled connection would otherwise get its own empty database.
	db.SetMaxOpenConns(1)
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the requested operation.
func (r *Repository) Close() error {
	return r.db.Close()
}

// migrate handles migrate.
func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS board_columns (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			title TEXT NOT NULL,
			color TEXT NOT NULL DEFAULT '',
			wip_limit INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			column_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			priority TEXT NOT NULL DEFAULT '',
			assignee TEXT NOT NULL DEFAULT '',
			tags_json TEXT NOT NULL DEFAULT '[]',
			created_at TEXT NOT NULL,
			due_at TEXT,
			FOREIGN KEY(column_id) REFERENCES board_columns(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_column_position ON tasks(column_id, position);`,
		`CREATE TABLE IF NOT EXISTS change_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			operation TEXT NOT NULL,
			task_id TEXT NOT NULL,
			from_column_id TEXT NOT NULL DEFAULT '',
			to_column_id TEXT NOT NULL DEFAULT '',
			position INTEGER NOT NULL DEFAULT 0,
			fields_json TEXT NOT NULL DEFAULT '[]',
			title TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

// LoadBoard reads every column and task in position order.
func (r *Repository) LoadBoard(ctx context.Context) (board.Snapshot, error) {
	colRows, err := r.db.QueryContext(ctx, `
		SELECT id, title, color, wip_limit
		FROM board_columns
		ORDER BY position ASC, id ASC
	`)
	if err != nil {
		return board.Snapshot{}, err
	}
	defer colRows.Close()

	snap := board.Snapshot{Tasks: map[string]domain.Task{}}
	index := map[string]int{}
	for colRows.Next() {
		col := domain.Column{TaskIDs: []string{}}
		if err := colRows.Scan(&col.ID, &col.Title, &col.Color, &col.WIPLimit); err != nil {
			return board.Snapshot{}, err
		}
		index[col.ID] = len(snap.Columns)
		snap.Columns = append(snap.Columns, col)
	}
	if err := colRows.Err(); err != nil {
		return board.Snapshot{}, err
	}
	if len(snap.Columns) == 0 {
		return board.Snapshot{}, app.ErrNotFound
	}

	taskRows, err := r.db.QueryContext(ctx, `
		SELECT id, column_id, title, description, priority, assignee, tags_json, created_at, due_at
		FROM tasks
		ORDER BY column_id ASC, position ASC, id ASC
	`)
	if err != nil {
		return board.Snapshot{}, err
	}
	defer taskRows.Close()
	for taskRows.Next() {
		task, err := scanTask(taskRows)
		if err != nil {
			return board.Snapshot{}, err
		}
		pos, ok := index[task.Status]
		if !ok {
			continue
		}
		snap.Columns[pos].TaskIDs = append(snap.Columns[pos].TaskIDs, task.ID)
		snap.Tasks[task.ID] = task
	}
	return snap, taskRows.Err()
}

// SaveBoard replaces the stored board with snap in one transaction.
func (r *Repository) SaveBoard(ctx context.Context, snap board.Snapshot) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM board_columns`); err != nil {
		return fmt.Errorf("clear columns: %w", err)
	}
	for pos, col := range snap.Columns {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO board_columns(id, position, title, color, wip_limit)
			VALUES (?, ?, ?, ?, ?)
		`, col.ID, pos, col.Title, col.Color, col.WIPLimit); err != nil {
			return fmt.Errorf("insert column %q: %w", col.ID, err)
		}
		for taskPos, id := range col.TaskIDs {
			task, ok := snap.Tasks[id]
			if !ok {
				continue
			}
			if err = insertTask(ctx, tx, col.ID, taskPos, task); err != nil {
				return err
			}
		}
	}
	err = tx.Commit()
	return err
}

// RecordChange appends one ledger entry.
func (r *Repository) RecordChange(ctx context.Context, event app.ChangeEvent) error {
	fields := event.Fields
	if fields == nil {
		fields = []string{}
	}
	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode change event fields: %w", err)
	}
	occurred := event.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now()
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO change_events(operation, task_id, from_column_id, to_column_id, position, fields_json, title, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		string(event.Operation),
		event.TaskID,
		event.FromColumnID,
		event.ToColumnID,
		event.Index,
		string(fieldsJSON),
		event.Title,
		ts(occurred),
	)
	if err != nil {
		return fmt.Errorf("insert change event: %w", err)
	}
	return nil
}

// ListChanges returns the most recent ledger entries, newest first.
func (r *Repository) ListChanges(ctx context.Context, limit int) ([]app.ChangeEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, operation, task_id, from_column_id, to_column_id, position, fields_json, title, created_at
		FROM change_events
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]app.ChangeEvent, 0)
	for rows.Next() {
		var (
			event      app.ChangeEvent
			opRaw      string
			fieldsRaw  string
			createdRaw string
		)
		if err := rows.Scan(&event.ID, &opRaw, &event.TaskID, &event.FromColumnID, &event.ToColumnID, &event.Index, &fieldsRaw, &event.Title, &createdRaw); err != nil {
			return nil, err
		}
		if event.Operation, err = app.ParseChangeOperation(opRaw); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(fieldsRaw), &event.Fields); err != nil {
			return nil, fmt.Errorf("decode change_events.fields_json: %w", err)
		}
		event.OccurredAt = parseTS(createdRaw)
		out = append(out, event)
	}
	return out, rows.Err()
}

// execerContext represents a write-only DB contract used by DB and Tx implementations.
type execerContext interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
}

func insertTask(ctx context.Context, execer execerContext, columnID string, position int, t domain.Task) error {
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	_, err = execer.ExecContext(ctx, `
		INSERT INTO tasks(id, column_id, position, title, description, priority, assignee, tags_json, created_at, due_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		t.ID,
		columnID,
		position,
		t.Title,
		t.Description,
		string(t.Priority),
		t.Assignee,
		string(tagsJSON),
		ts(t.CreatedAt),
		nullableTS(t.DueAt),
	)
	if err != nil {
		return fmt.Errorf("insert task %q: %w", t.ID, err)
	}
	return nil
}

// scanner represents scanner data used by this package.
type scanner interface {
	Scan(dest ...any) error
}

// scanTask maps one tasks row; Status is taken from column_id.
func scanTask(s scanner) (domain.Task, error) {
	var (
		t          domain.Task
		priority   string
		tagsRaw    string
		createdRaw string
		dueRaw     sql.NullString
	)
	if err := s.Scan(
		&t.ID,
		&t.Status,
		&t.Title,
		&t.Description,
		&priority,
		&t.Assignee,
		&tagsRaw,
		&createdRaw,
		&dueRaw,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Task{}, app.ErrNotFound
		}
		return domain.Task{}, err
	}
	p, err := domain.ParsePriority(priority)
	if err != nil {
		return domain.Task{}, fmt.Errorf("decode task %q priority: %w", t.ID, err)
	}
	t.Priority = p
	if strings.TrimSpace(tagsRaw) == "" {
		tagsRaw = "[]"
	}
	if err := json.Unmarshal([]byte(tagsRaw), &t.Tags); err != nil {
		return domain.Task{}, fmt.Errorf("decode tags_json: %w", err)
	}
	if len(t.Tags) == 0 {
		t.Tags = nil
	}
	t.CreatedAt = parseTS(createdRaw)
	t.DueAt = parseNullTS(dueRaw)
	return t, nil
}

// ts handles ts.
func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// nullableTS handles nullable ts.
func nullableTS(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTS parses input into a normalized form.
func parseTS(v string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}

// parseNullTS parses input into a normalized form.
func parseNullTS(v sql.NullString) *time.Time {
	if !v.Valid || strings.TrimSpace(v.String) == "" {
		return nil
	}
	ts := parseTS(v.String)
	return &ts
}
