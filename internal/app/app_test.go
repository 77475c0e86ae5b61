package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/evanschultz/taskboard/internal/board"
	"github.com/evanschultz/taskboard/internal/domain"
)

var testNow = time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)

func defaultColumns() []domain.Column {
	return []domain.Column{
		{ID: "todo", Title: "To Do"},
		{ID: "done", Title: "Done", TaskIDs: []string{"stale"}},
	}
}

func TestLoadInitialBoardPrefersDatabase(t *testing.T) {
	repo := newFakeRepo()
	stored := board.Snapshot{Columns: []domain.Column{{ID: "x", Title: "X"}}, Tasks: map[string]domain.Task{}}
	repo.saved = &stored
	snap, source, err := LoadInitialBoard(context.Background(), BootstrapInput{Repo: repo, DefaultColumns: defaultColumns()})
	if err != nil || source != SourceDatabase || snap.Columns[0].ID != "x" {
		t.Fatalf("LoadInitialBoard() = %v, %q, %v", snap.Columns, source, err)
	}
}

func TestLoadInitialBoardFallsBackToSeedThenDefaults(t *testing.T) {
	dir := t.TempDir()
	seedPath := filepath.Join(dir, "board.yaml")
	content := "columns:\n  - id: a\n    title: A\n    tasks:\n      - {id: t1, title: One}\n"
	if err := os.WriteFile(seedPath, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	snap, source, err := LoadInitialBoard(context.Background(), BootstrapInput{Repo: newFakeRepo(), SeedPath: seedPath, Now: testNow})
	if err != nil || source != SourceSeed {
		t.Fatalf("seed load = %q, %v", source, err)
	}
	if snap.Tasks["t1"].Status != "a" {
		t.Fatalf("unexpected seeded task %#v", snap.Tasks["t1"])
	}

	snap, source, err = LoadInitialBoard(context.Background(), BootstrapInput{
		SeedPath:       filepath.Join(dir, "missing.yaml"),
		DefaultColumns: defaultColumns(),
	})
	if err != nil || source != SourceDefaults {
		t.Fatalf("defaults load = %q, %v", source, err)
	}
	if len(snap.Columns) != 2 || len(snap.Columns[1].TaskIDs) != 0 {
		t.Fatalf("expected empty default columns, got %#v", snap.Columns)
	}
	if err := snap.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestLoadInitialBoardErrors(t *testing.T) {
	repo := newFakeRepo()
	repo.loadErr = errors.New("disk on fire")
	if _, _, err := LoadInitialBoard(context.Background(), BootstrapInput{Repo: repo}); err == nil || !strings.Contains(err.Error(), "disk on fire") {
		t.Fatalf("expected wrapped repo error, got %v", err)
	}
	if _, _, err := LoadInitialBoard(context.Background(), BootstrapInput{}); !errors.Is(err, ErrEmptyBoard) {
		t.Fatalf("expected ErrEmptyBoard, got %v", err)
	}
}

// TestPersisterWritesOnEveryNotification verifies behavior for the covered scenario.
func TestPersisterWritesOnEveryNotification(t *testing.T) {
	repo := newFakeRepo()
	var store *board.Store
	persister := NewPersister(repo, func() board.Snapshot { return store.Snapshot() }, PersisterConfig{
		Timeout: time.Second,
		Clock:   func() time.Time { return testNow },
	})
	store = board.New(
		[]domain.Column{{ID: "todo", TaskIDs: []string{"t1"}}, {ID: "done"}},
		map[string]domain.Task{"t1": {ID: "t1", Title: "one", Status: "todo"}},
		board.WithListener(persister),
	)

	store.MoveTask("t1", "todo", "done", 0)
	store.CreateTask("todo", domain.Task{ID: "t2", Title: "two"})
	store.UpdateTask("t2", domain.TaskPatch{Title: domain.Some("2")})
	store.DeleteTask("t1")

	if repo.saves != 4 || len(repo.changes) != 4 {
		t.Fatalf("expected 4 writes, got saves=%d changes=%d", repo.saves, len(repo.changes))
	}
	ops := []ChangeOperation{}
	for _, c := range repo.changes {
		ops = append(ops, c.Operation)
	}
	if !slices.Equal(ops, []ChangeOperation{ChangeOperationMove, ChangeOperationCreate, ChangeOperationUpdate, ChangeOperationDelete}) {
		t.Fatalf("unexpected ops %v", ops)
	}
	if !slices.Equal(repo.changes[2].Fields, []string{"title"}) || !repo.changes[0].OccurredAt.Equal(testNow) {
		t.Fatalf("unexpected change details %#v", repo.changes)
	}
	if _, ok := repo.saved.Tasks["t1"]; ok {
		t.Fatal("expected last saved board to reflect the delete")
	}
	if _, ok := repo.lastCtx.Deadline(); !ok {
		t.Fatal("expected a deadline on the write context")
	}
}

func TestPersisterReportsFailuresWithoutRollback(t *testing.T) {
	repo := newFakeRepo()
	repo.saveErr = errors.New("read-only")
	var reported []error
	var store *board.Store
	persister := NewPersister(repo, func() board.Snapshot { return store.Snapshot() }, PersisterConfig{
		OnError: func(err error) { reported = append(reported, err) },
	})
	store = board.New([]domain.Column{{ID: "todo"}}, nil, board.WithListener(persister))

	store.CreateTask("todo", domain.Task{ID: "t1", Title: "one"})
	if len(reported) != 1 || !strings.Contains(persister.LastError().Error(), "read-only") {
		t.Fatalf("expected reported failure, got %v", reported)
	}
	if _, ok := store.Task("t1"); !ok {
		t.Fatal("in-memory board must keep the task")
	}
	repo.saveErr = nil
	store.DeleteTask("t1")
	if persister.LastError() != nil {
		t.Fatalf("expected error cleared, got %v", persister.LastError())
	}
}

// recordingLogger captures log lines.
type recordingLogger struct {
	lines []string
}

func (r *recordingLogger) Debug(msg string, _ ...any) { r.lines = append(r.lines, "debug "+msg) }
func (r *recordingLogger) Info(msg string, _ ...any)  { r.lines = append(r.lines, "info "+msg) }
func (r *recordingLogger) Warn(msg string, _ ...any)  { r.lines = append(r.lines, "warn "+msg) }
func (r *recordingLogger) Error(msg string, _ ...any) { r.lines = append(r.lines, "error "+msg) }

func TestLogListener(t *testing.T) {
	logger := &recordingLogger{}
	store := board.New([]domain.Column{{ID: "todo"}, {ID: "done"}}, nil, board.WithListener(NewLogListener(logger)))
	store.CreateTask("todo", domain.Task{ID: "t1", Title: "one"})
	store.MoveTask("t1", "todo", "done", 0)
	store.UpdateTask("t1", domain.TaskPatch{Title: domain.Some("x")})
	store.DeleteTask("t1")
	want := []string{"info task created", "info task moved", "debug task updated", "info task deleted"}
	if !slices.Equal(logger.lines, want) {
		t.Fatalf("unexpected log lines %v", logger.lines)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	due := testNow.Add(24 * time.Hour)
	b := board.Snapshot{
		Columns: []domain.Column{
			{ID: "todo", Title: "To Do", TaskIDs: []string{"t2", "t1"}},
			{ID: "done", Title: "Done", WIPLimit: 3, TaskIDs: []string{}},
		},
		Tasks: map[string]domain.Task{
			"t1": {ID: "t1", Title: "one", Status: "todo", Tags: []string{"a"}, DueAt: &due, CreatedAt: testNow},
			"t2": {ID: "t2", Title: "two", Status: "todo", Priority: domain.PriorityUrgent, CreatedAt: testNow},
		},
	}
	snap := NewSnapshot(b, testNow)
	if snap.Version != SnapshotVersion || len(snap.Tasks) != 2 || snap.Tasks[0].ID != "t2" {
		t.Fatalf("unexpected snapshot %#v", snap)
	}
	back, err := snap.ToBoard()
	if err != nil {
		t.Fatalf("ToBoard() error = %v", err)
	}
	if !slices.Equal(back.Columns[0].TaskIDs, []string{"t2", "t1"}) || back.Columns[1].WIPLimit != 3 {
		t.Fatalf("unexpected rebuilt columns %#v", back.Columns)
	}
	if back.Tasks["t2"].Priority != domain.PriorityUrgent || back.Tasks["t1"].DueAt == nil {
		t.Fatalf("unexpected rebuilt tasks %#v", back.Tasks)
	}
	if err := back.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestSnapshotValidateRejects(t *testing.T) {
	base := func() Snapshot {
		return Snapshot{
			Version: SnapshotVersion,
			Columns: []SnapshotColumn{{ID: "todo", Title: "To Do"}},
			Tasks:   []SnapshotTask{{ID: "t1", ColumnID: "todo", Title: "one"}},
		}
	}
	mutations := map[string]func(*Snapshot){
		"version":        func(s *Snapshot) { s.Version = "v0" },
		"no columns":     func(s *Snapshot) { s.Columns = nil },
		"dup column":     func(s *Snapshot) { s.Columns = append(s.Columns, s.Columns[0]) },
		"unknown column": func(s *Snapshot) { s.Tasks[0].ColumnID = "zzz" },
		"dup task":       func(s *Snapshot) { s.Tasks = append(s.Tasks, s.Tasks[0]) },
		"bad priority":   func(s *Snapshot) { s.Tasks[0].Priority = "p0" },
		"blank title":    func(s *Snapshot) { s.Tasks[0].Title = " " },
	}
	for name, mutate := range mutations {
		snap := base()
		mutate(&snap)
		if err := snap.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestChangeEventSummary(t *testing.T) {
	cases := map[string]ChangeEvent{
		"moved t1 from todo to done at #1": {Operation: ChangeOperationMove, TaskID: "t1", FromColumnID: "todo", ToColumnID: "done"},
		"moved t1 within todo to #3":       {Operation: ChangeOperationMove, TaskID: "t1", FromColumnID: "todo", ToColumnID: "todo", Index: 2},
		`created t2 "Two" in todo`:         {Operation: ChangeOperationCreate, TaskID: "t2", Title: "Two", ToColumnID: "todo"},
		"updated t2 (title, tags)":         {Operation: ChangeOperationUpdate, TaskID: "t2", Fields: []string{"title", "tags"}},
		"deleted t3":                       {Operation: ChangeOperationDelete, TaskID: "t3"},
	}
	for want, event := range cases {
		if got := event.Summary(); got != want {
			t.Fatalf("Summary() = %q, want %q", got, want)
		}
	}
	if _, err := ParseChangeOperation("archive"); !errors.Is(err, ErrUnsupportedOp) {
		t.Fatalf("expected ErrUnsupportedOp, got %v", err)
	}
}
