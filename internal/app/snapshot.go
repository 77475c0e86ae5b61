package app

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/evanschultz/taskboard/internal/board"
	"github.com/evanschultz/taskboard/internal/domain"
)

// SnapshotVersion defines a package constant value.
const SnapshotVersion = "taskboard.snapshot.v1"

// Snapshot is the portable JSON form of a board.
type Snapshot struct {
	Version    string           `json:"version"`
	ExportedAt time.Time        `json:"exported_at"`
	Columns    []SnapshotColumn `json:"columns"`
	Tasks      []SnapshotTask   `json:"tasks"`
}

// SnapshotColumn represents snapshot column data used by this package.
type SnapshotColumn struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Color    string `json:"color,omitempty"`
	WIPLimit int    `json:"wip_limit"`
	Position int    `json:"position"`
}

// SnapshotTask represents snapshot task data used by this package.
type SnapshotTask struct {
	ID          string          `json:"id"`
	ColumnID    string          `json:"column_id"`
	Position    int             `json:"position"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Priority    domain.Priority `json:"priority,omitempty"`
	Assignee    string          `json:"assignee,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	DueAt       *time.Time      `json:"due_at,omitempty"`
}

// NewSnapshot flattens a board into positioned rows.
func NewSnapshot(b board.Snapshot, exportedAt time.Time) Snapshot {
	snap := Snapshot{
		Version:    SnapshotVersion,
		ExportedAt: exportedAt.UTC(),
		Columns:    make([]SnapshotColumn, 0, len(b.Columns)),
		Tasks:      make([]SnapshotTask, 0, len(b.Tasks)),
	}
	for pos, col := range b.Columns {
		snap.Columns = append(snap.Columns, SnapshotColumn{
			ID:       col.ID,
			Title:    col.Title,
			Color:    col.Color,
			WIPLimit: col.WIPLimit,
			Position: pos,
		})
		for taskPos, id := range col.TaskIDs {
			task, ok := b.Tasks[id]
			if !ok {
				continue
			}
			snap.Tasks = append(snap.Tasks, snapshotTaskFromDomain(task, col.ID, taskPos))
		}
	}
	return snap
}

// Validate validates the requested operation.
func (s *Snapshot) Validate() error {
	if s.Version != "" && s.Version != SnapshotVersion {
		return fmt.Errorf("%w: %q", ErrSnapshotVersion, s.Version)
	}
	if len(s.Columns) == 0 {
		return ErrEmptyBoard
	}

	columnIDs := map[string]struct{}{}
	for i, c := range s.Columns {
		if strings.TrimSpace(c.ID) == "" {
			return fmt.Errorf("columns[%d].id is required", i)
		}
		if strings.TrimSpace(c.Title) == "" {
			return fmt.Errorf("columns[%d].title is required", i)
		}
		if c.Position < 0 {
			return fmt.Errorf("columns[%d].position must be >= 0", i)
		}
		if c.WIPLimit < 0 {
			return fmt.Errorf("columns[%d].wip_limit must be >= 0", i)
		}
		if _, exists := columnIDs[c.ID]; exists {
			return fmt.Errorf("duplicate column id: %q", c.ID)
		}
		columnIDs[c.ID] = struct{}{}
	}

	taskIDs := map[string]struct{}{}
	for i, t := range s.Tasks {
		if strings.TrimSpace(t.ID) == "" {
			return fmt.Errorf("tasks[%d].id is required", i)
		}
		if strings.TrimSpace(t.Title) == "" {
			return fmt.Errorf("tasks[%d].title is required", i)
		}
		if !t.Priority.Valid() {
			return fmt.Errorf("tasks[%d].priority is invalid: %q", i, t.Priority)
		}
		if t.Position < 0 {
			return fmt.Errorf("tasks[%d].position must be >= 0", i)
		}
		if _, ok := columnIDs[t.ColumnID]; !ok {
			return fmt.Errorf("tasks[%d] references unknown column_id %q", i, t.ColumnID)
		}
		if _, exists := taskIDs[t.ID]; exists {
			return fmt.Errorf("duplicate task id: %q", t.ID)
		}
		taskIDs[t.ID] = struct{}{}
	}
	return nil
}

// ToBoard validates the snapshot and rebuilds the board it describes.
func (s Snapshot) ToBoard() (board.Snapshot, error) {
	if err := s.Validate(); err != nil {
		return board.Snapshot{}, err
	}
	s.sort()

	out := board.Snapshot{Tasks: make(map[string]domain.Task, len(s.Tasks))}
	index := map[string]int{}
	for _, c := range s.Columns {
		index[c.ID] = len(out.Columns)
		out.Columns = append(out.Columns, domain.Column{
			ID:       c.ID,
			Title:    c.Title,
			Color:    c.Color,
			WIPLimit: c.WIPLimit,
			TaskIDs:  []string{},
		})
	}
	for _, t := range s.Tasks {
		task := t.toDomain()
		pos := index[t.ColumnID]
		out.Columns[pos].TaskIDs = append(out.Columns[pos].TaskIDs, task.ID)
		out.Tasks[task.ID] = task
	}
	return out, nil
}

func (s *Snapshot) sort() {
	s.Columns = append([]SnapshotColumn(nil), s.Columns...)
	s.Tasks = append([]SnapshotTask(nil), s.Tasks...)
	sort.SliceStable(s.Columns, func(i, j int) bool {
		return s.Columns[i].Position < s.Columns[j].Position
	})
	sort.SliceStable(s.Tasks, func(i, j int) bool {
		a := s.Tasks[i]
		b := s.Tasks[j]
		if a.ColumnID == b.ColumnID {
			if a.Position == b.Position {
				return a.ID < b.ID
			}
			return a.Position < b.Position
		}
		return a.ColumnID < b.ColumnID
	})
}

// snapshotTaskFromDomain handles snapshot task from domain.
func snapshotTaskFromDomain(t domain.Task, columnID string, position int) SnapshotTask {
	return SnapshotTask{
		ID:          t.ID,
		ColumnID:    columnID,
		Position:    position,
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		Assignee:    t.Assignee,
		Tags:        append([]string(nil), t.Tags...),
		CreatedAt:   t.CreatedAt.UTC(),
		DueAt:       copyTimePtr(t.DueAt),
	}
}

func (t SnapshotTask) toDomain() domain.Task {
	return domain.Task{
		ID:          strings.TrimSpace(t.ID),
		Title:       strings.TrimSpace(t.Title),
		Description: t.Description,
		Status:      t.ColumnID,
		Priority:    t.Priority,
		Assignee:    t.Assignee,
		Tags:        domain.NormalizeTags(t.Tags),
		CreatedAt:   t.CreatedAt.UTC(),
		DueAt:       copyTimePtr(t.DueAt),
	}
}

// copyTimePtr handles copy time ptr.
func copyTimePtr(in *time.Time) *time.Time {
	if in == nil {
		return nil
	}
	out := in.UTC()
	return &out
}
