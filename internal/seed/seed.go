// Package seed reads and writes YAML board files used to populate an empty board.
package seed

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/evanschultz/taskboard/internal/board"
	"github.com/evanschultz/taskboard/internal/domain"
)

// ErrInvalidSeed wraps every validation failure in a seed file.
var ErrInvalidSeed = errors.New("invalid seed")

const dateLayout = "2006-01-02"

// File is the YAML document shape.
type File struct {
	Columns []Column `yaml:"columns"`
}

// Column is one seeded column with its tasks in display order.
type Column struct {
	ID       string `yaml:"id"`
	Title    string `yaml:"title"`
	Color    string `yaml:"color,omitempty"`
	WIPLimit int    `yaml:"wip_limit,omitempty"`
	Tasks    []Task `yaml:"tasks,omitempty"`
}

// Task is one seeded card. Due and Created accept YYYY-MM-DD or RFC 3339.
type Task struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description,omitempty"`
	Priority    string   `yaml:"priority,omitempty"`
	Assignee    string   `yaml:"assignee,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
	Due         string   `yaml:"due,omitempty"`
	Created     string   `yaml:"created,omitempty"`
}

// Load reads a seed file. ok is false when the file does not exist.
func Load(path string, now time.Time) (board.Snapshot, bool, error) {
	if strings.TrimSpace(path) == "" {
		return board.Snapshot{}, false, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return board.Snapshot{}, false, nil
		}
		return board.Snapshot{}, false, fmt.Errorf("read seed: %w", err)
	}
	snap, err := Parse(content, now)
	if err != nil {
		return board.Snapshot{}, false, fmt.Errorf("seed %q: %w", path, err)
	}
	return snap, true, nil
}

// Parse decodes and validates a YAML seed document. Tasks without a created time
// are stamped with now.
func Parse(content []byte, now time.Time) (board.Snapshot, error) {
	var file File
	if err := yaml.Unmarshal(content, &file); err != nil {
		return board.Snapshot{}, fmt.Errorf("decode yaml: %w", err)
	}
	if len(file.Columns) == 0 {
		return board.Snapshot{}, fmt.Errorf("%w: at least one column is required", ErrInvalidSeed)
	}

	snap := board.Snapshot{Tasks: map[string]domain.Task{}}
	seenColumns := map[string]struct{}{}
	for ci, sc := range file.Columns {
		col, err := domain.NewColumn(sc.ID, sc.Title, sc.Color, sc.WIPLimit)
		if err != nil {
			return board.Snapshot{}, fmt.Errorf("%w: columns[%d]: %w", ErrInvalidSeed, ci, err)
		}
		if _, dup := seenColumns[col.ID]; dup {
			return board.Snapshot{}, fmt.Errorf("%w: duplicate column id %q", ErrInvalidSeed, col.ID)
		}
		seenColumns[col.ID] = struct{}{}

		for ti, st := range sc.Tasks {
			task, err := st.toDomain(col.ID, now)
			if err != nil {
				return board.Snapshot{}, fmt.Errorf("%w: columns[%d].tasks[%d]: %w", ErrInvalidSeed, ci, ti, err)
			}
			if _, dup := snap.Tasks[task.ID]; dup {
				return board.Snapshot{}, fmt.Errorf("%w: duplicate task id %q", ErrInvalidSeed, task.ID)
			}
			snap.Tasks[task.ID] = task
			col.TaskIDs = append(col.TaskIDs, task.ID)
		}
		snap.Columns = append(snap.Columns, col)
	}
	return snap, nil
}

func (st Task) toDomain(columnID string, now time.Time) (domain.Task, error) {
	priority, err := domain.ParsePriority(st.Priority)
	if err != nil {
		return domain.Task{}, err
	}
	due, err := parseTime(st.Due)
	if err != nil {
		return domain.Task{}, fmt.Errorf("due: %w", err)
	}
	created, err := parseTime(st.Created)
	if err != nil {
		return domain.Task{}, fmt.Errorf("created: %w", err)
	}
	if created != nil {
		now = *created
	}
	return domain.NewTask(domain.TaskInput{
		ID:          st.ID,
		Title:       st.Title,
		Description: st.Description,
		Status:      columnID,
		Priority:    priority,
		Assignee:    st.Assignee,
		Tags:        st.Tags,
		DueAt:       due,
	}, now)
}

func parseTime(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if ts, err := time.Parse(dateLayout, raw); err == nil {
		return &ts, nil
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("unsupported time %q", raw)
	}
	return &ts, nil
}

// Marshal encodes a board as a seed document, keeping column and task order.
func Marshal(snap board.Snapshot) ([]byte, error) {
	file := File{Columns: make([]Column, 0, len(snap.Columns))}
	for _, col := range snap.Columns {
		sc := Column{ID: col.ID, Title: col.Title, Color: col.Color, WIPLimit: col.WIPLimit}
		for _, id := range col.TaskIDs {
			task, ok := snap.Tasks[id]
			if !ok {
				continue
			}
			st := Task{
				ID:          task.ID,
				Title:       task.Title,
				Description: task.Description,
				Priority:    string(task.Priority),
				Assignee:    task.Assignee,
				Tags:        task.Tags,
			}
			if task.DueAt != nil {
				st.Due = task.DueAt.Format(time.RFC3339)
			}
			if !task.CreatedAt.IsZero() {
				st.Created = task.CreatedAt.UTC().Format(time.RFC3339)
			}
			sc.Tasks = append(sc.Tasks, st)
		}
		file.Columns = append(file.Columns, sc)
	}
	out, err := yaml.Marshal(file)
	if err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	return out, nil
}
