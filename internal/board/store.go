package board

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/evanschultz/taskboard/internal/domain"
)

// ColumnView is a column with its task ids resolved to tasks, in order.
type ColumnView struct {
	Column domain.Column
	Tasks  []domain.Task
}

// Snapshot is a deep copy of the board contents.
type Snapshot struct {
	Columns []domain.Column
	Tasks   map[string]domain.Task
}

// Option configures a Store.
type Option func(*Store)

// WithListener subscribes l for the life of the store.
func WithListener(l Listener) Option {
	return func(s *Store) {
		if l != nil {
			s.Subscribe(l)
		}
	}
}

type subscription struct {
	id       int
	listener Listener
}

// Store owns the board: the ordered columns and the task map. Every mutation is
// applied whole and then reported to listeners synchronously.
//
// A Store is not safe for concurrent use.
type Store struct {
	columns   []domain.Column
	tasks     map[string]domain.Task
	subs      []subscription
	nextSubID int
}

// New builds a store from deep copies of columns and tasks.
func New(columns []domain.Column, tasks map[string]domain.Task, opts ...Option) *Store {
	s := &Store{
		columns: cloneColumns(columns),
		tasks:   cloneTasks(tasks),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Subscribe registers l and returns a func that removes it again.
func (s *Store) Subscribe(l Listener) func() {
	s.nextSubID++
	id := s.nextSubID
	s.subs = append(s.subs, subscription{id: id, listener: l})
	return func() {
		s.subs = slices.DeleteFunc(s.subs, func(sub subscription) bool { return sub.id == id })
	}
}

// MoveTask moves taskID from one column to another (or within one column) so that it
// ends up at newIndex, clamped into the target column. Listeners receive the index the
// task landed at. It reports false without notifying when either column is unknown or
// the task is not in the from column.
func (s *Store) MoveTask(taskID, fromColumnID, toColumnID string, newIndex int) bool {
	fromPos := s.ColumnIndex(fromColumnID)
	toPos := s.ColumnIndex(toColumnID)
	if fromPos < 0 || toPos < 0 {
		return false
	}
	fromIndex := s.columns[fromPos].IndexOf(taskID)
	if fromIndex < 0 {
		return false
	}

	next := slices.Clone(s.columns)
	if fromPos == toPos {
		next[fromPos].TaskIDs = Reorder(s.columns[fromPos].TaskIDs, fromIndex, newIndex)
		s.columns = next
	} else {
		src, dst := MoveBetween(s.columns[fromPos].TaskIDs, s.columns[toPos].TaskIDs, fromIndex, newIndex)
		next[fromPos].TaskIDs = src
		next[toPos].TaskIDs = dst
		s.columns = next
		if task, ok := s.tasks[taskID]; ok {
			task.Status = toColumnID
			s.tasks[taskID] = task
		}
	}

	landed := s.columns[toPos].IndexOf(taskID)
	s.each(func(l Listener) { l.TaskMoved(taskID, fromColumnID, toColumnID, landed) })
	return true
}

// CreateTask stores task and appends its id to columnID. The stored task's Status is set
// to columnID. An unknown column is a silent no-op. Reusing an existing id replaces the
// stored task and moves the id to the end of columnID.
func (s *Store) CreateTask(columnID string, task domain.Task) bool {
	pos := s.ColumnIndex(columnID)
	if pos < 0 {
		return false
	}
	task = task.Clone()
	task.Status = columnID

	next := slices.Clone(s.columns)
	for i := range next {
		if next[i].Contains(task.ID) {
			next[i].TaskIDs = slices.DeleteFunc(slices.Clone(next[i].TaskIDs), func(id string) bool { return id == task.ID })
		}
	}
	next[pos].TaskIDs = append(slices.Clone(next[pos].TaskIDs), task.ID)
	s.columns = next
	s.tasks[task.ID] = task

	notified := task.Clone()
	s.each(func(l Listener) { l.TaskCreated(columnID, notified) })
	return true
}

// UpdateTask merges the set fields of patch into the stored task. Column membership and
// the stored Status are never changed here; use MoveTask for that. A set Status is not
// merged, unlike a plain field spread, so a task's Status always names the column that
// holds it. Listeners are notified with patch as given even when taskID is unknown. It
// reports whether a task was changed.
func (s *Store) UpdateTask(taskID string, patch domain.TaskPatch) bool {
	task, ok := s.tasks[taskID]
	if ok {
		s.tasks[taskID] = patch.WithoutStatus().Apply(task)
	}
	s.each(func(l Listener) { l.TaskUpdated(taskID, patch) })
	return ok
}

// DeleteTask removes taskID from the task map and from every column holding it.
func (s *Store) DeleteTask(taskID string) bool {
	if _, ok := s.tasks[taskID]; !ok {
		return false
	}
	next := slices.Clone(s.columns)
	for i := range next {
		if next[i].Contains(taskID) {
			next[i].TaskIDs = slices.DeleteFunc(slices.Clone(next[i].TaskIDs), func(id string) bool { return id == taskID })
		}
	}
	s.columns = next
	delete(s.tasks, taskID)

	s.each(func(l Listener) { l.TaskDeleted(taskID) })
	return true
}

// Columns returns every column with its tasks resolved. Ids without a task are skipped.
func (s *Store) Columns() []ColumnView {
	out := make([]ColumnView, 0, len(s.columns))
	for _, col := range s.columns {
		view := ColumnView{Column: col.Clone(), Tasks: make([]domain.Task, 0, len(col.TaskIDs))}
		for _, id := range col.TaskIDs {
			if task, ok := s.tasks[id]; ok {
				view.Tasks = append(view.Tasks, task.Clone())
			}
		}
		out = append(out, view)
	}
	return out
}

// Task returns the stored task with the given id.
func (s *Store) Task(id string) (domain.Task, bool) {
	task, ok := s.tasks[id]
	if !ok {
		return domain.Task{}, false
	}
	return task.Clone(), true
}

// Column returns the column with the given id.
func (s *Store) Column(id string) (domain.Column, bool) {
	pos := s.ColumnIndex(id)
	if pos < 0 {
		return domain.Column{}, false
	}
	return s.columns[pos].Clone(), true
}

// ColumnIndex returns the board position of a column, or -1.
func (s *Store) ColumnIndex(id string) int {
	return slices.IndexFunc(s.columns, func(c domain.Column) bool { return c.ID == id })
}

// ColumnIDs returns column ids in board order.
func (s *Store) ColumnIDs() []string {
	ids := make([]string, 0, len(s.columns))
	for _, col := range s.columns {
		ids = append(ids, col.ID)
	}
	return ids
}

// TaskIndex returns the position of taskID inside columnID, or -1.
func (s *Store) TaskIndex(columnID, taskID string) int {
	pos := s.ColumnIndex(columnID)
	if pos < 0 {
		return -1
	}
	return s.columns[pos].IndexOf(taskID)
}

// Len returns the number of stored tasks.
func (s *Store) Len() int {
	return len(s.tasks)
}

// Snapshot returns a deep copy of the board.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		Columns: cloneColumns(s.columns),
		Tasks:   cloneTasks(s.tasks),
	}
}

// Validate checks that column sequences and the task map agree.
func (s *Store) Validate() error {
	return s.Snapshot().Validate()
}

// Validate checks the board invariants: every sequenced id resolves to a task, every
// task sits in exactly the column named by its Status, and no id is sequenced twice.
func (snap Snapshot) Validate() error {
	var errs []error
	owner := map[string]string{}
	for _, col := range snap.Columns {
		for _, id := range col.TaskIDs {
			if prev, dup := owner[id]; dup {
				errs = append(errs, fmt.Errorf("task %q listed in both %q and %q", id, prev, col.ID))
				continue
			}
			owner[id] = col.ID
			task, ok := snap.Tasks[id]
			if !ok {
				errs = append(errs, fmt.Errorf("column %q references unknown task %q", col.ID, id))
				continue
			}
			if task.Status != col.ID {
				errs = append(errs, fmt.Errorf("task %q has status %q but sits in %q", id, task.Status, col.ID))
			}
		}
	}
	for _, id := range slices.Sorted(maps.Keys(snap.Tasks)) {
		if _, ok := owner[id]; !ok {
			errs = append(errs, fmt.Errorf("task %q is not in any column", id))
		}
	}
	return errors.Join(errs...)
}

func (s *Store) each(fn func(Listener)) {
	for _, sub := range slices.Clone(s.subs) {
		fn(sub.listener)
	}
}

func cloneColumns(in []domain.Column) []domain.Column {
	out := make([]domain.Column, 0, len(in))
	for _, col := range in {
		out = append(out, col.Clone())
	}
	return out
}

func cloneTasks(in map[string]domain.Task) map[string]domain.Task {
	out := make(map[string]domain.Task, len(in))
	for id, task := range in {
		out[id] = task.Clone()
	}
	return out
}
