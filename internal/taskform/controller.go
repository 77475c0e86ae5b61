// Package taskform holds the editable draft behind the create/edit task form.
package taskform

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/evanschultz/taskboard/internal/domain"
)

// DueDateLayout is the accepted due-date input format.
const DueDateLayout = "2006-01-02"

// ErrInvalidDueDate reports an unparseable due-date input.
var ErrInvalidDueDate = errors.New("invalid due date")

// Board is the subset of the board store the form commits through.
type Board interface {
	CreateTask(columnID string, task domain.Task) bool
	UpdateTask(taskID string, patch domain.TaskPatch) bool
	MoveTask(taskID, fromColumnID, toColumnID string, newIndex int) bool
	DeleteTask(taskID string) bool
	Task(id string) (domain.Task, bool)
	Column(id string) (domain.Column, bool)
}

// IDGenerator returns unique identifiers for new tasks.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// Mode describes what the form is doing.
type Mode int

// Form modes.
const (
	ModeClosed Mode = iota
	ModeCreate
	ModeEdit
)

// Draft is the editable copy of a task's fields.
type Draft struct {
	TaskID      string
	Title       string
	Description string
	Priority    domain.Priority
	ColumnID    string
	Assignee    string
	Tags        []string
	DueAt       *time.Time
}

// Controller owns one draft at a time. Nothing reaches the board until Save or
// ConfirmDelete. An edit keeps the draft it opened with so Save patches only the fields
// that differ from it.
type Controller struct {
	board      Board
	idGen      IDGenerator
	clock      Clock
	mode       Mode
	draft      Draft
	opened     Draft
	confirming bool
}

// New constructs a form controller.
func New(board Board, idGen IDGenerator, clock Clock) *Controller {
	if clock == nil {
		clock = time.Now
	}
	if idGen == nil {
		idGen = func() string { return fmt.Sprintf("task-%d", clock().UnixNano()) }
	}
	return &Controller{board: board, idGen: idGen, clock: clock}
}

// OpenNew starts a create draft for columnID. It reports false for an unknown column.
func (c *Controller) OpenNew(columnID string) bool {
	if _, ok := c.board.Column(columnID); !ok {
		return false
	}
	c.mode = ModeCreate
	c.confirming = false
	c.draft = Draft{Priority: domain.PriorityMedium, ColumnID: columnID}
	c.opened = Draft{}
	return true
}

// OpenEdit starts an edit draft seeded from the stored task.
func (c *Controller) OpenEdit(taskID string) bool {
	task, ok := c.board.Task(taskID)
	if !ok {
		return false
	}
	priority := task.Priority
	if priority == domain.PriorityNone {
		priority = domain.PriorityMedium
	}
	c.mode = ModeEdit
	c.confirming = false
	c.draft = Draft{
		TaskID:      task.ID,
		Title:       task.Title,
		Description: task.Description,
		Priority:    priority,
		ColumnID:    task.Status,
		Assignee:    task.Assignee,
		Tags:        slices.Clone(task.Tags),
		DueAt:       task.DueAt,
	}
	c.opened = c.Draft()
	return true
}

// Cancel discards the draft.
func (c *Controller) Cancel() {
	c.mode = ModeClosed
	c.confirming = false
	c.draft = Draft{}
	c.opened = Draft{}
}

// Mode returns the current form mode.
func (c *Controller) Mode() Mode { return c.mode }

// IsOpen reports whether a draft is being edited.
func (c *Controller) IsOpen() bool { return c.mode != ModeClosed }

// ConfirmingDelete reports whether a delete is awaiting confirmation.
func (c *Controller) ConfirmingDelete() bool { return c.confirming }

// Draft returns a copy of the current draft.
func (c *Controller) Draft() Draft {
	out := c.draft
	out.Tags = slices.Clone(c.draft.Tags)
	return out
}

// SetTitle replaces the draft title.
func (c *Controller) SetTitle(title string) { c.draft.Title = title }

// SetDescription replaces the draft description.
func (c *Controller) SetDescription(description string) { c.draft.Description = description }

// SetAssignee replaces the draft assignee.
func (c *Controller) SetAssignee(assignee string) { c.draft.Assignee = assignee }

// SetDueAt replaces the draft due date; nil clears it.
func (c *Controller) SetDueAt(due *time.Time) { c.draft.DueAt = due }

// SetPriority sets the draft priority; unknown values are ignored.
func (c *Controller) SetPriority(p domain.Priority) bool {
	if !p.Valid() {
		return false
	}
	c.draft.Priority = p
	return true
}

// CyclePriority steps the draft priority by delta.
func (c *Controller) CyclePriority(delta int) {
	c.draft.Priority = c.draft.Priority.Cycle(delta)
}

// SetColumn retargets the draft to columnID when it exists.
func (c *Controller) SetColumn(columnID string) bool {
	if _, ok := c.board.Column(columnID); !ok {
		return false
	}
	c.draft.ColumnID = columnID
	return true
}

// CycleColumn moves the draft column by delta through columnIDs, wrapping.
func (c *Controller) CycleColumn(columnIDs []string, delta int) {
	if len(columnIDs) == 0 {
		return
	}
	idx := slices.Index(columnIDs, c.draft.ColumnID)
	if idx < 0 {
		idx = 0
	} else {
		n := len(columnIDs)
		idx = ((idx+delta)%n + n) % n
	}
	c.SetColumn(columnIDs[idx])
}

// SetDueDate parses a YYYY-MM-DD date in the local zone. Blank input clears the date.
func (c *Controller) SetDueDate(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		c.draft.DueAt = nil
		return nil
	}
	due, err := time.ParseInLocation(DueDateLayout, raw, c.clock().Location())
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDueDate, raw)
	}
	c.draft.DueAt = &due
	return nil
}

// AddTag appends a trimmed tag. Empty and duplicate tags are rejected.
func (c *Controller) AddTag(tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" || slices.Contains(c.draft.Tags, tag) {
		return false
	}
	c.draft.Tags = append(c.draft.Tags, tag)
	return true
}

// RemoveTag drops tag from the draft.
func (c *Controller) RemoveTag(tag string) bool {
	before := len(c.draft.Tags)
	c.draft.Tags = slices.DeleteFunc(c.draft.Tags, func(t string) bool { return t == tag })
	return len(c.draft.Tags) != before
}

// CanSave reports whether the draft has a non-blank title.
func (c *Controller) CanSave() bool {
	return c.IsOpen() && strings.TrimSpace(c.draft.Title) != ""
}

// Save commits the draft and closes the form. It returns the saved task id, or false
// when nothing was committed.
func (c *Controller) Save() (string, bool) {
	if !c.CanSave() || c.confirming {
		return "", false
	}
	var (
		id string
		ok bool
	)
	switch c.mode {
	case ModeCreate:
		id, ok = c.create()
	case ModeEdit:
		id, ok = c.update()
	}
	if ok {
		c.Cancel()
	}
	return id, ok
}

func (c *Controller) create() (string, bool) {
	task, err := domain.NewTask(domain.TaskInput{
		ID:          c.idGen(),
		Title:       c.draft.Title,
		Description: c.draft.Description,
		Status:      c.draft.ColumnID,
		Priority:    c.draft.Priority,
		Assignee:    c.draft.Assignee,
		Tags:        c.draft.Tags,
		DueAt:       c.draft.DueAt,
	}, c.clock())
	if err != nil {
		return "", false
	}
	if !c.board.CreateTask(c.draft.ColumnID, task) {
		return "", false
	}
	return task.ID, true
}

func (c *Controller) update() (string, bool) {
	current, ok := c.board.Task(c.draft.TaskID)
	if !ok {
		return "", false
	}
	if patch := c.patch(); !patch.IsEmpty() {
		c.board.UpdateTask(current.ID, patch)
	}
	if c.draft.ColumnID != current.Status {
		if dst, ok := c.board.Column(c.draft.ColumnID); ok {
			c.board.MoveTask(current.ID, current.Status, dst.ID, len(dst.TaskIDs))
		}
	}
	return current.ID, true
}

// patch carries the draft fields that differ from the opened task. Optional fields
// edited to blank are cleared. A column change is applied by MoveTask instead.
func (c *Controller) patch() domain.TaskPatch {
	var p domain.TaskPatch
	d, o := c.draft, c.opened
	if d.Title != o.Title {
		p.Title = domain.Some(strings.TrimSpace(d.Title))
	}
	if d.Description != o.Description {
		p.Description = domain.Some(strings.TrimSpace(d.Description))
	}
	if d.Priority != o.Priority {
		p.Priority = domain.Some(d.Priority)
	}
	if d.Assignee != o.Assignee {
		p.Assignee = domain.Some(strings.TrimSpace(d.Assignee))
	}
	if !slices.Equal(d.Tags, o.Tags) {
		p.Tags = domain.Some(domain.NormalizeTags(d.Tags))
	}
	if !c.sameDay(d.DueAt, o.DueAt) {
		p.DueAt = domain.Some(d.DueAt)
	}
	return p
}

// sameDay compares due dates by calendar day, the granularity the form edits.
func (c *Controller) sameDay(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	loc := c.clock().Location()
	return a.In(loc).Format(DueDateLayout) == b.In(loc).Format(DueDateLayout)
}

// RequestDelete asks for confirmation before deleting the edited task.
func (c *Controller) RequestDelete() bool {
	if c.mode != ModeEdit {
		return false
	}
	c.confirming = true
	return true
}

// CancelDelete returns to the form without deleting.
func (c *Controller) CancelDelete() {
	c.confirming = false
}

// ConfirmDelete deletes the edited task and closes the form.
func (c *Controller) ConfirmDelete() bool {
	if !c.confirming || c.mode != ModeEdit {
		return false
	}
	deleted := c.board.DeleteTask(c.draft.TaskID)
	c.Cancel()
	return deleted
}
