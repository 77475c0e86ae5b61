package board

import "github.com/evanschultz/taskboard/internal/domain"

// Listener receives board notifications synchronously after each committed mutation.
type Listener interface {
	TaskMoved(taskID, fromColumnID, toColumnID string, newIndex int)
	TaskCreated(columnID string, task domain.Task)
	TaskUpdated(taskID string, patch domain.TaskPatch)
	TaskDeleted(taskID string)
}

// Funcs adapts optional callbacks to Listener. Nil fields are skipped.
type Funcs struct {
	OnMove   func(taskID, fromColumnID, toColumnID string, newIndex int)
	OnCreate func(columnID string, task domain.Task)
	OnUpdate func(taskID string, patch domain.TaskPatch)
	OnDelete func(taskID string)
}

// TaskMoved implements Listener.
func (f Funcs) TaskMoved(taskID, fromColumnID, toColumnID string, newIndex int) {
	if f.OnMove != nil {
		f.OnMove(taskID, fromColumnID, toColumnID, newIndex)
	}
}

// TaskCreated implements Listener.
func (f Funcs) TaskCreated(columnID string, task domain.Task) {
	if f.OnCreate != nil {
		f.OnCreate(columnID, task)
	}
}

// TaskUpdated implements Listener.
func (f Funcs) TaskUpdated(taskID string, patch domain.TaskPatch) {
	if f.OnUpdate != nil {
		f.OnUpdate(taskID, patch)
	}
}

// TaskDeleted implements Listener.
func (f Funcs) TaskDeleted(taskID string) {
	if f.OnDelete != nil {
		f.OnDelete(taskID)
	}
}
