package app

import (
	"github.com/evanschultz/taskboard/internal/board"
	"github.com/evanschultz/taskboard/internal/domain"
)

// LogListener writes one structured log line per board notification.
type LogListener struct {
	logger Logger
}

var _ board.Listener = LogListener{}

// NewLogListener constructs a log listener. A nil logger discards output.
func NewLogListener(logger Logger) LogListener {
	if logger == nil {
		logger = nopLogger{}
	}
	return LogListener{logger: logger}
}

// TaskMoved logs a move at info level.
func (l LogListener) TaskMoved(taskID, fromColumnID, toColumnID string, newIndex int) {
	l.logger.Info("task moved", "task_id", taskID, "from", fromColumnID, "to", toColumnID, "index", newIndex)
}

// TaskCreated logs a new task at info level.
func (l LogListener) TaskCreated(columnID string, task domain.Task) {
	l.logger.Info("task created", "task_id", task.ID, "column", columnID, "title", task.Title)
}

// TaskUpdated logs the changed field names at debug level.
func (l LogListener) TaskUpdated(taskID string, patch domain.TaskPatch) {
	l.logger.Debug("task updated", "task_id", taskID, "fields", patch.FieldNames())
}

// TaskDeleted logs a removal at info level.
func (l LogListener) TaskDeleted(taskID string) {
	l.logger.Info("task deleted", "task_id", taskID)
}
