package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/evanschultz/taskboard/internal/board"
	"github.com/evanschultz/taskboard/internal/domain"
)

// Clock returns the current time.
type Clock func() time.Time

// PersisterConfig holds configuration for a Persister.
type PersisterConfig struct {
	Timeout time.Duration
	Clock   Clock
	Logger  Logger
	// OnError is called after a failed write, for example to show a status line.
	OnError func(error)
}

// Persister is a board listener that writes the ledger entry and the whole board
// after every mutation. A failed write is reported, never rolled back.
type Persister struct {
	repo     Repository
	snapshot func() board.Snapshot
	timeout  time.Duration
	clock    Clock
	logger   Logger
	onError  func(error)
	lastErr  error
}

var _ board.Listener = (*Persister)(nil)

// NewPersister constructs a persister reading the current board from snapshot.
func NewPersister(repo Repository, snapshot func() board.Snapshot, cfg PersisterConfig) *Persister {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = nopLogger{}
	}
	return &Persister{
		repo:     repo,
		snapshot: snapshot,
		timeout:  cfg.Timeout,
		clock:    cfg.Clock,
		logger:   cfg.Logger,
		onError:  cfg.OnError,
	}
}

// LastError returns the most recent write failure, or nil after a successful write.
func (p *Persister) LastError() error {
	return p.lastErr
}

// TaskMoved implements board.Listener.
func (p *Persister) TaskMoved(taskID, fromColumnID, toColumnID string, newIndex int) {
	p.persist(ChangeEvent{
		Operation:    ChangeOperationMove,
		TaskID:       taskID,
		FromColumnID: fromColumnID,
		ToColumnID:   toColumnID,
		Index:        newIndex,
	})
}

// TaskCreated implements board.Listener.
func (p *Persister) TaskCreated(columnID string, task domain.Task) {
	p.persist(ChangeEvent{
		Operation:  ChangeOperationCreate,
		TaskID:     task.ID,
		ToColumnID: columnID,
		Title:      task.Title,
	})
}

// TaskUpdated implements board.Listener.
func (p *Persister) TaskUpdated(taskID string, patch domain.TaskPatch) {
	p.persist(ChangeEvent{
		Operation: ChangeOperationUpdate,
		TaskID:    taskID,
		Fields:    patch.FieldNames(),
	})
}

// TaskDeleted implements board.Listener.
func (p *Persister) TaskDeleted(taskID string) {
	p.persist(ChangeEvent{Operation: ChangeOperationDelete, TaskID: taskID})
}

func (p *Persister) persist(event ChangeEvent) {
	ctx := context.Background()
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	event.OccurredAt = p.clock().UTC()

	var errs []error
	if err := p.repo.RecordChange(ctx, event); err != nil {
		errs = append(errs, fmt.Errorf("record change: %w", err))
	}
	if err := p.repo.SaveBoard(ctx, p.snapshot()); err != nil {
		errs = append(errs, fmt.Errorf("save board: %w", err))
	}
	p.lastErr = errors.Join(errs...)
	if p.lastErr == nil {
		p.logger.Debug("board persisted", "op", event.Operation, "task_id", event.TaskID)
		return
	}
	p.logger.Error("board persist failed", "op", event.Operation, "task_id", event.TaskID, "err", p.lastErr)
	if p.onError != nil {
		p.onError(p.lastErr)
	}
}
