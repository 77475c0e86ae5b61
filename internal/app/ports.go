package app

import (
	"context"

	"github.com/evanschultz/taskboard/internal/board"
)

// Repository persists whole-board snapshots and the change ledger.
type Repository interface {
	// LoadBoard returns ErrNotFound when nothing has been saved yet.
	LoadBoard(context.Context) (board.Snapshot, error)
	SaveBoard(context.Context, board.Snapshot) error
	RecordChange(context.Context, ChangeEvent) error
	ListChanges(context.Context, int) ([]ChangeEvent, error)
}

// Logger is the structured logger surface used by listeners.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// NopLogger returns a Logger that discards every entry.
func NopLogger() Logger { return nopLogger{} }
