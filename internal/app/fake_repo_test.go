package app

import (
	"context"

	"github.com/evanschultz/taskboard/internal/board"
)

// fakeRepo is an in-memory Repository for tests.
type fakeRepo struct {
	saved   *board.Snapshot
	changes []ChangeEvent
	saves   int
	loadErr error
	saveErr error
	lastCtx context.Context
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{}
}

func (f *fakeRepo) LoadBoard(context.Context) (board.Snapshot, error) {
	if f.loadErr != nil {
		return board.Snapshot{}, f.loadErr
	}
	if f.saved == nil {
		return board.Snapshot{}, ErrNotFound
	}
	return *f.saved, nil
}

func (f *fakeRepo) SaveBoard(ctx context.Context, snap board.Snapshot) error {
	f.lastCtx = ctx
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	f.saved = &snap
	return nil
}

func (f *fakeRepo) RecordChange(_ context.Context, event ChangeEvent) error {
	f.changes = append(f.changes, event)
	return nil
}

func (f *fakeRepo) ListChanges(_ context.Context, limit int) ([]ChangeEvent, error) {
	out := make([]ChangeEvent, 0, len(f.changes))
	for i := len(f.changes) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.changes[i])
	}
	return out, nil
}
