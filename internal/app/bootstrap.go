package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/evanschultz/taskboard/internal/board"
	"github.com/evanschultz/taskboard/internal/domain"
	"github.com/evanschultz/taskboard/internal/seed"
)

// BoardSource names where the initial board came from.
type BoardSource string

const (
	SourceDatabase BoardSource = "database"
	SourceSeed     BoardSource = "seed"
	SourceDefaults BoardSource = "defaults"
)

// BootstrapInput holds input values for LoadInitialBoard.
type BootstrapInput struct {
	Repo           Repository
	SeedPath       string
	DefaultColumns []domain.Column
	Now            time.Time
}

// LoadInitialBoard picks the first available board: the stored one, then the seed
// file, then the default columns with no tasks.
func LoadInitialBoard(ctx context.Context, in BootstrapInput) (board.Snapshot, BoardSource, error) {
	if in.Repo != nil {
		snap, err := in.Repo.LoadBoard(ctx)
		switch {
		case err == nil:
			return snap, SourceDatabase, nil
		case !errors.Is(err, ErrNotFound):
			return board.Snapshot{}, "", fmt.Errorf("load stored board: %w", err)
		}
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	snap, ok, err := seed.Load(in.SeedPath, now)
	if err != nil {
		return board.Snapshot{}, "", err
	}
	if ok {
		return snap, SourceSeed, nil
	}

	if len(in.DefaultColumns) == 0 {
		return board.Snapshot{}, "", ErrEmptyBoard
	}
	snap = board.Snapshot{Tasks: map[string]domain.Task{}}
	for _, col := range in.DefaultColumns {
		col = col.Clone()
		col.TaskIDs = []string{}
		snap.Columns = append(snap.Columns, col)
	}
	return snap, SourceDefaults, nil
}
