package app

import "errors"

// ErrNotFound and related errors describe validation and runtime failures.
var (
	ErrNotFound        = errors.New("not found")
	ErrEmptyBoard      = errors.New("board has no columns")
	ErrUnsupportedOp   = errors.New("unsupported change operation")
	ErrSnapshotVersion = errors.New("unsupported snapshot version")
)
