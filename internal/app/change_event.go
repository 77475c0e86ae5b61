package app

import (
	"fmt"
	"strings"
	"time"
)

// ChangeOperation names one kind of board mutation.
type ChangeOperation string

const (
	ChangeOperationMove   ChangeOperation = "move"
	ChangeOperationCreate ChangeOperation = "create"
	ChangeOperationUpdate ChangeOperation = "update"
	ChangeOperationDelete ChangeOperation = "delete"
)

// ParseChangeOperation normalizes a stored operation name.
func ParseChangeOperation(raw string) (ChangeOperation, error) {
	op := ChangeOperation(strings.ToLower(strings.TrimSpace(raw)))
	switch op {
	case ChangeOperationMove, ChangeOperationCreate, ChangeOperationUpdate, ChangeOperationDelete:
		return op, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedOp, raw)
}

// ChangeEvent is one entry in the board activity ledger.
type ChangeEvent struct {
	ID           int64
	Operation    ChangeOperation
	TaskID       string
	FromColumnID string
	ToColumnID   string
	Index        int
	Fields       []string
	Title        string
	OccurredAt   time.Time
}

// Summary renders the event as one line.
func (e ChangeEvent) Summary() string {
	switch e.Operation {
	case ChangeOperationMove:
		if e.FromColumnID == e.ToColumnID {
			return fmt.Sprintf("moved %s within %s to #%d", e.TaskID, e.ToColumnID, e.Index+1)
		}
		return fmt.Sprintf("moved %s from %s to %s at #%d", e.TaskID, e.FromColumnID, e.ToColumnID, e.Index+1)
	case ChangeOperationCreate:
		return fmt.Sprintf("created %s %q in %s", e.TaskID, e.Title, e.ToColumnID)
	case ChangeOperationUpdate:
		return fmt.Sprintf("updated %s (%s)", e.TaskID, strings.Join(e.Fields, ", "))
	case ChangeOperationDelete:
		return fmt.Sprintf("deleted %s", e.TaskID)
	default:
		return string(e.Operation) + " " + e.TaskID
	}
}
