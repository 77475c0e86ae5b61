package domain

import (
	"slices"
	"strings"
)

// Column is an ordered container of task ids with an optional WIP limit.
type Column struct {
	ID       string
	Title    string
	Color    string
	TaskIDs  []string
	WIPLimit int // 0 means no limit
}

// NewColumn constructs a new value for this package.
func NewColumn(id, title, color string, wipLimit int) (Column, error) {
	id = strings.TrimSpace(id)
	title = strings.TrimSpace(title)
	if id == "" {
		return Column{}, ErrInvalidID
	}
	if title == "" {
		return Column{}, ErrInvalidTitle
	}
	if wipLimit < 0 {
		return Column{}, ErrInvalidWIPLimit
	}
	return Column{
		ID:       id,
		Title:    title,
		Color:    strings.TrimSpace(color),
		TaskIDs:  []string{},
		WIPLimit: wipLimit,
	}, nil
}

// HasWIPLimit reports whether the column carries a capacity threshold.
func (c Column) HasWIPLimit() bool {
	return c.WIPLimit > 0
}

// IndexOf returns the position of taskID in the column, or -1.
func (c Column) IndexOf(taskID string) int {
	return slices.Index(c.TaskIDs, taskID)
}

// Contains reports whether taskID belongs to the column.
func (c Column) Contains(taskID string) bool {
	return c.IndexOf(taskID) >= 0
}

// Clone returns a copy that shares no backing array with c.
func (c Column) Clone() Column {
	out := c
	out.TaskIDs = slices.Clone(c.TaskIDs)
	if out.TaskIDs == nil {
		out.TaskIDs = []string{}
	}
	return out
}
