package domain

import (
	"slices"
	"strings"
	"time"
)

// Task is one card on the board. Status always names the column holding it.
type Task struct {
	ID          string
	Title       string
	Description string
	Status      string
	Priority    Priority
	Assignee    string
	Tags        []string
	CreatedAt   time.Time
	DueAt       *time.Time
}

// TaskInput holds input values for NewTask.
type TaskInput struct {
	ID          string
	Title       string
	Description string
	Status      string
	Priority    Priority
	Assignee    string
	Tags        []string
	DueAt       *time.Time
}

// NewTask validates input and builds a task created at now.
func NewTask(in TaskInput, now time.Time) (Task, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Title = strings.TrimSpace(in.Title)
	in.Status = strings.TrimSpace(in.Status)
	if in.ID == "" {
		return Task{}, ErrInvalidID
	}
	if in.Title == "" {
		return Task{}, ErrInvalidTitle
	}
	if in.Status == "" {
		return Task{}, ErrInvalidColumnID
	}
	if !in.Priority.Valid() {
		return Task{}, ErrInvalidPriority
	}
	return Task{
		ID:          in.ID,
		Title:       in.Title,
		Description: strings.TrimSpace(in.Description),
		Status:      in.Status,
		Priority:    in.Priority,
		Assignee:    strings.TrimSpace(in.Assignee),
		Tags:        NormalizeTags(in.Tags),
		CreatedAt:   now.UTC(),
		DueAt:       cloneTime(in.DueAt),
	}, nil
}

// Clone returns a deep copy of t.
func (t Task) Clone() Task {
	out := t
	out.Tags = slices.Clone(t.Tags)
	out.DueAt = cloneTime(t.DueAt)
	return out
}

// HasTag reports whether tag is attached to the task.
func (t Task) HasTag(tag string) bool {
	return slices.Contains(t.Tags, tag)
}

// NormalizeTags trims tags and drops blanks and duplicates, keeping first-seen order.
// It returns nil when nothing is left so "no tags" stays distinguishable from an empty set.
func NormalizeTags(tags []string) []string {
	var out []string
	for _, raw := range tags {
		tag := strings.TrimSpace(raw)
		if tag == "" || slices.Contains(out, tag) {
			continue
		}
		out = append(out, tag)
	}
	return out
}

func cloneTime(ts *time.Time) *time.Time {
	if ts == nil {
		return nil
	}
	v := *ts
	return &v
}
