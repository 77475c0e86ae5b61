package domain

import (
	"slices"
	"time"
)

// Field is one optional entry in a TaskPatch.
type Field[T any] struct {
	Value T
	Set   bool
}

// Some returns a set field holding v.
func Some[T any](v T) Field[T] {
	return Field[T]{Value: v, Set: true}
}

// Get returns the value and whether it was set.
func (f Field[T]) Get() (T, bool) {
	return f.Value, f.Set
}

// TaskPatch is a field mask over the updatable task fields. Unset fields are left
// unchanged on merge; a set field holding the zero value clears an optional field.
type TaskPatch struct {
	Title       Field[string]
	Description Field[string]
	Status      Field[string]
	Priority    Field[Priority]
	Assignee    Field[string]
	Tags        Field[[]string]
	DueAt       Field[*time.Time]
}

// IsEmpty reports whether no field is set.
func (p TaskPatch) IsEmpty() bool {
	return len(p.FieldNames()) == 0
}

// FieldNames lists the set fields in declaration order.
func (p TaskPatch) FieldNames() []string {
	names := make([]string, 0, 7)
	if p.Title.Set {
		names = append(names, "title")
	}
	if p.Description.Set {
		names = append(names, "description")
	}
	if p.Status.Set {
		names = append(names, "status")
	}
	if p.Priority.Set {
		names = append(names, "priority")
	}
	if p.Assignee.Set {
		names = append(names, "assignee")
	}
	if p.Tags.Set {
		names = append(names, "tags")
	}
	if p.DueAt.Set {
		names = append(names, "due_at")
	}
	return names
}

// WithoutStatus returns p with the Status field unset.
func (p TaskPatch) WithoutStatus() TaskPatch {
	p.Status = Field[string]{}
	return p
}

// Apply merges the set fields into a copy of t.
func (p TaskPatch) Apply(t Task) Task {
	out := t.Clone()
	if v, ok := p.Title.Get(); ok {
		out.Title = v
	}
	if v, ok := p.Description.Get(); ok {
		out.Description = v
	}
	if v, ok := p.Status.Get(); ok {
		out.Status = v
	}
	if v, ok := p.Priority.Get(); ok {
		out.Priority = v
	}
	if v, ok := p.Assignee.Get(); ok {
		out.Assignee = v
	}
	if v, ok := p.Tags.Get(); ok {
		out.Tags = slices.Clone(v)
		if len(out.Tags) == 0 {
			out.Tags = nil
		}
	}
	if v, ok := p.DueAt.Get(); ok {
		out.DueAt = cloneTime(v)
	}
	return out
}
