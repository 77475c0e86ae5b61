package domain

import (
	"strings"
	"time"
	"unicode"
)

// DueState classifies a task's due date relative to the current day.
type DueState string

const (
	DueNone     DueState = ""
	DueOverdue  DueState = "overdue"
	DueToday    DueState = "today"
	DueTomorrow DueState = "tomorrow"
	DueUpcoming DueState = "upcoming"
)

// DueState reports where the due date falls relative to now. Today and tomorrow
// win over overdue, so a task due earlier today still reads "today".
func (t Task) DueState(now time.Time) DueState {
	if t.DueAt == nil {
		return DueNone
	}
	due := *t.DueAt
	now = now.In(due.Location())
	switch {
	case sameDay(due, now):
		return DueToday
	case sameDay(due, now.AddDate(0, 0, 1)):
		return DueTomorrow
	case due.Before(now):
		return DueOverdue
	default:
		return DueUpcoming
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Initials returns up to two upper-case initials for a display name.
func Initials(name string) string {
	out := make([]rune, 0, 2)
	for _, part := range strings.Fields(name) {
		if len(out) == 2 {
			break
		}
		out = append(out, unicode.ToUpper([]rune(part)[0]))
	}
	return string(out)
}
