package tui

// Layout is the fixed row geometry of a column used for pointer hit testing.
type Layout struct {
	HeaderRows  int
	PaddingRows int
	CardRows    int
	CardGap     int
}

// DefaultLayout returns the stock column geometry.
func DefaultLayout() Layout {
	return Layout{HeaderRows: 3, PaddingRows: 1, CardRows: 3, CardGap: 1}
}

// normalized clamps the layout to usable values.
func (l Layout) normalized() Layout {
	l.HeaderRows = max(0, l.HeaderRows)
	l.PaddingRows = max(0, l.PaddingRows)
	l.CardRows = max(1, l.CardRows)
	l.CardGap = max(0, l.CardGap)
	return l
}

// Stride returns the rows one card occupies including the gap below it.
func (l Layout) Stride() int {
	l = l.normalized()
	return l.CardRows + l.CardGap
}

// CandidateIndex maps a pointer row to an insertion index inside a column.
// columnTop is the first content row of the column, scrollRows the rows scrolled
// out of view, and draggedIndex the dragged card's index when it lives in this
// column (-1 otherwise). The result is in [0, taskCount].
func (l Layout) CandidateIndex(pointerY, columnTop, scrollRows, taskCount, draggedIndex int) int {
	l = l.normalized()
	rel := pointerY - columnTop - l.HeaderRows - l.PaddingRows + scrollRows
	raw := floorDiv(rel, l.Stride())
	raw = clamp(raw, 0, max(0, taskCount))
	if draggedIndex >= 0 && draggedIndex < raw {
		raw--
	}
	return raw
}

// Candidate is an optional drop index.
type Candidate struct {
	Index int
	Valid bool
}

// ResolveDropIndex picks the final index for a drop: the session candidate when
// it targets the drop column, else the locally computed one, else the end.
func ResolveDropIndex(session, local Candidate, taskCount int) int {
	switch {
	case session.Valid:
		return session.Index
	case local.Valid:
		return local.Index
	default:
		return taskCount
	}
}

// IsNoopDrop reports whether dropping would leave the task where it is.
func IsNoopDrop(currentIndex, finalIndex int, taskStatus, dropColumnID string) bool {
	return currentIndex == finalIndex && taskStatus == dropColumnID
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}
