// Package drag tracks a single in-flight card drag by ids and indices only.
package drag

// State is the phase of a drag session.
type State int

// Drag phases.
const (
	Idle State = iota
	Dragging
)

// String returns the phase name.
func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Position is a column id plus an index inside that column.
type Position struct {
	ColumnID string
	Index    int
}

// Snapshot is a value copy of the session for rendering.
type Snapshot struct {
	State     State
	TaskID    string
	Origin    Position
	Target    Position
	HasTarget bool
}

// Session is the drag state machine. The zero value is idle and ready to use.
// It never touches the board; callers commit a drop through the board store.
type Session struct {
	state     State
	taskID    string
	origin    Position
	target    Position
	hasTarget bool
}

// Start begins dragging taskID from originColumnID at originIndex. Starting while
// already dragging replaces the previous session.
func (s *Session) Start(taskID, originColumnID string, originIndex int) {
	*s = Session{
		state:  Dragging,
		taskID: taskID,
		origin: Position{ColumnID: originColumnID, Index: originIndex},
	}
}

// Over records the candidate drop position. It reports false and does nothing when idle.
func (s *Session) Over(columnID string, index int) bool {
	if s.state != Dragging {
		return false
	}
	s.target = Position{ColumnID: columnID, Index: index}
	s.hasTarget = true
	return true
}

// End finishes the drag after a drop and returns to idle.
func (s *Session) End() {
	*s = Session{}
}

// Cancel abandons the drag and returns to idle.
func (s *Session) Cancel() {
	*s = Session{}
}

// IsDragging reports whether a drag is in progress.
func (s *Session) IsDragging() bool {
	return s.state == Dragging
}

// TaskID returns the dragged task id, or "" when idle.
func (s *Session) TaskID() string {
	return s.taskID
}

// Origin returns where the drag started.
func (s *Session) Origin() (Position, bool) {
	return s.origin, s.state == Dragging
}

// Target returns the current candidate drop position. ok is false until Over is called.
func (s *Session) Target() (Position, bool) {
	return s.target, s.hasTarget
}

// TargetIn returns the candidate index only when the candidate is in columnID.
func (s *Session) TargetIn(columnID string) (int, bool) {
	if !s.hasTarget || s.target.ColumnID != columnID {
		return 0, false
	}
	return s.target.Index, true
}

// Snapshot returns a copy of the session.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		State:     s.state,
		TaskID:    s.taskID,
		Origin:    s.origin,
		Target:    s.target,
		HasTarget: s.hasTarget,
	}
}
