// Package tui renders the task board and maps mouse and key input onto board,
// drag, and form operations.
package tui

import (
	"fmt"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"github.com/evanschultz/taskboard/internal/app"
	"github.com/evanschultz/taskboard/internal/board"
	"github.com/evanschultz/taskboard/internal/domain"
	"github.com/evanschultz/taskboard/internal/drag"
	"github.com/evanschultz/taskboard/internal/taskform"
)

const (
	// boardTop is the screen row of the column top borders.
	boardTop = 2
	// footerRows covers the status line and the bordered help line.
	footerRows = 3
	// collapsedInnerWidth is the content width of a collapsed column.
	collapsedInnerWidth = 3
	// columnChrome is border plus horizontal padding around column content.
	columnChrome = 4
	columnMargin = 1
)

// StatusMsg replaces the status line text.
type StatusMsg string

// Model is the bubbletea board program. Every board mutation happens inside Update.
type Model struct {
	store *board.Store
	form  *taskform.Controller
	drag  drag.Session

	keys     keyMap
	formKeys formKeyMap
	help     help.Model

	layout          Layout
	taskFields      TaskFieldConfig
	confirmDelete   bool
	showWIPWarnings bool
	title           string

	idGen    taskform.IDGenerator
	now      func() time.Time
	copyText func(string) error
	saveErr  func() error
	logger   app.Logger

	width  int
	height int
	col    int
	row    int

	scroll    map[string]int
	collapsed map[string]bool

	showDetail bool
	formUI     formState
	status     string
	md         *markdownRenderer
}

// NewModel constructs a board program over store.
func NewModel(store *board.Store, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	m := Model{
		store:           store,
		keys:            newKeyMap(),
		formKeys:        newFormKeyMap(),
		help:            h,
		layout:          DefaultLayout(),
		taskFields:      DefaultTaskFieldConfig(),
		confirmDelete:   true,
		showWIPWarnings: true,
		title:           "taskboard",
		now:             time.Now,
		copyText:        defaultClipboard,
		logger:          app.NopLogger(),
		scroll:          map[string]int{},
		collapsed:       map[string]bool{},
		status:          "ready",
		md:              &markdownRenderer{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	m.form = taskform.New(store, m.idGen, m.now)
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.SetWidth(max(0, msg.Width-2))
		m.clampCursor()
		return m, nil

	case StatusMsg:
		m.status = string(msg)
		return m, nil

	case tea.KeyPressMsg:
		switch {
		case m.form.IsOpen():
			return m.handleFormKey(msg)
		case m.showDetail:
			return m.handleDetailKey(msg)
		case m.drag.IsDragging():
			return m.handleDragKey(msg)
		default:
			return m.handleBoardKey(msg)
		}

	case tea.MouseClickMsg:
		if m.overlayOpen() || msg.Button != tea.MouseLeft {
			return m, nil
		}
		return m.handleMousePress(msg.X, msg.Y)

	case tea.MouseMotionMsg:
		if m.overlayOpen() {
			return m, nil
		}
		return m.handleMouseMotion(msg.X, msg.Y)

	case tea.MouseReleaseMsg:
		if m.overlayOpen() {
			return m, nil
		}
		return m.handleMouseRelease(msg.X, msg.Y)

	case tea.MouseWheelMsg:
		if m.overlayOpen() {
			return m, nil
		}
		return m.handleMouseWheel(msg)

	default:
		return m, nil
	}
}

// overlayOpen reports whether a modal view captures input.
func (m Model) overlayOpen() bool {
	return m.form.IsOpen() || m.showDetail || m.help.ShowAll
}

// handleBoardKey handles key presses while no drag or overlay is active.
func (m Model) handleBoardKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.cancel):
		m.help.ShowAll = false
		return m, nil
	}
	if m.help.ShowAll {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.moveLeft):
		m.moveCursor(-1, 0)
	case key.Matches(msg, m.keys.moveRight):
		m.moveCursor(1, 0)
	case key.Matches(msg, m.keys.moveUp):
		m.moveCursor(0, -1)
	case key.Matches(msg, m.keys.moveDown):
		m.moveCursor(0, 1)
	case key.Matches(msg, m.keys.grab):
		m.startKeyboardDrag()
	case key.Matches(msg, m.keys.addTask):
		columnID, ok := m.currentColumnID()
		if !ok || !m.form.OpenNew(columnID) {
			return m, nil
		}
		m.status = "new task"
		return m, m.openFormUI()
	case key.Matches(msg, m.keys.editTask):
		task, ok := m.focusedTask()
		if !ok || !m.form.OpenEdit(task.ID) {
			return m, nil
		}
		m.status = "edit task"
		return m, m.openFormUI()
	case key.Matches(msg, m.keys.taskInfo):
		if _, ok := m.focusedTask(); ok {
			m.showDetail = true
		}
	case key.Matches(msg, m.keys.deleteTask):
		return m.deleteFocusedTask()
	case key.Matches(msg, m.keys.collapse):
		if columnID, ok := m.currentColumnID(); ok {
			m.collapsed[columnID] = !m.collapsed[columnID]
			m.clampCursor()
		}
	case key.Matches(msg, m.keys.copyTitle):
		task, ok := m.focusedTask()
		if !ok {
			return m, nil
		}
		if err := m.copyText(task.Title); err != nil {
			m.status = "copy failed: " + err.Error()
			m.logger.Warn("clipboard write failed", "err", err)
			return m, nil
		}
		m.status = "copied: " + truncate(task.Title, 40)
	}
	return m, nil
}

// handleDetailKey closes the task detail overlay.
func (m Model) handleDetailKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.cancel), key.Matches(msg, m.keys.taskInfo), key.Matches(msg, m.keys.quit):
		m.showDetail = false
	case key.Matches(msg, m.keys.editTask):
		task, ok := m.focusedTask()
		m.showDetail = false
		if ok && m.form.OpenEdit(task.ID) {
			m.status = "edit task"
			return m, m.openFormUI()
		}
	}
	return m, nil
}

// deleteFocusedTask deletes the focused card, through the confirmation prompt when enabled.
func (m Model) deleteFocusedTask() (tea.Model, tea.Cmd) {
	task, ok := m.focusedTask()
	if !ok || !m.form.OpenEdit(task.ID) {
		return m, nil
	}
	m.form.RequestDelete()
	if m.confirmDelete {
		cmd := m.openFormUI()
		m.formUI.deleteOnly = true
		m.status = "confirm delete"
		return m, cmd
	}
	m.confirmFormDelete(task.Title)
	return m, nil
}

// handleDragKey moves the candidate target of a keyboard drag.
func (m Model) handleDragKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		m.drag.Cancel()
		return m, tea.Quit
	case key.Matches(msg, m.keys.cancel):
		m.drag.Cancel()
		m.status = "drag cancelled"
	case key.Matches(msg, m.keys.grab):
		target, ok := m.drag.Target()
		if !ok {
			origin, _ := m.drag.Origin()
			target = origin
		}
		m.commitDrop(target.ColumnID, Candidate{})
	case key.Matches(msg, m.keys.moveLeft):
		m.moveDragTarget(-1, 0)
	case key.Matches(msg, m.keys.moveRight):
		m.moveDragTarget(1, 0)
	case key.Matches(msg, m.keys.moveUp):
		m.moveDragTarget(0, -1)
	case key.Matches(msg, m.keys.moveDown):
		m.moveDragTarget(0, 1)
	}
	return m, nil
}

// startKeyboardDrag grabs the focused card with its own slot as the first candidate.
func (m *Model) startKeyboardDrag() {
	task, ok := m.focusedTask()
	if !ok {
		return
	}
	m.drag.Start(task.ID, task.Status, m.row)
	m.drag.Over(task.Status, m.row)
	m.status = "dragging: " + truncate(task.Title, 40)
	m.logger.Debug("drag started", "task_id", task.ID, "column_id", task.Status, "index", m.row)
}

// moveDragTarget shifts the candidate by whole columns or single slots.
func (m *Model) moveDragTarget(dCol, dRow int) {
	target, ok := m.drag.Target()
	if !ok {
		target, _ = m.drag.Origin()
	}
	ids := m.store.ColumnIDs()
	if len(ids) == 0 {
		return
	}
	colIdx := m.store.ColumnIndex(target.ColumnID)
	if colIdx < 0 {
		colIdx = 0
	}
	colIdx = clamp(colIdx+dCol, 0, len(ids)-1)
	columnID := ids[colIdx]
	index := clamp(target.Index+dRow, 0, m.dropCapacity(columnID))
	m.drag.Over(columnID, index)
	m.col = colIdx
	m.followIndex(columnID, index)
}

// commitDrop resolves the final index in dropColumnID and moves the dragged task.
func (m *Model) commitDrop(dropColumnID string, local Candidate) {
	taskID := m.drag.TaskID()
	task, ok := m.store.Task(taskID)
	if !ok {
		m.drag.Cancel()
		return
	}
	if _, ok := m.store.Column(dropColumnID); !ok {
		m.drag.Cancel()
		m.status = "drag cancelled"
		return
	}
	sessionIdx, sessionOK := m.drag.TargetIn(dropColumnID)
	final := ResolveDropIndex(Candidate{Index: sessionIdx, Valid: sessionOK}, local, m.dropCapacity(dropColumnID))
	current := m.store.TaskIndex(task.Status, taskID)
	if IsNoopDrop(current, final, task.Status, dropColumnID) {
		m.drag.End()
		m.status = "ready"
		m.focusTask(taskID)
		return
	}
	moved := m.store.MoveTask(taskID, task.Status, dropColumnID, final)
	m.drag.End()
	if !moved {
		m.status = "move rejected"
		return
	}
	m.focusTask(taskID)
	m.status = fmt.Sprintf("moved %q to %s", truncate(task.Title, 32), m.columnTitle(dropColumnID))
	m.checkSaveErr()
}

// dropCapacity is the highest insertion index for the dragged task in columnID.
func (m Model) dropCapacity(columnID string) int {
	col, ok := m.store.Column(columnID)
	if !ok {
		return 0
	}
	n := len(col.TaskIDs)
	if col.Contains(m.drag.TaskID()) {
		n--
	}
	return max(0, n)
}

// draggedIndexIn returns the dragged task's index in columnID, or -1.
func (m Model) draggedIndexIn(columnID string) int {
	if !m.drag.IsDragging() {
		return -1
	}
	return m.store.TaskIndex(columnID, m.drag.TaskID())
}

// handleMousePress focuses the column under the pointer and starts a drag on a card.
func (m Model) handleMousePress(x, y int) (tea.Model, tea.Cmd) {
	colIdx, ok := m.columnAt(x, y)
	if !ok {
		return m, nil
	}
	m.col = colIdx
	cols := m.store.Columns()
	view := cols[colIdx]
	cardIdx, ok := m.cardAt(view, y)
	if !ok {
		m.clampCursor()
		return m, nil
	}
	m.row = cardIdx
	task := view.Tasks[cardIdx]
	m.drag.Start(task.ID, view.Column.ID, cardIdx)
	m.logger.Debug("drag started", "task_id", task.ID, "column_id", view.Column.ID, "index", cardIdx)
	return m, nil
}

// handleMouseMotion updates the candidate for the column under the pointer.
func (m Model) handleMouseMotion(x, y int) (tea.Model, tea.Cmd) {
	if !m.drag.IsDragging() {
		return m, nil
	}
	colIdx, ok := m.columnAt(x, y)
	if !ok {
		return m, nil
	}
	view := m.store.Columns()[colIdx]
	m.drag.Over(view.Column.ID, m.pointerCandidate(view, y))
	return m, nil
}

// handleMouseRelease drops over a column or cancels outside every column.
func (m Model) handleMouseRelease(x, y int) (tea.Model, tea.Cmd) {
	if !m.drag.IsDragging() {
		return m, nil
	}
	colIdx, ok := m.columnAt(x, y)
	if !ok {
		m.drag.Cancel()
		m.status = "drag cancelled"
		return m, nil
	}
	view := m.store.Columns()[colIdx]
	m.commitDrop(view.Column.ID, Candidate{Index: m.pointerCandidate(view, y), Valid: true})
	return m, nil
}

// pointerCandidate maps a pointer row over view to an insertion index.
func (m Model) pointerCandidate(view board.ColumnView, y int) int {
	columnID := view.Column.ID
	if m.collapsed[columnID] {
		return m.dropCapacity(columnID)
	}
	return m.layout.CandidateIndex(y, boardTop+1, m.scrollRows(columnID), len(view.Tasks), m.draggedIndexIn(columnID))
}

// handleMouseWheel scrolls the column under the pointer.
func (m Model) handleMouseWheel(msg tea.MouseWheelMsg) (tea.Model, tea.Cmd) {
	colIdx, ok := m.columnAt(msg.X, msg.Y)
	if !ok {
		return m, nil
	}
	view := m.store.Columns()[colIdx]
	columnID := view.Column.ID
	switch msg.Button {
	case tea.MouseWheelUp:
		m.scroll[columnID] = max(0, m.scroll[columnID]-1)
	case tea.MouseWheelDown:
		m.scroll[columnID] = clamp(m.scroll[columnID]+1, 0, m.maxScroll(len(view.Tasks)))
	}
	return m, nil
}

// moveCursor moves focus between columns and cards.
func (m *Model) moveCursor(dCol, dRow int) {
	m.col += dCol
	m.row += dRow
	m.clampCursor()
}

// clampCursor keeps the cursor on an existing column and card and scrolls it into view.
func (m *Model) clampCursor() {
	cols := m.store.Columns()
	if len(cols) == 0 {
		m.col, m.row = 0, 0
		return
	}
	m.col = clamp(m.col, 0, len(cols)-1)
	view := cols[m.col]
	m.row = clamp(m.row, 0, max(0, len(view.Tasks)-1))
	m.followIndex(view.Column.ID, m.row)
}

// followIndex scrolls columnID so the card at index is visible.
func (m *Model) followIndex(columnID string, index int) {
	visible := m.visibleCards()
	offset := m.scroll[columnID]
	if index < offset {
		offset = index
	}
	if index >= offset+visible {
		offset = index - visible + 1
	}
	col, _ := m.store.Column(columnID)
	m.scroll[columnID] = clamp(offset, 0, m.maxScroll(len(col.TaskIDs)))
}

// focusTask moves the cursor onto taskID.
func (m *Model) focusTask(taskID string) {
	task, ok := m.store.Task(taskID)
	if !ok {
		m.clampCursor()
		return
	}
	if idx := m.store.ColumnIndex(task.Status); idx >= 0 {
		m.col = idx
		m.row = m.store.TaskIndex(task.Status, taskID)
	}
	m.clampCursor()
}

// checkSaveErr surfaces a failed write from the persistence listener.
func (m *Model) checkSaveErr() {
	if m.saveErr == nil {
		return
	}
	if err := m.saveErr(); err != nil {
		m.status = "save failed: " + err.Error()
	}
}

func (m Model) currentColumnID() (string, bool) {
	ids := m.store.ColumnIDs()
	if m.col < 0 || m.col >= len(ids) {
		return "", false
	}
	return ids[m.col], true
}

// focusedTask returns the card under the cursor. Collapsed columns have no focused card.
func (m Model) focusedTask() (domain.Task, bool) {
	columnID, ok := m.currentColumnID()
	if !ok || m.collapsed[columnID] {
		return domain.Task{}, false
	}
	col, _ := m.store.Column(columnID)
	if m.row < 0 || m.row >= len(col.TaskIDs) {
		return domain.Task{}, false
	}
	return m.store.Task(col.TaskIDs[m.row])
}

func (m Model) columnTitle(columnID string) string {
	if col, ok := m.store.Column(columnID); ok {
		return col.Title
	}
	return columnID
}
