package tui

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/evanschultz/taskboard/internal/board"
	"github.com/evanschultz/taskboard/internal/domain"
)

// eventLog records listener notifications as short strings.
type eventLog struct {
	events []string
}

func (l *eventLog) listener() board.Funcs {
	return board.Funcs{
		OnMove: func(taskID, from, to string, index int) {
			l.events = append(l.events, fmt.Sprintf("move %s %s->%s %d", taskID, from, to, index))
		},
		OnCreate: func(columnID string, task domain.Task) {
			l.events = append(l.events, fmt.Sprintf("create %s %s", columnID, task.ID))
		},
		OnUpdate: func(taskID string, patch domain.TaskPatch) {
			l.events = append(l.events, fmt.Sprintf("update %s %s", taskID, strings.Join(patch.FieldNames(), ",")))
		},
		OnDelete: func(taskID string) {
			l.events = append(l.events, "delete "+taskID)
		},
	}
}

var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T, log *eventLog) *board.Store {
	t.Helper()
	todo, _ := domain.NewColumn("todo", "To Do", "", 0)
	doing, _ := domain.NewColumn("doing", "Doing", "", 2)
	done, _ := domain.NewColumn("done", "Done", "", 0)
	todo.TaskIDs = []string{"t1", "t2", "t3"}
	doing.TaskIDs = []string{"t4"}
	tasks := map[string]domain.Task{}
	for _, row := range []struct{ id, status string }{{"t1", "todo"}, {"t2", "todo"}, {"t3", "todo"}, {"t4", "doing"}} {
		task, err := domain.NewTask(domain.TaskInput{ID: row.id, Title: "Task " + row.id[1:], Status: row.status}, testNow)
		if err != nil {
			t.Fatalf("NewTask() error = %v", err)
		}
		tasks[row.id] = task
	}
	var opts []board.Option
	if log != nil {
		opts = append(opts, board.WithListener(log.listener()))
	}
	return board.New([]domain.Column{todo, doing, done}, tasks, opts...)
}

// newTestModel builds a 120x40 board: columns start at x=0,40,80 and card i of
// any column spans rows 7+4i through 9+4i.
func newTestModel(t *testing.T, store *board.Store, opts ...Option) Model {
	t.Helper()
	base := []Option{
		WithClock(func() time.Time { return testNow }),
		WithIDGenerator(func() string { return "task-new" }),
		WithClipboard(func(string) error { return nil }),
	}
	m := NewModel(store, append(base, opts...)...)
	return applyMsg(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
}

func cardY(i int) int { return 7 + 4*i }
func columnX(c int) int { return c*40 + 5 }

func applyMsg(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, _ := m.Update(msg)
	out, ok := updated.(Model)
	if !ok {
		t.Fatalf("expected Model, got %T", updated)
	}
	return out
}

func applyKeys(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		m = applyMsg(t, m, keyPress(k))
	}
	return m
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	for _, r := range text {
		m = applyMsg(t, m, keyPress(string(r)))
	}
	return m
}

func keyPress(s string) tea.KeyPressMsg {
	switch s {
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "space", " ":
		return tea.KeyPressMsg{Code: tea.KeySpace, Text: " "}
	case "tab":
		return tea.KeyPressMsg{Code: tea.KeyTab}
	case "backspace":
		return tea.KeyPressMsg{Code: tea.KeyBackspace}
	case "left":
		return tea.KeyPressMsg{Code: tea.KeyLeft}
	case "right":
		return tea.KeyPressMsg{Code: tea.KeyRight}
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	}
	if rest, ok := strings.CutPrefix(s, "ctrl+"); ok {
		return tea.KeyPressMsg{Code: []rune(rest)[0], Mod: tea.ModCtrl}
	}
	r := []rune(s)[0]
	return tea.KeyPressMsg{Code: r, Text: s}
}

func columnTaskIDs(t *testing.T, store *board.Store, columnID string) []string {
	t.Helper()
	col, ok := store.Column(columnID)
	if !ok {
		t.Fatalf("missing column %q", columnID)
	}
	return col.TaskIDs
}

func assertOrder(t *testing.T, store *board.Store, columnID string, want ...string) {
	t.Helper()
	got := columnTaskIDs(t, store, columnID)
	if !slices.Equal(got, want) {
		t.Fatalf("column %s = %v, want %v", columnID, got, want)
	}
}

func assertEvents(t *testing.T, log *eventLog, want ...string) {
	t.Helper()
	if !slices.Equal(log.events, want) {
		t.Fatalf("events = %#v, want %#v", log.events, want)
	}
}

// TestModelKeyboardDragReorders verifies grab, move down twice, and drop inside one column.
func TestModelKeyboardDragReorders(t *testing.T) {
	log := &eventLog{}
	store := newTestStore(t, log)
	m := newTestModel(t, store)

	m = applyKeys(t, m, "space")
	if !m.drag.IsDragging() || m.drag.TaskID() != "t1" {
		t.Fatalf("expected t1 drag, got %#v", m.drag.Snapshot())
	}
	m = applyKeys(t, m, "down", "down", "down", "space")
	if m.drag.IsDragging() {
		t.Fatal("expected drag to end after drop")
	}
	assertOrder(t, store, "todo", "t2", "t3", "t1")
	assertEvents(t, log, "move t1 todo->todo 2")
	if m.col != 0 || m.row != 2 {
		t.Fatalf("expected cursor to follow task, got col=%d row=%d", m.col, m.row)
	}
}

func TestModelKeyboardDragAcrossColumns(t *testing.T) {
	log := &eventLog{}
	store := newTestStore(t, log)
	m := newTestModel(t, store)

	m = applyKeys(t, m, "enter", "l", "j", "enter")
	assertOrder(t, store, "todo", "t2", "t3")
	assertOrder(t, store, "doing", "t4", "t1")
	task, _ := store.Task("t1")
	if task.Status != "doing" {
		t.Fatalf("expected status doing, got %q", task.Status)
	}
	assertEvents(t, log, "move t1 todo->doing 1")
	if m.col != 1 || m.row != 1 {
		t.Fatalf("expected cursor on moved task, got col=%d row=%d", m.col, m.row)
	}
}

// TestModelKeyboardDragCancel verifies esc abandons the drag without touching the board.
func TestModelKeyboardDragCancel(t *testing.T) {
	log := &eventLog{}
	store := newTestStore(t, log)
	before := store.Snapshot()
	m := newTestModel(t, store)

	m = applyKeys(t, m, "space", "right", "down", "esc")
	if m.drag.IsDragging() {
		t.Fatal("expected idle session after esc")
	}
	after := store.Snapshot()
	for i := range before.Columns {
		if !slices.Equal(before.Columns[i].TaskIDs, after.Columns[i].TaskIDs) {
			t.Fatalf("column %s changed after cancel", before.Columns[i].ID)
		}
	}
	assertEvents(t, log)
}

func TestModelDropInPlaceIsNoop(t *testing.T) {
	log := &eventLog{}
	store := newTestStore(t, log)
	m := newTestModel(t, store)

	m = applyKeys(t, m, "j", "space", "space")
	if m.drag.IsDragging() {
		t.Fatal("expected drag to end")
	}
	assertOrder(t, store, "todo", "t1", "t2", "t3")
	assertEvents(t, log)
}

// TestModelMouseDragBetweenColumns verifies press, motion, and release across columns.
func TestModelMouseDragBetweenColumns(t *testing.T) {
	log := &eventLog{}
	store := newTestStore(t, log)
	m := newTestModel(t, store)

	m = applyMsg(t, m, tea.MouseClickMsg{X: columnX(0), Y: cardY(0), Button: tea.MouseLeft})
	if m.drag.TaskID() != "t1" {
		t.Fatalf("expected press on first card to start a drag, got %q", m.drag.TaskID())
	}
	m = applyMsg(t, m, tea.MouseMotionMsg{X: columnX(1), Y: cardY(1), Button: tea.MouseLeft})
	if idx, ok := m.drag.TargetIn("doing"); !ok || idx != 1 {
		t.Fatalf("expected candidate doing#1, got %d %v", idx, ok)
	}
	if !strings.Contains(fmt.Sprint(m.View().Content), "drop here") {
		t.Fatal("expected drop marker while dragging")
	}
	m = applyMsg(t, m, tea.MouseReleaseMsg{X: columnX(1), Y: cardY(1), Button: tea.MouseLeft})
	assertOrder(t, store, "doing", "t4", "t1")
	assertEvents(t, log, "move t1 todo->doing 1")
	if m.drag.IsDragging() {
		t.Fatal("expected idle session after release")
	}
}

func TestModelMouseDragWithinColumn(t *testing.T) {
	cases := []struct {
		name string
		y    int
		want []string
	}{
		{name: "onto third card", y: cardY(2), want: []string{"t2", "t1", "t3"}},
		{name: "below last card", y: cardY(3), want: []string{"t2", "t3", "t1"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newTestStore(t, nil)
			m := newTestModel(t, store)
			m = applyMsg(t, m, tea.MouseClickMsg{X: columnX(0), Y: cardY(0), Button: tea.MouseLeft})
			m = applyMsg(t, m, tea.MouseMotionMsg{X: columnX(0), Y: tc.y, Button: tea.MouseLeft})
			_ = applyMsg(t, m, tea.MouseReleaseMsg{X: columnX(0), Y: tc.y, Button: tea.MouseLeft})
			assertOrder(t, store, "todo", tc.want...)
		})
	}
}

// TestModelMouseReleaseOutsideCancels verifies a release off the board cancels the drag.
func TestModelMouseReleaseOutsideCancels(t *testing.T) {
	log := &eventLog{}
	store := newTestStore(t, log)
	m := newTestModel(t, store)

	m = applyMsg(t, m, tea.MouseClickMsg{X: columnX(0), Y: cardY(0), Button: tea.MouseLeft})
	m = applyMsg(t, m, tea.MouseMotionMsg{X: columnX(2), Y: cardY(0), Button: tea.MouseLeft})
	m = applyMsg(t, m, tea.MouseReleaseMsg{X: columnX(1), Y: 0, Button: tea.MouseLeft})
	if m.drag.IsDragging() {
		t.Fatal("expected drag to be cancelled")
	}
	assertOrder(t, store, "todo", "t1", "t2", "t3")
	assertEvents(t, log)
	if m.status != "drag cancelled" {
		t.Fatalf("unexpected status %q", m.status)
	}
}

func TestModelMouseClickFocusesWithoutMoving(t *testing.T) {
	log := &eventLog{}
	store := newTestStore(t, log)
	m := newTestModel(t, store)

	m = applyMsg(t, m, tea.MouseClickMsg{X: columnX(0), Y: cardY(1) + 1, Button: tea.MouseLeft})
	m = applyMsg(t, m, tea.MouseReleaseMsg{X: columnX(0), Y: cardY(1) + 1, Button: tea.MouseLeft})
	if m.col != 0 || m.row != 1 {
		t.Fatalf("expected focus on second card, got col=%d row=%d", m.col, m.row)
	}
	assertEvents(t, log)

	m = applyMsg(t, m, tea.MouseClickMsg{X: columnX(2), Y: cardY(0), Button: tea.MouseLeft})
	if m.col != 2 || m.drag.IsDragging() {
		t.Fatalf("expected empty column focus without drag, got col=%d dragging=%v", m.col, m.drag.IsDragging())
	}
}

func TestModelMouseWheelScrollsColumn(t *testing.T) {
	store := newTestStore(t, nil)
	for i := range 10 {
		id := fmt.Sprintf("x%d", i)
		task, err := domain.NewTask(domain.TaskInput{ID: id, Title: id, Status: "done"}, testNow)
		if err != nil {
			t.Fatalf("NewTask() error = %v", err)
		}
		store.CreateTask("done", task)
	}
	m := newTestModel(t, store)
	m = applyMsg(t, m, tea.MouseWheelMsg{X: columnX(2), Y: cardY(0), Button: tea.MouseWheelDown})
	if m.scroll["done"] != 1 {
		t.Fatalf("expected scroll offset 1, got %d", m.scroll["done"])
	}
	for range 10 {
		m = applyMsg(t, m, tea.MouseWheelMsg{X: columnX(2), Y: cardY(0), Button: tea.MouseWheelDown})
	}
	if got, want := m.scroll["done"], m.maxScroll(10); got != want {
		t.Fatalf("expected scroll clamped to %d, got %d", want, got)
	}

	// Scrolled by one card, the top visible card is x1.
	m.scroll["done"] = 1
	m = applyMsg(t, m, tea.MouseClickMsg{X: columnX(2), Y: cardY(0), Button: tea.MouseLeft})
	if m.drag.TaskID() != "x1" {
		t.Fatalf("expected press to hit x1, got %q", m.drag.TaskID())
	}
}

// TestModelFormCreatesTask verifies the new task flow through the form.
func TestModelFormCreatesTask(t *testing.T) {
	log := &eventLog{}
	store := newTestStore(t, log)
	m := newTestModel(t, store)

	m = applyKeys(t, m, "l", "n")
	if !m.form.IsOpen() {
		t.Fatal("expected form to open")
	}
	m = typeText(t, m, "Write docs")
	m = applyKeys(t, m, "tab", "tab", "right", "right")
	m = applyKeys(t, m, "ctrl+s")
	if m.form.IsOpen() {
		t.Fatalf("expected form to close, err=%q", m.formUI.err)
	}
	assertOrder(t, store, "doing", "t4", "task-new")
	task, _ := store.Task("task-new")
	if task.Title != "Write docs" || task.Priority != domain.PriorityUrgent || !task.CreatedAt.Equal(testNow) {
		t.Fatalf("unexpected created task %#v", task)
	}
	assertEvents(t, log, "create doing task-new")
	if m.col != 1 || m.row != 1 {
		t.Fatalf("expected cursor on new task, got col=%d row=%d", m.col, m.row)
	}
}

func TestModelFormRequiresTitle(t *testing.T) {
	log := &eventLog{}
	store := newTestStore(t, log)
	m := newTestModel(t, store)

	m = applyKeys(t, m, "n", "ctrl+s")
	if !m.form.IsOpen() || m.formUI.err != "title is required" {
		t.Fatalf("expected open form with title error, got open=%v err=%q", m.form.IsOpen(), m.formUI.err)
	}
	m = applyKeys(t, m, "esc")
	if m.form.IsOpen() {
		t.Fatal("expected esc to close the form")
	}
	assertEvents(t, log)
}

// TestModelFormEditMovesColumn verifies a column change in the form moves the task.
func TestModelFormEditMovesColumn(t *testing.T) {
	log := &eventLog{}
	store := newTestStore(t, log)
	m := newTestModel(t, store)

	m = applyKeys(t, m, "e", "tab", "tab", "tab", "right", "right", "ctrl+s")
	if m.form.IsOpen() {
		t.Fatalf("expected form to close, err=%q", m.formUI.err)
	}
	assertOrder(t, store, "todo", "t2", "t3")
	assertOrder(t, store, "done", "t1")
	assertEvents(t, log, "move t1 todo->done 0")
}

// TestModelFormTitleEditKeepsDescription verifies a long multi-line description
// survives an edit that only touches the title.
func TestModelFormTitleEditKeepsDescription(t *testing.T) {
	log := &eventLog{}
	store := newTestStore(t, log)
	description := "## Plan\n\n- step one\n\t- nested step\n\n" + strings.Repeat("x", 600)
	longTitle := strings.Repeat("long title ", 15)
	store.UpdateTask("t1", domain.TaskPatch{Title: domain.Some(longTitle), Description: domain.Some(description)})
	log.events = nil
	m := newTestModel(t, store)

	m = applyKeys(t, m, "e")
	m = typeText(t, m, "!")
	m = applyKeys(t, m, "ctrl+s")
	if m.form.IsOpen() {
		t.Fatalf("expected form to close, err=%q", m.formUI.err)
	}
	task, _ := store.Task("t1")
	if task.Title != strings.TrimSpace(longTitle+"!") {
		t.Fatalf("expected the full title plus the edit, got %q", task.Title)
	}
	if task.Description != description {
		t.Fatalf("description changed:\n%q", task.Description)
	}
	assertEvents(t, log, "update t1 title")
}

// TestModelFormDescriptionIsMultiline verifies enter starts a new description line.
func TestModelFormDescriptionIsMultiline(t *testing.T) {
	store := newTestStore(t, nil)
	m := newTestModel(t, store)

	m = applyKeys(t, m, "n")
	m = typeText(t, m, "Notes")
	m = applyKeys(t, m, "tab")
	if m.formUI.focus != fieldDescription {
		t.Fatalf("expected description focus, got %d", m.formUI.focus)
	}
	m = typeText(t, m, "first")
	m = applyKeys(t, m, "enter")
	m = typeText(t, m, "second")
	m = applyKeys(t, m, "up")
	if m.formUI.focus != fieldDescription {
		t.Fatal("up inside the description should not leave the field")
	}
	m = applyKeys(t, m, "ctrl+s")
	task, ok := store.Task("task-new")
	if !ok || task.Description != "first\nsecond" {
		t.Fatalf("expected two-line description, got %#v", task)
	}
}

func TestModelFormRejectsBadDueDate(t *testing.T) {
	store := newTestStore(t, nil)
	m := newTestModel(t, store)

	m = applyKeys(t, m, "e", "tab", "tab", "tab", "tab", "tab")
	if m.formUI.focus != fieldDue {
		t.Fatalf("expected due field focus, got %d", m.formUI.focus)
	}
	m = typeText(t, m, "soon")
	m = applyKeys(t, m, "ctrl+s")
	if !m.form.IsOpen() || !strings.Contains(m.formUI.err, "YYYY-MM-DD") {
		t.Fatalf("expected due date error, got open=%v err=%q", m.form.IsOpen(), m.formUI.err)
	}

	for range 4 {
		m = applyKeys(t, m, "backspace")
	}
	m = typeText(t, m, "2026-03-03")
	m = applyKeys(t, m, "ctrl+s")
	task, _ := store.Task("t1")
	if task.DueAt == nil || task.DueAt.Format("2006-01-02") != "2026-03-03" {
		t.Fatalf("expected due date saved, got %v", task.DueAt)
	}
}

func TestModelFormTags(t *testing.T) {
	store := newTestStore(t, nil)
	m := newTestModel(t, store)

	m = applyKeys(t, m, "n")
	m = typeText(t, m, "Tagged")
	for range int(fieldTags) {
		m = applyKeys(t, m, "tab")
	}
	m = typeText(t, m, "ui")
	m = applyKeys(t, m, "enter")
	m = typeText(t, m, "ui")
	m = applyKeys(t, m, "enter")
	if m.formUI.err == "" {
		t.Fatal("expected duplicate tag to be rejected")
	}
	m = typeText(t, m, "api")
	m = applyKeys(t, m, "enter", "backspace")
	m = typeText(t, m, "docs")
	m = applyKeys(t, m, "ctrl+s")
	task, ok := store.Task("task-new")
	if !ok || !slices.Equal(task.Tags, []string{"ui", "docs"}) {
		t.Fatalf("unexpected tags %#v", task.Tags)
	}
}

// TestModelDeleteConfirmation verifies d asks first and n keeps the task.
func TestModelDeleteConfirmation(t *testing.T) {
	log := &eventLog{}
	store := newTestStore(t, log)
	m := newTestModel(t, store)

	m = applyKeys(t, m, "d")
	if !m.form.ConfirmingDelete() {
		t.Fatal("expected pending delete confirmation")
	}
	m = applyKeys(t, m, "n")
	if m.form.IsOpen() {
		t.Fatal("expected n to close the prompt")
	}
	if _, ok := store.Task("t1"); !ok {
		t.Fatal("expected task to survive")
	}
	m = applyKeys(t, m, "d", "y")
	if _, ok := store.Task("t1"); ok {
		t.Fatal("expected task to be deleted")
	}
	assertEvents(t, log, "delete t1")
	if m.row != 0 || m.status != "deleted: Task 1" {
		t.Fatalf("unexpected cursor/status row=%d status=%q", m.row, m.status)
	}
}

func TestModelDeleteFromFormWithoutConfirmation(t *testing.T) {
	log := &eventLog{}
	store := newTestStore(t, log)
	m := newTestModel(t, store, WithConfirmDelete(false))

	m = applyKeys(t, m, "d")
	assertEvents(t, log, "delete t1")

	m = applyKeys(t, m, "e", "ctrl+d")
	if m.form.IsOpen() {
		t.Fatal("expected form to close after delete")
	}
	assertEvents(t, log, "delete t1", "delete t2")
}

func TestModelCollapseCopyAndDetail(t *testing.T) {
	store := newTestStore(t, nil)
	var copied string
	m := newTestModel(t, store, WithClipboard(func(s string) error {
		copied = s
		return nil
	}))

	m = applyKeys(t, m, "j", "y")
	if copied != "Task 2" || !strings.HasPrefix(m.status, "copied") {
		t.Fatalf("unexpected copy result %q status=%q", copied, m.status)
	}

	m = applyKeys(t, m, "i")
	if !m.showDetail {
		t.Fatal("expected detail overlay")
	}
	m = applyKeys(t, m, "esc", "c")
	if !m.collapsed["todo"] {
		t.Fatal("expected todo to collapse")
	}
	if _, ok := m.focusedTask(); ok {
		t.Fatal("expected no focused task in a collapsed column")
	}
	if rects := m.columnRects(); rects[0].inner != collapsedInnerWidth {
		t.Fatalf("expected collapsed width, got %d", rects[0].inner)
	}
	m = applyKeys(t, m, "c")
	if m.collapsed["todo"] {
		t.Fatal("expected todo to expand")
	}
}

func TestModelCopyFailureReported(t *testing.T) {
	store := newTestStore(t, nil)
	m := newTestModel(t, store, WithClipboard(func(string) error { return errors.New("no clipboard") }))
	m = applyKeys(t, m, "y")
	if m.status != "copy failed: no clipboard" {
		t.Fatalf("unexpected status %q", m.status)
	}
}

// TestModelSurfacesSaveErrors verifies a failed write shows in the status line.
func TestModelSurfacesSaveErrors(t *testing.T) {
	store := newTestStore(t, nil)
	m := newTestModel(t, store, WithSaveErrors(func() error { return errors.New("disk full") }))

	m = applyKeys(t, m, "space", "l", "space")
	if m.status != "save failed: disk full" {
		t.Fatalf("unexpected status %q", m.status)
	}
	assertOrder(t, store, "doing", "t1", "t4")
}

func TestModelStatusMsgAndQuit(t *testing.T) {
	m := newTestModel(t, newTestStore(t, nil))
	m = applyMsg(t, m, StatusMsg("hello"))
	if m.status != "hello" {
		t.Fatalf("unexpected status %q", m.status)
	}
	_, cmd := m.Update(keyPress("q"))
	if cmd == nil {
		t.Fatal("expected quit cmd")
	}
}

func TestModelViewRendersBoard(t *testing.T) {
	store := newTestStore(t, nil)
	m := newTestModel(t, store)
	v := m.View()
	if v.MouseMode != tea.MouseModeCellMotion || !v.AltScreen {
		t.Fatal("expected alt screen with cell motion mouse")
	}
	rendered := fmt.Sprint(v.Content)
	for _, want := range []string{"To Do (3)", "Doing (1/2)", "Done (0)", "Task 1", "(empty)"} {
		if !strings.Contains(rendered, want) {
			t.Fatalf("expected %q in view", want)
		}
	}

	m = applyKeys(t, m, "?")
	if !m.help.ShowAll {
		t.Fatal("expected help overlay")
	}
	m = applyKeys(t, m, "j")
	if m.row != 0 {
		t.Fatal("expected board keys ignored under help")
	}
	m = applyKeys(t, m, "esc")
	if m.help.ShowAll {
		t.Fatal("expected esc to close help")
	}
}
