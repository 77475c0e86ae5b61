package tui

import (
	"strings"
	"time"
	"unicode/utf8"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/evanschultz/taskboard/internal/taskform"
)

// formField identifies one row of the task form.
type formField int

const (
	fieldTitle formField = iota
	fieldDescription
	fieldPriority
	fieldColumn
	fieldAssignee
	fieldDue
	fieldTags
	fieldCount
)

var formFieldLabels = [fieldCount]string{"title", "description", "priority", "column", "assignee", "due", "tags"}

// formState is the text input state behind the open draft.
type formState struct {
	inputs      []textinput.Model
	description textarea.Model
	focus       formField
	err         string
	// shown holds each text field as its input first rendered it and stored the draft
	// value behind it. Inputs normalize what they display, so an unedited field maps
	// back to stored instead of the normalized text.
	shown  [fieldCount]string
	stored [fieldCount]string
	// deleteOnly marks a form opened just to confirm a delete from the board.
	deleteOnly bool
}

// hasInput reports whether field is edited as free text.
func (f formField) hasInput() bool {
	return f != fieldPriority && f != fieldColumn
}

// newModalInput constructs modal input. A value longer than limit lifts the limit so
// it is never cut.
func newModalInput(placeholder, value string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = placeholder
	in.CharLimit = limit
	if utf8.RuneCountInString(value) > limit {
		in.CharLimit = 0
	}
	if value != "" {
		in.SetValue(value)
	}
	return in
}

// newDescriptionArea constructs the multi-line markdown editor.
func newDescriptionArea(value string) textarea.Model {
	ta := textarea.New()
	ta.Prompt = ""
	ta.Placeholder = "markdown description"
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.SetHeight(4)
	if value != "" {
		ta.SetValue(value)
	}
	return ta
}

// openFormUI builds the inputs from the controller draft and focuses the title.
func (m *Model) openFormUI() tea.Cmd {
	d := m.form.Draft()
	inputs := make([]textinput.Model, fieldCount)
	inputs[fieldTitle] = newModalInput("task title (required)", d.Title, 120)
	inputs[fieldAssignee] = newModalInput("name", d.Assignee, 80)
	inputs[fieldDue] = newModalInput("YYYY-MM-DD (blank clears)", formatDueInput(d.DueAt), len(taskform.DueDateLayout))
	inputs[fieldTags] = newModalInput("type a tag, enter adds", "", 40)
	m.formUI = formState{inputs: inputs, description: newDescriptionArea(d.Description)}
	m.formUI.stored[fieldTitle] = d.Title
	m.formUI.stored[fieldDescription] = d.Description
	m.formUI.stored[fieldAssignee] = d.Assignee
	m.formUI.stored[fieldDue] = formatDueInput(d.DueAt)
	for _, field := range []formField{fieldTitle, fieldDescription, fieldAssignee, fieldDue} {
		m.formUI.shown[field] = m.formUI.value(field)
	}
	return m.focusFormField(fieldTitle)
}

// value returns the current text of a free-text field.
func (f formState) value(field formField) string {
	if field == fieldDescription {
		return f.description.Value()
	}
	return f.inputs[field].Value()
}

// edited reports whether the user changed field since the form opened.
func (f formState) edited(field formField) bool {
	return f.value(field) != f.shown[field]
}

// focusFormField focuses field, blurring every other input.
func (m *Model) focusFormField(field formField) tea.Cmd {
	if len(m.formUI.inputs) == 0 {
		return nil
	}
	field = formField(wrapIndex(int(field), 0, int(fieldCount)))
	m.formUI.focus = field
	for i := range m.formUI.inputs {
		m.formUI.inputs[i].Blur()
	}
	m.formUI.description.Blur()
	switch {
	case field == fieldDescription:
		return m.formUI.description.Focus()
	case !field.hasInput():
		return nil
	}
	return m.formUI.inputs[field].Focus()
}

// handleFormKey routes a key press to the open form.
func (m Model) handleFormKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if m.form.ConfirmingDelete() {
		switch {
		case key.Matches(msg, m.formKeys.confirm):
			m.confirmFormDelete(m.form.Draft().Title)
		case key.Matches(msg, m.formKeys.decline):
			if m.formUI.deleteOnly {
				m.form.Cancel()
				m.status = "delete cancelled"
				return m, nil
			}
			m.form.CancelDelete()
		}
		return m, nil
	}

	// Arrows move between lines inside the description.
	if m.formUI.focus == fieldDescription && (msg.Code == tea.KeyUp || msg.Code == tea.KeyDown) {
		return m.updateDescription(msg)
	}

	switch {
	case key.Matches(msg, m.formKeys.save):
		m.saveForm()
		return m, nil
	case key.Matches(msg, m.formKeys.delete):
		if m.form.RequestDelete() && !m.confirmDelete {
			m.confirmFormDelete(m.form.Draft().Title)
		}
		return m, nil
	case key.Matches(msg, m.formKeys.cancel):
		m.form.Cancel()
		m.status = "cancelled"
		return m, nil
	case key.Matches(msg, m.formKeys.next):
		return m, m.focusFormField(m.formUI.focus + 1)
	case key.Matches(msg, m.formKeys.prev):
		return m, m.focusFormField(m.formUI.focus - 1)
	}

	switch m.formUI.focus {
	case fieldPriority, fieldColumn:
		delta := 0
		switch {
		case key.Matches(msg, m.formKeys.cycle):
			delta = 1
		case key.Matches(msg, m.formKeys.cycleAlt):
			delta = -1
		}
		if delta != 0 {
			if m.formUI.focus == fieldPriority {
				m.form.CyclePriority(delta)
			} else {
				m.form.CycleColumn(m.store.ColumnIDs(), delta)
			}
		}
		return m, nil
	case fieldTags:
		in := &m.formUI.inputs[fieldTags]
		switch {
		case key.Matches(msg, m.formKeys.addTag):
			if m.form.AddTag(in.Value()) {
				m.formUI.err = ""
			} else {
				m.formUI.err = "tag is empty or already present"
			}
			in.SetValue("")
			return m, nil
		case msg.Code == tea.KeyBackspace && in.Value() == "":
			if tags := m.form.Draft().Tags; len(tags) > 0 {
				m.form.RemoveTag(tags[len(tags)-1])
			}
			return m, nil
		}
	}

	if m.formUI.focus == fieldDescription {
		return m.updateDescription(msg)
	}
	var cmd tea.Cmd
	field := m.formUI.focus
	m.formUI.inputs[field], cmd = m.formUI.inputs[field].Update(msg)
	m.syncFormField(field)
	return m, cmd
}

// updateDescription forwards msg to the description editor.
func (m Model) updateDescription(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.formUI.description, cmd = m.formUI.description.Update(msg)
	m.syncFormField(fieldDescription)
	return m, cmd
}

// syncFormField copies a free-text input into the draft. An unedited field keeps the
// value the draft was opened with.
func (m *Model) syncFormField(field formField) {
	value := m.formUI.value(field)
	if !m.formUI.edited(field) {
		value = m.formUI.stored[field]
	}
	switch field {
	case fieldTitle:
		m.form.SetTitle(value)
	case fieldDescription:
		m.form.SetDescription(value)
	case fieldAssignee:
		m.form.SetAssignee(value)
	}
}

// saveForm validates the remaining inputs and commits the draft.
func (m *Model) saveForm() {
	for _, field := range []formField{fieldTitle, fieldDescription, fieldAssignee} {
		m.syncFormField(field)
	}
	if m.formUI.edited(fieldDue) {
		if err := m.form.SetDueDate(m.formUI.inputs[fieldDue].Value()); err != nil {
			m.formUI.err = "due date must be YYYY-MM-DD"
			return
		}
	}
	if pending := strings.TrimSpace(m.formUI.inputs[fieldTags].Value()); pending != "" {
		m.form.AddTag(pending)
	}
	if !m.form.CanSave() {
		m.formUI.err = "title is required"
		return
	}
	mode := m.form.Mode()
	id, ok := m.form.Save()
	if !ok {
		m.formUI.err = "task could not be saved"
		return
	}
	m.formUI = formState{}
	m.focusTask(id)
	if mode == taskform.ModeCreate {
		m.status = "created task"
	} else {
		m.status = "saved task"
	}
	m.logger.Debug("task form saved", "task_id", id)
	m.checkSaveErr()
}

// confirmFormDelete deletes the draft's task.
func (m *Model) confirmFormDelete(title string) {
	if !m.form.ConfirmDelete() {
		return
	}
	m.formUI = formState{}
	m.status = "deleted: " + truncate(title, 40)
	m.clampCursor()
	m.checkSaveErr()
}

func formatDueInput(due *time.Time) string {
	if due == nil {
		return ""
	}
	return due.Format(taskform.DueDateLayout)
}

// wrapIndex moves current by delta and wraps within total.
func wrapIndex(current, delta, total int) int {
	if total <= 0 {
		return 0
	}
	next := (current + delta) % total
	if next < 0 {
		next += total
	}
	return next
}
