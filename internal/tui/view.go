package tui

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/evanschultz/taskboard/internal/board"
	"github.com/evanschultz/taskboard/internal/domain"
	"github.com/evanschultz/taskboard/internal/taskform"
)

var (
	accentColor = lipgloss.Color("62")
	mutedColor  = lipgloss.Color("241")
	dimColor    = lipgloss.Color("239")
	focusColor  = lipgloss.Color("212")
	warnColor   = lipgloss.Color("214")
	alertColor  = lipgloss.Color("203")
	okColor     = lipgloss.Color("42")
)

// View handles view.
func (m Model) View() tea.View {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	statusStyle := lipgloss.NewStyle().Foreground(dimColor)

	header := titleStyle.Render(m.title) + statusStyle.Render(fmt.Sprintf("  %d tasks", m.store.Len()))
	if m.drag.IsDragging() {
		header += lipgloss.NewStyle().Foreground(focusColor).Render("  " + m.dragSummary())
	}

	cols := m.store.Columns()
	body := lipgloss.NewStyle().Foreground(mutedColor).Render("No columns configured.")
	if len(cols) > 0 {
		rects := m.columnRects()
		views := make([]string, 0, len(cols))
		for idx, view := range cols {
			views = append(views, m.renderColumn(view, idx, rects[idx].inner))
		}
		body = lipgloss.JoinHorizontal(lipgloss.Top, views...)
	}

	status := ""
	if strings.TrimSpace(m.status) != "" && m.status != "ready" {
		status = m.status
	}
	if strings.HasPrefix(status, "save failed") {
		status = lipgloss.NewStyle().Foreground(alertColor).Render(status)
	} else {
		status = statusStyle.Render(status)
	}
	content := strings.Join([]string{header, "", body, status}, "\n")

	helpBubble := m.help
	helpBubble.ShowAll = false
	helpBubble.SetWidth(max(0, m.width-2))
	helpLine := lipgloss.NewStyle().
		Foreground(mutedColor).
		BorderTop(true).
		BorderForeground(dimColor).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(m.keys))

	if m.height > 0 {
		content = fitLines(content, max(0, m.height-lipgloss.Height(helpLine)))
	}
	fullContent := content + "\n" + helpLine

	overlay := ""
	switch {
	case m.form.IsOpen():
		overlay = m.renderForm()
	case m.showDetail:
		overlay = m.renderTaskDetails()
	case m.help.ShowAll:
		overlay = m.renderHelpOverlay()
	}
	if overlay != "" {
		overlayHeight := lipgloss.Height(fullContent)
		if m.height > 0 {
			overlayHeight = m.height
		}
		fullContent = overlayOnContent(fullContent, overlay, max(1, m.width), max(1, overlayHeight))
	}

	view := tea.NewView(fullContent)
	view.MouseMode = tea.MouseModeCellMotion
	view.AltScreen = true
	return view
}

// dragSummary describes the dragged task and its candidate slot.
func (m Model) dragSummary() string {
	task, _ := m.store.Task(m.drag.TaskID())
	out := "dragging " + truncate(task.Title, 24)
	if target, ok := m.drag.Target(); ok {
		out += fmt.Sprintf(" → %s #%d", m.columnTitle(target.ColumnID), target.Index+1)
	}
	return out
}

// renderColumn renders one bordered column with exactly innerHeight content rows.
func (m Model) renderColumn(view board.ColumnView, idx, inner int) string {
	columnID := view.Column.ID
	height := m.innerHeight()
	focused := idx == m.col
	_, isTarget := m.drag.TargetIn(columnID)

	var lines []string
	if m.collapsed[columnID] {
		lines = m.collapsedLines(view, height)
	} else {
		lines = append(lines, fixLines(m.columnHeader(view, inner, isTarget), m.layout.HeaderRows)...)
		area := make([]string, m.layout.PaddingRows, m.layout.PaddingRows+m.cardAreaRows())
		area = append(area, m.cardWindow(view, inner, focused)...)
		m.placeDropMarker(area, view, inner)
		lines = append(lines, area...)
	}
	lines = fixLines(lines, height)
	for i := range lines {
		lines[i] = padRight(lines[i], inner)
	}

	border := dimColor
	switch {
	case isTarget:
		border = focusColor
	case focused:
		border = accentColor
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		MarginRight(columnMargin).
		Render(strings.Join(lines, "\n"))
}

// columnHeader renders the title row, the WIP meter, and the separator.
func (m Model) columnHeader(view board.ColumnView, inner int, isTarget bool) []string {
	col := view.Column
	titleColor := accentColor
	if strings.TrimSpace(col.Color) != "" {
		titleColor = lipgloss.Color(col.Color)
	}
	count := len(view.Tasks)
	label := fmt.Sprintf("%s (%d)", col.Title, count)
	if col.HasWIPLimit() {
		label = fmt.Sprintf("%s (%d/%d)", col.Title, count, col.WIPLimit)
	}
	sep := lipgloss.NewStyle().Foreground(dimColor)
	if isTarget {
		sep = sep.Foreground(focusColor)
	}
	return []string{
		lipgloss.NewStyle().Bold(true).Foreground(titleColor).Render(truncate(label, inner)),
		m.wipMeter(count, col.WIPLimit, inner),
		sep.Render(strings.Repeat("─", inner)),
	}
}

// wipMeter renders a fill bar for a column with a WIP limit.
func (m Model) wipMeter(count, limit, inner int) string {
	state := board.ClassifyWIP(count, limit)
	if state == board.WIPNone {
		return lipgloss.NewStyle().Foreground(dimColor).Render(truncate("no limit", inner))
	}
	width := clamp(inner-8, 3, 10)
	filled := clamp(int(math.Round(board.FillRatio(count, limit)*float64(width))), 0, width)
	bar := strings.Repeat("■", filled) + strings.Repeat("□", width-filled)
	var fg color.Color = okColor
	label := ""
	switch state {
	case board.WIPApproaching:
		fg = warnColor
		label = " near"
	case board.WIPAtLimit:
		fg = alertColor
		label = " full"
	}
	if !m.showWIPWarnings {
		fg = mutedColor
		label = ""
	}
	return lipgloss.NewStyle().Foreground(fg).Render(truncate(bar+label, inner))
}

// collapsedLines renders a narrow column: the task count then the title downwards.
func (m Model) collapsedLines(view board.ColumnView, height int) []string {
	style := lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	lines := []string{style.Render(truncate(fmt.Sprint(len(view.Tasks)), collapsedInnerWidth)), ""}
	for _, r := range view.Column.Title {
		if len(lines) >= height {
			break
		}
		lines = append(lines, string(r))
	}
	return lines
}

// cardWindow renders the scrolled slice of card rows.
func (m Model) cardWindow(view board.ColumnView, inner int, focused bool) []string {
	rows := m.cardAreaRows()
	if len(view.Tasks) == 0 {
		return fixLines([]string{lipgloss.NewStyle().Foreground(mutedColor).Render("(empty)")}, rows)
	}
	all := make([]string, 0, len(view.Tasks)*m.layout.Stride())
	for i, task := range view.Tasks {
		all = append(all, m.cardLines(task, inner, focused && i == m.row)...)
		all = append(all, make([]string, m.layout.CardGap)...)
	}
	start := min(len(all), m.scrollRows(view.Column.ID))
	return fixLines(all[start:], rows)
}

// placeDropMarker draws the candidate line on the blank row just above the
// visual slot. Layouts without a blank row there show no marker.
func (m Model) placeDropMarker(area []string, view board.ColumnView, inner int) {
	index, ok := m.drag.TargetIn(view.Column.ID)
	if !ok {
		return
	}
	slot := index
	if dragged := m.draggedIndexIn(view.Column.ID); dragged >= 0 && dragged <= index {
		slot++
	}
	row := m.layout.PaddingRows + slot*m.layout.Stride() - 1 - m.scrollRows(view.Column.ID)
	if row < 0 || row >= len(area) || area[row] != "" {
		return
	}
	area[row] = lipgloss.NewStyle().Foreground(focusColor).Render(truncate("──▶ drop here", inner))
}

// cardLines renders a task card as exactly CardRows lines.
func (m Model) cardLines(task domain.Task, inner int, focused bool) []string {
	dragged := m.drag.IsDragging() && m.drag.TaskID() == task.ID
	prefix := "  "
	switch {
	case dragged:
		prefix = "┆ "
	case focused:
		prefix = "│ "
	}
	width := max(1, inner-2)

	titleStyle := lipgloss.NewStyle()
	switch {
	case dragged:
		titleStyle = titleStyle.Foreground(mutedColor).Faint(true)
	case focused:
		titleStyle = titleStyle.Foreground(focusColor).Bold(true)
	}
	first := ""
	if badge := priorityBadge(task.Priority); m.taskFields.ShowPriority && badge != "" {
		first = lipgloss.NewStyle().Foreground(priorityColor(task.Priority)).Render(badge) + " "
		width -= lipgloss.Width(badge) + 1
	}
	first += titleStyle.Render(truncate(task.Title, max(1, width)))
	lines := []string{prefix + first}

	sub := lipgloss.NewStyle().Foreground(mutedColor)
	secondaryWidth := max(1, inner-2)
	if m.taskFields.ShowDescription {
		if desc := firstLine(task.Description); desc != "" {
			lines = append(lines, prefix+sub.Render(truncate(desc, secondaryWidth)))
		}
	}
	meta := make([]string, 0, 2)
	if m.taskFields.ShowAssignee && strings.TrimSpace(task.Assignee) != "" {
		meta = append(meta, "@"+domain.Initials(task.Assignee))
	}
	if m.taskFields.ShowDueDate {
		if label, fg := m.dueLabel(task); label != "" {
			meta = append(meta, lipgloss.NewStyle().Foreground(fg).Render(label))
		}
	}
	if len(meta) > 0 {
		lines = append(lines, prefix+sub.Render(strings.Join(meta, "  ")))
	}
	if m.taskFields.ShowTags && len(task.Tags) > 0 {
		lines = append(lines, prefix+sub.Render(truncate("#"+strings.Join(task.Tags, " #"), secondaryWidth)))
	}
	return fixLines(lines, m.layout.CardRows)
}

// dueLabel returns the due badge text and its color.
func (m Model) dueLabel(task domain.Task) (string, color.Color) {
	switch task.DueState(m.now()) {
	case domain.DueOverdue:
		return "overdue " + task.DueAt.Format("Jan 2"), alertColor
	case domain.DueToday:
		return "due today", warnColor
	case domain.DueTomorrow:
		return "due tomorrow", mutedColor
	case domain.DueUpcoming:
		return "due " + task.DueAt.Format("Jan 2"), mutedColor
	default:
		return "", mutedColor
	}
}

func priorityBadge(p domain.Priority) string {
	switch p {
	case domain.PriorityUrgent:
		return "[U]"
	case domain.PriorityHigh:
		return "[H]"
	case domain.PriorityMedium:
		return "[M]"
	case domain.PriorityLow:
		return "[L]"
	default:
		return ""
	}
}

func priorityColor(p domain.Priority) color.Color {
	switch p {
	case domain.PriorityUrgent:
		return alertColor
	case domain.PriorityHigh:
		return warnColor
	case domain.PriorityMedium:
		return lipgloss.Color("75")
	default:
		return mutedColor
	}
}

// renderForm renders the task form or its delete confirmation.
func (m Model) renderForm() string {
	d := m.form.Draft()
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	hint := lipgloss.NewStyle().Foreground(mutedColor)
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accentColor).
		Padding(0, 1)

	if m.form.ConfirmingDelete() {
		lines := []string{
			lipgloss.NewStyle().Bold(true).Foreground(alertColor).Render("Delete task?"),
			truncate(d.Title, 48),
			"",
			hint.Render("y delete • n keep"),
		}
		return box.BorderForeground(alertColor).Render(strings.Join(lines, "\n"))
	}

	heading := "New Task"
	if m.form.Mode() == taskform.ModeEdit {
		heading = "Edit Task"
	}
	lines := []string{titleStyle.Render(heading), ""}
	labelStyle := lipgloss.NewStyle().Width(13)
	for field := fieldTitle; field < fieldCount; field++ {
		label := "  " + formFieldLabels[field]
		style := labelStyle.Foreground(mutedColor)
		if field == m.formUI.focus {
			label = "› " + formFieldLabels[field]
			style = labelStyle.Foreground(accentColor).Bold(true)
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, style.Render(label), m.formFieldValue(field, d)))
	}
	if m.formUI.err != "" {
		lines = append(lines, "", lipgloss.NewStyle().Foreground(alertColor).Render(m.formUI.err))
	}
	hb := m.help
	hb.ShowAll = false
	lines = append(lines, "", hint.Render(hb.View(m.formKeys)))
	if m.width > 0 {
		box = box.Width(clamp(m.width-8, 44, 80))
	}
	return box.Render(strings.Join(lines, "\n"))
}

// formFieldValue renders the value cell of one form row.
func (m Model) formFieldValue(field formField, d taskform.Draft) string {
	switch field {
	case fieldPriority:
		return "‹ " + string(d.Priority) + " ›"
	case fieldColumn:
		return "‹ " + m.columnTitle(d.ColumnID) + " ›"
	case fieldTags:
		chips := ""
		if len(d.Tags) > 0 {
			chips = lipgloss.NewStyle().Foreground(accentColor).Render("#"+strings.Join(d.Tags, " #")) + " "
		}
		return chips + m.formUI.inputs[field].View()
	case fieldDescription:
		return m.formUI.description.View()
	default:
		if int(field) >= len(m.formUI.inputs) {
			return ""
		}
		return m.formUI.inputs[field].View()
	}
}

// renderTaskDetails renders the focused task with its description as markdown.
func (m Model) renderTaskDetails() string {
	task, ok := m.focusedTask()
	if !ok {
		return ""
	}
	muted := lipgloss.NewStyle().Foreground(mutedColor)
	width := 64
	if m.width > 0 {
		width = clamp(m.width-8, 40, 96)
	}
	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(accentColor).Render("Task Details"),
		task.Title,
	}
	meta := []string{"column: " + m.columnTitle(task.Status)}
	if task.Priority != domain.PriorityNone {
		meta = append(meta, "priority: "+string(task.Priority))
	}
	if task.Assignee != "" {
		meta = append(meta, "assignee: "+task.Assignee)
	}
	if task.DueAt != nil {
		meta = append(meta, "due: "+formatDueInput(task.DueAt))
	}
	lines = append(lines, muted.Render(strings.Join(meta, "  ")))
	if len(task.Tags) > 0 {
		lines = append(lines, muted.Render("tags: "+strings.Join(task.Tags, ", ")))
	}
	lines = append(lines, muted.Render("created: "+task.CreatedAt.Local().Format("2006-01-02 15:04")), "")
	if desc := m.md.render(task.Description, width-4); desc != "" {
		lines = append(lines, desc)
	} else {
		lines = append(lines, muted.Render("no description"))
	}
	lines = append(lines, "", muted.Render("e edit • esc close"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dimColor).
		Padding(0, 1).
		Width(width).
		Render(strings.Join(lines, "\n"))
}

// renderHelpOverlay renders the full key reference.
func (m Model) renderHelpOverlay() string {
	width := 72
	if m.width > 0 {
		width = clamp(m.width-8, 48, 96)
	}
	hb := m.help
	hb.ShowAll = true
	hb.SetWidth(width - 4)
	muted := lipgloss.NewStyle().Foreground(mutedColor)
	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(accentColor).Render("taskboard help"),
		"",
		hb.View(m.keys),
		"",
		muted.Render("mouse: press a card and drag it; release outside the board to cancel"),
		muted.Render("press ? or esc to close"),
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dimColor).
		Padding(0, 1).
		Width(width).
		Render(strings.Join(lines, "\n"))
}

// fitLines fits lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		padding := make([]string, maxLines-len(lines))
		lines = append(lines, padding...)
	}
	return strings.Join(lines, "\n")
}

// fixLines cuts or pads lines to exactly n entries.
func fixLines(lines []string, n int) []string {
	n = max(0, n)
	out := make([]string, n)
	copy(out, lines)
	return out
}

// overlayOnContent overlays on content.
func overlayOnContent(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}

	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	baseLayer := lipgloss.NewLayer(base).X(0).Y(0).Z(0)
	centeredOverlay := lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, overlay)
	overlayLayer := lipgloss.NewLayer(centeredOverlay).X(0).Y(0).Z(10)

	canvas.Compose(baseLayer)
	canvas.Compose(overlayLayer)
	return canvas.Render()
}

// padRight pads s with spaces to width cells.
func padRight(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

// truncate truncates the requested operation.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	if max <= 1 {
		return string(rs[:max])
	}
	return string(rs[:max-1]) + "…"
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
