package tui

import "github.com/evanschultz/taskboard/internal/board"

// columnRect is the horizontal extent of one rendered column.
type columnRect struct {
	x     int
	outer int
	inner int
}

// columnRects lays columns out left to right in store order.
func (m Model) columnRects() []columnRect {
	ids := m.store.ColumnIDs()
	expandedInner := m.expandedInnerWidth()
	out := make([]columnRect, 0, len(ids))
	x := 0
	for _, id := range ids {
		inner := expandedInner
		if m.collapsed[id] {
			inner = collapsedInnerWidth
		}
		outer := inner + columnChrome
		out = append(out, columnRect{x: x, outer: outer, inner: inner})
		x += outer + columnMargin
	}
	return out
}

// expandedInnerWidth splits the terminal width across expanded columns.
func (m Model) expandedInnerWidth() int {
	if m.width <= 0 {
		return 26
	}
	collapsed := 0
	ids := m.store.ColumnIDs()
	for _, id := range ids {
		if m.collapsed[id] {
			collapsed++
		}
	}
	expanded := len(ids) - collapsed
	if expanded == 0 {
		return 26
	}
	used := collapsed * (collapsedInnerWidth + columnChrome + columnMargin)
	avail := m.width - used - expanded*(columnChrome+columnMargin)
	return clamp(avail/expanded, 14, 40)
}

// innerHeight is the number of content rows inside a column border.
func (m Model) innerHeight() int {
	fixed := m.layout.HeaderRows + m.layout.PaddingRows
	if m.height > 0 {
		return max(fixed+m.layout.CardRows, m.height-boardTop-footerRows-2)
	}
	most := 1
	for _, view := range m.store.Columns() {
		most = max(most, len(view.Tasks))
	}
	return fixed + most*m.layout.Stride()
}

// cardAreaRows is the number of rows available for cards below the header and padding.
func (m Model) cardAreaRows() int {
	return m.innerHeight() - m.layout.HeaderRows - m.layout.PaddingRows
}

// visibleCards is how many whole cards fit in the card area.
func (m Model) visibleCards() int {
	return max(1, (m.cardAreaRows()+m.layout.CardGap)/m.layout.Stride())
}

func (m Model) maxScroll(taskCount int) int {
	return max(0, taskCount-m.visibleCards())
}

// scrollRows converts a column's card scroll offset to rows.
func (m Model) scrollRows(columnID string) int {
	return m.scroll[columnID] * m.layout.Stride()
}

// columnAt returns the index of the column under a pointer.
func (m Model) columnAt(x, y int) (int, bool) {
	if y < boardTop || y >= boardTop+m.innerHeight()+2 {
		return 0, false
	}
	for idx, rect := range m.columnRects() {
		if x >= rect.x && x < rect.x+rect.outer {
			return idx, true
		}
	}
	return 0, false
}

// cardAt returns the index of the card under pointer row y in view. Gap rows and
// collapsed columns hit nothing.
func (m Model) cardAt(view board.ColumnView, y int) (int, bool) {
	if m.collapsed[view.Column.ID] {
		return 0, false
	}
	rel := y - (boardTop + 1) - m.layout.HeaderRows - m.layout.PaddingRows
	if rel < 0 || rel >= m.cardAreaRows() {
		return 0, false
	}
	rel += m.scrollRows(view.Column.ID)
	stride := m.layout.Stride()
	idx := rel / stride
	if rel%stride >= m.layout.CardRows || idx >= len(view.Tasks) {
		return 0, false
	}
	return idx, true
}
