package tui

import "charm.land/bubbles/v2/key"

// keyMap holds the board bindings shown in help.
type keyMap struct {
	quit       key.Binding
	toggleHelp key.Binding
	moveLeft   key.Binding
	moveRight  key.Binding
	moveUp     key.Binding
	moveDown   key.Binding
	grab       key.Binding
	cancel     key.Binding
	addTask    key.Binding
	editTask   key.Binding
	taskInfo   key.Binding
	deleteTask key.Binding
	collapse   key.Binding
	copyTitle  key.Binding
}

// newKeyMap constructs the default board bindings.
func newKeyMap() keyMap {
	return keyMap{
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		toggleHelp: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		moveLeft:   key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "column left")),
		moveRight:  key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "column right")),
		moveUp:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "task up")),
		moveDown:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "task down")),
		grab:       key.NewBinding(key.WithKeys("space", " ", "enter"), key.WithHelp("space", "grab/drop")),
		cancel:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		addTask:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new task")),
		editTask:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit task")),
		taskInfo:   key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "task info")),
		deleteTask: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete task")),
		collapse:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "collapse column")),
		copyTitle:  key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy title")),
	}
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.grab, k.addTask, k.editTask, k.taskInfo, k.deleteTask, k.toggleHelp, k.quit}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.moveLeft, k.moveRight, k.moveUp, k.moveDown},
		{k.grab, k.cancel, k.collapse, k.copyTitle},
		{k.addTask, k.editTask, k.taskInfo, k.deleteTask, k.toggleHelp, k.quit},
	}
}

// formKeyMap holds the task form bindings.
type formKeyMap struct {
	next     key.Binding
	prev     key.Binding
	cycle    key.Binding
	addTag   key.Binding
	save     key.Binding
	delete   key.Binding
	cancel   key.Binding
	confirm  key.Binding
	decline  key.Binding
	cycleAlt key.Binding
}

// newFormKeyMap constructs the task form bindings.
func newFormKeyMap() formKeyMap {
	return formKeyMap{
		next:     key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		prev:     key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field")),
		cycle:    key.NewBinding(key.WithKeys("right"), key.WithHelp("←/→", "cycle")),
		cycleAlt: key.NewBinding(key.WithKeys("left")),
		addTag:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "add tag")),
		save:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		delete:   key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "delete")),
		cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		confirm:  key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "confirm")),
		decline:  key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n", "keep")),
	}
}

// ShortHelp handles short help.
func (k formKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.next, k.cycle, k.addTag, k.save, k.delete, k.cancel}
}

// FullHelp handles full help.
func (k formKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
