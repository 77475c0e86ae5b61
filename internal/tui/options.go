package tui

import (
	"time"

	"github.com/atotto/clipboard"
	"github.com/evanschultz/taskboard/internal/app"
	"github.com/evanschultz/taskboard/internal/taskform"
)

// TaskFieldConfig selects which task fields a card shows.
type TaskFieldConfig struct {
	ShowPriority    bool
	ShowDueDate     bool
	ShowTags        bool
	ShowAssignee    bool
	ShowDescription bool
}

// Option configures a Model.
type Option func(*Model)

// DefaultTaskFieldConfig returns the stock card fields.
func DefaultTaskFieldConfig() TaskFieldConfig {
	return TaskFieldConfig{
		ShowPriority:    true,
		ShowDueDate:     true,
		ShowTags:        true,
		ShowAssignee:    true,
		ShowDescription: false,
	}
}

// WithTaskFieldConfig sets the card fields.
func WithTaskFieldConfig(cfg TaskFieldConfig) Option {
	return func(m *Model) {
		m.taskFields = cfg
	}
}

// WithLayout sets the column geometry used for rendering and hit testing.
func WithLayout(layout Layout) Option {
	return func(m *Model) {
		m.layout = layout.normalized()
	}
}

// WithConfirmDelete toggles the delete confirmation prompt.
func WithConfirmDelete(confirm bool) Option {
	return func(m *Model) {
		m.confirmDelete = confirm
	}
}

// WithShowWIPWarnings toggles WIP state labels in column headers.
func WithShowWIPWarnings(show bool) Option {
	return func(m *Model) {
		m.showWIPWarnings = show
	}
}

// WithIDGenerator sets the id source for new tasks.
func WithIDGenerator(gen taskform.IDGenerator) Option {
	return func(m *Model) {
		m.idGen = gen
	}
}

// WithClock sets the time source for new tasks and due-date labels.
func WithClock(clock func() time.Time) Option {
	return func(m *Model) {
		if clock != nil {
			m.now = clock
		}
	}
}

// WithClipboard replaces the clipboard writer.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		if write != nil {
			m.copyText = write
		}
	}
}

// WithSaveErrors sets the source checked after each mutation for a failed write.
func WithSaveErrors(lastErr func() error) Option {
	return func(m *Model) {
		m.saveErr = lastErr
	}
}

// WithLogger sets the logger for board interaction events.
func WithLogger(logger app.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithTitle sets the header title.
func WithTitle(title string) Option {
	return func(m *Model) {
		m.title = title
	}
}

func defaultClipboard(text string) error {
	return clipboard.WriteAll(text)
}
