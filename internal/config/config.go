package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	charmLog "github.com/charmbracelet/log"
	toml "github.com/pelletier/go-toml/v2"
)

// Config is the on-disk TOML configuration.
type Config struct {
	Database   DatabaseConfig   `toml:"database"`
	Logging    LoggingConfig    `toml:"logging"`
	Board      BoardConfig      `toml:"board"`
	Layout     LayoutConfig     `toml:"layout"`
	TaskFields TaskFieldsConfig `toml:"task_fields"`
	Confirm    ConfirmConfig    `toml:"confirm"`
}

type DatabaseConfig struct {
	Path         string `toml:"path"`
	Persist      bool   `toml:"persist"`
	WriteTimeout string `toml:"write_timeout"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

// DevFileConfig controls the logfmt file sink used in dev mode.
type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type BoardConfig struct {
	SeedPath        string         `toml:"seed_path"`
	ShowWIPWarnings bool           `toml:"show_wip_warnings"`
	Columns         []ColumnConfig `toml:"columns"`
}

// ColumnConfig describes one default column used when no stored board exists.
type ColumnConfig struct {
	ID       string `toml:"id"`
	Title    string `toml:"title"`
	Color    string `toml:"color"`
	WIPLimit int    `toml:"wip_limit"`
}

// LayoutConfig holds the row geometry used for card hit testing.
type LayoutConfig struct {
	HeaderRows  int `toml:"header_rows"`
	PaddingRows int `toml:"padding_rows"`
	CardRows    int `toml:"card_rows"`
	CardGap     int `toml:"card_gap"`
}

type TaskFieldsConfig struct {
	ShowPriority    bool `toml:"show_priority"`
	ShowDueDate     bool `toml:"show_due_date"`
	ShowTags        bool `toml:"show_tags"`
	ShowAssignee    bool `toml:"show_assignee"`
	ShowDescription bool `toml:"show_description"`
}

type ConfirmConfig struct {
	Delete bool `toml:"delete"`
}

func defaultColumns() []ColumnConfig {
	return []ColumnConfig{
		{ID: "todo", Title: "To Do", Color: "#6b7280"},
		{ID: "in-progress", Title: "In Progress", Color: "#3b82f6", WIPLimit: 3},
		{ID: "review", Title: "Review", Color: "#f59e0b", WIPLimit: 2},
		{ID: "done", Title: "Done", Color: "#10b981"},
	}
}

// Default returns the built-in config with the database at dbPath.
func Default(dbPath string) Config {
	return Config{
		Database: DatabaseConfig{
			Path:         dbPath,
			Persist:      true,
			WriteTimeout: "2s",
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
				Dir:     ".taskboard/log",
			},
		},
		Board: BoardConfig{
			ShowWIPWarnings: true,
			Columns:         defaultColumns(),
		},
		Layout: LayoutConfig{
			HeaderRows:  3,
			PaddingRows: 1,
			CardRows:    3,
			CardGap:     1,
		},
		TaskFields: TaskFieldsConfig{
			ShowPriority:    true,
			ShowDueDate:     true,
			ShowTags:        true,
			ShowAssignee:    true,
			ShowDescription: false,
		},
		Confirm: ConfirmConfig{
			Delete: true,
		},
	}
}

// Load decodes the TOML file at path over defaults. A missing file yields defaults.
func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	// Columns are replaced wholesale, never merged entry by entry.
	cfg.Board.Columns = nil
	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}
	if len(cfg.Board.Columns) == 0 {
		cfg.Board.Columns = defaults.Board.Columns
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the database, board, and logging sections.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database path is required")
	}
	if _, err := c.WriteTimeout(); err != nil {
		return err
	}
	if _, err := charmLog.ParseLevel(strings.TrimSpace(c.Logging.Level)); err != nil {
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}

	if len(c.Board.Columns) == 0 {
		return errors.New("board.columns must include at least one column")
	}
	seen := map[string]struct{}{}
	for idx, col := range c.Board.Columns {
		id := strings.TrimSpace(col.ID)
		if id == "" {
			return fmt.Errorf("board.columns[%d].id is required", idx)
		}
		if strings.TrimSpace(col.Title) == "" {
			return fmt.Errorf("board.columns[%d].title is required", idx)
		}
		if col.WIPLimit < 0 {
			return fmt.Errorf("board.columns[%d].wip_limit must be >= 0", idx)
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("board.columns[%d].id is duplicated: %s", idx, id)
		}
		seen[id] = struct{}{}
	}

	if c.Layout.HeaderRows < 0 || c.Layout.PaddingRows < 0 || c.Layout.CardGap < 0 {
		return errors.New("layout rows must be >= 0")
	}
	if c.Layout.CardRows < 1 {
		return errors.New("layout.card_rows must be >= 1")
	}
	return nil
}

// WriteTimeout parses database.write_timeout. Blank means no timeout.
func (c Config) WriteTimeout() (time.Duration, error) {
	raw := strings.TrimSpace(c.Database.WriteTimeout)
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid database.write_timeout: %q", c.Database.WriteTimeout)
	}
	return d, nil
}

// SeedPath resolves board.seed_path relative to the config file directory.
func (c Config) SeedPath(configPath string) string {
	raw := strings.TrimSpace(c.Board.SeedPath)
	if raw == "" || filepath.IsAbs(raw) {
		return raw
	}
	dir := filepath.Dir(strings.TrimSpace(configPath))
	if dir == "" {
		return raw
	}
	return filepath.Join(dir, raw)
}

// EnsureConfigDir creates the directory that holds path.
func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// WriteDefault writes cfg to path unless a file already exists there.
func WriteDefault(path string, cfg Config) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("stat config: %w", err)
	}
	if err := EnsureConfigDir(path); err != nil {
		return false, fmt.Errorf("create config dir: %w", err)
	}
	encoded, err := toml.Marshal(cfg)
	if err != nil {
		return false, fmt.Errorf("encode toml: %w", err)
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return false, fmt.Errorf("write config: %w", err)
	}
	return true, nil
}
