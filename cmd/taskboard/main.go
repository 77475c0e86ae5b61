package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/evanschultz/taskboard/internal/adapters/storage/sqlite"
	"github.com/evanschultz/taskboard/internal/app"
	"github.com/evanschultz/taskboard/internal/board"
	"github.com/evanschultz/taskboard/internal/config"
	"github.com/evanschultz/taskboard/internal/domain"
	"github.com/evanschultz/taskboard/internal/platform"
	"github.com/evanschultz/taskboard/internal/tui"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// version is replaced at link time for release builds.
var version = "dev"

// program is the part of tea.Program the CLI depends on.
type program interface {
	Run() (tea.Model, error)
}

// programFactory stores a package-level helper value.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		// fang has already printed the error.
		os.Exit(1)
	}
}

// run builds the command tree for args and executes it.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	if args == nil {
		args = []string{}
	}

	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return fang.Execute(ctx, root, fang.WithVersion(version))
}

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	dbPath     string
	seedPath   string
	appName    string
	devMode    bool

	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{
		appName: platform.DefaultAppName,
		devMode: version == "dev",
		stdout:  stdout,
		stderr:  stderr,
	}
	if envDev, ok := parseBoolEnv("TASKBOARD_DEV_MODE"); ok {
		opts.devMode = envDev
	}
	if envApp := strings.TrimSpace(os.Getenv("TASKBOARD_APP_NAME")); envApp != "" {
		opts.appName = envApp
	}

	cmd := &cobra.Command{
		Use:   "taskboard",
		Short: "A kanban board for the terminal",
		Long: `taskboard is a kanban board for the terminal.

Tasks are moved between columns with the keyboard or by dragging them with the
mouse, edited in a form, and stored in a local SQLite database.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBoard(cmd.Context(), opts)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config TOML")
	flags.StringVar(&opts.dbPath, "db", "", "path to sqlite database")
	flags.StringVar(&opts.seedPath, "seed", "", "path to a YAML seed board used when the database is empty")
	flags.StringVar(&opts.appName, "app", opts.appName, "application name for config/data path resolution")
	flags.BoolVar(&opts.devMode, "dev", opts.devMode, "use dev mode paths (<app>-dev) and the workspace log file")

	cmd.AddCommand(
		newPathsCmd(opts),
		newListCmd(opts),
		newExportCmd(opts),
		newImportCmd(opts),
		newChangesCmd(opts),
	)
	return cmd
}

// environment is the resolved runtime state behind one command invocation.
type environment struct {
	opts       *rootOptions
	paths      platform.Paths
	configPath string
	cfg        config.Config
	logger     *runtimeLogger
	repo       *sqlite.Repository
}

// envOptions controls how much of the runtime a command needs.
type envOptions struct {
	command string
	// quiet mutes the console log sink, for the TUI.
	quiet bool
	// requireRepo opens the database even when persistence is disabled.
	requireRepo bool
}

// resolvedConfig is the outcome of path resolution and config loading.
type resolvedConfig struct {
	paths      platform.Paths
	configPath string
	cfg        config.Config
}

// resolveConfig applies flag, then environment, then per-user defaults for the
// config and database paths, and loads the config.
func resolveConfig(opts *rootOptions) (resolvedConfig, error) {
	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: opts.appName,
		DevMode: opts.devMode,
	})
	if err != nil {
		return resolvedConfig{}, err
	}

	configPath := strings.TrimSpace(opts.configPath)
	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("TASKBOARD_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
		}
	}
	dbPath := strings.TrimSpace(opts.dbPath)
	dbOverridden := dbPath != ""
	if !dbOverridden {
		if envPath := strings.TrimSpace(os.Getenv("TASKBOARD_DB_PATH")); envPath != "" {
			dbPath = envPath
			dbOverridden = true
		} else {
			dbPath = paths.DBPath
		}
	}

	cfg, err := config.Load(configPath, config.Default(dbPath))
	if err != nil {
		return resolvedConfig{}, fmt.Errorf("load config %q: %w", configPath, err)
	}
	if dbOverridden {
		cfg.Database.Path = dbPath
	}
	if err := cfg.Validate(); err != nil {
		return resolvedConfig{}, fmt.Errorf("validate config %q: %w", configPath, err)
	}
	return resolvedConfig{paths: paths, configPath: configPath, cfg: cfg}, nil
}

// seedFile picks the --seed flag, then board.seed_path, then the per-user seed path.
func (r resolvedConfig) seedFile(flagPath string) string {
	if p := strings.TrimSpace(flagPath); p != "" {
		return p
	}
	if p := r.cfg.SeedPath(r.configPath); p != "" {
		return p
	}
	return r.paths.SeedPath
}

// openEnvironment resolves config and opens the logger and database.
func openEnvironment(opts *rootOptions, eo envOptions) (*environment, error) {
	resolved, err := resolveConfig(opts)
	if err != nil {
		return nil, err
	}
	paths, configPath, cfg := resolved.paths, resolved.configPath, resolved.cfg

	logger, err := newRuntimeLogger(opts.stderr, opts.appName, opts.devMode, cfg.Logging, time.Now)
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	if eo.quiet {
		// The TUI owns the terminal; entries still reach the dev file.
		logger.SetConsoleEnabled(false)
	}

	env := &environment{
		opts:       opts,
		paths:      paths,
		configPath: configPath,
		cfg:        cfg,
		logger:     logger,
	}
	logger.Info("startup configuration resolved", "app", opts.appName, "dev_mode", opts.devMode, "command", eo.command)
	logger.Debug("runtime paths resolved", "config_path", configPath, "data_dir", paths.DataDir, "db_path", cfg.Database.Path)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}

	if !cfg.Database.Persist && !eo.requireRepo {
		logger.Info("database persistence disabled")
		return env, nil
	}
	logger.Info("opening sqlite repository", "db_path", cfg.Database.Path)
	repo, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Error("sqlite open failed", "db_path", cfg.Database.Path, "err", err)
		_ = logger.Close()
		return nil, fmt.Errorf("open sqlite repository: %w", err)
	}
	env.repo = repo
	return env, nil
}

// Close releases the database and the dev log file.
func (e *environment) Close() error {
	var errs []error
	if e.repo != nil {
		if err := e.repo.Close(); err != nil {
			e.logger.Warn("sqlite close failed", "db_path", e.cfg.Database.Path, "err", err)
			errs = append(errs, err)
		}
	}
	if err := e.logger.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close runtime log sink: %w", err))
	}
	return errors.Join(errs...)
}

// repository returns the open repository, or a nil interface when persistence is off.
func (e *environment) repository() app.Repository {
	if e.repo == nil {
		return nil
	}
	return e.repo
}

func (e *environment) seedFile() string {
	return resolvedConfig{paths: e.paths, configPath: e.configPath, cfg: e.cfg}.seedFile(e.opts.seedPath)
}

// loadBoard resolves the initial board from the database, a seed file, or the configured columns.
func (e *environment) loadBoard(ctx context.Context) (board.Snapshot, app.BoardSource, error) {
	columns, err := columnsFromConfig(e.cfg.Board.Columns)
	if err != nil {
		return board.Snapshot{}, "", err
	}
	snap, source, err := app.LoadInitialBoard(ctx, app.BootstrapInput{
		Repo:           e.repository(),
		SeedPath:       e.seedFile(),
		DefaultColumns: columns,
		Now:            time.Now(),
	})
	if err != nil {
		return board.Snapshot{}, "", fmt.Errorf("load board: %w", err)
	}
	e.logger.Info("board loaded", "source", source, "columns", len(snap.Columns), "tasks", len(snap.Tasks))
	return snap, source, nil
}

// columnsFromConfig converts [[board.columns]] entries into empty domain columns.
func columnsFromConfig(in []config.ColumnConfig) ([]domain.Column, error) {
	out := make([]domain.Column, 0, len(in))
	for idx, cc := range in {
		col, err := domain.NewColumn(cc.ID, cc.Title, cc.Color, cc.WIPLimit)
		if err != nil {
			return nil, fmt.Errorf("board.columns[%d]: %w", idx, err)
		}
		out = append(out, col)
	}
	return out, nil
}

// runBoard runs the interactive board until the user quits.
func runBoard(ctx context.Context, opts *rootOptions) error {
	env, err := openEnvironment(opts, envOptions{command: "tui", quiet: true})
	if err != nil {
		return err
	}
	defer func() {
		_ = env.Close()
	}()
	logger := env.logger

	if created, err := config.WriteDefault(env.configPath, config.Default(env.paths.DBPath)); err != nil {
		logger.Warn("default config write failed", "config_path", env.configPath, "err", err)
	} else if created {
		logger.Info("default config written", "config_path", env.configPath)
	}

	snap, source, err := env.loadBoard(ctx)
	if err != nil {
		logger.Error("board load failed", "err", err)
		return err
	}
	store := board.New(snap.Columns, snap.Tasks)
	if err := store.Validate(); err != nil {
		return fmt.Errorf("initial board: %w", err)
	}
	if source != app.SourceDatabase && env.repo != nil {
		if err := env.repo.SaveBoard(ctx, store.Snapshot()); err != nil {
			logger.Error("initial board save failed", "source", source, "err", err)
			return fmt.Errorf("store initial board: %w", err)
		}
		logger.Info("initial board stored", "source", source)
	}

	store.Subscribe(app.NewLogListener(logger))
	tuiOpts := []tui.Option{
		tui.WithLayout(tui.Layout{
			HeaderRows:  env.cfg.Layout.HeaderRows,
			PaddingRows: env.cfg.Layout.PaddingRows,
			CardRows:    env.cfg.Layout.CardRows,
			CardGap:     env.cfg.Layout.CardGap,
		}),
		tui.WithTaskFieldConfig(tui.TaskFieldConfig{
			ShowPriority:    env.cfg.TaskFields.ShowPriority,
			ShowDueDate:     env.cfg.TaskFields.ShowDueDate,
			ShowTags:        env.cfg.TaskFields.ShowTags,
			ShowAssignee:    env.cfg.TaskFields.ShowAssignee,
			ShowDescription: env.cfg.TaskFields.ShowDescription,
		}),
		tui.WithConfirmDelete(env.cfg.Confirm.Delete),
		tui.WithShowWIPWarnings(env.cfg.Board.ShowWIPWarnings),
		tui.WithIDGenerator(uuid.NewString),
		tui.WithLogger(logger),
	}
	if env.repo != nil {
		// Validate has already parsed the timeout.
		timeout, _ := env.cfg.WriteTimeout()
		persister := app.NewPersister(env.repo, store.Snapshot, app.PersisterConfig{
			Timeout: timeout,
			Logger:  logger,
		})
		store.Subscribe(persister)
		tuiOpts = append(tuiOpts, tui.WithSaveErrors(persister.LastError))
	}

	m := tui.NewModel(store, tuiOpts...)
	logger.Info("starting tui program loop", "columns", len(snap.Columns), "tasks", store.Len())
	if _, err := programFactory(m).Run(); err != nil {
		logger.Error("tui program terminated with error", "err", err)
		return fmt.Errorf("run tui program: %w", err)
	}
	logger.Info("command flow complete", "command", "tui")
	return nil
}

// parseBoolEnv reads a boolean environment variable; ok is false when unset or invalid.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
