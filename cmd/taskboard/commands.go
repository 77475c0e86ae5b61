package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/evanschultz/taskboard/internal/app"
	"github.com/evanschultz/taskboard/internal/board"
	"github.com/evanschultz/taskboard/internal/domain"
	"github.com/evanschultz/taskboard/internal/seed"
	"github.com/spf13/cobra"
)

// Export formats.
const (
	formatJSON = "json"
	formatYAML = "yaml"
)

func newPathsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print the resolved config, seed, and database paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resolved, err := resolveConfig(opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "app: %s\n", opts.appName)
			_, _ = fmt.Fprintf(out, "dev_mode: %t\n", opts.devMode)
			_, _ = fmt.Fprintf(out, "config: %s\n", resolved.configPath)
			_, _ = fmt.Fprintf(out, "seed: %s\n", resolved.seedFile(opts.seedPath))
			_, _ = fmt.Fprintf(out, "data_dir: %s\n", resolved.paths.DataDir)
			_, _ = fmt.Fprintf(out, "db: %s\n", resolved.cfg.Database.Path)
			return nil
		},
	}
}

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the board as a table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := openEnvironment(opts, envOptions{command: "list"})
			if err != nil {
				return err
			}
			defer func() {
				_ = env.Close()
			}()
			snap, _, err := env.loadBoard(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), renderBoardTable(snap, time.Now()))
			return err
		},
	}
}

// renderBoardTable lays the board out one row per task, grouped by column.
func renderBoardTable(snap board.Snapshot, now time.Time) string {
	rows := make([][]string, 0, len(snap.Tasks)+len(snap.Columns))
	for _, col := range snap.Columns {
		label := fmt.Sprintf("%s (%d)", col.Title, len(col.TaskIDs))
		if col.HasWIPLimit() {
			label = fmt.Sprintf("%s (%d/%d)", col.Title, len(col.TaskIDs), col.WIPLimit)
			if state := board.ClassifyWIP(len(col.TaskIDs), col.WIPLimit); state == board.WIPApproaching || state == board.WIPAtLimit {
				label += " " + state.String()
			}
		}
		if len(col.TaskIDs) == 0 {
			rows = append(rows, []string{label, "", "(empty)", "", "", "", ""})
			continue
		}
		for i, id := range col.TaskIDs {
			task, ok := snap.Tasks[id]
			if !ok {
				continue
			}
			colCell := ""
			if i == 0 {
				colCell = label
			}
			due := ""
			if task.DueAt != nil {
				due = task.DueAt.Format("2006-01-02")
				if state := task.DueState(now); state != domain.DueNone && state != domain.DueUpcoming {
					due += " " + string(state)
				}
			}
			rows = append(rows, []string{
				colCell,
				strconv.Itoa(i + 1),
				task.Title,
				string(task.Priority),
				task.Assignee,
				due,
				strings.Join(task.Tags, ", "),
			})
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("62"))).
		Headers("Column", "#", "Task", "Priority", "Assignee", "Due", "Tags").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Rows(rows...)
	return t.String()
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the board as a JSON snapshot or YAML seed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			outPath, _ := cmd.Flags().GetString("out")
			format, _ := cmd.Flags().GetString("format")
			env, err := openEnvironment(opts, envOptions{command: "export"})
			if err != nil {
				return err
			}
			defer func() {
				_ = env.Close()
			}()
			if err := runExport(cmd.Context(), env, outPath, format, cmd.OutOrStdout()); err != nil {
				env.logger.Error("command flow failed", "command", "export", "err", err)
				return fmt.Errorf("run export command: %w", err)
			}
			env.logger.Info("command flow complete", "command", "export")
			return nil
		},
	}
	cmd.Flags().String("out", "-", "output file path ('-' for stdout)")
	cmd.Flags().String("format", formatJSON, "output format: json or yaml")
	return cmd
}

func runExport(ctx context.Context, env *environment, outPath, format string, stdout io.Writer) error {
	snap, _, err := env.loadBoard(ctx)
	if err != nil {
		return err
	}

	var encoded []byte
	switch strings.ToLower(strings.TrimSpace(format)) {
	case formatJSON, "":
		encoded, err = json.MarshalIndent(app.NewSnapshot(snap, time.Now()), "", "  ")
		if err != nil {
			return fmt.Errorf("encode snapshot json: %w", err)
		}
		encoded = append(encoded, '\n')
	case formatYAML, "yml":
		encoded, err = seed.Marshal(snap)
		if err != nil {
			return fmt.Errorf("encode seed yaml: %w", err)
		}
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}

	if outPath == "" || outPath == "-" {
		if _, err := stdout.Write(encoded); err != nil {
			return fmt.Errorf("write export to stdout: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create export output dir: %w", err)
	}
	if err := os.WriteFile(outPath, encoded, 0o644); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}
	return nil
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the stored board with a JSON snapshot or YAML seed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			inPath, _ := cmd.Flags().GetString("in")
			if strings.TrimSpace(inPath) == "" {
				return errors.New("--in is required")
			}
			env, err := openEnvironment(opts, envOptions{command: "import", requireRepo: true})
			if err != nil {
				return err
			}
			defer func() {
				_ = env.Close()
			}()
			if err := runImport(cmd.Context(), env, inPath); err != nil {
				env.logger.Error("command flow failed", "command", "import", "err", err)
				return fmt.Errorf("run import command: %w", err)
			}
			env.logger.Info("command flow complete", "command", "import", "in", inPath)
			return nil
		},
	}
	cmd.Flags().String("in", "", "input snapshot (.json) or seed (.yaml) file")
	return cmd
}

func runImport(ctx context.Context, env *environment, inPath string) error {
	content, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("read import file: %w", err)
	}

	var snap board.Snapshot
	switch strings.ToLower(filepath.Ext(inPath)) {
	case ".yaml", ".yml":
		snap, err = seed.Parse(content, time.Now())
		if err != nil {
			return fmt.Errorf("decode seed yaml: %w", err)
		}
	default:
		var exported app.Snapshot
		if err := json.Unmarshal(content, &exported); err != nil {
			return fmt.Errorf("decode snapshot json: %w", err)
		}
		snap, err = exported.ToBoard()
		if err != nil {
			return fmt.Errorf("validate snapshot: %w", err)
		}
	}

	if err := env.repo.SaveBoard(ctx, snap); err != nil {
		return fmt.Errorf("save imported board: %w", err)
	}
	return nil
}

func newChangesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "changes",
		Short: "Print the most recent board changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			env, err := openEnvironment(opts, envOptions{command: "changes", requireRepo: true})
			if err != nil {
				return err
			}
			defer func() {
				_ = env.Close()
			}()
			events, err := env.repo.ListChanges(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list changes: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(events) == 0 {
				_, _ = fmt.Fprintln(out, "no changes recorded")
				return nil
			}
			for _, event := range events {
				_, _ = fmt.Fprintf(out, "%s  %s\n", event.OccurredAt.Local().Format(time.DateTime), event.Summary())
			}
			return nil
		},
	}
	cmd.Flags().Int("limit", 20, "maximum number of changes to print")
	return cmd
}
