package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/rollbench/internal/model"
	"github.com/verte-zerg/rollbench/internal/report"
	"github.com/verte-zerg/rollbench/internal/store"
)

func newRunCmd(opts *options) *cobra.Command {
	var (
		group  string
		budget int
		browse bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Time one group or every group and record history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.close()
			if budget < 0 {
				return fmt.Errorf("--budget must be >= 0")
			}
			if budget == 0 {
				budget = s.opts.timeTarget
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			var samples []model.RawSample
			if group == "" {
				res, err := s.manager.RunAll(ctx, budget)
				if err != nil {
					return err
				}
				samples = res.Samples
			} else {
				g, err := s.manager.Registry().Resolve(group)
				if err != nil {
					return err
				}
				res, err := s.manager.RunGroup(ctx, g, budget)
				if err != nil {
					return err
				}
				samples = res.Samples
			}
			if browse {
				return s.browse(cmd.Context(), samples)
			}
			return report.RenderRun(cmd.OutOrStdout(), samples, s.opts.limit, plotOptions(s.opts))
		},
	}
	cmd.Flags().StringVar(&group, "group", "", "group tag (mean, sum, var, std, max, min, median, rank, skew, kurt); empty = all")
	cmd.Flags().IntVar(&budget, "budget", 0, "time budget in seconds (default --time-target)")
	cmd.Flags().BoolVar(&browse, "tui", false, "open the results viewer instead of printing")
	return cmd
}

func newCheckCmd(opts *options) *cobra.Command {
	var group string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run every candidate of a group once and plot the outputs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.close()
			g, err := s.manager.Registry().Resolve(group)
			if err != nil {
				return err
			}
			ctx, stop := signalContext(cmd.Context())
			defer stop()
			results, err := s.manager.Check(ctx, g)
			if err != nil {
				return err
			}
			return report.RenderCheck(cmd.OutOrStdout(), g, results, plotOptions(s.opts))
		},
	}
	cmd.Flags().StringVar(&group, "group", "", "group tag to check")
	_ = cmd.MarkFlagRequired("group")
	return cmd
}

func newHistoryCmd(opts *options) *cobra.Command {
	var (
		watch  bool
		browse bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded median timings by version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.close()
			if browse {
				return s.browse(cmd.Context(), nil)
			}
			out := cmd.OutOrStdout()
			if err := s.renderHistory(cmd.Context(), out); err != nil {
				return err
			}
			if !watch {
				return nil
			}
			ctx, stop := signalContext(cmd.Context())
			defer stop()
			err = store.Watch(ctx, s.logger, s.backend.Paths(), func() {
				if _, err := io.WriteString(out, "\x1b[H\x1b[2J"); err != nil {
					return
				}
				if err := s.renderHistory(ctx, out); err != nil {
					s.logger.Error("failed to render history", "err", err)
				}
			})
			if err != nil && ctx.Err() == nil {
				return fmt.Errorf("failed to watch store: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "re-render when the store changes")
	cmd.Flags().BoolVar(&browse, "tui", false, "open the results viewer")
	return cmd
}

func (s *session) renderHistory(ctx context.Context, w io.Writer) error {
	records, err := s.backend.LoadHistory(ctx)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	return report.RenderHistory(w, records, plotOptions(s.opts))
}

func newCalibrationCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "calibration",
		Short: "Show per-group pacing records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd, opts)
			if err != nil {
				return err
			}
			defer s.close()
			records, err := s.backend.LoadCalibration(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load calibration: %w", err)
			}
			return report.RenderCalibration(cmd.OutOrStdout(), records)
		},
	}
}

func newConfigCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runConfigCmd(opts.configPath)
		},
	}
}

func runConfigCmd(path string) error {
	if err := ensureConfigFile(path); err != nil {
		return err
	}
	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// ensureConfigFile writes the commented template unless path exists.
func ensureConfigFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# rollbench configuration
# Uncomment a value to enable it. CLI flags override config values.

[bench]
# version = %d             # Version tag recorded with results
# time-target = %d         # Default time budget in seconds
# length = %d             # Rolling window length
# min-length = %d          # Minimum observations per window
# axis = %d                # 0 = along rows, 1 = along columns
# limit = %.1f             # Distribution percentile cut-off
# mode = %q          # rolling | agg
# dataset = ""             # Long-format CSV; empty = synthetic
# rows = %d              # Synthetic dataset rows
# cols = %d                # Synthetic dataset columns
# seed = %d                # Synthetic dataset seed

[store]
# backend = %q         # jsonl | sqlite
# dir = ""                 # Default $XDG_DATA_HOME/rollbench

[log]
# level = %q           # debug | info | warn | error
`,
		defaultVersion,
		defaultTimeTarget,
		defaultLength,
		defaultMinLength,
		defaultAxis,
		defaultLimit,
		defaultMode,
		defaultRows,
		defaultCols,
		defaultSeed,
		defaultBackend,
		defaultLogLevel,
	)
}
