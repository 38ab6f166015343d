// Package main provides the CLI entrypoint for rollbench.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/verte-zerg/rollbench/internal/config"
	"github.com/verte-zerg/rollbench/internal/dataset"
	"github.com/verte-zerg/rollbench/internal/harness"
	"github.com/verte-zerg/rollbench/internal/menu"
	"github.com/verte-zerg/rollbench/internal/model"
	"github.com/verte-zerg/rollbench/internal/report"
	"github.com/verte-zerg/rollbench/internal/reportui"
	"github.com/verte-zerg/rollbench/internal/store"
)

const (
	defaultVersion    = 1
	defaultTimeTarget = 20
	defaultLength     = 250
	defaultMinLength  = 25
	defaultAxis       = 0
	defaultLimit      = 95.0
	defaultMode       = string(model.ModeRolling)
	defaultRows       = 2500
	defaultCols       = 50
	defaultSeed       = 42
	defaultBackend    = store.BackendJSONL
	defaultLogLevel   = "info"
)

// options holds every persistent flag after config file merging.
type options struct {
	configPath string
	version    int
	timeTarget int
	length     int
	minLength  int
	axis       int
	limit      float64
	mode       string
	dataset    string
	rows       int
	cols       int
	seed       int64
	backend    string
	storeDir   string
	logLevel   string
	logY       bool
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:           "rollbench",
		Short:         "Benchmark rolling-window and aggregate statistics",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMenuCmd(cmd, opts)
		},
	}
	bindFlags(rootCmd.PersistentFlags(), opts)

	rootCmd.AddCommand(newRunCmd(opts))
	rootCmd.AddCommand(newCheckCmd(opts))
	rootCmd.AddCommand(newHistoryCmd(opts))
	rootCmd.AddCommand(newCalibrationCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))
	return rootCmd
}

func bindFlags(flags *pflag.FlagSet, opts *options) {
	flags.StringVar(&opts.configPath, "config", config.DefaultConfigPath(), "config file path")
	flags.IntVar(&opts.version, "version", defaultVersion, "version tag recorded with results (>= 1)")
	flags.IntVar(&opts.timeTarget, "time-target", defaultTimeTarget, "default time budget in seconds")
	flags.IntVar(&opts.length, "length", defaultLength, "rolling window length")
	flags.IntVar(&opts.minLength, "min-length", defaultMinLength, "minimum observations per window")
	flags.IntVar(&opts.axis, "axis", defaultAxis, "0 = along rows, 1 = along columns")
	flags.Float64Var(&opts.limit, "limit", defaultLimit, "keep pass times up to this percentile in distributions")
	flags.StringVar(&opts.mode, "mode", defaultMode, "suite: rolling or agg")
	flags.StringVar(&opts.dataset, "dataset", "", "long-format CSV (date,ticker,pct_return); empty = synthetic")
	flags.IntVar(&opts.rows, "rows", defaultRows, "synthetic dataset rows")
	flags.IntVar(&opts.cols, "cols", defaultCols, "synthetic dataset columns")
	flags.Int64Var(&opts.seed, "seed", defaultSeed, "synthetic dataset seed")
	flags.StringVar(&opts.backend, "backend", defaultBackend, "store backend: jsonl or sqlite")
	flags.StringVar(&opts.storeDir, "store-dir", "", "store directory (default $XDG_DATA_HOME/rollbench)")
	flags.StringVar(&opts.logLevel, "log-level", defaultLogLevel, "log level: debug, info, warn, error")
	flags.BoolVar(&opts.logY, "log-y", false, "log scale for plots")
}

// resolveOptions merges the config file under explicitly set flags and
// validates the result.
func resolveOptions(cmd *cobra.Command, opts *options) error {
	fileCfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFileConfig(cmd, opts, fileCfg)
	if opts.storeDir == "" {
		opts.storeDir = config.DefaultDataDir()
	}
	return validateOptions(*opts)
}

func applyFileConfig(cmd *cobra.Command, opts *options, fileCfg config.FileConfig) {
	bench := fileCfg.Bench
	applyIntConfig(cmd, "version", &opts.version, bench.Version)
	applyIntConfig(cmd, "time-target", &opts.timeTarget, bench.TimeTarget)
	applyIntConfig(cmd, "length", &opts.length, bench.Length)
	applyIntConfig(cmd, "min-length", &opts.minLength, bench.MinLength)
	applyIntConfig(cmd, "axis", &opts.axis, bench.Axis)
	applyFloatConfig(cmd, "limit", &opts.limit, bench.Limit)
	applyStringConfig(cmd, "mode", &opts.mode, bench.Mode)
	applyStringConfig(cmd, "dataset", &opts.dataset, bench.Dataset)
	applyIntConfig(cmd, "rows", &opts.rows, bench.Rows)
	applyIntConfig(cmd, "cols", &opts.cols, bench.Cols)
	applyInt64Config(cmd, "seed", &opts.seed, bench.Seed)
	applyStringConfig(cmd, "backend", &opts.backend, fileCfg.Store.Backend)
	applyStringConfig(cmd, "store-dir", &opts.storeDir, fileCfg.Store.Dir)
	applyStringConfig(cmd, "log-level", &opts.logLevel, fileCfg.Log.Level)
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func validateOptions(opts options) error {
	if opts.version < 1 {
		return fmt.Errorf("--version must be >= 1")
	}
	if opts.timeTarget <= 0 {
		return fmt.Errorf("--time-target must be > 0")
	}
	if opts.length <= 0 {
		return fmt.Errorf("--length must be > 0")
	}
	if opts.minLength <= 0 || opts.minLength > opts.length {
		return fmt.Errorf("--min-length must be between 1 and --length")
	}
	if opts.axis != 0 && opts.axis != 1 {
		return fmt.Errorf("--axis must be 0 or 1")
	}
	if opts.limit <= 0 || opts.limit > 100 {
		return fmt.Errorf("--limit must be in (0, 100]")
	}
	if _, err := model.ParseMode(opts.mode); err != nil {
		return fmt.Errorf("--mode: %w", err)
	}
	if opts.dataset == "" && (opts.rows <= 0 || opts.cols <= 0) {
		return fmt.Errorf("--rows and --cols must be > 0")
	}
	if opts.backend != store.BackendJSONL && opts.backend != store.BackendSQLite {
		return fmt.Errorf("--backend must be %s or %s", store.BackendJSONL, store.BackendSQLite)
	}
	if _, err := parseLevel(opts.logLevel); err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, err
	}
	return level, nil
}

// session is everything a command needs after option resolution.
type session struct {
	opts    options
	logger  *slog.Logger
	backend store.Backend
	manager *harness.Manager
}

func openSession(cmd *cobra.Command, opts *options) (*session, error) {
	if err := resolveOptions(cmd, opts); err != nil {
		return nil, err
	}
	level, _ := parseLevel(opts.logLevel)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	array, names, err := loadDataset(*opts)
	if err != nil {
		return nil, err
	}
	mode := model.Mode(opts.mode)
	cfg, err := model.NewConfig(array, names, model.Params{
		Length:     opts.length,
		MinLength:  opts.minLength,
		Axis:       opts.axis,
		TimeTarget: opts.timeTarget,
		Limit:      opts.limit,
		Version:    opts.version,
		Mode:       mode,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid benchmark config: %w", err)
	}
	registry, err := harness.NewModeRegistry(mode)
	if err != nil {
		return nil, fmt.Errorf("failed to build registry: %w", err)
	}
	if err := os.MkdirAll(opts.storeDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	backend, err := store.Open(opts.backend, opts.storeDir, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	logger.Debug("session opened",
		"mode", opts.mode, "backend", opts.backend, "store", opts.storeDir,
		"rows", array.Rows, "cols", array.Cols, "nan", dataset.CountNaN(array))

	manager := harness.NewManager(registry, cfg, backend, backend,
		harness.WithLogger(logger),
		harness.WithProgress(progressPrinter()),
	)
	return &session{opts: *opts, logger: logger, backend: backend, manager: manager}, nil
}

func (s *session) close() {
	if cerr := s.backend.Close(); cerr != nil {
		logErrf("failed to close store: %v\n", cerr)
	}
}

func loadDataset(opts options) (*dataset.Matrix, []string, error) {
	if opts.dataset != "" {
		array, names, err := dataset.LoadCSV(opts.dataset, dataset.DefaultColumns())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load dataset %s: %w", opts.dataset, err)
		}
		return array, names, nil
	}
	array := dataset.NewGenerator(opts.seed).Returns(opts.rows, opts.cols)
	return array, dataset.TickerNames(opts.cols), nil
}

func progressPrinter() harness.ProgressFunc {
	return func(library model.Library, done, total int) {
		logErrf("\r%-20s %d/%d", library.Label(), done, total)
		if done == total {
			logErrln()
		}
	}
}

func plotOptions(opts options) report.PlotOptions {
	return report.PlotOptions{LogY: opts.logY}
}

func runMenuCmd(cmd *cobra.Command, opts *options) error {
	s, err := openSession(cmd, opts)
	if err != nil {
		return err
	}
	defer s.close()

	for {
		m := menu.NewModel(s.manager.Registry().Groups(), s.opts.timeTarget)
		if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
			return fmt.Errorf("failed to run menu: %w", err)
		}
		sel := m.Selection()
		if sel.Action == menu.ActionExit {
			return nil
		}
		if err := s.runSelection(cmd.Context(), sel); err != nil {
			if errors.Is(err, context.Canceled) {
				logErrln("run interrupted")
				continue
			}
			return err
		}
	}
}

func (s *session) runSelection(parent context.Context, sel menu.Selection) error {
	ctx, stop := signalContext(parent)
	defer stop()

	switch sel.Action {
	case menu.ActionRunAll:
		res, err := s.manager.RunAll(ctx, sel.Budget)
		if err != nil {
			return err
		}
		return s.browse(parent, res.Samples)
	case menu.ActionRunGroup:
		res, err := s.manager.RunGroup(ctx, sel.Group, sel.Budget)
		if err != nil {
			return err
		}
		return s.browse(parent, res.Samples)
	case menu.ActionCheck:
		results, err := s.manager.Check(ctx, sel.Group)
		if err != nil {
			return err
		}
		if err := report.RenderCheck(os.Stdout, sel.Group, results, plotOptions(s.opts)); err != nil {
			return err
		}
		waitForEnter()
	}
	return nil
}

func waitForEnter() {
	logErrf("press enter to return to the menu")
	if _, err := bufio.NewReader(os.Stdin).ReadString('\n'); err != nil {
		// Best-effort pause; EOF just returns.
		_ = err
	}
}

// browse opens the results viewer and refreshes it whenever the store
// files change.
func (s *session) browse(parent context.Context, samples []model.RawSample) error {
	data, err := s.loadData(parent)
	if err != nil {
		return err
	}
	data.Samples = samples
	viewer := reportui.NewModel(data, s.opts.limit, func() (reportui.Data, error) {
		return s.loadData(parent)
	})
	program := tea.NewProgram(viewer, tea.WithAltScreen())

	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	go func() {
		err := store.Watch(ctx, s.logger, s.backend.Paths(), func() {
			data, err := s.loadData(ctx)
			program.Send(reportui.DataMsg{Data: data, Err: err})
		})
		if err != nil {
			s.logger.Warn("store watch stopped", "err", err)
		}
	}()

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run results viewer: %w", err)
	}
	return nil
}

func (s *session) loadData(ctx context.Context) (reportui.Data, error) {
	history, err := s.backend.LoadHistory(ctx)
	if err != nil {
		return reportui.Data{}, fmt.Errorf("failed to load history: %w", err)
	}
	calibration, err := s.backend.LoadCalibration(ctx)
	if err != nil {
		return reportui.Data{}, fmt.Errorf("failed to load calibration: %w", err)
	}
	return reportui.Data{History: history, Calibration: calibration}, nil
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
