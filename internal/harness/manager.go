package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/verte-zerg/rollbench/internal/dataset"
	"github.com/verte-zerg/rollbench/internal/model"
)

// CalibrationStore persists per-group pacing.
type CalibrationStore interface {
	LoadCalibration(ctx context.Context) ([]model.CalibrationRecord, error)
	ReplaceCalibration(ctx context.Context, records []model.CalibrationRecord) error
}

// HistoryStore persists median timings across versions.
type HistoryStore interface {
	LoadHistory(ctx context.Context) ([]model.HistoryRecord, error)
	ReplaceHistory(ctx context.Context, records []model.HistoryRecord) error
}

// GroupResult is the outcome of timing one group.
type GroupResult struct {
	Group   model.Group
	Budget  float64
	Passes  int
	Elapsed time.Duration
	Samples []model.RawSample
}

// RunResult is the outcome of timing every registered group.
type RunResult struct {
	Groups  []GroupResult
	Samples []model.RawSample
	Added   []model.HistoryRecord
	History []model.HistoryRecord
}

// CheckResult holds one adapter's output for a correctness check.
type CheckResult struct {
	Library model.Library
	Output  *dataset.Matrix
}

// Manager orchestrates warmup, timing and persistence.
type Manager struct {
	registry    *Registry
	cfg         model.Config
	calibration CalibrationStore
	history     HistoryStore
	logger      *slog.Logger
	now         func() time.Time
	progress    ProgressFunc
}

// Option customizes a Manager.
type Option func(*Manager)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock replaces the pass clock.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithProgress registers a per-pass progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(m *Manager) {
		m.progress = fn
	}
}

// NewManager wires a registry to its stores.
func NewManager(registry *Registry, cfg model.Config, calibration CalibrationStore, history HistoryStore, opts ...Option) *Manager {
	m := &Manager{
		registry:    registry,
		cfg:         cfg,
		calibration: calibration,
		history:     history,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Registry returns the group registry.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// Config returns the session configuration.
func (m *Manager) Config() model.Config {
	return m.cfg
}

// RunGroup times one group against budget seconds and saves its pacing.
// History is left untouched.
func (m *Manager) RunGroup(ctx context.Context, group model.Group, budget int) (GroupResult, error) {
	if budget <= 0 {
		return GroupResult{}, fmt.Errorf("time budget must be > 0, got %d", budget)
	}
	return m.runGroup(ctx, group, float64(budget), m.cfg.WithTimeTarget(budget))
}

func (m *Manager) runGroup(ctx context.Context, group model.Group, budget float64, cfg model.Config) (GroupResult, error) {
	adapters, err := m.registry.Adapters(group)
	if err != nil {
		return GroupResult{}, err
	}
	engine := NewEngine(m.now, m.progress)
	log := m.logger.With("group", group.String())

	if err := engine.Warmup(ctx, adapters, cfg); err != nil {
		return GroupResult{}, err
	}
	records, err := m.calibration.LoadCalibration(ctx)
	if err != nil {
		return GroupResult{}, fmt.Errorf("failed to load calibration: %w", err)
	}
	passes := EstimatePasses(budget, group, records)
	log.Debug("timing group", "passes", passes, "budget_secs", budget, "adapters", len(adapters))

	started := m.now()
	samples, err := engine.TimeGroup(ctx, group, adapters, cfg, passes)
	if err != nil {
		return GroupResult{}, err
	}
	elapsed := m.now().Sub(started)

	rec := NewCalibrationRecord(group, samples, passes, cfg.Version, cfg.TimeTarget)
	if err := m.calibration.ReplaceCalibration(ctx, UpsertCalibration(records, rec)); err != nil {
		return GroupResult{}, fmt.Errorf("failed to save calibration: %w", err)
	}
	log.Info("group timed", "passes", passes, "total_secs", rec.TotalTimeSecs, "per_pass_ms", rec.TimePerPassMs)

	return GroupResult{
		Group:   group,
		Budget:  budget,
		Passes:  passes,
		Elapsed: elapsed,
		Samples: samples,
	}, nil
}

// RunAll splits budget seconds evenly across the registered groups, times
// each one, and merges the aggregated medians into history. Nothing is
// merged when any group fails.
func (m *Manager) RunAll(ctx context.Context, budget int) (RunResult, error) {
	if budget <= 0 {
		return RunResult{}, fmt.Errorf("time budget must be > 0, got %d", budget)
	}
	groups := m.registry.Groups()
	if len(groups) == 0 {
		return RunResult{}, fmt.Errorf("%w: no groups registered", ErrEmptyGroup)
	}
	cfg := m.cfg.WithTimeTarget(budget)
	perGroup := float64(budget) / float64(len(groups))

	var result RunResult
	for _, group := range groups {
		if err := ctx.Err(); err != nil {
			return RunResult{}, err
		}
		res, err := m.runGroup(ctx, group, perGroup, cfg)
		if err != nil {
			return RunResult{}, fmt.Errorf("failed to run %s: %w", group, err)
		}
		result.Groups = append(result.Groups, res)
		result.Samples = append(result.Samples, res.Samples...)
	}

	result.Added = Aggregate(result.Samples, cfg.Version, cfg.TimeTarget)
	existing, err := m.history.LoadHistory(ctx)
	if err != nil {
		return RunResult{}, fmt.Errorf("failed to load history: %w", err)
	}
	result.History = MergeHistory(existing, result.Added)
	if err := m.history.ReplaceHistory(ctx, result.History); err != nil {
		return RunResult{}, fmt.Errorf("failed to save history: %w", err)
	}
	m.logger.Info("history merged", "added", len(result.Added), "records", len(result.History), "version", cfg.Version)
	return result, nil
}

// Check invokes every adapter of group once on the session dataset.
func (m *Manager) Check(ctx context.Context, group model.Group) ([]CheckResult, error) {
	adapters, err := m.registry.Adapters(group)
	if err != nil {
		return nil, err
	}
	cfg := m.cfg
	out := make([]CheckResult, 0, len(adapters))
	for _, a := range adapters {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := a.Invoke(&cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to check %s/%s: %w", group, a.Library(), err)
		}
		m.logger.Debug("adapter checked", "group", group.String(), "library", a.Library().String(), "rows", res.Rows, "cols", res.Cols)
		out = append(out, CheckResult{Library: a.Library(), Output: res})
	}
	return out, nil
}
