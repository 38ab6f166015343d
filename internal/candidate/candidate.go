// Package candidate binds competing statistic implementations to the
// uniform invoke contract the harness times.
package candidate

import (
	"fmt"

	"github.com/verte-zerg/rollbench/internal/dataset"
	"github.com/verte-zerg/rollbench/internal/model"
)

// Adapter is one library's implementation of one statistic group.
type Adapter interface {
	Library() model.Library
	Invoke(cfg *model.Config) (*dataset.Matrix, error)
}

// LaneFunc computes a statistic over one lane. Moving kernels return a lane
// of the same length, reductions a single value.
type LaneFunc func(lane []float64, cfg *model.Config) []float64

// Applier runs fn over every lane.
type Applier func(lanes [][]float64, cfg *model.Config, fn LaneFunc) ([][]float64, error)

// Source selects the representation an adapter reads.
type Source int

// Sources.
const (
	SourceArray Source = iota
	SourceFrame
)

// Provider returns the lane kernel a library offers for a group in a mode,
// or false when the library does not cover it.
type Provider func(mode model.Mode, group model.Group) (LaneFunc, bool)

type laneAdapter struct {
	library model.Library
	source  Source
	apply   Applier
	fn      LaneFunc
}

// New builds an adapter from a lane kernel.
func New(library model.Library, source Source, apply Applier, fn LaneFunc) Adapter {
	if apply == nil {
		apply = Sequential
	}
	return &laneAdapter{library: library, source: source, apply: apply, fn: fn}
}

func (a *laneAdapter) Library() model.Library {
	return a.library
}

func (a *laneAdapter) Invoke(cfg *model.Config) (*dataset.Matrix, error) {
	if cfg == nil || cfg.Array == nil {
		return nil, fmt.Errorf("%s: dataset is required", a.library)
	}
	var (
		lanes [][]float64
		err   error
	)
	switch a.source {
	case SourceFrame:
		if cfg.Frame == nil {
			return nil, fmt.Errorf("%s: frame is required", a.library)
		}
		lanes, err = cfg.Frame.Lanes(cfg.Axis)
	default:
		lanes, err = cfg.Array.Lanes(cfg.Axis)
	}
	if err != nil {
		return nil, err
	}
	out, err := a.apply(lanes, cfg, a.fn)
	if err != nil {
		return nil, err
	}
	return dataset.FromLanes(out, cfg.Axis)
}

// Sequential applies fn lane by lane on the calling goroutine.
func Sequential(lanes [][]float64, cfg *model.Config, fn LaneFunc) ([][]float64, error) {
	out := make([][]float64, len(lanes))
	for i, lane := range lanes {
		out[i] = fn(lane, cfg)
	}
	return out, nil
}

func scalar(v float64) []float64 {
	return []float64{v}
}

type binding struct {
	library model.Library
	source  Source
	apply   Applier
	provide Provider
}

var bindings = []binding{
	{library: model.LibraryNaive, source: SourceArray, apply: Sequential, provide: Naive},
	{library: model.LibraryRolling, source: SourceArray, apply: Sequential, provide: Rolling},
	{library: model.LibraryRollingParallel, source: SourceArray, apply: Parallel, provide: Rolling},
	{library: model.LibraryMoremath, source: SourceArray, apply: Sequential, provide: Moremath},
	{library: model.LibraryFrame, source: SourceFrame, apply: Sequential, provide: Frame},
}

// For returns the adapter library offers for group in mode.
func For(mode model.Mode, library model.Library, group model.Group) (Adapter, bool) {
	for _, b := range bindings {
		if b.library != library {
			continue
		}
		fn, ok := b.provide(mode, group)
		if !ok {
			return nil, false
		}
		return New(b.library, b.source, b.apply, fn), true
	}
	return nil, false
}

// Bind returns the adapters of every group for mode, in library order.
func Bind(mode model.Mode) map[model.Group][]Adapter {
	out := make(map[model.Group][]Adapter)
	for _, group := range model.Groups() {
		for _, lib := range model.Libraries() {
			if adapter, ok := For(mode, lib, group); ok {
				out[group] = append(out[group], adapter)
			}
		}
	}
	return out
}
