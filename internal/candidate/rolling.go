package candidate

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/rollbench/internal/kernels"
	"github.com/verte-zerg/rollbench/internal/model"
)

var momentOf = map[model.Group]kernels.Moment{
	model.GroupMean: kernels.MomentMean,
	model.GroupSum:  kernels.MomentSum,
	model.GroupVar:  kernels.MomentVar,
	model.GroupStd:  kernels.MomentStd,
	model.GroupSkew: kernels.MomentSkew,
	model.GroupKurt: kernels.MomentKurt,
}

// Rolling offers single-pass streaming kernels for every group.
func Rolling(mode model.Mode, group model.Group) (LaneFunc, bool) {
	if mode == model.ModeAgg {
		return rollingAgg(group)
	}
	if m, ok := momentOf[group]; ok {
		return func(lane []float64, cfg *model.Config) []float64 {
			return kernels.MoveMoment(lane, cfg.Length, cfg.MinLength, m)
		}, true
	}
	switch group {
	case model.GroupMax, model.GroupMin:
		isMax := group == model.GroupMax
		return func(lane []float64, cfg *model.Config) []float64 {
			return kernels.MoveExtreme(lane, cfg.Length, cfg.MinLength, isMax)
		}, true
	case model.GroupMedian:
		return func(lane []float64, cfg *model.Config) []float64 {
			return kernels.MoveMedian(lane, cfg.Length, cfg.MinLength)
		}, true
	case model.GroupRank:
		return func(lane []float64, cfg *model.Config) []float64 {
			return kernels.MoveRank(lane, cfg.Length, cfg.MinLength)
		}, true
	}
	return nil, false
}

func rollingAgg(group model.Group) (LaneFunc, bool) {
	if m, ok := momentOf[group]; ok {
		return func(lane []float64, _ *model.Config) []float64 {
			return scalar(kernels.LaneMoment(lane, m))
		}, true
	}
	var reduce kernels.Reducer
	switch group {
	case model.GroupMax:
		reduce = kernels.Max
	case model.GroupMin:
		reduce = kernels.Min
	case model.GroupMedian:
		reduce = kernels.Median
	case model.GroupRank:
		return func(lane []float64, _ *model.Config) []float64 {
			return kernels.RankData(lane)
		}, true
	default:
		return nil, false
	}
	return func(lane []float64, _ *model.Config) []float64 {
		return scalar(reduce(lane))
	}, true
}

// Parallel fans lanes out across GOMAXPROCS goroutines. Each goroutine owns
// its output slot, so no locking is needed.
func Parallel(lanes [][]float64, cfg *model.Config, fn LaneFunc) ([][]float64, error) {
	out := make([][]float64, len(lanes))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, lane := range lanes {
		i, lane := i, lane
		g.Go(func() error {
			out[i] = fn(lane, cfg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
