package candidate

import (
	"github.com/verte-zerg/rollbench/internal/kernels"
	"github.com/verte-zerg/rollbench/internal/model"
)

var naiveReducers = map[model.Group]kernels.Reducer{
	model.GroupMean:   kernels.Mean,
	model.GroupSum:    kernels.Sum,
	model.GroupVar:    kernels.Var,
	model.GroupStd:    kernels.Std,
	model.GroupMax:    kernels.Max,
	model.GroupMin:    kernels.Min,
	model.GroupMedian: kernels.Median,
}

// Naive recomputes every window from scratch. It is the baseline the
// streaming kernels are compared against.
func Naive(mode model.Mode, group model.Group) (LaneFunc, bool) {
	if group == model.GroupRank {
		if mode == model.ModeAgg {
			return func(lane []float64, _ *model.Config) []float64 {
				return kernels.RankData(lane)
			}, true
		}
		return func(lane []float64, cfg *model.Config) []float64 {
			return kernels.Window(lane, cfg.Length, cfg.MinLength, kernels.RankLast)
		}, true
	}
	reduce, ok := naiveReducers[group]
	if !ok {
		return nil, false
	}
	if mode == model.ModeAgg {
		return func(lane []float64, _ *model.Config) []float64 {
			return scalar(reduce(lane))
		}, true
	}
	return func(lane []float64, cfg *model.Config) []float64 {
		return kernels.Window(lane, cfg.Length, cfg.MinLength, reduce)
	}, true
}
