package candidate

import (
	"math"

	"github.com/aclements/go-moremath/stats"

	"github.com/verte-zerg/rollbench/internal/kernels"
	"github.com/verte-zerg/rollbench/internal/model"
)

type sampleFunc func(s stats.Sample) float64

var sampleFuncs = map[model.Group]sampleFunc{
	model.GroupMean: func(s stats.Sample) float64 { return s.Mean() },
	model.GroupSum:  func(s stats.Sample) float64 { return s.Sum() },
	model.GroupVar: func(s stats.Sample) float64 {
		if len(s.Xs) < 2 {
			return math.NaN()
		}
		return s.Variance()
	},
	model.GroupStd: func(s stats.Sample) float64 {
		if len(s.Xs) < 2 {
			return math.NaN()
		}
		return s.StdDev()
	},
	model.GroupMax: func(s stats.Sample) float64 {
		_, hi := s.Bounds()
		return hi
	},
	model.GroupMin: func(s stats.Sample) float64 {
		lo, _ := s.Bounds()
		return lo
	},
	model.GroupMedian: func(s stats.Sample) float64 { return s.Quantile(0.5) },
}

// sample wraps the non-NaN values of xs.
func sample(xs []float64) stats.Sample {
	vals := make([]float64, 0, len(xs))
	for _, v := range xs {
		if !math.IsNaN(v) {
			vals = append(vals, v)
		}
	}
	return stats.Sample{Xs: vals}
}

func sampleReducer(fn sampleFunc) kernels.Reducer {
	return func(xs []float64) float64 {
		s := sample(xs)
		if len(s.Xs) == 0 {
			return math.NaN()
		}
		return fn(s)
	}
}

// Moremath builds a go-moremath Sample per window.
func Moremath(mode model.Mode, group model.Group) (LaneFunc, bool) {
	fn, ok := sampleFuncs[group]
	if !ok {
		return nil, false
	}
	reduce := sampleReducer(fn)
	if mode == model.ModeAgg {
		return func(lane []float64, _ *model.Config) []float64 {
			return scalar(reduce(lane))
		}, true
	}
	return func(lane []float64, cfg *model.Config) []float64 {
		return kernels.Window(lane, cfg.Length, cfg.MinLength, reduce)
	}, true
}
