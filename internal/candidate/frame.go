package candidate

import (
	"github.com/verte-zerg/rollbench/internal/kernels"
	"github.com/verte-zerg/rollbench/internal/model"
)

// Frame reads the column frame and evaluates moments from cumulative sums.
// Order statistics fall back to the streaming kernels.
func Frame(mode model.Mode, group model.Group) (LaneFunc, bool) {
	if m, ok := momentOf[group]; ok {
		if mode == model.ModeAgg {
			return func(col []float64, _ *model.Config) []float64 {
				cum := kernels.NewCumulative(col)
				return scalar(cum.Moment(0, cum.Len(), m))
			}, true
		}
		return func(col []float64, cfg *model.Config) []float64 {
			return kernels.NewCumulative(col).Rolling(cfg.Length, cfg.MinLength, m)
		}, true
	}
	switch group {
	case model.GroupMax, model.GroupMin, model.GroupMedian:
		return Rolling(mode, group)
	}
	return nil, false
}
