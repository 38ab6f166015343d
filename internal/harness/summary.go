package harness

import (
	"github.com/aclements/go-moremath/stats"

	"github.com/verte-zerg/rollbench/internal/model"
)

// Summary describes the pass times of one library within one group.
type Summary struct {
	Group   model.Group
	Library model.Library
	Count   int
	Mean    float64
	Median  float64
	P95     float64
	Min     float64
	Max     float64
	StdDev  float64
}

// Summaries returns one summary per (group, library), in enumeration order.
func Summaries(samples []model.RawSample) []Summary {
	keys, series := collect(samples)
	out := make([]Summary, 0, len(keys))
	for _, k := range keys {
		sample := stats.Sample{Xs: series[k]}
		sample.Sort()
		lo, hi := sample.Bounds()
		sum := Summary{
			Group:   k.group,
			Library: k.library,
			Count:   len(sample.Xs),
			Mean:    sample.Mean(),
			Median:  sample.Quantile(0.5),
			P95:     sample.Quantile(0.95),
			Min:     lo,
			Max:     hi,
		}
		if len(sample.Xs) > 1 {
			sum.StdDev = sample.StdDev()
		}
		out = append(out, sum)
	}
	return out
}
