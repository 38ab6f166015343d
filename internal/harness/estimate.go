package harness

import (
	"math"

	"github.com/verte-zerg/rollbench/internal/model"
)

// DefaultPasses is the pass count used before a group has been calibrated.
const DefaultPasses = 20

// EstimatePasses returns how many passes of group fit in budget seconds,
// using the average time per pass of the group's calibration records.
func EstimatePasses(budget float64, group model.Group, records []model.CalibrationRecord) int {
	total, n := 0.0, 0
	for _, r := range records {
		if r.Group != group {
			continue
		}
		total += r.TimePerPassMs
		n++
	}
	if n == 0 {
		return DefaultPasses
	}
	avg := total / float64(n)
	if avg <= 0 || math.IsNaN(avg) || math.IsInf(avg, 0) {
		return DefaultPasses
	}
	passes := math.Floor(budget * 1000 / avg)
	switch {
	case math.IsNaN(passes) || passes < 1:
		return 1
	case passes > math.MaxInt32:
		return math.MaxInt32
	}
	return int(passes)
}
