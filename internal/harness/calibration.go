package harness

import (
	"math"

	"github.com/verte-zerg/rollbench/internal/model"
)

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// NewCalibrationRecord summarizes one timed group. The per-pass time covers
// all adapters of the group, so pacing stays per group.
func NewCalibrationRecord(group model.Group, samples []model.RawSample, n int, version, target int) model.CalibrationRecord {
	total := 0.0
	for _, s := range samples {
		total += s.TimeMs
	}
	perPass := 0.0
	if n > 0 {
		perPass = total / float64(n)
	}
	return model.CalibrationRecord{
		Group:         group,
		Version:       version,
		TimeTarget:    target,
		TotalTimeSecs: round(total/1000, 3),
		NPasses:       n,
		TimePerPassMs: round(perPass, 3),
	}
}

// supersedes reports whether next replaces old in the calibration store.
func supersedes(next, old model.CalibrationRecord) bool {
	if old.Group != next.Group {
		return false
	}
	if old.Version < next.Version {
		return true
	}
	return old.Version == next.Version && old.TimeTarget <= next.TimeTarget
}

// UpsertCalibration inserts rec, dropping the same group's records it
// supersedes. Other groups are returned untouched.
func UpsertCalibration(existing []model.CalibrationRecord, rec model.CalibrationRecord) []model.CalibrationRecord {
	out := make([]model.CalibrationRecord, 0, len(existing)+1)
	for _, old := range existing {
		if supersedes(rec, old) {
			continue
		}
		out = append(out, old)
	}
	return append(out, rec)
}
