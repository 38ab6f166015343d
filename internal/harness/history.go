package harness

import (
	"sort"

	"github.com/aclements/go-moremath/stats"

	"github.com/verte-zerg/rollbench/internal/kernels"
	"github.com/verte-zerg/rollbench/internal/model"
)

type seriesKey struct {
	group   model.Group
	library model.Library
}

// collect groups sample times by (group, library) and returns the keys in
// enumeration order.
func collect(samples []model.RawSample) ([]seriesKey, map[seriesKey][]float64) {
	series := make(map[seriesKey][]float64)
	var keys []seriesKey
	for _, s := range samples {
		k := seriesKey{group: s.Group, library: s.Library}
		if _, ok := series[k]; !ok {
			keys = append(keys, k)
		}
		series[k] = append(series[k], s.TimeMs)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].group != keys[j].group {
			return keys[i].group < keys[j].group
		}
		return keys[i].library < keys[j].library
	})
	return keys, series
}

// Aggregate reduces raw samples to one history record per (group, library)
// holding the median pass time rounded to 2 decimals.
func Aggregate(samples []model.RawSample, version, target int) []model.HistoryRecord {
	keys, series := collect(samples)
	out := make([]model.HistoryRecord, 0, len(keys))
	for _, k := range keys {
		times := series[k]
		if len(times) == 0 {
			continue
		}
		out = append(out, model.HistoryRecord{
			Group:        k.group,
			Library:      k.library,
			Version:      version,
			TimeTarget:   target,
			MedianTimeMs: round(kernels.Median(times), 2),
		})
	}
	return out
}

type historyKey struct {
	group   model.Group
	library model.Library
	version int
}

func keyOf(r model.HistoryRecord) historyKey {
	return historyKey{group: r.Group, library: r.Library, version: r.Version}
}

// MergeHistory folds incoming records into existing. A record is rejected
// when the history already holds a larger budget for its (group, library,
// version); an admitted record evicts same-key records with a budget no
// larger than its own. The result is sorted by version, group and library.
func MergeHistory(existing, incoming []model.HistoryRecord) []model.HistoryRecord {
	best := make(map[historyKey]int, len(existing))
	for _, r := range existing {
		k := keyOf(r)
		if t, ok := best[k]; !ok || r.TimeTarget > t {
			best[k] = r.TimeTarget
		}
	}

	admitted := make([]model.HistoryRecord, 0, len(incoming))
	evict := make(map[historyKey]int)
	for _, r := range incoming {
		k := keyOf(r)
		if t, ok := best[k]; ok && t > r.TimeTarget {
			continue
		}
		admitted = append(admitted, r)
		if t, ok := evict[k]; !ok || r.TimeTarget > t {
			evict[k] = r.TimeTarget
		}
	}

	out := make([]model.HistoryRecord, 0, len(existing)+len(admitted))
	for _, r := range existing {
		if t, ok := evict[keyOf(r)]; ok && r.TimeTarget <= t {
			continue
		}
		out = append(out, r)
	}
	out = append(out, admitted...)
	SortHistory(out)
	return out
}

// SortHistory orders records by version, then group and library in
// enumeration order.
func SortHistory(records []model.HistoryRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Version != b.Version {
			return a.Version < b.Version
		}
		if a.Group != b.Group {
			return a.Group < b.Group
		}
		return a.Library < b.Library
	})
}

// RelativeDeltas averages the samples per group and library and reports the
// fixed baseline-minus-candidate differences. Comparisons missing either
// side are omitted.
func RelativeDeltas(samples []model.RawSample) []model.Delta {
	keys, series := collect(samples)
	means := make(map[seriesKey]float64, len(keys))
	var groups []model.Group
	for _, k := range keys {
		means[k] = stats.Mean(series[k])
		if len(groups) == 0 || groups[len(groups)-1] != k.group {
			groups = append(groups, k.group)
		}
	}
	var out []model.Delta
	for _, g := range groups {
		for _, c := range model.Comparisons() {
			base, cand := c.Pair()
			a, okA := means[seriesKey{group: g, library: base}]
			b, okB := means[seriesKey{group: g, library: cand}]
			if !okA || !okB {
				continue
			}
			out = append(out, model.Delta{Group: g, Comparison: c, TimeMs: a - b})
		}
	}
	return out
}

// Distribution drops, per library, samples slower than the limit percent
// quantile of that library's times.
func Distribution(samples []model.RawSample, limit float64) []model.RawSample {
	thresholds := make(map[model.Library]float64)
	byLibrary := make(map[model.Library][]float64)
	for _, s := range samples {
		byLibrary[s.Library] = append(byLibrary[s.Library], s.TimeMs)
	}
	for lib, times := range byLibrary {
		thresholds[lib] = stats.Sample{Xs: times}.Quantile(limit / 100)
	}
	out := make([]model.RawSample, 0, len(samples))
	for _, s := range samples {
		if s.TimeMs <= thresholds[s.Library] {
			out = append(out, s)
		}
	}
	return out
}
