package kernels

import (
	"math"
	"sort"
)

func nanLane(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func windowStart(i, length int) int {
	if start := i - length + 1; start > 0 {
		return start
	}
	return 0
}

// Window recomputes reduce over every window from scratch.
func Window(lane []float64, length, minLength int, reduce Reducer) []float64 {
	out := nanLane(len(lane))
	for i := range lane {
		w := lane[windowStart(i, length) : i+1]
		if Count(w) < minLength {
			continue
		}
		out[i] = reduce(w)
	}
	return out
}

// MoveMoment slides a shifted power-sum accumulator across the lane. Every
// length rows the accumulator is rebuilt from the current window, re-anchoring
// the shift and dropping drift from repeated removals.
func MoveMoment(lane []float64, length, minLength int, m Moment) []float64 {
	out := nanLane(len(lane))
	var acc powerSums
	for i, v := range lane {
		switch {
		case i > 0 && i%length == 0:
			acc = sumsOf(lane[i-length+1 : i])
		case i >= length:
			acc.remove(lane[i-length])
		}
		if acc.finite() == 0 {
			acc = powerSums{tally: acc.tally, shift: firstFinite(lane[i : i+1])}
		}
		acc.add(v)
		if acc.n >= minLength {
			out[i] = acc.value(m)
		}
	}
	return out
}

// MoveExtreme tracks the window maximum (or minimum when wantMax is false) with
// a monotonic deque of row indexes.
func MoveExtreme(lane []float64, length, minLength int, wantMax bool) []float64 {
	out := nanLane(len(lane))
	deque := make([]int, 0, length)
	count := 0
	worse := func(a, b float64) bool {
		if wantMax {
			return a <= b
		}
		return a >= b
	}
	for i, v := range lane {
		if i >= length && !math.IsNaN(lane[i-length]) {
			count--
		}
		for len(deque) > 0 && deque[0] <= i-length {
			deque = deque[1:]
		}
		if !math.IsNaN(v) {
			count++
			for len(deque) > 0 && worse(lane[deque[len(deque)-1]], v) {
				deque = deque[:len(deque)-1]
			}
			deque = append(deque, i)
		}
		if count >= minLength && len(deque) > 0 {
			out[i] = lane[deque[0]]
		}
	}
	return out
}

// MoveMedian keeps the window's non-NaN values sorted and reads the middle.
func MoveMedian(lane []float64, length, minLength int) []float64 {
	out := nanLane(len(lane))
	sorted := make([]float64, 0, length)
	for i, v := range lane {
		if i >= length {
			if old := lane[i-length]; !math.IsNaN(old) {
				k := sort.SearchFloat64s(sorted, old)
				sorted = append(sorted[:k], sorted[k+1:]...)
			}
		}
		if !math.IsNaN(v) {
			k := sort.SearchFloat64s(sorted, v)
			sorted = append(sorted, 0)
			copy(sorted[k+1:], sorted[k:])
			sorted[k] = v
		}
		if len(sorted) >= minLength && len(sorted) > 0 {
			out[i] = sortedMedian(sorted)
		}
	}
	return out
}

// MoveRank ranks each row against its window with a single scan, keeping a
// running count of the window's non-NaN values.
func MoveRank(lane []float64, length, minLength int) []float64 {
	out := nanLane(len(lane))
	count := 0
	for i, v := range lane {
		if !math.IsNaN(v) {
			count++
		}
		start := windowStart(i, length)
		if i >= length && !math.IsNaN(lane[i-length]) {
			count--
		}
		if math.IsNaN(v) || count < minLength {
			continue
		}
		less, equal := 0, 0
		for _, w := range lane[start : i+1] {
			switch {
			case w < v:
				less++
			case w == v:
				equal++
			}
		}
		out[i] = normalizeRank(less, equal, count)
	}
	return out
}

// LaneMoment reduces a whole lane in one pass of centred updates.
func LaneMoment(lane []float64, m Moment) float64 {
	var acc moments
	for _, v := range lane {
		acc.push(v)
	}
	return acc.value(m)
}
