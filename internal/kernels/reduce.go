// Package kernels implements NaN-aware window and whole-lane statistics.
//
// Every kernel skips NaN observations. Moving kernels produce one output per
// input row; row i covers rows [i-length+1, i] and is NaN when fewer than
// minLength non-NaN observations fall inside the window.
package kernels

import (
	"math"
	"sort"
)

// Reducer collapses a window into a single value.
type Reducer func(xs []float64) float64

func valid(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, v := range xs {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Count returns the number of non-NaN values in xs.
func Count(xs []float64) int {
	n := 0
	for _, v := range xs {
		if !math.IsNaN(v) {
			n++
		}
	}
	return n
}

// Sum adds the non-NaN values of xs.
func Sum(xs []float64) float64 {
	total, n := 0.0, 0
	for _, v := range xs {
		if math.IsNaN(v) {
			continue
		}
		total += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return total
}

// Mean averages the non-NaN values of xs.
func Mean(xs []float64) float64 {
	total, n := 0.0, 0
	for _, v := range xs {
		if math.IsNaN(v) {
			continue
		}
		total += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return total / float64(n)
}

// Var is the sample variance (ddof = 1).
func Var(xs []float64) float64 {
	vals := valid(xs)
	n := len(vals)
	if n < 2 {
		return math.NaN()
	}
	mean := Mean(vals)
	ss := 0.0
	for _, v := range vals {
		d := v - mean
		ss += d * d
	}
	return ss / float64(n-1)
}

// Std is the sample standard deviation (ddof = 1).
func Std(xs []float64) float64 {
	return math.Sqrt(Var(xs))
}

// Max returns the largest non-NaN value.
func Max(xs []float64) float64 {
	out, seen := math.Inf(-1), false
	for _, v := range xs {
		if math.IsNaN(v) {
			continue
		}
		seen = true
		if v > out {
			out = v
		}
	}
	if !seen {
		return math.NaN()
	}
	return out
}

// Min returns the smallest non-NaN value.
func Min(xs []float64) float64 {
	out, seen := math.Inf(1), false
	for _, v := range xs {
		if math.IsNaN(v) {
			continue
		}
		seen = true
		if v < out {
			out = v
		}
	}
	if !seen {
		return math.NaN()
	}
	return out
}

// Median returns the middle non-NaN value, averaging the two middle values
// for an even count.
func Median(xs []float64) float64 {
	vals := valid(xs)
	if len(vals) == 0 {
		return math.NaN()
	}
	sort.Float64s(vals)
	return sortedMedian(vals)
}

func sortedMedian(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// central returns the population central moments m2, m3, m4 of vals.
func central(vals []float64) (m2, m3, m4 float64) {
	n := float64(len(vals))
	mean := 0.0
	for _, v := range vals {
		mean += v
	}
	mean /= n
	for _, v := range vals {
		d := v - mean
		d2 := d * d
		m2 += d2
		m3 += d2 * d
		m4 += d2 * d2
	}
	return m2 / n, m3 / n, m4 / n
}

// Skew is the bias-corrected sample skewness (G1).
func Skew(xs []float64) float64 {
	vals := valid(xs)
	if len(vals) < 3 {
		return math.NaN()
	}
	m2, m3, _ := central(vals)
	return skewFromMoments(float64(len(vals)), m2, m3)
}

// Kurt is the bias-corrected sample excess kurtosis (G2).
func Kurt(xs []float64) float64 {
	vals := valid(xs)
	if len(vals) < 4 {
		return math.NaN()
	}
	m2, _, m4 := central(vals)
	return kurtFromMoments(float64(len(vals)), m2, m4)
}

func skewFromMoments(n, m2, m3 float64) float64 {
	if n < 3 || m2 <= 0 {
		return math.NaN()
	}
	g1 := m3 / math.Pow(m2, 1.5)
	return math.Sqrt(n*(n-1)) / (n - 2) * g1
}

func kurtFromMoments(n, m2, m4 float64) float64 {
	if n < 4 || m2 <= 0 {
		return math.NaN()
	}
	num := (n*n-1)*m4/(m2*m2) - 3*(n-1)*(n-1)
	return num / ((n - 2) * (n - 3))
}

// RankLast ranks the newest value of the window among its non-NaN values and
// normalizes the result to [-1, 1]. A NaN newest value yields NaN.
func RankLast(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	current := xs[len(xs)-1]
	if math.IsNaN(current) {
		return math.NaN()
	}
	less, equal, n := 0, 0, 0
	for _, v := range xs {
		if math.IsNaN(v) {
			continue
		}
		n++
		switch {
		case v < current:
			less++
		case v == current:
			equal++
		}
	}
	return normalizeRank(less, equal, n)
}

func normalizeRank(less, equal, n int) float64 {
	if n == 1 {
		return 0
	}
	rank := float64(less) + float64(equal-1)/2
	return 2*rank/float64(n-1) - 1
}

// RankData assigns average 1-based ranks to the non-NaN values of xs.
// NaN inputs keep NaN ranks.
func RankData(xs []float64) []float64 {
	out := make([]float64, len(xs))
	idx := make([]int, 0, len(xs))
	for i, v := range xs {
		if math.IsNaN(v) {
			out[i] = math.NaN()
			continue
		}
		idx = append(idx, i)
	}
	sort.SliceStable(idx, func(a, b int) bool { return xs[idx[a]] < xs[idx[b]] })
	for start := 0; start < len(idx); {
		end := start + 1
		for end < len(idx) && xs[idx[end]] == xs[idx[start]] {
			end++
		}
		// Ties share the mean of ranks start+1..end.
		avg := float64(start+end+1) / 2
		for k := start; k < end; k++ {
			out[idx[k]] = avg
		}
		start = end
	}
	return out
}
