package kernels

import "math"

// cumulativeBlock is the number of rows sharing one shift in the prefix sums.
const cumulativeBlock = 64

// Cumulative holds blockwise prefix power sums of a column. Each block is
// shifted by its own first finite value, so a range is evaluated by one
// subtraction per block it touches and a merge of the block moments.
type Cumulative struct {
	// prefix[i] covers rows from the start of i's block up to i (exclusive).
	prefix []powerSums
	// totals[b] covers all of block b.
	totals []powerSums
	counts []int
}

// NewCumulative scans col once.
func NewCumulative(col []float64) *Cumulative {
	n := len(col)
	c := &Cumulative{
		prefix: make([]powerSums, n+1),
		counts: make([]int, n+1),
	}
	for start := 0; start < n; start += cumulativeBlock {
		end := min(start+cumulativeBlock, n)
		acc := powerSums{shift: firstFinite(col[start:end])}
		for i := start; i < end; i++ {
			c.prefix[i] = acc
			acc.add(col[i])
		}
		c.totals = append(c.totals, acc)
	}
	for i, v := range col {
		c.counts[i+1] = c.counts[i]
		if !math.IsNaN(v) {
			c.counts[i+1]++
		}
	}
	return c
}

// Len returns the column length.
func (c *Cumulative) Len() int {
	return len(c.counts) - 1
}

// Count returns the number of non-NaN values in rows [from, to).
func (c *Cumulative) Count(from, to int) int {
	return c.counts[to] - c.counts[from]
}

// Moment evaluates m over rows [from, to).
func (c *Cumulative) Moment(from, to int, m Moment) float64 {
	var acc moments
	for from < to {
		b := from / cumulativeBlock
		blockEnd := min((b+1)*cumulativeBlock, c.Len())
		end := min(blockEnd, to)
		upper := c.totals[b]
		if end < blockEnd {
			upper = c.prefix[end]
		}
		acc = mergeMoments(acc, upper.sub(c.prefix[from]).moments())
		from = end
	}
	return acc.value(m)
}

// Rolling evaluates m over every trailing window.
func (c *Cumulative) Rolling(length, minLength int, m Moment) []float64 {
	n := c.Len()
	out := nanLane(n)
	for i := 0; i < n; i++ {
		start := windowStart(i, length)
		if c.Count(start, i+1) < minLength {
			continue
		}
		out[i] = c.Moment(start, i+1, m)
	}
	return out
}
