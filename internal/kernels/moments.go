package kernels

import "math"

// Moment selects a statistic derived from running sums.
type Moment int

// Moment statistics.
const (
	MomentMean Moment = iota
	MomentSum
	MomentVar
	MomentStd
	MomentSkew
	MomentKurt
)

// tally counts the non-NaN observations and the infinite ones among them.
// Infinite values never enter the finite sums.
type tally struct {
	n, pos, neg int
}

// observe applies delta (+1 or -1) for v and reports whether v is finite.
func (t *tally) observe(v float64, delta int) bool {
	switch {
	case math.IsNaN(v):
		return false
	case math.IsInf(v, 1):
		t.n += delta
		t.pos += delta
		return false
	case math.IsInf(v, -1):
		t.n += delta
		t.neg += delta
		return false
	}
	t.n += delta
	return true
}

func (t tally) finite() int {
	return t.n - t.pos - t.neg
}

func (t tally) plus(u tally) tally {
	return tally{n: t.n + u.n, pos: t.pos + u.pos, neg: t.neg + u.neg}
}

func (t tally) minus(u tally) tally {
	return tally{n: t.n - u.n, pos: t.pos - u.pos, neg: t.neg - u.neg}
}

// infinite returns the value m takes when the window holds an infinity.
func (t tally) infinite(m Moment) (float64, bool) {
	if t.pos == 0 && t.neg == 0 {
		return 0, false
	}
	switch m {
	case MomentMean, MomentSum:
		switch {
		case t.pos > 0 && t.neg > 0:
			return math.NaN(), true
		case t.pos > 0:
			return math.Inf(1), true
		default:
			return math.Inf(-1), true
		}
	}
	return math.NaN(), true
}

// evaluate derives m from a finite count, sum and population central moments.
func evaluate(m Moment, n, sum, m2, m3, m4 float64) float64 {
	switch m {
	case MomentMean:
		return sum / n
	case MomentSum:
		return sum
	case MomentVar, MomentStd:
		if n < 2 {
			return math.NaN()
		}
		v := m2 * n / (n - 1)
		if m == MomentStd {
			return math.Sqrt(v)
		}
		return v
	case MomentSkew:
		return skewFromMoments(n, m2, m3)
	case MomentKurt:
		return kurtFromMoments(n, m2, m4)
	}
	return math.NaN()
}

// moments keeps the mean and the sums of centred powers (M2..M4) of the
// finite values seen so far.
type moments struct {
	tally
	mean, m2, m3, m4 float64
}

// push folds v in with the one-pass Terriberry update.
func (a *moments) push(v float64) {
	if !a.observe(v, 1) {
		return
	}
	n := float64(a.finite())
	n1 := n - 1
	delta := v - a.mean
	dn := delta / n
	dn2 := dn * dn
	term := delta * dn * n1
	a.mean += dn
	a.m4 += term*dn2*(n*n-3*n+3) + 6*dn2*a.m2 - 4*dn*a.m3
	a.m3 += term*dn*(n-2) - 3*dn*a.m2
	a.m2 += term
}

// mergeMoments combines two disjoint partitions (Pébay's pairwise formulas).
func mergeMoments(a, b moments) moments {
	out := moments{tally: a.tally.plus(b.tally)}
	na, nb := float64(a.finite()), float64(b.finite())
	switch {
	case nb == 0:
		out.mean, out.m2, out.m3, out.m4 = a.mean, a.m2, a.m3, a.m4
		return out
	case na == 0:
		out.mean, out.m2, out.m3, out.m4 = b.mean, b.m2, b.m3, b.m4
		return out
	}
	n := na + nb
	delta := b.mean - a.mean
	d2 := delta * delta
	out.mean = a.mean + delta*nb/n
	out.m2 = a.m2 + b.m2 + d2*na*nb/n
	out.m3 = a.m3 + b.m3 + d2*delta*na*nb*(na-nb)/(n*n) + 3*delta*(na*b.m2-nb*a.m2)/n
	out.m4 = a.m4 + b.m4 + d2*d2*na*nb*(na*na-na*nb+nb*nb)/(n*n*n) +
		6*d2*(na*na*b.m2+nb*nb*a.m2)/(n*n) + 4*delta*(na*b.m3-nb*a.m3)/n
	return out
}

func (a moments) value(m Moment) float64 {
	if a.n == 0 {
		return math.NaN()
	}
	if v, ok := a.infinite(m); ok {
		return v
	}
	k := float64(a.finite())
	return evaluate(m, k, a.mean*k, a.m2/k, a.m3/k, a.m4/k)
}

// powerSums accumulates power sums of (v - shift) over finite values. A
// shift close to the data keeps the central moments recoverable without
// cancellation; values far from zero would otherwise swamp them.
type powerSums struct {
	tally
	shift          float64
	s1, s2, s3, s4 float64
}

// sumsOf accumulates xs shifted by their first finite value.
func sumsOf(xs []float64) powerSums {
	p := powerSums{shift: firstFinite(xs)}
	for _, v := range xs {
		p.add(v)
	}
	return p
}

func firstFinite(xs []float64) float64 {
	for _, v := range xs {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			return v
		}
	}
	return 0
}

func (p *powerSums) add(v float64) {
	if !p.observe(v, 1) {
		return
	}
	d := v - p.shift
	d2 := d * d
	p.s1 += d
	p.s2 += d2
	p.s3 += d2 * d
	p.s4 += d2 * d2
}

func (p *powerSums) remove(v float64) {
	if !p.observe(v, -1) {
		return
	}
	d := v - p.shift
	d2 := d * d
	p.s1 -= d
	p.s2 -= d2
	p.s3 -= d2 * d
	p.s4 -= d2 * d2
}

// sub returns the sums of p's rows not in q. Both must share a shift.
func (p powerSums) sub(q powerSums) powerSums {
	return powerSums{
		tally: p.tally.minus(q.tally),
		shift: p.shift,
		s1:    p.s1 - q.s1,
		s2:    p.s2 - q.s2,
		s3:    p.s3 - q.s3,
		s4:    p.s4 - q.s4,
	}
}

// moments converts the shifted sums to centred form.
func (p powerSums) moments() moments {
	out := moments{tally: p.tally}
	if p.finite() == 0 {
		return out
	}
	k := float64(p.finite())
	d := p.s1 / k
	e2, e3, e4 := p.s2/k, p.s3/k, p.s4/k
	dd := d * d
	m2 := e2 - dd
	if m2 < 0 {
		m2 = 0
	}
	m3 := e3 - 3*d*e2 + 2*dd*d
	m4 := e4 - 4*d*e3 + 6*dd*e2 - 3*dd*dd
	out.mean = p.shift + d
	out.m2, out.m3, out.m4 = m2*k, m3*k, m4*k
	return out
}

// value evaluates m from the accumulated sums.
func (p powerSums) value(m Moment) float64 {
	if p.n == 0 {
		return math.NaN()
	}
	if v, ok := p.infinite(m); ok {
		return v
	}
	k := float64(p.finite())
	c := p.moments()
	return evaluate(m, k, p.s1+k*p.shift, c.m2/k, c.m3/k, c.m4/k)
}
