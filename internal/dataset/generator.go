package dataset

import (
	"fmt"
	"math"
	"math/rand"
)

// Generator produces synthetic datasets.
type Generator struct {
	rnd *rand.Rand
}

// NewGenerator returns a Generator with a fixed seed so repeated sessions
// time the same data.
func NewGenerator(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Returns builds a rows x cols matrix of daily percentage returns. The first
// row is NaN, like returns derived from a price series, and each column has
// its own volatility.
func (g *Generator) Returns(rows, cols int) *Matrix {
	m := NewMatrixNaN(rows, cols)
	for c := 0; c < cols; c++ {
		vol := 0.5 + g.rnd.Float64()*2.5
		drift := (g.rnd.Float64() - 0.5) * 0.05
		for r := 1; r < rows; r++ {
			m.Set(r, c, drift+g.rnd.NormFloat64()*vol)
		}
	}
	return m
}

// Uniform builds a rows x cols matrix of values in [0, 1).
func (g *Generator) Uniform(rows, cols int) *Matrix {
	m := NewMatrix(rows, cols)
	for i := range m.Data {
		m.Data[i] = g.rnd.Float64()
	}
	return m
}

// TickerNames returns generated instrument names for n columns.
func TickerNames(n int) []string {
	width := len(fmt.Sprint(n))
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("T%0*d", width, i)
	}
	return names
}

// CountNaN returns how many cells of m are NaN.
func CountNaN(m *Matrix) int {
	n := 0
	for _, v := range m.Data {
		if math.IsNaN(v) {
			n++
		}
	}
	return n
}
