// Package dataset holds the numeric views handed to benchmark candidates.
package dataset

import (
	"fmt"
	"math"
)

// Matrix is a dense row-major float64 matrix. Rows are time steps and
// columns are instruments.
type Matrix struct {
	Rows int
	Cols int
	Data []float64
}

// NewMatrix allocates a zeroed rows x cols matrix.
func NewMatrix(rows, cols int) *Matrix {
	return &Matrix{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
}

// NewMatrixNaN allocates a rows x cols matrix filled with NaN.
func NewMatrixNaN(rows, cols int) *Matrix {
	m := NewMatrix(rows, cols)
	for i := range m.Data {
		m.Data[i] = math.NaN()
	}
	return m
}

// At returns the value at row r, column c.
func (m *Matrix) At(r, c int) float64 {
	return m.Data[r*m.Cols+c]
}

// Set stores v at row r, column c.
func (m *Matrix) Set(r, c int, v float64) {
	m.Data[r*m.Cols+c] = v
}

// Column copies column c into a new slice.
func (m *Matrix) Column(c int) []float64 {
	out := make([]float64, m.Rows)
	for r := 0; r < m.Rows; r++ {
		out[r] = m.Data[r*m.Cols+c]
	}
	return out
}

// Lanes splits the matrix into contiguous 1-D slices along axis. Axis 0
// yields one lane per column (walking time), axis 1 one lane per row.
func (m *Matrix) Lanes(axis int) ([][]float64, error) {
	switch axis {
	case 0:
		lanes := make([][]float64, m.Cols)
		for c := range lanes {
			lanes[c] = m.Column(c)
		}
		return lanes, nil
	case 1:
		lanes := make([][]float64, m.Rows)
		for r := range lanes {
			lane := make([]float64, m.Cols)
			copy(lane, m.Data[r*m.Cols:(r+1)*m.Cols])
			lanes[r] = lane
		}
		return lanes, nil
	default:
		return nil, fmt.Errorf("invalid axis %d (use 0 or 1)", axis)
	}
}

// FromLanes reassembles lanes produced along axis into a matrix. All lanes
// must share one length, which may differ from the source lane length
// (reductions produce one value per lane).
func FromLanes(lanes [][]float64, axis int) (*Matrix, error) {
	if len(lanes) == 0 {
		return NewMatrix(0, 0), nil
	}
	n := len(lanes[0])
	for i, lane := range lanes {
		if len(lane) != n {
			return nil, fmt.Errorf("lane %d has length %d, want %d", i, len(lane), n)
		}
	}
	switch axis {
	case 0:
		m := NewMatrix(n, len(lanes))
		for c, lane := range lanes {
			for r, v := range lane {
				m.Data[r*m.Cols+c] = v
			}
		}
		return m, nil
	case 1:
		m := NewMatrix(len(lanes), n)
		for r, lane := range lanes {
			copy(m.Data[r*m.Cols:(r+1)*m.Cols], lane)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("invalid axis %d (use 0 or 1)", axis)
	}
}
