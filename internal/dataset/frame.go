package dataset

import "fmt"

// Frame is the column-major mirror of a Matrix: one named, contiguous
// column per instrument.
type Frame struct {
	Names   []string
	Columns [][]float64
}

// NewFrame builds a frame holding exactly the data of m. When names is
// shorter than the column count, generated names fill the gap.
func NewFrame(m *Matrix, names []string) *Frame {
	f := &Frame{
		Names:   make([]string, m.Cols),
		Columns: make([][]float64, m.Cols),
	}
	for c := 0; c < m.Cols; c++ {
		if c < len(names) {
			f.Names[c] = names[c]
		} else {
			f.Names[c] = fmt.Sprintf("col_%d", c)
		}
		f.Columns[c] = m.Column(c)
	}
	return f
}

// Height returns the number of rows.
func (f *Frame) Height() int {
	if len(f.Columns) == 0 {
		return 0
	}
	return len(f.Columns[0])
}

// Lanes returns the frame data along axis. Axis 0 hands out the columns
// themselves without copying; callers must treat them as read-only.
func (f *Frame) Lanes(axis int) ([][]float64, error) {
	switch axis {
	case 0:
		return f.Columns, nil
	case 1:
		height := f.Height()
		lanes := make([][]float64, height)
		for r := 0; r < height; r++ {
			lane := make([]float64, len(f.Columns))
			for c, col := range f.Columns {
				lane[c] = col[r]
			}
			lanes[r] = lane
		}
		return lanes, nil
	default:
		return nil, fmt.Errorf("invalid axis %d (use 0 or 1)", axis)
	}
}

// Matches reports whether the frame and m hold identical values, treating
// NaN as equal to NaN.
func (f *Frame) Matches(m *Matrix) bool {
	if len(f.Columns) != m.Cols || f.Height() != m.Rows {
		return false
	}
	for c, col := range f.Columns {
		for r, v := range col {
			w := m.At(r, c)
			if v != w && !(v != v && w != w) {
				return false
			}
		}
	}
	return true
}
