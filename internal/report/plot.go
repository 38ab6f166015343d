// Package report renders benchmark results as text tables and braille plots.
package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"
)

// Series is a named line of values. NaN values leave gaps.
type Series struct {
	Name   string
	Values []float64
}

// PlotOptions controls plot geometry and scaling.
type PlotOptions struct {
	Width  int
	Height int
	LogY   bool
	// Color forces ANSI colour even when w is not a terminal.
	Color bool
}

const (
	defaultPlotHeight = 10
	minPlotWidth      = 10
	fallbackWidth     = 80
	axisWidth         = 9
	axisSeparator     = " ┤"
	colorReset        = "\x1b[0m"
)

var palette = []string{
	"\x1b[36m", // cyan
	"\x1b[35m", // magenta
	"\x1b[33m", // yellow
	"\x1b[32m", // green
	"\x1b[34m", // blue
}

// canvas is a braille grid: each cell holds 2x4 dots.
type canvas struct {
	cols, rows int
	layers     [][]uint8
}

func newCanvas(cols, rows, layers int) *canvas {
	c := &canvas{cols: cols, rows: rows, layers: make([][]uint8, layers)}
	for i := range c.layers {
		c.layers[i] = make([]uint8, cols*rows)
	}
	return c
}

var dotBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

func (c *canvas) set(layer, x, y int) {
	if x < 0 || y < 0 || x >= c.cols*2 || y >= c.rows*4 {
		return
	}
	c.layers[layer][(y/4)*c.cols+x/2] |= dotBits[x%2][y%4]
}

// line draws from (x0, y0) to (x1, y1) with Bresenham's algorithm.
func (c *canvas) line(layer, x0, y0, x1, y1 int) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		c.set(layer, x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		if e2 := 2 * e; e2 >= dy {
			e += dy
			x0 += sx
		} else {
			e += dx
			y0 += sy
		}
	}
}

// cell merges every layer at (col, row) and reports the first layer that
// drew there, or -1.
func (c *canvas) cell(col, row int) (rune, int) {
	var mask uint8
	owner := -1
	for i, layer := range c.layers {
		bits := layer[row*c.cols+col]
		if bits == 0 {
			continue
		}
		if owner < 0 {
			owner = i
		}
		mask |= bits
	}
	return rune(0x2800 + int(mask)), owner
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Plot draws every series on one shared y-scale.
func Plot(w io.Writer, title string, series []Series, opts PlotOptions) error {
	series = nonEmpty(series)
	if len(series) == 0 {
		return nil
	}
	height := opts.Height
	if height <= 0 {
		height = defaultPlotHeight
	}
	width := opts.Width
	if width <= 0 {
		width = PlotWidthFor(terminalWidth())
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}

	transform := func(v float64) float64 { return v }
	if opts.LogY {
		transform = func(v float64) float64 {
			if v <= 0 {
				return math.NaN()
			}
			return math.Log10(v)
		}
	}
	lo, hi := bounds(series, transform)
	if math.IsInf(lo, 1) {
		return nil
	}
	if hi-lo < 1e-12 {
		lo, hi = lo-1, hi+1
	}

	dotsX, dotsY := width*2, height*4
	cv := newCanvas(width, height, len(series))
	for si, s := range series {
		prevX, prevY := -1, -1
		for i, raw := range s.Values {
			v := transform(raw)
			if math.IsNaN(v) {
				prevX = -1
				continue
			}
			x := 0
			if len(s.Values) > 1 {
				x = int(math.Round(float64(i) * float64(dotsX-1) / float64(len(s.Values)-1)))
			}
			y := int(math.Round((hi - v) / (hi - lo) * float64(dotsY-1)))
			if prevX >= 0 {
				cv.line(si, prevX, prevY, x, y)
			} else {
				cv.set(si, x, y)
			}
			prevX, prevY = x, y
		}
	}

	useColor := colorEnabled(w, opts.Color)
	label := func(v float64) string {
		if opts.LogY {
			v = math.Pow(10, v)
		}
		return formatAxis(v)
	}
	labels := make([]string, height)
	labels[0] = label(hi)
	labels[height-1] = label(lo)
	if height > 2 {
		labels[height/2] = label(hi - (hi-lo)*float64(height/2)/float64(height-1))
	}

	var b strings.Builder
	if title != "" {
		b.WriteString(title)
		b.WriteByte('\n')
	}
	for row := 0; row < height; row++ {
		fmt.Fprintf(&b, "%*s%s", axisWidth, labels[row], axisSeparator)
		for col := 0; col < width; col++ {
			ch, owner := cv.cell(col, row)
			if useColor && owner >= 0 {
				b.WriteString(palette[owner%len(palette)])
				b.WriteRune(ch)
				b.WriteString(colorReset)
				continue
			}
			b.WriteRune(ch)
		}
		b.WriteByte('\n')
	}
	b.WriteString(legend(series, useColor))
	b.WriteString("\n\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func nonEmpty(series []Series) []Series {
	out := make([]Series, 0, len(series))
	for _, s := range series {
		if len(s.Values) > 0 {
			out = append(out, s)
		}
	}
	return out
}

func bounds(series []Series, transform func(float64) float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, raw := range s.Values {
			v := transform(raw)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	return lo, hi
}

func formatAxis(v float64) string {
	switch a := math.Abs(v); {
	case a == 0:
		return "0"
	case a >= 1e5 || a < 1e-3:
		return fmt.Sprintf("%.2e", v)
	default:
		return fmt.Sprintf("%.4g", v)
	}
}

func legend(series []Series, useColor bool) string {
	parts := make([]string, 0, len(series))
	for i, s := range series {
		item := "⣿ " + s.Name
		if useColor {
			item = palette[i%len(palette)] + item + colorReset
		}
		parts = append(parts, item)
	}
	return strings.Repeat(" ", axisWidth) + "  " + strings.Join(parts, "  ")
}

// PlotWidthFor returns the number of plot cells that fit in totalWidth
// columns next to the axis.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	width := totalWidth - axisWidth - len([]rune(axisSeparator))
	if width < minPlotWidth {
		return minPlotWidth
	}
	return width
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return fallbackWidth
	}
	return width
}

func colorEnabled(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
