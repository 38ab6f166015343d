package report

import (
	"bytes"
	"math"
	"strings"
	"testing"
)

func TestPlotSharedScale(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	var buf bytes.Buffer
	err := Plot(&buf, "Test Plot", []Series{
		{Name: "A", Values: []float64{1, 2, 3}},
		{Name: "B", Values: []float64{2, 4}},
	}, PlotOptions{Width: 10, Height: 4})
	if err != nil {
		t.Fatalf("Plot failed: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("unexpected colour codes for a buffer")
	}
	lines := strings.Split(out, "\n")
	if lines[0] != "Test Plot" {
		t.Fatalf("expected title, got %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "        4 ┤") {
		t.Fatalf("expected max label on top row, got %q", lines[1])
	}
	if !strings.HasPrefix(lines[3], "        2 ┤") {
		t.Fatalf("expected mid label, got %q", lines[3])
	}
	if !strings.HasPrefix(lines[4], "        1 ┤") {
		t.Fatalf("expected min label on bottom row, got %q", lines[4])
	}
	for _, row := range lines[1:5] {
		cells := []rune(strings.SplitN(row, "┤", 2)[1])
		if len(cells) != 10 {
			t.Fatalf("expected 10 plot cells, got %d in %q", len(cells), row)
		}
	}
	if !strings.Contains(lines[5], "⣿ A") || !strings.Contains(lines[5], "⣿ B") {
		t.Fatalf("expected legend, got %q", lines[5])
	}
}

func TestPlotLogScaleLabels(t *testing.T) {
	var buf bytes.Buffer
	err := Plot(&buf, "", []Series{{Name: "A", Values: []float64{1, 10, 100, 1000}}},
		PlotOptions{Width: 12, Height: 3, LogY: true})
	if err != nil {
		t.Fatalf("Plot failed: %v", err)
	}
	lines := strings.Split(buf.String(), "\n")
	if !strings.HasPrefix(lines[0], "     1000 ┤") {
		t.Fatalf("unexpected top label %q", lines[0])
	}
	if !strings.HasPrefix(lines[2], "        1 ┤") {
		t.Fatalf("unexpected bottom label %q", lines[2])
	}
}

func TestPlotSkipsEmptyInput(t *testing.T) {
	var buf bytes.Buffer
	if err := Plot(&buf, "title", nil, PlotOptions{Width: 10}); err != nil {
		t.Fatalf("Plot failed: %v", err)
	}
	if err := Plot(&buf, "title", []Series{{Name: "nan", Values: []float64{math.NaN()}}}, PlotOptions{Width: 10}); err != nil {
		t.Fatalf("Plot failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestPlotForcedColor(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	var buf bytes.Buffer
	if err := Plot(&buf, "", []Series{{Name: "A", Values: []float64{1, 2}}}, PlotOptions{Width: 10, Height: 2, Color: true}); err != nil {
		t.Fatalf("Plot failed: %v", err)
	}
	if !strings.Contains(buf.String(), palette[0]) {
		t.Fatalf("expected colour codes")
	}

	t.Setenv("NO_COLOR", "1")
	buf.Reset()
	if err := Plot(&buf, "", []Series{{Name: "A", Values: []float64{1, 2}}}, PlotOptions{Width: 10, Height: 2, Color: true}); err != nil {
		t.Fatalf("Plot failed: %v", err)
	}
	if strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("NO_COLOR should win over Color")
	}
}

func TestPlotWidthFor(t *testing.T) {
	cases := map[int]int{0: minPlotWidth, 5: minPlotWidth, 80: 69, 120: 109}
	for total, want := range cases {
		if got := PlotWidthFor(total); got != want {
			t.Fatalf("PlotWidthFor(%d) = %d, want %d", total, got, want)
		}
	}
}

func TestCanvasLineEndpoints(t *testing.T) {
	cv := newCanvas(2, 1, 1)
	cv.line(0, 0, 0, 3, 3)
	ch, owner := cv.cell(0, 0)
	if owner != 0 || ch == 0x2800 {
		t.Fatalf("expected dots in first cell, got %q owner %d", ch, owner)
	}
	ch, _ = cv.cell(1, 0)
	if ch&0x80 == 0 {
		t.Fatalf("expected bottom-right dot set, got %U", ch)
	}
}
