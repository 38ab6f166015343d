package report

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/aclements/go-moremath/stats"

	"github.com/verte-zerg/rollbench/internal/dataset"
	"github.com/verte-zerg/rollbench/internal/harness"
	"github.com/verte-zerg/rollbench/internal/model"
)

var timeColumns = map[int]bool{2: true, 3: true, 4: true, 5: true, 6: true, 7: true, 8: true}

func writeLines(w io.Writer, title string, lines []string) error {
	var b strings.Builder
	if title != "" {
		b.WriteString(title)
		b.WriteByte('\n')
	}
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	_, err := io.WriteString(w, b.String())
	return err
}

func ms(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.3f", v)
}

// SummaryLines formats per-library pass statistics.
func SummaryLines(summaries []harness.Summary) []string {
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			s.Group.Label(),
			s.Library.Label(),
			fmt.Sprintf("%d", s.Count),
			ms(s.Mean),
			ms(s.Median),
			ms(s.P95),
			ms(s.Min),
			ms(s.Max),
			ms(s.StdDev),
		})
	}
	return FormatTable(
		[]string{"Group", "Library", "Passes", "Mean ms", "Median ms", "P95 ms", "Min ms", "Max ms", "Std ms"},
		rows, timeColumns)
}

// RenderSummary writes the summary table for samples.
func RenderSummary(w io.Writer, samples []model.RawSample) error {
	if len(samples) == 0 {
		return writeLines(w, "Summary", []string{"No samples."})
	}
	return writeLines(w, "Summary", SummaryLines(harness.Summaries(samples)))
}

// DeltaLines formats the baseline-minus-candidate table.
func DeltaLines(deltas []model.Delta) []string {
	rows := make([][]string, 0, len(deltas))
	for _, d := range deltas {
		base, cand := d.Comparison.Pair()
		faster := cand.Label()
		if d.TimeMs < 0 {
			faster = base.Label()
		}
		rows = append(rows, []string{
			d.Group.Label(),
			d.Comparison.String(),
			fmt.Sprintf("%+.3f", d.TimeMs),
			faster,
		})
	}
	return FormatTable([]string{"Group", "Comparison", "Delta ms", "Faster"}, rows, map[int]bool{2: true})
}

// RenderDeltas writes the relative delta table for samples.
func RenderDeltas(w io.Writer, samples []model.RawSample) error {
	deltas := harness.RelativeDeltas(samples)
	if len(deltas) == 0 {
		return writeLines(w, "Relative deltas", []string{"No comparable libraries."})
	}
	return writeLines(w, "Relative deltas", DeltaLines(deltas))
}

// HistoryLines formats history records.
func HistoryLines(records []model.HistoryRecord) []string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.Group.Label(),
			r.Library.Label(),
			fmt.Sprintf("%d", r.Version),
			fmt.Sprintf("%d", r.TimeTarget),
			ms(r.MedianTimeMs),
		})
	}
	return FormatTable([]string{"Group", "Library", "Version", "Target s", "Median ms"}, rows,
		map[int]bool{2: true, 3: true, 4: true})
}

// HistorySeries returns, per library, the median time by version for group.
// Versions without a record for a library are NaN.
func HistorySeries(records []model.HistoryRecord, group model.Group) []Series {
	versions := map[int]bool{}
	byLibrary := map[model.Library]map[int]float64{}
	for _, r := range records {
		if r.Group != group {
			continue
		}
		versions[r.Version] = true
		if byLibrary[r.Library] == nil {
			byLibrary[r.Library] = map[int]float64{}
		}
		byLibrary[r.Library][r.Version] = r.MedianTimeMs
	}
	ordered := make([]int, 0, len(versions))
	for v := range versions {
		ordered = append(ordered, v)
	}
	sort.Ints(ordered)

	var out []Series
	for _, lib := range model.Libraries() {
		points, ok := byLibrary[lib]
		if !ok {
			continue
		}
		values := make([]float64, len(ordered))
		for i, v := range ordered {
			t, ok := points[v]
			if !ok {
				t = math.NaN()
			}
			values[i] = t
		}
		out = append(out, Series{Name: lib.Label(), Values: values})
	}
	return out
}

// RenderHistory writes the history table followed by one plot per group.
func RenderHistory(w io.Writer, records []model.HistoryRecord, opts PlotOptions) error {
	if len(records) == 0 {
		return writeLines(w, "History", []string{"No history yet."})
	}
	if err := writeLines(w, "History", HistoryLines(records)); err != nil {
		return err
	}
	for _, g := range model.Groups() {
		series := HistorySeries(records, g)
		if len(series) == 0 {
			continue
		}
		if err := Plot(w, fmt.Sprintf("%s median ms by version", g.Label()), series, opts); err != nil {
			return err
		}
	}
	return nil
}

// CalibrationLines formats calibration records.
func CalibrationLines(records []model.CalibrationRecord) []string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.Group.Label(),
			fmt.Sprintf("%d", r.Version),
			fmt.Sprintf("%d", r.TimeTarget),
			fmt.Sprintf("%d", r.NPasses),
			fmt.Sprintf("%.3f", r.TotalTimeSecs),
			ms(r.TimePerPassMs),
		})
	}
	return FormatTable([]string{"Group", "Version", "Target s", "Passes", "Total s", "Per pass ms"}, rows,
		map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true})
}

// RenderCalibration writes the calibration table.
func RenderCalibration(w io.Writer, records []model.CalibrationRecord) error {
	if len(records) == 0 {
		return writeLines(w, "Calibration", []string{"No calibration yet."})
	}
	return writeLines(w, "Calibration", CalibrationLines(records))
}

// TimelineSeries returns pass times in execution order, one series per
// library of group.
func TimelineSeries(samples []model.RawSample, group model.Group) []Series {
	byLibrary := map[model.Library][]float64{}
	for _, s := range samples {
		if s.Group == group {
			byLibrary[s.Library] = append(byLibrary[s.Library], s.TimeMs)
		}
	}
	var out []Series
	for _, lib := range model.Libraries() {
		if times, ok := byLibrary[lib]; ok {
			out = append(out, Series{Name: lib.Label(), Values: times})
		}
	}
	return out
}

// RenderTimeline plots pass time against iteration for every group present.
func RenderTimeline(w io.Writer, samples []model.RawSample, opts PlotOptions) error {
	for _, g := range presentGroups(samples) {
		title := fmt.Sprintf("%s pass time (ms) by iteration", g.Label())
		if err := Plot(w, title, TimelineSeries(samples, g), opts); err != nil {
			return err
		}
	}
	return nil
}

func presentGroups(samples []model.RawSample) []model.Group {
	seen := map[model.Group]bool{}
	for _, s := range samples {
		seen[s.Group] = true
	}
	var out []model.Group
	for _, g := range model.Groups() {
		if seen[g] {
			out = append(out, g)
		}
	}
	return out
}

// CheckSeries returns the first lane of each adapter output: the first
// column, or the only row of a single-row result.
func CheckSeries(results []harness.CheckResult) []Series {
	out := make([]Series, 0, len(results))
	for _, r := range results {
		if r.Output == nil || r.Output.Rows == 0 || r.Output.Cols == 0 {
			continue
		}
		var values []float64
		if r.Output.Rows == 1 {
			values = append(values, r.Output.Data[:r.Output.Cols]...)
		} else {
			values = r.Output.Column(0)
		}
		out = append(out, Series{Name: r.Library.Label(), Values: values})
	}
	return out
}

// RenderCheck overlays the first lane of each adapter's output.
func RenderCheck(w io.Writer, group model.Group, results []harness.CheckResult, opts PlotOptions) error {
	series := CheckSeries(results)
	if len(series) == 0 {
		return writeLines(w, "Check", []string{"No output."})
	}
	shapes := make([]string, 0, len(results))
	for _, r := range results {
		if r.Output != nil {
			shapes = append(shapes, fmt.Sprintf("%s %dx%d nan=%d", r.Library.Label(), r.Output.Rows, r.Output.Cols, dataset.CountNaN(r.Output)))
		}
	}
	if err := writeLines(w, fmt.Sprintf("Check %s", group.Label()), shapes); err != nil {
		return err
	}
	return Plot(w, "", series, opts)
}

// BoxLines draws a text box plot per library of group on a shared scale,
// after dropping samples above the limit percentile.
func BoxLines(samples []model.RawSample, group model.Group, limit float64, width int) []string {
	var inGroup []model.RawSample
	for _, s := range samples {
		if s.Group == group {
			inGroup = append(inGroup, s)
		}
	}
	kept := harness.Distribution(inGroup, limit)
	series := TimelineSeries(kept, group)
	if len(series) == 0 {
		return nil
	}
	lo, hi := bounds(series, func(v float64) float64 { return v })
	if hi-lo < 1e-12 {
		hi = lo + 1
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}
	nameWidth := 0
	for _, s := range series {
		nameWidth = max(nameWidth, len(s.Name))
	}
	pos := func(v float64) int {
		return int(math.Round((v - lo) / (hi - lo) * float64(width-1)))
	}

	lines := make([]string, 0, len(series)+1)
	for _, s := range series {
		sample := stats.Sample{Xs: append([]float64(nil), s.Values...)}
		sample.Sort()
		minV, maxV := sample.Bounds()
		q1, q2, q3 := sample.Quantile(0.25), sample.Quantile(0.5), sample.Quantile(0.75)

		row := []rune(strings.Repeat(" ", width))
		for i := pos(minV); i <= pos(maxV); i++ {
			row[i] = '─'
		}
		for i := pos(q1); i <= pos(q3); i++ {
			row[i] = '█'
		}
		row[pos(minV)] = '├'
		row[pos(maxV)] = '┤'
		row[pos(q2)] = '┃'
		lines = append(lines, fmt.Sprintf("%-*s %s  median %s", nameWidth, s.Name, string(row), ms(q2)))
	}
	lines = append(lines, fmt.Sprintf("%-*s %-*s%s", nameWidth, "", max(width-len(formatAxis(hi)), 0), formatAxis(lo), formatAxis(hi)))
	return lines
}

// RenderDistribution writes one box plot block per group present.
func RenderDistribution(w io.Writer, samples []model.RawSample, limit float64, width int) error {
	for _, g := range presentGroups(samples) {
		title := fmt.Sprintf("%s pass time (ms), fastest %g%%", g.Label(), limit)
		if err := writeLines(w, title, BoxLines(samples, g, limit, width)); err != nil {
			return err
		}
	}
	return nil
}

// RenderRun writes every view of a finished run.
func RenderRun(w io.Writer, samples []model.RawSample, limit float64, opts PlotOptions) error {
	if err := RenderSummary(w, samples); err != nil {
		return err
	}
	width := opts.Width
	if width <= 0 {
		width = PlotWidthFor(terminalWidth())
	}
	if err := RenderDistribution(w, samples, limit, width-12); err != nil {
		return err
	}
	if err := RenderTimeline(w, samples, opts); err != nil {
		return err
	}
	return RenderDeltas(w, samples)
}
