package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Columns names the long-format CSV fields that get pivoted.
type Columns struct {
	Index string
	Pivot string
	Value string
}

// DefaultColumns matches the daily returns export: one row per
// (date, ticker) with a percentage return.
func DefaultColumns() Columns {
	return Columns{Index: "date", Pivot: "ticker", Value: "pct_return"}
}

// LoadCSV reads a long-format CSV file and pivots it into a dense matrix:
// one row per index value (sorted ascending), one column per pivot value
// (sorted). Missing cells and empty values are NaN.
func LoadCSV(path string, cols Columns) (*Matrix, []string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only dataset.
			_ = cerr
		}
	}()
	return ReadCSV(file, cols)
}

// ReadCSV is LoadCSV over an arbitrary reader.
func ReadCSV(r io.Reader, cols Columns) (*Matrix, []string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	indexCol, pivotCol, valueCol := -1, -1, -1
	for i, h := range headers {
		switch strings.TrimSpace(h) {
		case cols.Index:
			indexCol = i
		case cols.Pivot:
			pivotCol = i
		case cols.Value:
			valueCol = i
		}
	}
	if indexCol < 0 || pivotCol < 0 || valueCol < 0 {
		return nil, nil, fmt.Errorf("CSV header must contain %q, %q and %q", cols.Index, cols.Pivot, cols.Value)
	}

	type cell struct {
		index string
		pivot string
		value float64
	}
	var cells []cell
	indexSet := map[string]struct{}{}
	pivotSet := map[string]struct{}{}
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}
		idx := strings.TrimSpace(row[indexCol])
		piv := strings.TrimSpace(row[pivotCol])
		if idx == "" || piv == "" {
			continue
		}
		value := math.NaN()
		if raw := strings.TrimSpace(row[valueCol]); raw != "" {
			parsed, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("invalid %s on line %d: %w", cols.Value, line, err)
			}
			value = parsed
		}
		cells = append(cells, cell{index: idx, pivot: piv, value: value})
		indexSet[idx] = struct{}{}
		pivotSet[piv] = struct{}{}
	}
	if len(cells) == 0 {
		return nil, nil, fmt.Errorf("dataset is empty")
	}

	indexes := sortedKeys(indexSet)
	names := sortedKeys(pivotSet)
	rowOf := make(map[string]int, len(indexes))
	for i, v := range indexes {
		rowOf[v] = i
	}
	colOf := make(map[string]int, len(names))
	for i, v := range names {
		colOf[v] = i
	}

	m := NewMatrixNaN(len(indexes), len(names))
	for _, c := range cells {
		m.Set(rowOf[c.index], colOf[c.pivot], c.value)
	}
	return m, names, nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
