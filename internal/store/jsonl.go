package store

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/verte-zerg/rollbench/internal/model"
)

// JSONL stores one JSON object per line, one file per collection.
type JSONL struct {
	calibrationPath string
	historyPath     string
}

// NewJSONL returns a file store for mode under dir. Files are created on
// first write.
func NewJSONL(dir string, mode model.Mode) *JSONL {
	return &JSONL{
		calibrationPath: filepath.Join(dir, string(mode)+"-calibration.jsonl"),
		historyPath:     filepath.Join(dir, string(mode)+"-history.jsonl"),
	}
}

// CalibrationPath returns the calibration file location.
func (s *JSONL) CalibrationPath() string {
	return s.calibrationPath
}

// HistoryPath returns the history file location.
func (s *JSONL) HistoryPath() string {
	return s.historyPath
}

// Paths implements Backend.
func (s *JSONL) Paths() []string {
	return []string{s.calibrationPath, s.historyPath}
}

// Close implements Backend.
func (s *JSONL) Close() error {
	return nil
}

// LoadCalibration reads every calibration record. A missing file is empty.
func (s *JSONL) LoadCalibration(ctx context.Context) ([]model.CalibrationRecord, error) {
	return readLines[model.CalibrationRecord](ctx, s.calibrationPath)
}

// ReplaceCalibration rewrites the calibration file.
func (s *JSONL) ReplaceCalibration(_ context.Context, records []model.CalibrationRecord) error {
	return writeLines(s.calibrationPath, records)
}

// LoadHistory reads every history record. A missing file is empty.
func (s *JSONL) LoadHistory(ctx context.Context) ([]model.HistoryRecord, error) {
	return readLines[model.HistoryRecord](ctx, s.historyPath)
}

// ReplaceHistory rewrites the history file.
func (s *JSONL) ReplaceHistory(_ context.Context, records []model.HistoryRecord) error {
	return writeLines(s.historyPath, records)
}

func readLines[T any](ctx context.Context, path string) ([]T, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only store file.
			_ = cerr
		}
	}()

	var out []T
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var rec T
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("failed to decode %s line %d: %w", path, line, err)
		}
		out = append(out, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return out, nil
}

// writeLines replaces path atomically: records go to a temp file in the
// same directory which is then renamed over the target.
func writeLines[T any](path string, records []T) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create store dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp store file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	writer := bufio.NewWriter(tmpFile)
	encoder := json.NewEncoder(writer)
	for _, rec := range records {
		if err := encoder.Encode(rec); err != nil {
			return fmt.Errorf("failed to encode record: %w", err)
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush store file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close store file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
