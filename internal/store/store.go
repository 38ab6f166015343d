// Package store persists calibration and history records.
package store

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/verte-zerg/rollbench/internal/model"
)

// Backend names.
const (
	BackendJSONL  = "jsonl"
	BackendSQLite = "sqlite"
)

// Backend loads and rewrites both record collections of one suite mode.
type Backend interface {
	LoadCalibration(ctx context.Context) ([]model.CalibrationRecord, error)
	ReplaceCalibration(ctx context.Context, records []model.CalibrationRecord) error
	LoadHistory(ctx context.Context) ([]model.HistoryRecord, error)
	ReplaceHistory(ctx context.Context, records []model.HistoryRecord) error
	// Paths lists the files whose changes signal new records.
	Paths() []string
	Close() error
}

// Open returns the backend kind rooted at dir for mode.
func Open(kind, dir string, mode model.Mode) (Backend, error) {
	if _, err := model.ParseMode(string(mode)); err != nil {
		return nil, err
	}
	switch kind {
	case "", BackendJSONL:
		return NewJSONL(dir, mode), nil
	case BackendSQLite:
		return OpenSQLite(filepath.Join(dir, "rollbench.db"), mode)
	default:
		return nil, fmt.Errorf("unknown store backend %q (use jsonl or sqlite)", kind)
	}
}
