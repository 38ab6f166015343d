package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/verte-zerg/rollbench/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// SQLite keeps both collections in one database, partitioned by suite mode.
type SQLite struct {
	db   *sql.DB
	path string
	mode model.Mode
}

// OpenSQLite opens or creates the database and applies migrations.
func OpenSQLite(path string, mode model.Mode) (*SQLite, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &SQLite{db: db, path: path, mode: mode}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Paths implements Backend.
func (s *SQLite) Paths() []string {
	return []string{s.path}
}

func (s *SQLite) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS calibration (
			mode TEXT NOT NULL,
			grp TEXT NOT NULL,
			version INTEGER NOT NULL,
			time_target INTEGER NOT NULL,
			total_time_secs REAL NOT NULL,
			n_passes INTEGER NOT NULL,
			time_per_pass_ms REAL NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS history (
			mode TEXT NOT NULL,
			grp TEXT NOT NULL,
			library TEXT NOT NULL,
			version INTEGER NOT NULL,
			time_target INTEGER NOT NULL,
			median_time_ms REAL NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_calibration_mode ON calibration(mode);`,
		`CREATE INDEX IF NOT EXISTS idx_history_mode ON history(mode);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// LoadCalibration returns the mode's calibration records in insertion order.
func (s *SQLite) LoadCalibration(ctx context.Context) ([]model.CalibrationRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT grp, version, time_target, total_time_secs, n_passes, time_per_pass_ms
		 FROM calibration WHERE mode = ? ORDER BY rowid`, string(s.mode))
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.CalibrationRecord
	for rows.Next() {
		var rec model.CalibrationRecord
		var group string
		if err := rows.Scan(&group, &rec.Version, &rec.TimeTarget, &rec.TotalTimeSecs, &rec.NPasses, &rec.TimePerPassMs); err != nil {
			return nil, err
		}
		if err := rec.Group.UnmarshalText([]byte(group)); err != nil {
			return nil, fmt.Errorf("failed to decode calibration row: %w", err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ReplaceCalibration rewrites the mode's calibration records in one
// transaction.
func (s *SQLite) ReplaceCalibration(ctx context.Context, records []model.CalibrationRecord) error {
	return s.replace(ctx, "calibration",
		`INSERT INTO calibration (mode, grp, version, time_target, total_time_secs, n_passes, time_per_pass_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		len(records), func(i int) []any {
			r := records[i]
			return []any{string(s.mode), r.Group.String(), r.Version, r.TimeTarget, r.TotalTimeSecs, r.NPasses, r.TimePerPassMs}
		})
}

// LoadHistory returns the mode's history records in insertion order.
func (s *SQLite) LoadHistory(ctx context.Context) ([]model.HistoryRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT grp, library, version, time_target, median_time_ms
		 FROM history WHERE mode = ? ORDER BY rowid`, string(s.mode))
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.HistoryRecord
	for rows.Next() {
		var rec model.HistoryRecord
		var group, library string
		if err := rows.Scan(&group, &library, &rec.Version, &rec.TimeTarget, &rec.MedianTimeMs); err != nil {
			return nil, err
		}
		if err := rec.Group.UnmarshalText([]byte(group)); err != nil {
			return nil, fmt.Errorf("failed to decode history row: %w", err)
		}
		if err := rec.Library.UnmarshalText([]byte(library)); err != nil {
			return nil, fmt.Errorf("failed to decode history row: %w", err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ReplaceHistory rewrites the mode's history records in one transaction.
func (s *SQLite) ReplaceHistory(ctx context.Context, records []model.HistoryRecord) error {
	return s.replace(ctx, "history",
		`INSERT INTO history (mode, grp, library, version, time_target, median_time_ms)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		len(records), func(i int) []any {
			r := records[i]
			return []any{string(s.mode), r.Group.String(), r.Library.String(), r.Version, r.TimeTarget, r.MedianTimeMs}
		})
}

// replace deletes the mode's rows from table and inserts n new rows.
func (s *SQLite) replace(ctx context.Context, table, insert string, n int, args func(int) []any) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE mode = ?`, table), string(s.mode)); err != nil {
		return err
	}
	if n > 0 {
		stmt, perr := tx.PrepareContext(ctx, insert)
		if perr != nil {
			err = perr
			return err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for i := 0; i < n; i++ {
			if _, err = stmt.ExecContext(ctx, args(i)...); err != nil {
				return err
			}
		}
	}
	err = tx.Commit()
	return err
}
