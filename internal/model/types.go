// Package model defines shared data structures.
package model

import (
	"errors"

	"github.com/verte-zerg/rollbench/internal/dataset"
)

// Config is the immutable per-run benchmark context handed to candidates.
type Config struct {
	Array      *dataset.Matrix
	Frame      *dataset.Frame
	Length     int
	MinLength  int
	Axis       int
	TimeTarget int
	Limit      float64
	Version    int
	Mode       Mode
}

// Params carries the scalar settings of a Config.
type Params struct {
	Length     int
	MinLength  int
	Axis       int
	TimeTarget int
	Limit      float64
	Version    int
	Mode       Mode
}

// NewConfig builds a Config whose frame mirrors array.
func NewConfig(array *dataset.Matrix, names []string, p Params) (Config, error) {
	if array == nil {
		return Config{}, errors.New("dataset is required")
	}
	cfg := Config{
		Array:      array,
		Frame:      dataset.NewFrame(array, names),
		Length:     p.Length,
		MinLength:  p.MinLength,
		Axis:       p.Axis,
		TimeTarget: p.TimeTarget,
		Limit:      p.Limit,
		Version:    p.Version,
		Mode:       p.Mode,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the scalar settings.
func (c Config) Validate() error {
	switch {
	case c.Length <= 0:
		return errors.New("length must be > 0")
	case c.MinLength <= 0 || c.MinLength > c.Length:
		return errors.New("min-length must be between 1 and length")
	case c.Axis != 0 && c.Axis != 1:
		return errors.New("axis must be 0 or 1")
	case c.TimeTarget <= 0:
		return errors.New("time-target must be > 0")
	case c.Limit <= 0 || c.Limit > 100:
		return errors.New("limit must be in (0, 100]")
	case c.Version <= 0:
		return errors.New("version must be >= 1")
	}
	if _, err := ParseMode(string(c.Mode)); err != nil {
		return err
	}
	return nil
}

// WithTimeTarget returns a copy of c measuring against a different budget.
func (c Config) WithTimeTarget(seconds int) Config {
	c.TimeTarget = seconds
	return c
}

// WithData returns a copy of c over another dataset.
func (c Config) WithData(array *dataset.Matrix, names []string) Config {
	c.Array = array
	c.Frame = dataset.NewFrame(array, names)
	return c
}

// RawSample is the elapsed time of one timed pass.
type RawSample struct {
	Library Library `json:"library"`
	Group   Group   `json:"group"`
	TimeMs  float64 `json:"time_ms"`
}

// CalibrationRecord stores per-group pacing from one measurement.
type CalibrationRecord struct {
	Group         Group   `json:"group"`
	Version       int     `json:"version"`
	TimeTarget    int     `json:"time_target"`
	TotalTimeSecs float64 `json:"total_time_secs"`
	NPasses       int     `json:"n_passes"`
	TimePerPassMs float64 `json:"time_per_pass_ms"`
}

// HistoryRecord stores the median pass time of one library for one group
// at one version.
type HistoryRecord struct {
	Group        Group   `json:"group"`
	Library      Library `json:"library"`
	Version      int     `json:"version"`
	TimeTarget   int     `json:"time_target"`
	MedianTimeMs float64 `json:"median_time_ms"`
}

// Delta is one derived baseline-minus-candidate time difference.
type Delta struct {
	Group      Group      `json:"group"`
	Comparison Comparison `json:"comparison"`
	TimeMs     float64    `json:"time_ms"`
}
