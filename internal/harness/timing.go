package harness

import (
	"context"
	"fmt"
	"time"

	"github.com/verte-zerg/rollbench/internal/candidate"
	"github.com/verte-zerg/rollbench/internal/dataset"
	"github.com/verte-zerg/rollbench/internal/model"
)

const (
	// WarmupPasses is how many untimed invocations each adapter gets.
	WarmupPasses = 10
	warmupRows   = 1000
	warmupCols   = 10
	warmupSeed   = 1

	// maxPreallocSamples caps the up-front sample slice; longer runs grow it.
	maxPreallocSamples = 1 << 16
)

// ProgressFunc is told about each completed timed pass.
type ProgressFunc func(library model.Library, done, total int)

// Engine runs warmup and timed passes.
type Engine struct {
	now      func() time.Time
	progress ProgressFunc
}

// NewEngine returns an engine reading now. A nil now uses time.Now, whose
// readings carry the monotonic clock.
func NewEngine(now func() time.Time, progress ProgressFunc) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{now: now, progress: progress}
}

// Warmup invokes every adapter WarmupPasses times on a small synthetic
// dataset. Nothing is measured.
func (e *Engine) Warmup(ctx context.Context, adapters []candidate.Adapter, cfg model.Config) error {
	warm := cfg.WithData(dataset.NewGenerator(warmupSeed).Uniform(warmupRows, warmupCols), nil)
	for _, a := range adapters {
		for i := 0; i < WarmupPasses; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := a.Invoke(&warm); err != nil {
				return fmt.Errorf("failed to warm up %s: %w", a.Library(), err)
			}
		}
	}
	return nil
}

func sampleCapacity(passes, adapters int) int {
	if adapters > 0 && passes > maxPreallocSamples/adapters {
		return maxPreallocSamples
	}
	return passes * adapters
}

// TimeGroup runs n timed invocations per adapter, one adapter after the
// other in declaration order.
func (e *Engine) TimeGroup(ctx context.Context, group model.Group, adapters []candidate.Adapter, cfg model.Config, n int) ([]model.RawSample, error) {
	if n < 1 {
		return nil, fmt.Errorf("pass count must be >= 1, got %d", n)
	}
	samples := make([]model.RawSample, 0, sampleCapacity(n, len(adapters)))
	for _, a := range adapters {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			start := e.now()
			_, err := a.Invoke(&cfg)
			elapsed := e.now().Sub(start)
			if err != nil {
				return nil, fmt.Errorf("failed to time %s/%s: %w", group, a.Library(), err)
			}
			samples = append(samples, model.RawSample{
				Library: a.Library(),
				Group:   group,
				TimeMs:  float64(elapsed) / float64(time.Millisecond),
			})
			if e.progress != nil {
				e.progress(a.Library(), i+1, n)
			}
		}
	}
	return samples, nil
}
