package candidate

import (
	"math"
	"testing"

	"github.com/verte-zerg/rollbench/internal/dataset"
	"github.com/verte-zerg/rollbench/internal/model"
)

func testConfig(t *testing.T, mode model.Mode, axis int) *model.Config {
	t.Helper()
	m := dataset.NewGenerator(9).Uniform(120, 6)
	cfg, err := model.NewConfig(m, nil, model.Params{
		Length:     20,
		MinLength:  5,
		Axis:       axis,
		TimeTarget: 1,
		Limit:      95,
		Version:    1,
		Mode:       mode,
	})
	if err != nil {
		t.Fatalf("NewConfig failed: %v", err)
	}
	return &cfg
}

func matricesClose(a, b *dataset.Matrix) (int, bool) {
	if a.Rows != b.Rows || a.Cols != b.Cols {
		return -1, false
	}
	for i := range a.Data {
		x, y := a.Data[i], b.Data[i]
		if math.IsNaN(x) || math.IsNaN(y) {
			if math.IsNaN(x) != math.IsNaN(y) {
				return i, false
			}
			continue
		}
		if math.Abs(x-y) > 1e-7*math.Max(1, math.Abs(y)) {
			return i, false
		}
	}
	return 0, true
}

func TestBindCoverage(t *testing.T) {
	want := map[model.Group]int{
		model.GroupMean:   5,
		model.GroupSum:    5,
		model.GroupVar:    5,
		model.GroupStd:    5,
		model.GroupMax:    5,
		model.GroupMin:    5,
		model.GroupMedian: 5,
		model.GroupRank:   3,
		model.GroupSkew:   3,
		model.GroupKurt:   3,
	}
	for _, mode := range []model.Mode{model.ModeRolling, model.ModeAgg} {
		bound := Bind(mode)
		for group, n := range want {
			if got := len(bound[group]); got != n {
				t.Fatalf("%s/%s: %d adapters, want %d", mode, group, got, n)
			}
			prev := model.Library(-1)
			for _, a := range bound[group] {
				if a.Library() <= prev {
					t.Fatalf("%s/%s: adapters out of library order", mode, group)
				}
				prev = a.Library()
			}
		}
	}
}

func TestAdaptersAgree(t *testing.T) {
	for _, mode := range []model.Mode{model.ModeRolling, model.ModeAgg} {
		for _, axis := range []int{0, 1} {
			cfg := testConfig(t, mode, axis)
			for group, adapters := range Bind(mode) {
				reference, err := adapters[0].Invoke(cfg)
				if err != nil {
					t.Fatalf("%s/%s: invoke %s failed: %v", mode, group, adapters[0].Library(), err)
				}
				for _, a := range adapters[1:] {
					got, err := a.Invoke(cfg)
					if err != nil {
						t.Fatalf("%s/%s: invoke %s failed: %v", mode, group, a.Library(), err)
					}
					if idx, ok := matricesClose(got, reference); !ok {
						t.Fatalf("%s/%s axis %d: %s disagrees with %s at %d", mode, group, axis, a.Library(), adapters[0].Library(), idx)
					}
				}
			}
		}
	}
}

func TestAggShape(t *testing.T) {
	cfg := testConfig(t, model.ModeAgg, 0)
	a, ok := For(model.ModeAgg, model.LibraryRolling, model.GroupMean)
	if !ok {
		t.Fatalf("expected rolling mean adapter")
	}
	out, err := a.Invoke(cfg)
	if err != nil {
		t.Fatalf("invoke failed: %v", err)
	}
	if out.Rows != 1 || out.Cols != 6 {
		t.Fatalf("expected 1x6 result, got %dx%d", out.Rows, out.Cols)
	}
}

func TestForUncovered(t *testing.T) {
	if _, ok := For(model.ModeRolling, model.LibraryMoremath, model.GroupRank); ok {
		t.Fatalf("moremath should not cover rank")
	}
	if _, ok := For(model.ModeRolling, model.LibraryNaive, model.GroupSkew); ok {
		t.Fatalf("naive should not cover skew")
	}
}

func TestInvokeRequiresDataset(t *testing.T) {
	a, _ := For(model.ModeRolling, model.LibraryNaive, model.GroupMean)
	if _, err := a.Invoke(&model.Config{}); err == nil {
		t.Fatalf("expected error for missing dataset")
	}
}
