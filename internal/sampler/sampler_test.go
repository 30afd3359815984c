package sampler

import (
	"math"
	"math/rand"
	"testing"

	"netalab-backend/internal/catalog"
	"netalab-backend/internal/classify"
)

func newSampler(t *testing.T, seed int64) (*Sampler, *catalog.Registry) {
	t.Helper()
	reg, err := catalog.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return New(reg, rand.New(rand.NewSource(seed))), reg
}

func TestSampleStaysInsideBand(t *testing.T) {
	smp, reg := newSampler(t, 1)
	ref, _ := reg.Criterion("ir_mv_cable")
	for _, scenario := range []catalog.Scenario{catalog.ScenarioHealthy, catalog.ScenarioDrifting, catalog.ScenarioOutOfTolerance} {
		band, _ := ref.Criterion.Bands.For(scenario)
		for i := 0; i < 200; i++ {
			value, err := smp.Sample("ir_mv_cable", scenario)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if value < band.Lo() || value > band.Hi() {
				t.Fatalf("%s draw %g outside band [%g, %g]", scenario, value, band.Lo(), band.Hi())
			}
		}
	}
}

func TestHealthySamplesClassifyAsPass(t *testing.T) {
	smp, reg := newSampler(t, 7)
	ref, _ := reg.Criterion("ir_mv_cable")
	for i := 0; i < 100; i++ {
		value, err := smp.Sample("ir_mv_cable", catalog.ScenarioHealthy)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		result, err := classify.Classify(ref, value, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Status != "Pass" {
			t.Fatalf("healthy draw %g classified %s", value, result.Status)
		}
	}
}

func TestDriftingSamplesClassifyAsInvestigate(t *testing.T) {
	smp, reg := newSampler(t, 9)
	ref, _ := reg.Criterion("cr_switchgear")
	for i := 0; i < 100; i++ {
		value, err := smp.Sample("cr_switchgear", catalog.ScenarioDrifting)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		result, err := classify.Classify(ref, value, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Status != "Investigate" {
			t.Fatalf("drifting draw %g classified %s", value, result.Status)
		}
	}
	// band edges sit on the partition boundaries of this criterion
	for _, tc := range []struct {
		value float64
		want  string
	}{
		{75, "Investigate"},
		{100, "Fail"},
	} {
		result, err := classify.Classify(ref, tc.value, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Status != tc.want {
			t.Fatalf("value %g: expected %s, got %s", tc.value, tc.want, result.Status)
		}
	}
}

func TestSampleUnknownCriterion(t *testing.T) {
	smp, _ := newSampler(t, 1)
	_, err := smp.Sample("no_such_criterion", catalog.ScenarioHealthy)
	cfgErr, ok := err.(*catalog.ConfigError)
	if !ok || cfgErr.Code != "CRITERION_UNKNOWN" {
		t.Fatalf("expected CRITERION_UNKNOWN, got %v", err)
	}
}

func TestSampleRejectsBandlessCriteria(t *testing.T) {
	smp, _ := newSampler(t, 1)
	for _, id := range []string{"visual_no_damage", "dga_key_gases"} {
		_, err := smp.Sample(id, catalog.ScenarioHealthy)
		cfgErr, ok := err.(*catalog.ConfigError)
		if !ok || cfgErr.Code != "SCENARIO_UNKNOWN" {
			t.Fatalf("%s: expected SCENARIO_UNKNOWN, got %v", id, err)
		}
	}
}

func TestSimulateSeriesLengthAndJitterBounds(t *testing.T) {
	smp, reg := newSampler(t, 11)
	ref, _ := reg.Criterion("cb_open_time")
	band, _ := ref.Criterion.Bands.For(catalog.ScenarioDrifting)
	series, err := smp.SimulateSeries("cb_open_time", catalog.ScenarioDrifting, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series.Values) != 8 {
		t.Fatalf("expected 8 values, got %d", len(series.Values))
	}
	if series.Baseline != nil {
		t.Fatalf("absolute criteria should not report a baseline")
	}
	margin := 0.05 * math.Max(math.Abs(band.Start), math.Abs(band.End))
	for _, v := range series.Values {
		if v < band.Lo()-margin || v > band.Hi()+margin {
			t.Fatalf("value %g outside jittered band [%g, %g]", v, band.Lo()-margin, band.Hi()+margin)
		}
	}
}

func TestSimulateSeriesDefaultsCount(t *testing.T) {
	smp, _ := newSampler(t, 3)
	series, err := smp.SimulateSeries("pf_transformer", catalog.ScenarioHealthy, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series.Values) != DefaultCount {
		t.Fatalf("expected %d values, got %d", DefaultCount, len(series.Values))
	}
}

func TestSimulateSeriesRejectsBadCount(t *testing.T) {
	smp, _ := newSampler(t, 3)
	for _, count := range []int{MaxCount + 1, -1} {
		_, err := smp.SimulateSeries("pf_transformer", catalog.ScenarioHealthy, count)
		inputErr, ok := err.(*classify.InputError)
		if !ok || inputErr.Code != "COUNT_INVALID" {
			t.Fatalf("count %d: expected COUNT_INVALID input error, got %v", count, err)
		}
	}
}

func TestSimulateSeriesReportsBaselineForPercentCriteria(t *testing.T) {
	smp, reg := newSampler(t, 5)
	ref, _ := reg.Criterion("wr_pct_dev")
	series, err := smp.SimulateSeries("wr_pct_dev", catalog.ScenarioOutOfTolerance, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if series.Baseline == nil || *series.Baseline != AssumedBaseline {
		t.Fatalf("expected assumed baseline %g, got %v", AssumedBaseline, series.Baseline)
	}
	// measured values translate back into percents inside the fail region
	results, err := classify.ClassifySeries(ref, series.Values, series.Baseline)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fails := 0
	for _, res := range results {
		if res.Status == "Fail" {
			fails++
		}
	}
	if fails == 0 {
		t.Fatalf("expected at least one failing reading in an out-of-tolerance run, got %+v", results)
	}
}

func TestSeededSamplerIsReproducible(t *testing.T) {
	first, _ := newSampler(t, 42)
	second, _ := newSampler(t, 42)
	a, err := first.Sample("dga_tdcg", catalog.ScenarioDrifting)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := second.Sample("dga_tdcg", catalog.ScenarioDrifting)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != b {
		t.Fatalf("same seed should reproduce draws: %g vs %g", a, b)
	}
}
