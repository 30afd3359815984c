// Package sampler draws representative measurement values from the scenario
// bands configured per criterion, to pre-populate the classifier for
// demonstrations.
package sampler

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"netalab-backend/internal/catalog"
	"netalab-backend/internal/classify"
)

// AssumedBaseline is the reference value reported alongside simulated
// percentage-change series so the generated percents translate back into
// measured values.
const AssumedBaseline = 100.0

const (
	DefaultCount = 6
	MaxCount     = 48
)

// Sampler draws values from the registry's scenario bands. The random
// source is injected so tests can seed it; a mutex guards it because
// math/rand sources are not safe for concurrent use.
type Sampler struct {
	reg *catalog.Registry

	mu  sync.Mutex
	rng *rand.Rand
}

func New(reg *catalog.Registry, rng *rand.Rand) *Sampler {
	return &Sampler{reg: reg, rng: rng}
}

func (s *Sampler) bandFor(criterionID string, scenario catalog.Scenario) (catalog.CriterionRef, catalog.ScenarioBand, error) {
	ref, ok := s.reg.Criterion(criterionID)
	if !ok {
		return catalog.CriterionRef{}, catalog.ScenarioBand{}, &catalog.ConfigError{
			Code:    "CRITERION_UNKNOWN",
			Message: "no criterion registered under id " + criterionID,
		}
	}
	band, ok := ref.Criterion.Bands.For(scenario)
	if !ok {
		return catalog.CriterionRef{}, catalog.ScenarioBand{}, &catalog.ConfigError{
			Code:    "SCENARIO_UNKNOWN",
			Message: "no band registered for criterion " + criterionID + " and scenario " + string(scenario),
		}
	}
	return ref, band, nil
}

// Sample draws one value uniformly from the band registered for the
// criterion and scenario. For percentage-change criteria the draw is in
// percent space, matching the criterion's rule partition.
func (s *Sampler) Sample(criterionID string, scenario catalog.Scenario) (float64, error) {
	_, band, err := s.bandFor(criterionID, scenario)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return band.Lo() + s.rng.Float64()*(band.Hi()-band.Lo()), nil
}

// Series holds a simulated measurement run. Baseline is set for
// percentage-change criteria, where Values are measured readings against
// the assumed baseline rather than raw percents.
type Series struct {
	Values   []float64 `json:"values"`
	Baseline *float64  `json:"baseline,omitempty"`
}

// SimulateSeries generates count values that blend linearly from the band's
// start toward its end with a small uniform jitter, so a plotted run
// visibly drifts the way the scenario describes. count 0 means
// DefaultCount.
func (s *Sampler) SimulateSeries(criterionID string, scenario catalog.Scenario, count int) (Series, error) {
	if count == 0 {
		count = DefaultCount
	}
	if count < 1 || count > MaxCount {
		return Series{}, &classify.InputError{Code: "COUNT_INVALID", Message: fmt.Sprintf("series count must be between 1 and %d", MaxCount)}
	}
	ref, band, err := s.bandFor(criterionID, scenario)
	if err != nil {
		return Series{}, err
	}

	jitterBasis := math.Max(math.Abs(band.Start), math.Abs(band.End))
	span := float64(count - 1)
	if span == 0 {
		span = 1
	}
	values := make([]float64, 0, count)
	s.mu.Lock()
	for i := 0; i < count; i++ {
		blend := float64(i) / span
		target := band.Start + (band.End-band.Start)*blend
		jitter := (s.rng.Float64()*0.1 - 0.05) * jitterBasis
		values = append(values, round4(math.Max(target+jitter, 0.0001)))
	}
	s.mu.Unlock()

	if ref.Criterion.Evaluation == catalog.EvaluationPercentageChange {
		baseline := AssumedBaseline
		measured := make([]float64, len(values))
		for i, pct := range values {
			measured[i] = round4(baseline * (1 + pct/100))
		}
		return Series{Values: measured, Baseline: &baseline}, nil
	}
	return Series{Values: values}, nil
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
