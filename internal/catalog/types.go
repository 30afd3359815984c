package catalog

import "fmt"

// Category is the outcome vocabulary used by threshold rules.
type Category string

const (
	CategoryPass        Category = "Pass"
	CategoryInvestigate Category = "Investigate"
	CategoryFail        Category = "Fail"
)

func validCategory(c Category) bool {
	switch c {
	case CategoryPass, CategoryInvestigate, CategoryFail:
		return true
	}
	return false
}

// Scenario labels accepted by the sampler.
type Scenario string

const (
	ScenarioHealthy        Scenario = "Healthy"
	ScenarioDrifting       Scenario = "Drifting"
	ScenarioOutOfTolerance Scenario = "Out of tolerance"
)

// ParseScenario maps user-facing scenario names onto the canonical labels.
func ParseScenario(raw string) (Scenario, bool) {
	switch raw {
	case string(ScenarioHealthy), "healthy":
		return ScenarioHealthy, true
	case string(ScenarioDrifting), "drifting":
		return ScenarioDrifting, true
	case string(ScenarioOutOfTolerance), "Out-of-tolerance", "out-of-tolerance", "out_of_tolerance", "outOfTolerance":
		return ScenarioOutOfTolerance, true
	}
	return "", false
}

type EvaluationType string

const (
	EvaluationAbsolute         EvaluationType = "absolute"
	EvaluationRatio            EvaluationType = "ratio"
	EvaluationPercentageChange EvaluationType = "percentage_change"
	EvaluationQualitative      EvaluationType = "qualitative"
	EvaluationComposite        EvaluationType = "composite"
)

// ThresholdRule maps a half-open numeric range onto a category. A nil Min
// means the range is open below, a nil Max open above. Ranges are lower
// bound inclusive, upper bound exclusive.
type ThresholdRule struct {
	Min      *float64 `yaml:"min" json:"min,omitempty"`
	Max      *float64 `yaml:"max" json:"max,omitempty"`
	Category Category `yaml:"category" json:"category"`
}

// Contains reports whether v falls inside the rule's [Min, Max) range.
func (r ThresholdRule) Contains(v float64) bool {
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v >= *r.Max {
		return false
	}
	return true
}

// Range renders the rule bounds for result details and API payloads.
func (r ThresholdRule) Range() string {
	switch {
	case r.Min == nil && r.Max == nil:
		return "(-inf, +inf)"
	case r.Min == nil:
		return fmt.Sprintf("(-inf, %g)", *r.Max)
	case r.Max == nil:
		return fmt.Sprintf("[%g, +inf)", *r.Min)
	default:
		return fmt.Sprintf("[%g, %g)", *r.Min, *r.Max)
	}
}

// ScenarioBand is the numeric range sampled for one criterion and scenario.
// Start and End carry the drift direction for simulated series; Start may be
// greater than End when a healthy asset trends downward toward its limit.
type ScenarioBand struct {
	Start float64 `yaml:"start" json:"start"`
	End   float64 `yaml:"end" json:"end"`
}

// Lo returns the lower edge of the band.
func (b ScenarioBand) Lo() float64 {
	if b.Start < b.End {
		return b.Start
	}
	return b.End
}

// Hi returns the upper edge of the band.
func (b ScenarioBand) Hi() float64 {
	if b.Start > b.End {
		return b.Start
	}
	return b.End
}

// Bands groups the scenario ranges configured for a criterion.
type Bands struct {
	Healthy        *ScenarioBand `yaml:"healthy" json:"healthy,omitempty"`
	Drifting       *ScenarioBand `yaml:"drifting" json:"drifting,omitempty"`
	OutOfTolerance *ScenarioBand `yaml:"outOfTolerance" json:"outOfTolerance,omitempty"`
}

// For looks up the band registered for a scenario label.
func (b Bands) For(s Scenario) (ScenarioBand, bool) {
	switch s {
	case ScenarioHealthy:
		if b.Healthy != nil {
			return *b.Healthy, true
		}
	case ScenarioDrifting:
		if b.Drifting != nil {
			return *b.Drifting, true
		}
	case ScenarioOutOfTolerance:
		if b.OutOfTolerance != nil {
			return *b.OutOfTolerance, true
		}
	}
	return ScenarioBand{}, false
}

// GasRule is one monitored gas of a composite criterion with its own
// threshold partition.
type GasRule struct {
	Key   string          `yaml:"key" json:"key"`
	Name  string          `yaml:"name" json:"name"`
	Unit  string          `yaml:"unit" json:"unit"`
	Rules []ThresholdRule `yaml:"rules" json:"rules"`
}

// Criterion is a named measurable quantity subject to classification.
type Criterion struct {
	ID         string          `yaml:"id" json:"id"`
	Label      string          `yaml:"label" json:"label"`
	Parameter  string          `yaml:"parameter" json:"parameter"`
	Unit       string          `yaml:"unit" json:"unit"`
	Evaluation EvaluationType  `yaml:"evaluation" json:"evaluation"`
	Rules      []ThresholdRule `yaml:"rules" json:"rules,omitempty"`
	Gases      []GasRule       `yaml:"gases" json:"gases,omitempty"`
	Bands      Bands           `yaml:"bands" json:"bands,omitempty"`
	Note       string          `yaml:"note" json:"note,omitempty"`
}

// Quantitative reports whether the criterion classifies numeric input
// against a scalar rule partition.
func (c *Criterion) Quantitative() bool {
	switch c.Evaluation {
	case EvaluationAbsolute, EvaluationRatio, EvaluationPercentageChange:
		return true
	}
	return false
}

// KvRecommendation is one row of a test's DC voltage selection table.
type KvRecommendation struct {
	MaxRatingKv float64 `yaml:"maxRatingKv" json:"maxRatingKv"`
	DcTestKv    float64 `yaml:"dcTestKv" json:"dcTestKv"`
	Example     string  `yaml:"example" json:"example"`
}

// Diagnostics holds the qualitative cues shown on a learning card.
type Diagnostics struct {
	Watch       string `yaml:"watch" json:"watch"`
	Investigate string `yaml:"investigate" json:"investigate"`
	Fail        string `yaml:"fail" json:"fail"`
}

// Test is one learning card of the reference library.
type Test struct {
	ID             string             `yaml:"id" json:"id"`
	Name           string             `yaml:"name" json:"name"`
	Category       string             `yaml:"category" json:"category"`
	Summary        string             `yaml:"summary" json:"summary"`
	Equipment      []string           `yaml:"equipment" json:"equipment"`
	Phases         []string           `yaml:"phases" json:"phases"`
	Purpose        string             `yaml:"purpose" json:"purpose"`
	Procedure      []string           `yaml:"procedure" json:"procedure"`
	Interpretation string             `yaml:"interpretation" json:"interpretation"`
	Diagnostics    Diagnostics        `yaml:"diagnostics" json:"diagnostics"`
	Implications   map[string]string  `yaml:"implications" json:"implications,omitempty"`
	KvTable        []KvRecommendation `yaml:"kvRecommendations" json:"kvRecommendations,omitempty"`
	Criteria       []Criterion        `yaml:"criteria" json:"criteria"`
}

// Implication returns the explanatory text registered for a result status,
// falling back to the card's default text when present.
func (t *Test) Implication(status string) string {
	if t.Implications == nil {
		return ""
	}
	if text, ok := t.Implications[status]; ok {
		return text
	}
	return t.Implications["default"]
}

// Library is the root of the configuration document.
type Library struct {
	Tests []Test `yaml:"tests"`
}
