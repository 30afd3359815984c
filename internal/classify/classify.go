// Package classify buckets measurements into Pass / Investigate / Fail
// against the static threshold partitions of the catalog. Every operation
// is a pure function over immutable configuration.
package classify

import (
	"fmt"
	"math"
	"strings"

	"netalab-backend/internal/catalog"
)

// StatusReview marks qualitative criteria, which sit outside the three
// classification categories and rely on professional judgment.
const StatusReview = "Review"

// InputError reports non-numeric, missing, or out-of-domain user input. It
// is recovered at the API/CLI boundary by prompting for re-entry.
type InputError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func errValueRequired() *InputError {
	return &InputError{Code: "VALUE_REQUIRED", Message: "a finite numeric value is required"}
}

// GasResult is the per-gas outcome of a composite classification.
type GasResult struct {
	Key     string                `json:"key"`
	Name    string                `json:"name"`
	Value   float64               `json:"value"`
	Status  string                `json:"status"`
	Matched catalog.ThresholdRule `json:"matchedRule"`
}

// Result bundles the resolved status with the matched rule and the canned
// explanatory texts keyed by (criterion, status).
type Result struct {
	Status      string                 `json:"status"`
	Detail      string                 `json:"detail"`
	Comparison  float64                `json:"comparisonValue"`
	Matched     *catalog.ThresholdRule `json:"matchedRule,omitempty"`
	Note        string                 `json:"note,omitempty"`
	Implication string                 `json:"implication,omitempty"`
	Gases       []GasResult            `json:"gases,omitempty"`
}

func severity(c catalog.Category) int {
	switch c {
	case catalog.CategoryPass:
		return 0
	case catalog.CategoryInvestigate:
		return 1
	case catalog.CategoryFail:
		return 2
	}
	return -1
}

// Worst returns the more severe of two categories; ties keep either.
func Worst(a, b catalog.Category) catalog.Category {
	if severity(b) > severity(a) {
		return b
	}
	return a
}

// Classify resolves a single reading for a scalar criterion. For
// percentage-change criteria the reading is compared as
// |value-baseline|/baseline*100; baseline is ignored otherwise. Composite
// criteria must go through ClassifyGases instead.
func Classify(ref catalog.CriterionRef, value float64, baseline *float64) (Result, error) {
	crit := ref.Criterion
	if crit.Evaluation == catalog.EvaluationQualitative {
		return Result{
			Status:      StatusReview,
			Detail:      "Document observations - qualitative checks rely on professional judgment.",
			Note:        crit.Note,
			Implication: ref.Test.Implication(StatusReview),
		}, nil
	}
	if crit.Evaluation == catalog.EvaluationComposite {
		return Result{}, &InputError{Code: "GAS_READINGS_REQUIRED", Message: "composite criteria take one reading per gas"}
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Result{}, errValueRequired()
	}

	comparison := value
	var detail string
	switch crit.Evaluation {
	case catalog.EvaluationPercentageChange:
		if baseline == nil || *baseline == 0 {
			return Result{}, &InputError{Code: "BASELINE_REQUIRED", Message: "a non-zero baseline is required to compute percent change"}
		}
		comparison = math.Abs((value-*baseline) / *baseline) * 100
		detail = fmt.Sprintf("Computed change: %.2f%%", comparison)
	case catalog.EvaluationRatio:
		detail = fmt.Sprintf("Measured ratio: %.2f", comparison)
	default:
		detail = strings.TrimSpace(fmt.Sprintf("Measured value: %.2f %s", comparison, crit.Unit))
	}

	idx := matchRule(crit.Rules, comparison)
	rule := crit.Rules[idx]
	detail += boundarySuffix(crit.Rules, idx)
	return Result{
		Status:      string(rule.Category),
		Detail:      detail,
		Comparison:  comparison,
		Matched:     &rule,
		Note:        crit.Note,
		Implication: ref.Test.Implication(string(rule.Category)),
	}, nil
}

// ClassifyGases resolves a composite criterion from one reading per
// monitored gas. The overall category is the most severe individual one.
func ClassifyGases(ref catalog.CriterionRef, readings map[string]float64) (Result, error) {
	crit := ref.Criterion
	if crit.Evaluation != catalog.EvaluationComposite {
		return Result{}, &InputError{Code: "VALUE_REQUIRED", Message: "criterion takes a single numeric value"}
	}
	overall := catalog.CategoryPass
	gases := make([]GasResult, 0, len(crit.Gases))
	var worstGas string
	for _, gas := range crit.Gases {
		value, ok := readings[gas.Key]
		if !ok {
			return Result{}, &InputError{Code: "VALUE_REQUIRED", Message: fmt.Sprintf("missing reading for gas %q", gas.Key)}
		}
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return Result{}, errValueRequired()
		}
		idx := matchRule(gas.Rules, value)
		rule := gas.Rules[idx]
		gases = append(gases, GasResult{
			Key:     gas.Key,
			Name:    gas.Name,
			Value:   value,
			Status:  string(rule.Category),
			Matched: rule,
		})
		if severity(rule.Category) > severity(overall) {
			overall = rule.Category
			worstGas = gas.Name
		}
	}
	detail := fmt.Sprintf("All %d gases within their advisory bands.", len(gases))
	if overall != catalog.CategoryPass {
		detail = fmt.Sprintf("Worst gas: %s (%s).", worstGas, overall)
	}
	return Result{
		Status:      string(overall),
		Detail:      detail,
		Note:        crit.Note,
		Implication: ref.Test.Implication(string(overall)),
		Gases:       gases,
	}, nil
}

// matchRule returns the index of the rule containing v. Load-time
// validation guarantees the partition is exhaustive, so the scan always
// terminates on a match.
func matchRule(rules []catalog.ThresholdRule, v float64) int {
	for i, rule := range rules {
		if rule.Contains(v) {
			return i
		}
	}
	// unreachable with a validated partition
	return len(rules) - 1
}

// boundarySuffix phrases the crossed threshold the way a field report would:
// buckets below the Pass region name the minimum they undercut, buckets
// above it name the limit they exceed.
func boundarySuffix(rules []catalog.ThresholdRule, idx int) string {
	rule := rules[idx]
	if rule.Category == catalog.CategoryPass {
		return ""
	}
	passIdx := -1
	for i, r := range rules {
		if r.Category == catalog.CategoryPass {
			passIdx = i
			break
		}
	}
	switch {
	case passIdx < 0:
		return ""
	case idx < passIdx && rule.Max != nil:
		if rule.Category == catalog.CategoryFail {
			return fmt.Sprintf(" - below minimum of %g.", *rule.Max)
		}
		return fmt.Sprintf(" - below caution threshold of %g.", *rule.Max)
	case idx > passIdx && rule.Min != nil:
		if rule.Category == catalog.CategoryFail {
			return fmt.Sprintf(" - above maximum of %g.", *rule.Min)
		}
		return fmt.Sprintf(" - above caution threshold of %g.", *rule.Min)
	}
	return ""
}
