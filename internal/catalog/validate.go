package catalog

import "fmt"

// validateLibrary enforces the invariants the classifier and sampler depend
// on: unique ids, valid categories, rule partitions with no gaps or
// overlaps, and a full set of scenario bands on every quantitative
// criterion. Violations are collected into a single ConfigError so a broken
// document surfaces every problem at once.
func validateLibrary(lib *Library) *ConfigError {
	var details []Detail
	if len(lib.Tests) == 0 {
		details = append(details, Detail{Field: "tests", Problem: "empty", Hint: "Define at least one test"})
	}
	seenTests := map[string]bool{}
	seenCriteria := map[string]bool{}
	for ti := range lib.Tests {
		test := &lib.Tests[ti]
		prefix := fmt.Sprintf("tests[%d]", ti)
		if test.ID == "" {
			details = append(details, Detail{Field: prefix + ".id", Problem: "missing", Hint: "Give every test a stable id"})
		} else if seenTests[test.ID] {
			details = append(details, Detail{Field: prefix + ".id", Problem: "duplicate", Hint: "Test ids must be unique"})
		}
		seenTests[test.ID] = true
		if len(test.Criteria) == 0 {
			details = append(details, Detail{Field: prefix + ".criteria", Problem: "empty", Hint: "Define at least one criterion"})
		}
		for ci := range test.Criteria {
			crit := &test.Criteria[ci]
			cprefix := fmt.Sprintf("%s.criteria[%d]", prefix, ci)
			if crit.ID == "" {
				details = append(details, Detail{Field: cprefix + ".id", Problem: "missing", Hint: "Give every criterion a stable id"})
			} else if seenCriteria[crit.ID] {
				details = append(details, Detail{Field: cprefix + ".id", Problem: "duplicate", Hint: "Criterion ids must be unique across tests"})
			}
			seenCriteria[crit.ID] = true
			details = append(details, validateCriterion(crit, cprefix)...)
		}
	}
	if len(details) > 0 {
		return &ConfigError{Code: "LIBRARY_INVALID", Message: "library document failed validation", Details: details}
	}
	return nil
}

func validateCriterion(crit *Criterion, prefix string) []Detail {
	var details []Detail
	switch crit.Evaluation {
	case EvaluationAbsolute, EvaluationRatio, EvaluationPercentageChange:
		details = append(details, validatePartition(crit.Rules, prefix+".rules")...)
		details = append(details, validateBands(crit.Bands, prefix+".bands")...)
		if len(crit.Gases) > 0 {
			details = append(details, Detail{Field: prefix + ".gases", Problem: "unexpected", Hint: "Only composite criteria carry gases"})
		}
	case EvaluationQualitative:
		if len(crit.Rules) > 0 {
			details = append(details, Detail{Field: prefix + ".rules", Problem: "unexpected", Hint: "Qualitative criteria have no numeric rules"})
		}
		if crit.Bands.Healthy != nil || crit.Bands.Drifting != nil || crit.Bands.OutOfTolerance != nil {
			details = append(details, Detail{Field: prefix + ".bands", Problem: "unexpected", Hint: "Qualitative criteria cannot be sampled"})
		}
	case EvaluationComposite:
		if len(crit.Gases) == 0 {
			details = append(details, Detail{Field: prefix + ".gases", Problem: "missing", Hint: "Composite criteria list their monitored gases"})
		}
		seenGases := map[string]bool{}
		for gi := range crit.Gases {
			gas := &crit.Gases[gi]
			gprefix := fmt.Sprintf("%s.gases[%d]", prefix, gi)
			if gas.Key == "" {
				details = append(details, Detail{Field: gprefix + ".key", Problem: "missing", Hint: "Give every gas a reading key"})
			} else if seenGases[gas.Key] {
				details = append(details, Detail{Field: gprefix + ".key", Problem: "duplicate", Hint: "Gas keys must be unique"})
			}
			seenGases[gas.Key] = true
			details = append(details, validatePartition(gas.Rules, gprefix+".rules")...)
		}
		if len(crit.Rules) > 0 {
			details = append(details, Detail{Field: prefix + ".rules", Problem: "unexpected", Hint: "Composite criteria classify per gas"})
		}
	default:
		details = append(details, Detail{Field: prefix + ".evaluation", Problem: "unsupported", Hint: "Use absolute, ratio, percentage_change, qualitative, or composite"})
	}
	return details
}

// validatePartition asserts that rules are ascending, contiguous, and cover
// the whole real line: open below, open above, and each lower bound equal to
// the previous upper bound.
func validatePartition(rules []ThresholdRule, field string) []Detail {
	var details []Detail
	if len(rules) == 0 {
		return []Detail{{Field: field, Problem: "missing", Hint: "Quantitative criteria need a threshold partition"}}
	}
	for i, rule := range rules {
		rfield := fmt.Sprintf("%s[%d]", field, i)
		if !validCategory(rule.Category) {
			details = append(details, Detail{Field: rfield + ".category", Problem: "unsupported", Hint: "Use Pass, Investigate, or Fail"})
		}
		if rule.Min != nil && rule.Max != nil && *rule.Min >= *rule.Max {
			details = append(details, Detail{Field: rfield, Problem: "empty range", Hint: "min must be < max"})
		}
		if i == 0 {
			if rule.Min != nil {
				details = append(details, Detail{Field: rfield + ".min", Problem: "gap below", Hint: "First rule must be open below"})
			}
			continue
		}
		prev := rules[i-1]
		if prev.Max == nil {
			details = append(details, Detail{Field: rfield, Problem: "unreachable", Hint: "Previous rule is open above"})
			continue
		}
		if rule.Min == nil || *rule.Min != *prev.Max {
			details = append(details, Detail{Field: rfield + ".min", Problem: "gap or overlap", Hint: fmt.Sprintf("min must equal previous max %g", *prev.Max)})
		}
	}
	if last := rules[len(rules)-1]; last.Max != nil {
		details = append(details, Detail{Field: fmt.Sprintf("%s[%d].max", field, len(rules)-1), Problem: "gap above", Hint: "Last rule must be open above"})
	}
	return details
}

func validateBands(bands Bands, field string) []Detail {
	var details []Detail
	for _, entry := range []struct {
		name string
		band *ScenarioBand
	}{
		{"healthy", bands.Healthy},
		{"drifting", bands.Drifting},
		{"outOfTolerance", bands.OutOfTolerance},
	} {
		if entry.band == nil {
			details = append(details, Detail{Field: field + "." + entry.name, Problem: "missing", Hint: "Every quantitative criterion needs all three scenario bands"})
			continue
		}
		if entry.band.Start == entry.band.End {
			details = append(details, Detail{Field: field + "." + entry.name, Problem: "degenerate", Hint: "Band start and end must differ"})
		}
	}
	return details
}
