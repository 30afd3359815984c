package catalog

// Voltage guidance annotates megohmmeter results; it never alters the
// classification itself.

// VoltageAssessment describes how an applied DC test voltage compares to the
// table-recommended stress level.
type VoltageAssessment struct {
	RecommendedKv float64 `json:"recommendedKv"`
	Severity      string  `json:"severity"`
	Message       string  `json:"message"`
}

// RecommendTestVoltage returns the suggested megohmmeter voltage for a
// nameplate rating by walking the test's kV selection table. Ratings above
// the last row fall back to the highest listed test voltage.
func (t *Test) RecommendTestVoltage(nameplateKv float64) float64 {
	if len(t.KvTable) == 0 {
		return 0
	}
	for _, row := range t.KvTable {
		if nameplateKv <= row.MaxRatingKv {
			return row.DcTestKv
		}
	}
	return t.KvTable[len(t.KvTable)-1].DcTestKv
}

// AssessAppliedVoltage grades the applied DC voltage against the
// recommendation. Applied stress below 85% of the recommendation inflates
// megohm readings; above 120% risks overstressing aged insulation.
func AssessAppliedVoltage(appliedKv, recommendedKv float64) VoltageAssessment {
	if recommendedKv <= 0 {
		return VoltageAssessment{
			Severity: "info",
			Message:  "Enter a nameplate voltage to receive test-stress guidance.",
		}
	}
	switch {
	case appliedKv < 0.85*recommendedKv:
		return VoltageAssessment{
			RecommendedKv: recommendedKv,
			Severity:      "warning",
			Message:       "Applied DC voltage is significantly below the typical ANSI/NETA recommendation - megohm readings may appear artificially high.",
		}
	case appliedKv > 1.2*recommendedKv:
		return VoltageAssessment{
			RecommendedKv: recommendedKv,
			Severity:      "warning",
			Message:       "Applied DC voltage exceeds the usual stress level. Confirm the insulation system is rated for this voltage to avoid overstressing aged assets.",
		}
	default:
		return VoltageAssessment{
			RecommendedKv: recommendedKv,
			Severity:      "info",
			Message:       "Test voltage aligns with ANSI/NETA guidance, so resistance values represent a valid stress level.",
		}
	}
}
