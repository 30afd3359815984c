package classify

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"netalab-backend/internal/catalog"
)

var seriesSplitRe = regexp.MustCompile(`[\s,;/]+`)

// ParseSeries tokenizes pasted measurement text. Numbers may be separated
// by commas, semicolons, slashes, or any whitespace; tokens that do not
// parse are reported back rather than failing the whole series.
func ParseSeries(raw string) (values []float64, invalid []string) {
	for _, token := range seriesSplitRe.Split(strings.TrimSpace(raw), -1) {
		chunk := strings.Trim(token, ",")
		if chunk == "" {
			continue
		}
		v, err := strconv.ParseFloat(chunk, 64)
		if err != nil {
			invalid = append(invalid, chunk)
			continue
		}
		values = append(values, v)
	}
	return values, invalid
}

// FormatSeries renders values the way the series input fields expect them.
func FormatSeries(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%.3f", v)
	}
	return strings.Join(parts, ", ")
}

// SeriesSummary condenses a classified measurement series into one
// reviewer-facing verdict.
type SeriesSummary struct {
	Severity string `json:"severity"`
	Summary  string `json:"summary"`
}

const trendEpsilon = 1e-9

// SummarizeSeries grades a series by its worst classifications: any Fail is
// an error, any Investigate a warning, otherwise success. The summary names
// the latest status and the first-to-last trend, and appends the
// criterion's note when one is configured.
func SummarizeSeries(values []float64, results []Result, crit *catalog.Criterion) SeriesSummary {
	fails, investigates := 0, 0
	for _, res := range results {
		switch res.Status {
		case string(catalog.CategoryFail):
			fails++
		case string(catalog.CategoryInvestigate):
			investigates++
		}
	}
	latest := results[len(results)-1]
	first, last := values[0], values[len(values)-1]
	trend := "flat"
	if last > first+trendEpsilon {
		trend = "increasing"
	} else if last < first-trendEpsilon {
		trend = "decreasing"
	}

	var severityLabel, summary string
	switch {
	case fails > 0:
		severityLabel = "error"
		summary = fmt.Sprintf("%d measurement(s) exceeded the published limit. Latest status: %s - %s.", fails, latest.Status, latest.Detail)
	case investigates > 0:
		severityLabel = "warning"
		summary = fmt.Sprintf("%d measurement(s) entered the investigate band. Latest status: %s - %s.", investigates, latest.Status, latest.Detail)
	default:
		severityLabel = "success"
		summary = fmt.Sprintf("All %d readings remain within the advisory band. Latest detail: %s.", len(values), latest.Detail)
	}
	summary += fmt.Sprintf(" Trend appears %s.", trend)
	if crit.Note != "" {
		summary += " " + crit.Note
	}
	return SeriesSummary{Severity: severityLabel, Summary: summary}
}

// ClassifySeries classifies each value of a series in order.
func ClassifySeries(ref catalog.CriterionRef, values []float64, baseline *float64) ([]Result, error) {
	if len(values) == 0 {
		return nil, errValueRequired()
	}
	results := make([]Result, 0, len(values))
	for _, v := range values {
		res, err := Classify(ref, v, baseline)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}
