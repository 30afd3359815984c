package classify

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"netalab-backend/internal/catalog"
)

func TestParseSeriesToleratesMixedSeparators(t *testing.T) {
	values, invalid := ParseSeries("1.5, 2;3\n4.25 oops 5/6,")
	want := []float64{1.5, 2, 3, 4.25, 5, 6}
	if diff := cmp.Diff(want, values); diff != "" {
		t.Fatalf("unexpected values:\n%s", diff)
	}
	if len(invalid) != 1 || invalid[0] != "oops" {
		t.Fatalf("unexpected invalid tokens: %v", invalid)
	}
}

func TestParseSeriesKeepsNegativeNumbers(t *testing.T) {
	values, invalid := ParseSeries("-1.5, 2")
	if len(invalid) != 0 {
		t.Fatalf("unexpected invalid tokens: %v", invalid)
	}
	if len(values) != 2 || values[0] != -1.5 {
		t.Fatalf("unexpected values: %v", values)
	}
}

func TestParseSeriesEmptyInput(t *testing.T) {
	values, invalid := ParseSeries("   ")
	if len(values) != 0 || len(invalid) != 0 {
		t.Fatalf("expected nothing, got %v / %v", values, invalid)
	}
}

func TestFormatSeries(t *testing.T) {
	if got := FormatSeries([]float64{1, 2.5}); got != "1.000, 2.500" {
		t.Fatalf("unexpected format: %s", got)
	}
}

func summaryFixture(statuses []string, details []string) []Result {
	results := make([]Result, len(statuses))
	for i := range statuses {
		results[i] = Result{Status: statuses[i], Detail: details[i]}
	}
	return results
}

func TestSummaryPrefersErrorWhenFailuresPresent(t *testing.T) {
	crit := &catalog.Criterion{Note: "Use caution on re-energization."}
	results := summaryFixture([]string{"Pass", "Fail", "Fail"}, []string{"ok", "too high", "still high"})
	summary := SummarizeSeries([]float64{1, 2, 3}, results, crit)
	if summary.Severity != "error" {
		t.Fatalf("expected error severity, got %s", summary.Severity)
	}
	for _, want := range []string{
		"2 measurement(s) exceeded",
		"Latest status: Fail",
		"Trend appears increasing",
		crit.Note,
	} {
		if !strings.Contains(summary.Summary, want) {
			t.Fatalf("summary missing %q: %s", want, summary.Summary)
		}
	}
}

func TestSummaryHighlightsInvestigateWhenOnlyCautions(t *testing.T) {
	crit := &catalog.Criterion{}
	results := summaryFixture([]string{"Pass", "Investigate", "Investigate"}, []string{"steady", "dipping", "closer to limit"})
	summary := SummarizeSeries([]float64{5, 4.1, 3.2}, results, crit)
	if summary.Severity != "warning" {
		t.Fatalf("expected warning severity, got %s", summary.Severity)
	}
	for _, want := range []string{
		"2 measurement(s) entered the investigate band",
		"Latest status: Investigate",
		"Trend appears decreasing",
	} {
		if !strings.Contains(summary.Summary, want) {
			t.Fatalf("summary missing %q: %s", want, summary.Summary)
		}
	}
}

func TestSummaryMarksSuccessWhenAllWithinBand(t *testing.T) {
	crit := &catalog.Criterion{}
	results := summaryFixture([]string{"Pass", "Pass", "Pass"}, []string{"stable", "stable", "stable"})
	summary := SummarizeSeries([]float64{2, 2, 2}, results, crit)
	if summary.Severity != "success" {
		t.Fatalf("expected success severity, got %s", summary.Severity)
	}
	for _, want := range []string{
		"All 3 readings remain within the advisory band",
		"Trend appears flat",
	} {
		if !strings.Contains(summary.Summary, want) {
			t.Fatalf("summary missing %q: %s", want, summary.Summary)
		}
	}
}

func TestClassifySeriesRejectsEmptyInput(t *testing.T) {
	ref := insulationRef()
	_, err := ClassifySeries(ref, nil, nil)
	if _, ok := err.(*InputError); !ok {
		t.Fatalf("expected InputError, got %v", err)
	}
}

func TestClassifySeriesClassifiesEveryValue(t *testing.T) {
	ref := insulationRef()
	results, err := ClassifySeries(ref, []float64{0.5, 3, 10}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := []string{results[0].Status, results[1].Status, results[2].Status}
	want := []string{"Fail", "Investigate", "Pass"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected statuses:\n%s", diff)
	}
}
