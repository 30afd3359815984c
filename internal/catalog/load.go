package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed library.yaml
var embeddedLibrary []byte

// CriterionRef pairs a criterion with the test it belongs to.
type CriterionRef struct {
	Test      *Test
	Criterion *Criterion
}

// Registry is the process-wide immutable view of the library. It is built
// once at startup and never mutated, so concurrent readers need no locking.
type Registry struct {
	tests       []Test
	byTest      map[string]*Test
	byCriterion map[string]CriterionRef
}

// Load parses and validates the embedded library document.
func Load() (*Registry, error) {
	return parse(embeddedLibrary)
}

// LoadFile parses and validates a library document from disk. The schema is
// identical to the embedded document, letting operators swap in
// project-specific thresholds.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read library: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Registry, error) {
	var lib Library
	if err := yaml.Unmarshal(data, &lib); err != nil {
		return nil, &ConfigError{Code: "LIBRARY_UNREADABLE", Message: err.Error()}
	}
	if err := validateLibrary(&lib); err != nil {
		return nil, err
	}
	reg := &Registry{
		tests:       lib.Tests,
		byTest:      make(map[string]*Test, len(lib.Tests)),
		byCriterion: make(map[string]CriterionRef),
	}
	for i := range reg.tests {
		test := &reg.tests[i]
		reg.byTest[test.ID] = test
		for j := range test.Criteria {
			crit := &test.Criteria[j]
			reg.byCriterion[crit.ID] = CriterionRef{Test: test, Criterion: crit}
		}
	}
	return reg, nil
}

// Tests returns the library cards in document order.
func (r *Registry) Tests() []Test {
	return r.tests
}

// Test looks up a learning card by id.
func (r *Registry) Test(id string) (*Test, bool) {
	t, ok := r.byTest[id]
	return t, ok
}

// Criterion looks up a criterion by id along with its parent test.
func (r *Registry) Criterion(id string) (CriterionRef, bool) {
	ref, ok := r.byCriterion[id]
	return ref, ok
}

// CriterionIDs returns every criterion id in stable order.
func (r *Registry) CriterionIDs() []string {
	ids := make([]string, 0, len(r.byCriterion))
	for id := range r.byCriterion {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Filter returns the cards matching a keyword and at least one of the given
// phases. An empty keyword matches everything; an empty phase list matches
// nothing, mirroring an unchecked phase selector.
func (r *Registry) Filter(keyword string, phases []string) []Test {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	matched := make([]Test, 0, len(r.tests))
	for _, test := range r.tests {
		haystack := strings.ToLower(strings.Join([]string{
			test.Name,
			test.Category,
			strings.Join(test.Equipment, " "),
			test.Summary,
		}, " "))
		if keyword != "" && !strings.Contains(haystack, keyword) {
			continue
		}
		if !phaseOverlap(test.Phases, phases) {
			continue
		}
		matched = append(matched, test)
	}
	return matched
}

func phaseOverlap(have, want []string) bool {
	for _, h := range have {
		for _, w := range want {
			if strings.EqualFold(h, w) {
				return true
			}
		}
	}
	return false
}
