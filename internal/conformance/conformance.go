// Package conformance compares a document outline and field list against
// the ones extracted from a template, reporting every structural gap.
package conformance

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/dgallion1/plancheck/internal/outline"
)

// TestCasePrefix marks repeatable test-case subsections. Any number of
// concretely named blocks ("Test Case 1", "Test Case: upgrade") satisfy
// one generic "Test Case" template block. The tolerance is one-way: the
// template side is never relaxed by instance content elsewhere.
const TestCasePrefix = "Test Case"

// Optionality lists element names exempt from missing-element reporting.
// The sets are fixed for a whole run.
type Optionality struct {
	Sections       map[string]bool
	Subsections    map[string]bool
	Subsubsections map[string]bool
	Fields         map[string]bool
}

// DefaultOptionality returns the stock exemption sets.
func DefaultOptionality() Optionality {
	return Optionality{
		Sections:       Set("Upper level additional section"),
		Subsections:    Set("Some additional section"),
		Subsubsections: Set("Parameters", "Some additional section"),
		Fields:         Set("Conventions"),
	}
}

// Set builds an exemption set from a name list.
func Set(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// ViolationKind classifies a structural violation.
type ViolationKind string

const (
	MissingSection       ViolationKind = "missing_section"
	MissingSubsection    ViolationKind = "missing_subsection"
	MissingSubsubsection ViolationKind = "missing_subsubsection"
	MissingField         ViolationKind = "missing_field"
)

// Violation reports all missing names of one kind at one place in the
// document. Names at a given level are batched into a single violation.
type Violation struct {
	Kind       ViolationKind `json:"kind"`
	Section    string        `json:"section,omitempty"`    // Enclosing section, for subsection violations.
	Subsection string        `json:"subsection,omitempty"` // Enclosing subsection, for subsubsection violations.
	Names      []string      `json:"names"`
}

// Message renders the violation for the aggregated per-document report.
func (v Violation) Message() string {
	joined := strings.Join(v.Names, ", ")
	switch v.Kind {
	case MissingSection:
		return fmt.Sprintf("Missing sections: %s", joined)
	case MissingSubsection:
		return fmt.Sprintf("Section %q is missing subsections: %s", v.Section, joined)
	case MissingSubsubsection:
		return fmt.Sprintf("Subsection %q is missing subsubsections: %s", v.Subsection, joined)
	case MissingField:
		return fmt.Sprintf("Missing fields: %s", joined)
	}
	return fmt.Sprintf("%s: %s", v.Kind, joined)
}

// Compare reports every way actual fails to cover the sections,
// subsections and subsubsections required by expected. It is pure: no
// state survives a call, and identical inputs produce identical output.
// Violations come out ordered: sections first, then subsections and
// subsubsections per expected section in sorted-name order.
func Compare(expected, actual outline.Outline, opt Optionality) []Violation {
	var violations []Violation

	sections := slices.Sorted(maps.Keys(expected))

	var missingSections []string
	for _, name := range sections {
		if _, ok := actual[name]; !ok && !opt.Sections[name] {
			missingSections = append(missingSections, name)
		}
	}
	if len(missingSections) > 0 {
		violations = append(violations, Violation{
			Kind:  MissingSection,
			Names: missingSections,
		})
	}

	for _, section := range sections {
		actualSubs := actual[section] // nil when the section is absent; detail still surfaces

		missing := missingSubtitles(expected[section], actualSubs, opt.Subsections)
		missing = applyTestCaseWildcard(missing, actualSubs)
		if len(missing) > 0 {
			violations = append(violations, Violation{
				Kind:    MissingSubsection,
				Section: section,
				Names:   subtitleNames(missing),
			})
		}

		for _, sub := range expected[section] {
			if !sub.Nested() {
				continue
			}
			for _, act := range actualSubs {
				if !act.Nested() || !subsectionMatches(sub, act) {
					continue
				}
				var missingSubsubs []string
				for _, name := range sub.Subtitles {
					if !slices.Contains(act.Subtitles, name) && !opt.Subsubsections[name] {
						missingSubsubs = append(missingSubsubs, name)
					}
				}
				if len(missingSubsubs) > 0 {
					violations = append(violations, Violation{
						Kind:       MissingSubsubsection,
						Section:    section,
						Subsection: act.Name,
						Names:      missingSubsubs,
					})
				}
			}
		}
	}

	return violations
}

// missingSubtitles returns the expected entries with no value-equal
// counterpart in actual. The optionality exemption applies to plain
// subsections by name; a nested record is never exempt.
func missingSubtitles(expected, actual []outline.Subtitle, optional map[string]bool) []outline.Subtitle {
	var missing []outline.Subtitle
	for _, want := range expected {
		if !want.Nested() && optional[want.Name] {
			continue
		}
		found := false
		for _, got := range actual {
			if want.Equal(got) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, want)
		}
	}
	return missing
}

// applyTestCaseWildcard drops every missing "Test Case" entry once the
// actual subtitles contain any entry with the prefix: concrete numbered
// test cases stand in for the generic template block.
func applyTestCaseWildcard(missing, actual []outline.Subtitle) []outline.Subtitle {
	hasConcrete := false
	for _, got := range actual {
		if strings.HasPrefix(got.Name, TestCasePrefix) {
			hasConcrete = true
			break
		}
	}
	if !hasConcrete {
		return missing
	}
	kept := missing[:0:0]
	for _, want := range missing {
		if !strings.HasPrefix(want.Name, TestCasePrefix) {
			kept = append(kept, want)
		}
	}
	return kept
}

// subsectionMatches pairs an expected nested subsection with an actual
// one: exact name, or both carrying the test-case prefix so each concrete
// block is held against the generic template block.
func subsectionMatches(want, got outline.Subtitle) bool {
	if got.Name == want.Name {
		return true
	}
	return strings.HasPrefix(got.Name, TestCasePrefix) &&
		strings.HasPrefix(want.Name, TestCasePrefix)
}

func subtitleNames(subs []outline.Subtitle) []string {
	out := make([]string, len(subs))
	for i, s := range subs {
		out[i] = s.Name
	}
	return out
}

// CompareFields reports the template fields absent from the document,
// ignoring exempt names. Field order is not significant; both lists are
// treated as sets, and the missing names come out sorted.
func CompareFields(expected, actual []string, opt Optionality) []Violation {
	present := make(map[string]bool, len(actual))
	for _, f := range actual {
		present[f] = true
	}
	var missing []string
	for _, f := range expected {
		if !present[f] && !opt.Fields[f] && !slices.Contains(missing, f) {
			missing = append(missing, f)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	slices.Sort(missing)
	return []Violation{{Kind: MissingField, Names: missing}}
}
