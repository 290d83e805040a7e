// Package lint validates raw document text line by line: maximum line
// length, no literal carriage returns, no trailing whitespace.
package lint

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultLineLimit is the maximum allowed line length in characters.
const DefaultLineLimit = 79

// IssueKind classifies a formatting violation.
type IssueKind string

const (
	LineTooLong        IssueKind = "line_too_long"
	CarriageReturn     IssueKind = "carriage_return"
	TrailingWhitespace IssueKind = "trailing_whitespace"
)

// Issue is one formatting violation. Line is 1-based; it is 0 for
// file-level issues such as the carriage-return count.
type Issue struct {
	Kind  IssueKind `json:"kind"`
	File  string    `json:"file"`
	Line  int       `json:"line,omitempty"`
	Limit int       `json:"limit,omitempty"`
	Count int       `json:"count,omitempty"`
}

// Message renders the issue for the aggregated per-document report.
func (i Issue) Message() string {
	switch i.Kind {
	case LineTooLong:
		return fmt.Sprintf("%s:%d: line limited to a maximum of %d characters", i.File, i.Line, i.Limit)
	case CarriageReturn:
		return fmt.Sprintf("found %d literal carriage returns in file %s", i.Count, i.File)
	case TrailingWhitespace:
		return fmt.Sprintf("found trailing whitespace on line %d of %s", i.Line, i.File)
	}
	return fmt.Sprintf("%s: %s:%d", i.Kind, i.File, i.Line)
}

// RegionState names the region the tracker is in after a line.
type RegionState int

const (
	Normal RegionState = iota
	InCodeBlock
	InSimpleTable
)

// RegionTracker follows code-block and simple-table regions across
// lines. A code block opens on a line containing "::" and covers the
// following empty or indented lines. A simple table opens on a line
// containing "===" preceded by an empty line and closes on a line
// containing "===" followed by an empty one. The zero value starts
// outside any region.
type RegionTracker struct {
	codeBlock   bool
	simpleTable bool
}

// State reports the current region; an open code block shadows a table.
func (t *RegionTracker) State() RegionState {
	switch {
	case t.codeBlock:
		return InCodeBlock
	case t.simpleTable:
		return InSimpleTable
	}
	return Normal
}

// Step advances the tracker over one line and reports whether the
// length rule applies to it. prevEmpty and nextEmpty describe the
// neighbouring lines; the lines before the first and after the last
// count as empty.
func (t *RegionTracker) Step(line string, prevEmpty, nextEmpty bool) bool {
	if t.codeBlock {
		if line == "" || strings.HasPrefix(line, " ") {
			return false
		}
		t.codeBlock = false
	}
	if strings.Contains(line, "::") {
		t.codeBlock = true
	}
	if strings.Contains(line, "===") && prevEmpty {
		t.simpleTable = true
	}
	check := !t.simpleTable
	if strings.Contains(line, "===") && nextEmpty {
		t.simpleTable = false
	}
	return check
}

// singleToken matches lines with no internal whitespace, such as a long
// URL-less literal that cannot be wrapped.
var singleToken = regexp.MustCompile(`^\s*\S+$`)

// lengthExempt reports line-local exemptions from the length rule.
func lengthExempt(line string) bool {
	if strings.Contains(line, "http://") || strings.Contains(line, "https://") {
		return true
	}
	return singleToken.MatchString(line)
}

// CheckLineLength reports every line longer than limit characters,
// skipping code-block and simple-table regions, URLs and single-token
// lines.
func CheckLineLength(file, raw string, limit int) []Issue {
	if limit <= 0 {
		limit = DefaultLineLimit
	}
	lines := strings.Split(raw, "\n")
	var tracker RegionTracker
	var issues []Issue
	for i, line := range lines {
		prevEmpty := i == 0 || lines[i-1] == ""
		nextEmpty := i+1 >= len(lines) || lines[i+1] == ""
		if !tracker.Step(line, prevEmpty, nextEmpty) {
			continue
		}
		if lengthExempt(line) {
			continue
		}
		if utf8.RuneCountInString(line) > limit {
			issues = append(issues, Issue{
				Kind:  LineTooLong,
				File:  file,
				Line:  i + 1,
				Limit: limit,
			})
		}
	}
	return issues
}

// CheckNoCarriageReturns reports a single file-level issue counting the
// literal carriage returns in raw, if there are any.
func CheckNoCarriageReturns(file, raw string) []Issue {
	n := strings.Count(raw, "\r")
	if n == 0 {
		return nil
	}
	return []Issue{{Kind: CarriageReturn, File: file, Count: n}}
}

// CheckTrailingWhitespace reports every line ending in whitespace.
func CheckTrailingWhitespace(file, raw string) []Issue {
	var issues []Issue
	for i, line := range strings.Split(raw, "\n") {
		if line != strings.TrimRightFunc(line, unicode.IsSpace) {
			issues = append(issues, Issue{
				Kind: TrailingWhitespace,
				File: file,
				Line: i + 1,
			})
		}
	}
	return issues
}

// Check runs all three validations and concatenates their issues in the
// order length, carriage returns, trailing whitespace.
func Check(file, raw string, limit int) []Issue {
	issues := CheckLineLength(file, raw, limit)
	issues = append(issues, CheckNoCarriageReturns(file, raw)...)
	issues = append(issues, CheckTrailingWhitespace(file, raw)...)
	return issues
}
