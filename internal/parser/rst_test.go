package parser

import (
	"reflect"
	"strings"
	"testing"

	"github.com/dgallion1/plancheck/internal/doctree"
	"github.com/dgallion1/plancheck/internal/outline"
)

const rstPlan = `===================
 Example Test Plan
===================

:Author: Jane Doe
:Date: 2026-01-01
:Conventions: follow the house style
:Abstract: measures control plane latency

Rationale
=========

Some prose describing the rationale.

Test Case
=========

Parameters
----------

Expected results
----------------

Reports
=======

Test results
------------
`

func parseRST(t *testing.T, src string) *doctree.Document {
	t.Helper()
	p := &RSTParser{}
	doc, err := p.Parse(strings.NewReader(src), "plan.rst")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return doc
}

func TestRSTParser_Outline(t *testing.T) {
	doc := parseRST(t, rstPlan)

	got := outline.Extract(doc)
	want := outline.Outline{
		"Rationale": nil,
		"Test Case": {
			{Name: "Parameters"},
			{Name: "Expected results"},
		},
		"Reports": {
			{Name: "Test results"},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected outline %v, got %v", want, got)
	}
}

func TestRSTParser_DocTitlePromotion(t *testing.T) {
	doc := parseRST(t, rstPlan)

	if len(doc.Children) == 0 || doc.Children[0].Kind != doctree.KindTitle {
		t.Fatalf("expected promoted document title first, got %+v", doc.Children)
	}
	if doc.Children[0].RawText != "Example Test Plan" {
		t.Errorf("expected title %q, got %q", "Example Test Plan", doc.Children[0].RawText)
	}
	if len(doc.Sections()) != 3 {
		t.Errorf("expected 3 top-level sections after promotion, got %d", len(doc.Sections()))
	}
}

func TestRSTParser_DocinfoPromotion(t *testing.T) {
	doc := parseRST(t, rstPlan)

	got := outline.Fields(doc)
	want := []string{"author", "date", "Conventions", "abstract"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected fields %v, got %v", want, got)
	}
}

func TestRSTParser_FieldListWithoutTitleStaysPlain(t *testing.T) {
	src := ":Author: Jane\n:Custom: value\n\nSection\n=======\n"
	doc := parseRST(t, src)

	// No document title, so no docinfo promotion: the names stay as
	// authored in a plain field list.
	got := outline.Fields(doc)
	want := []string{"Author", "Custom"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected fields %v, got %v", want, got)
	}
}

func TestRSTParser_TopicDirective(t *testing.T) {
	src := "=====\nTitle\n=====\n\n.. topic:: Abstract\n\n   One paragraph.\n\nSection\n=======\n"
	doc := parseRST(t, src)

	got := outline.Fields(doc)
	if !reflect.DeepEqual(got, []string{"abstract"}) {
		t.Errorf("expected fields [abstract], got %v", got)
	}
}

func TestRSTParser_NestingDepth(t *testing.T) {
	src := strings.Join([]string{
		"=====", "Title", "=====", "",
		"Top", "===", "",
		"Sub", "---", "",
		"Subsub", "~~~~~~", "",
		"Deeper", "^^^^^^", "",
		"Other", "=====", "",
	}, "\n")
	doc := parseRST(t, src)

	got := outline.Extract(doc)
	subs := got["Top"]
	if len(subs) != 1 || !subs[0].Nested() {
		t.Fatalf("expected one nested subtitle under Top, got %v", got)
	}
	if subs[0].Name != "Sub" {
		t.Errorf("expected nested subtitle %q, got %q", "Sub", subs[0].Name)
	}
	// The fourth level ("Deeper") is parsed but capped out of the outline.
	if !reflect.DeepEqual(subs[0].Subtitles, []string{"Subsub"}) {
		t.Errorf("expected subsubtitles [Subsub], got %v", subs[0].Subtitles)
	}
}

func TestRSTParser_AdornmentDetection(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"=====", true},
		{"-----", true},
		{"~~~~~", true},
		{"== ==", false},
		{"=-=-=", false},
		{"words", false},
		{"=", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isAdornment(tt.line); got != tt.want {
			t.Errorf("isAdornment(%q): expected %v, got %v", tt.line, tt.want, got)
		}
	}
}

func TestRSTParser_IndentedLinesAreNotTitles(t *testing.T) {
	src := "Section\n=======\n\nExample::\n\n   literal\n   ======\n\nOther\n=====\n"
	doc := parseRST(t, src)

	got := outline.Extract(doc)
	if len(got) != 2 {
		t.Fatalf("expected only the two real sections, got %v", got)
	}
	for name := range got {
		if name != "Section" && name != "Other" {
			t.Errorf("unexpected section %q in outline", name)
		}
	}
}
