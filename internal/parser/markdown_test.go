package parser

import (
	"reflect"
	"strings"
	"testing"

	"github.com/dgallion1/plancheck/internal/doctree"
	"github.com/dgallion1/plancheck/internal/outline"
)

const markdownPlan = `---
Author: Jane Doe
Date: 2026-01-01
Conventions: follow the house style
Abstract: measures control plane latency
---

# Rationale

Some prose.

# Test Case

## Parameters

## Expected results

# Reports

## Test results
`

func parseMarkdown(t *testing.T, src string) *doctree.Document {
	t.Helper()
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(src), "plan.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return doc
}

func TestMarkdownParser_Outline(t *testing.T) {
	doc := parseMarkdown(t, markdownPlan)

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

func TestMarkdownParser_FrontMatterFields(t *testing.T) {
	doc := parseMarkdown(t, markdownPlan)

	got := outline.Fields(doc)
	want := []string{"author", "date", "Conventions", "abstract"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected fields %v, got %v", want, got)
	}
}

func TestMarkdownParser_NoFrontMatter(t *testing.T) {
	doc := parseMarkdown(t, "# Only Section\n\nBody.\n")

	if got := outline.Fields(doc); len(got) != 0 {
		t.Errorf("expected no fields, got %v", got)
	}
	if got := outline.Extract(doc); len(got) != 1 {
		t.Errorf("expected 1 section, got %v", got)
	}
}

func TestMarkdownParser_SkippedHeadingLevels(t *testing.T) {
	// An h3 directly under an h1 still nests beneath it.
	doc := parseMarkdown(t, "# Top\n\n### Deep\n")

	got := outline.Extract(doc)
	subs := got["Top"]
	if len(subs) != 1 || subs[0].Name != "Deep" {
		t.Errorf("expected Deep nested under Top, got %v", got)
	}
}

func TestMarkdownParser_InlineMarkupInHeadings(t *testing.T) {
	doc := parseMarkdown(t, "# The *Test* Plan\n")

	got := outline.Extract(doc)
	if _, ok := got["The Test Plan"]; !ok {
		t.Errorf("expected emphasis stripped from heading, got %v", got)
	}
}

func TestMarkdownParser_EmptyInput(t *testing.T) {
	doc := parseMarkdown(t, "")
	if len(doc.Children) != 0 {
		t.Errorf("expected no children for empty input, got %d", len(doc.Children))
	}
}
