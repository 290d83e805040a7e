package outline

import (
	"reflect"
	"testing"

	"github.com/dgallion1/plancheck/internal/doctree"
)

func section(title string, children ...*doctree.Node) *doctree.Node {
	sec := doctree.NewNode(doctree.KindSection, "")
	if title != "" {
		sec.Append(doctree.NewNode(doctree.KindTitle, title))
	}
	return sec.Append(children...)
}

func TestExtract_ThreeLevels(t *testing.T) {
	doc := &doctree.Document{
		Source: "plan.rst",
		Children: []*doctree.Node{
			section("Test Plan",
				section("Rationale"),
				section("Test Case",
					section("Parameters"),
					section("List of performance metrics"),
				),
			),
			section("Reports"),
		},
	}

	got := Extract(doc)

	want := Outline{
		"Test Plan": {
			{Name: "Rationale"},
			{Name: "Test Case", Subtitles: []string{"Parameters", "List of performance metrics"}},
		},
		"Reports": nil,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected outline %v, got %v", want, got)
	}
}

func TestExtract_DepthCappedAtThree(t *testing.T) {
	doc := &doctree.Document{
		Children: []*doctree.Node{
			section("Top",
				section("Sub",
					section("Subsub",
						section("Too deep"),
					),
				),
			),
		},
	}

	got := Extract(doc)

	subs := got["Top"]
	if len(subs) != 1 {
		t.Fatalf("expected 1 subtitle, got %d", len(subs))
	}
	if !subs[0].Nested() {
		t.Fatalf("expected nested subtitle, got plain %q", subs[0].Name)
	}
	// The fourth level must not appear anywhere.
	if !reflect.DeepEqual(subs[0].Subtitles, []string{"Subsub"}) {
		t.Errorf("expected subsubtitles [Subsub], got %v", subs[0].Subtitles)
	}
}

func TestExtract_NamelessSectionNotIndexed(t *testing.T) {
	doc := &doctree.Document{
		Children: []*doctree.Node{
			section("", section("Orphan sub")),
			section("Named"),
		},
	}

	got := Extract(doc)

	if len(got) != 1 {
		t.Fatalf("expected 1 outline entry, got %d: %v", len(got), got)
	}
	if _, ok := got["Named"]; !ok {
		t.Errorf("expected %q in outline, got %v", "Named", got)
	}
}

func TestExtract_LastTitleWins(t *testing.T) {
	sec := doctree.NewNode(doctree.KindSection, "").Append(
		doctree.NewNode(doctree.KindTitle, "First"),
		doctree.NewNode(doctree.KindTitle, "Second"),
	)
	doc := &doctree.Document{Children: []*doctree.Node{sec}}

	got := Extract(doc)

	if _, ok := got["Second"]; !ok {
		t.Errorf("expected last title %q to win, got %v", "Second", got)
	}
	if _, ok := got["First"]; ok {
		t.Errorf("did not expect first title to be indexed: %v", got)
	}
}

func TestExtract_IgnoresNonSectionChildren(t *testing.T) {
	doc := &doctree.Document{
		Children: []*doctree.Node{
			doctree.NewNode(doctree.KindFieldList, ""),
			doctree.NewNode(doctree.KindTopic, "abstract"),
			section("Only section"),
		},
	}

	got := Extract(doc)

	if len(got) != 1 {
		t.Errorf("expected 1 outline entry, got %d: %v", len(got), got)
	}
}

func TestFields_AllSources(t *testing.T) {
	fieldList := doctree.NewNode(doctree.KindFieldList, "").Append(
		doctree.NewNode(doctree.KindField, "").Append(
			doctree.NewNode(doctree.KindFieldName, "Conventions"),
		),
		doctree.NewNode(doctree.KindField, "").Append(
			doctree.NewNode(doctree.KindFieldName, "Test results"),
		),
	)
	docinfo := doctree.NewNode(doctree.KindDocinfo, "").Append(
		doctree.NewNode("author", "author"),
		doctree.NewNode("date", "date"),
	)
	doc := &doctree.Document{
		Children: []*doctree.Node{
			docinfo,
			fieldList,
			doctree.NewNode(doctree.KindTopic, "Abstract"),
		},
	}

	got := Fields(doc)

	want := []string{"author", "date", "Conventions", "Test results", "abstract"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected fields %v, got %v", want, got)
	}
}

func TestFields_SkipsNestedFieldLists(t *testing.T) {
	// Field lists inside sections are not metadata; only root children count.
	doc := &doctree.Document{
		Children: []*doctree.Node{
			section("Top",
				doctree.NewNode(doctree.KindFieldList, "").Append(
					doctree.NewNode(doctree.KindField, "").Append(
						doctree.NewNode(doctree.KindFieldName, "Buried"),
					),
				),
			),
		},
	}

	if got := Fields(doc); len(got) != 0 {
		t.Errorf("expected no fields, got %v", got)
	}
}

func TestSubtitle_Equal(t *testing.T) {
	tests := []struct {
		name string
		a, b Subtitle
		want bool
	}{
		{"plain equal", Subtitle{Name: "A"}, Subtitle{Name: "A"}, true},
		{"plain different", Subtitle{Name: "A"}, Subtitle{Name: "B"}, false},
		{"nested equal", Subtitle{Name: "A", Subtitles: []string{"x"}}, Subtitle{Name: "A", Subtitles: []string{"x"}}, true},
		{"nested vs plain", Subtitle{Name: "A", Subtitles: []string{"x"}}, Subtitle{Name: "A"}, false},
		{"nested different", Subtitle{Name: "A", Subtitles: []string{"x"}}, Subtitle{Name: "A", Subtitles: []string{"y"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("expected Equal=%v, got %v", tt.want, got)
			}
		})
	}
}
