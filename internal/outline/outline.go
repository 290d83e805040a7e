// Package outline reduces a parsed document tree to the structural summary
// the conformance checks run on: a section outline and a metadata field list.
package outline

import (
	"slices"

	"github.com/dgallion1/plancheck/internal/doctree"
)

// Subtitle is one entry under a top-level section: either a plain
// subsection name, or a subsection with its own named subsubsections.
type Subtitle struct {
	Name      string
	Subtitles []string // Subsubsection names; empty for a plain subsection.
}

// Nested reports whether the subtitle carries its own subsubsections.
func (s Subtitle) Nested() bool { return len(s.Subtitles) > 0 }

// Equal compares two subtitles by value.
func (s Subtitle) Equal(o Subtitle) bool {
	return s.Name == o.Name && slices.Equal(s.Subtitles, o.Subtitles)
}

// Outline maps each top-level section name to its subtitles. Key order is
// map semantics; subtitle order follows the document.
type Outline map[string][]Subtitle

// record is the working shape of one section walk. A section without a
// title child leaves named false.
type record struct {
	name      string
	named     bool
	subtitles []Subtitle
}

// walk visits the immediate children of a section node. depth 1 is a
// top-level section. Children of depth-2 sections contribute bare names
// only, which caps the outline at three structural levels; anything
// deeper is ignored.
func walk(node *doctree.Node, depth int) record {
	var rec record
	for _, child := range node.Children {
		switch child.Kind {
		case doctree.KindTitle:
			// Last title wins when a section carries several.
			rec.name = child.RawText
			rec.named = true
		case doctree.KindSection:
			sub := walk(child, depth+1)
			if !sub.named {
				continue
			}
			switch {
			case depth < 2:
				rec.subtitles = append(rec.subtitles, Subtitle{
					Name:      sub.name,
					Subtitles: names(sub.subtitles),
				})
			case depth == 2:
				rec.subtitles = append(rec.subtitles, Subtitle{Name: sub.name})
			}
		}
	}
	return rec
}

func names(subs []Subtitle) []string {
	if len(subs) == 0 {
		return nil
	}
	out := make([]string, len(subs))
	for i, s := range subs {
		out[i] = s.Name
	}
	return out
}

// Extract builds the document outline from every top-level section.
// Sections without a title are not indexed.
func Extract(doc *doctree.Document) Outline {
	titles := Outline{}
	for _, node := range doc.Children {
		if node.Kind != doctree.KindSection {
			continue
		}
		rec := walk(node, 1)
		if !rec.named {
			continue
		}
		titles[rec.name] = rec.subtitles
	}
	return titles
}

// Fields collects the declared metadata field names from the direct
// children of the document root: field-list entries by field name,
// docinfo entries by their kind tag, and a topic node as "abstract".
// Duplicates are kept; callers treat the result as a set.
func Fields(doc *doctree.Document) []string {
	var fields []string
	for _, node := range doc.Children {
		switch node.Kind {
		case doctree.KindFieldList:
			for _, field := range node.Children {
				for _, opt := range field.Children {
					if opt.Kind == doctree.KindFieldName {
						fields = append(fields, opt.RawText)
					}
				}
			}
		case doctree.KindDocinfo:
			for _, info := range node.Children {
				fields = append(fields, string(info.Kind))
			}
		case doctree.KindTopic:
			fields = append(fields, "abstract")
		}
	}
	return fields
}
