package doctree

import "strings"

// Kind identifies the structural role of a Node.
type Kind string

const (
	KindTitle     Kind = "title"
	KindSection   Kind = "section"
	KindFieldList Kind = "field_list"
	KindField     Kind = "field"
	KindFieldName Kind = "field_name"
	KindDocinfo   Kind = "docinfo"
	KindTopic     Kind = "topic"
	KindOther     Kind = "other"
)

// Document is the root of a parsed document. The tree owns its nodes;
// everything downstream treats it as read-only.
type Document struct {
	Source   string  // Originating filename (or synthetic name for uploads)
	Children []*Node // Top-level nodes in document order
}

// Node is a typed node in the document tree.
type Node struct {
	Kind     Kind    // Structural role
	RawText  string  // Raw text content (titles, field names; empty for containers)
	Children []*Node // Ordered child nodes
}

// NewNode returns a node of the given kind with no children.
func NewNode(kind Kind, rawText string) *Node {
	return &Node{Kind: kind, RawText: rawText}
}

// Append adds children to n and returns n for chaining.
func (n *Node) Append(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// Title returns the raw text of the first title child, or "" if none.
func (n *Node) Title() string {
	for _, c := range n.Children {
		if c.Kind == KindTitle {
			return c.RawText
		}
	}
	return ""
}

// Sections returns the direct children of kind section, in order.
func (d *Document) Sections() []*Node {
	var out []*Node
	for _, c := range d.Children {
		if c.Kind == KindSection {
			out = append(out, c)
		}
	}
	return out
}

// Bibliographic field names promoted from plain field lists into the
// docinfo block, keyed by lowercase name. The docinfo child node takes
// the field's kind tag instead of keeping a field_name child.
var bibliographicFields = map[string]Kind{
	"author":       "author",
	"authors":      "authors",
	"organization": "organization",
	"address":      "address",
	"contact":      "contact",
	"version":      "version",
	"revision":     "revision",
	"status":       "status",
	"date":         "date",
	"copyright":    "copyright",
}

// BibliographicKind reports the docinfo kind for a metadata field name,
// matching case-insensitively. ok is false for non-bibliographic names.
func BibliographicKind(name string) (Kind, bool) {
	k, ok := bibliographicFields[strings.ToLower(name)]
	return k, ok
}
