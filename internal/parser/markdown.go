package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/plancheck/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gparser "github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	meta "github.com/yuin/goldmark-meta"
)

// MarkdownParser handles Markdown plan documents using goldmark. Heading
// levels build the section nesting; YAML front matter supplies the
// metadata block (bibliographic keys, an abstract, and plain fields).
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New(goldmark.WithExtensions(meta.Meta))
	ctx := gparser.NewContext()
	root := md.Parser().Parse(text.NewReader(src), gparser.WithContext(ctx))

	doc := &doctree.Document{Source: filename}
	doc.Children = append(doc.Children, metadataNodes(ctx)...)

	// Walk the AST and nest sections by heading level, tracked with a
	// stack. Body content is irrelevant to the structural checks and is
	// not kept.
	type stackEntry struct {
		node  *doctree.Node
		level int
	}
	virtualRoot := doctree.NewNode(doctree.KindOther, "")
	stack := []stackEntry{{node: virtualRoot, level: 0}}

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		heading, ok := n.(*ast.Heading)
		if !ok {
			continue
		}
		title := headingText(heading, src)

		sec := doctree.NewNode(doctree.KindSection, "").
			Append(doctree.NewNode(doctree.KindTitle, title))

		for len(stack) > 1 && stack[len(stack)-1].level >= heading.Level {
			stack = stack[:len(stack)-1]
		}
		stack[len(stack)-1].node.Append(sec)
		stack = append(stack, stackEntry{node: sec, level: heading.Level})
	}

	doc.Children = append(doc.Children, virtualRoot.Children...)
	return doc, nil
}

// metadataNodes converts YAML front matter into docinfo, field-list and
// topic nodes, preserving the authored key order.
func metadataNodes(ctx gparser.Context) []*doctree.Node {
	items := meta.GetItems(ctx)
	if len(items) == 0 {
		return nil
	}

	docinfo := doctree.NewNode(doctree.KindDocinfo, "")
	fieldList := doctree.NewNode(doctree.KindFieldList, "")
	var topic *doctree.Node

	for _, item := range items {
		key := fmt.Sprintf("%v", item.Key)
		if strings.EqualFold(key, "abstract") {
			topic = doctree.NewNode(doctree.KindTopic, key)
			continue
		}
		if kind, ok := doctree.BibliographicKind(key); ok {
			docinfo.Append(doctree.NewNode(kind, key))
			continue
		}
		field := doctree.NewNode(doctree.KindField, "").
			Append(doctree.NewNode(doctree.KindFieldName, key))
		fieldList.Append(field)
	}

	var nodes []*doctree.Node
	if len(docinfo.Children) > 0 {
		nodes = append(nodes, docinfo)
	}
	if len(fieldList.Children) > 0 {
		nodes = append(nodes, fieldList)
	}
	if topic != nil {
		nodes = append(nodes, topic)
	}
	return nodes
}

// headingText flattens the inline content of a heading.
func headingText(h *ast.Heading, src []byte) string {
	var buf strings.Builder
	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		if t, ok := n.(*ast.Text); ok {
			buf.Write(t.Value(src))
			return
		}
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			walk(c)
		}
	}
	walk(h)
	return buf.String()
}
