package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/plancheck/internal/doctree"
	"golang.org/x/net/html"
)

// HTMLParser handles rendered HTML plan documents. Heading tags build
// the section nesting; <meta name=...> head tags supply the metadata
// block.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	doc := &doctree.Document{Source: filename}
	doc.Children = append(doc.Children, metaTagNodes(root)...)

	type stackEntry struct {
		node  *doctree.Node
		level int
	}
	virtualRoot := doctree.NewNode(doctree.KindOther, "")
	stack := []stackEntry{{node: virtualRoot, level: 0}}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				sec := doctree.NewNode(doctree.KindSection, "").
					Append(doctree.NewNode(doctree.KindTitle, textContent(n)))
				for len(stack) > 1 && stack[len(stack)-1].level >= level {
					stack = stack[:len(stack)-1]
				}
				stack[len(stack)-1].node.Append(sec)
				stack = append(stack, stackEntry{node: sec, level: level})
				return
			}
			switch n.Data {
			case "script", "style", "nav", "footer":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if body := findElement(root, "body"); body != nil {
		walk(body)
	} else {
		walk(root)
	}

	doc.Children = append(doc.Children, virtualRoot.Children...)
	return doc, nil
}

// metaTagNodes converts <meta name=... content=...> head tags into
// docinfo and field-list nodes.
func metaTagNodes(root *html.Node) []*doctree.Node {
	head := findElement(root, "head")
	if head == nil {
		return nil
	}

	docinfo := doctree.NewNode(doctree.KindDocinfo, "")
	fieldList := doctree.NewNode(doctree.KindFieldList, "")
	var topic *doctree.Node

	for c := head.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "meta" {
			continue
		}
		name := attrValue(c, "name")
		if name == "" {
			continue
		}
		if strings.EqualFold(name, "abstract") {
			topic = doctree.NewNode(doctree.KindTopic, name)
			continue
		}
		if kind, ok := doctree.BibliographicKind(name); ok {
			docinfo.Append(doctree.NewNode(kind, name))
			continue
		}
		field := doctree.NewNode(doctree.KindField, "").
			Append(doctree.NewNode(doctree.KindFieldName, name))
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

func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if e := findElement(c, tag); e != nil {
			return e
		}
	}
	return nil
}
