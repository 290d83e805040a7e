package parser

import (
	"io"
	"regexp"
	"strings"

	"github.com/dgallion1/plancheck/internal/doctree"
)

// RSTParser handles reStructuredText-style plan documents (.rst, .txt):
// adornment-underlined section titles, leading field lists with
// bibliographic promotion, and topic directives for abstracts. It covers
// the structural subset the conformance checks need, not full reST.
type RSTParser struct{}

func (p *RSTParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return parseStructuredText(string(src), filename), nil
}

// Any ASCII punctuation character may adorn a section title.
const adornmentChars = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// fieldLine matches a field-list entry such as ":Status: draft".
var fieldLine = regexp.MustCompile(`^:([^:]+):(?:\s+.*)?$`)

// topicDirective matches an explicit topic block such as ".. topic:: Abstract".
var topicDirective = regexp.MustCompile(`^\.\. topic::\s*(.*)$`)

// isAdornment reports whether line is a section adornment: two or more
// repetitions of one punctuation character, unindented.
func isAdornment(line string) bool {
	if len(line) < 2 {
		return false
	}
	first := rune(line[0])
	if !strings.ContainsRune(adornmentChars, first) {
		return false
	}
	for _, c := range line {
		if c != first {
			return false
		}
	}
	return true
}

// isTitleText reports whether line can be the text of a section title.
func isTitleText(line string) bool {
	return strings.TrimSpace(line) != "" &&
		!strings.HasPrefix(line, " ") &&
		!strings.HasPrefix(line, "\t")
}

// openSection is one entry of the section nesting stack.
type openSection struct {
	node  *doctree.Node
	level int
}

// textBuilder accumulates the document while scanning lines.
type textBuilder struct {
	doc    *doctree.Document
	stack  []openSection
	styles []string // Adornment styles in order of first use; index+1 is the level.
}

func (b *textBuilder) container() *doctree.Node {
	if len(b.stack) == 0 {
		return nil
	}
	return b.stack[len(b.stack)-1].node
}

func (b *textBuilder) appendNode(n *doctree.Node) {
	if top := b.container(); top != nil {
		top.Append(n)
		return
	}
	b.doc.Children = append(b.doc.Children, n)
}

// styleLevel maps an adornment style to its section level, assigning the
// next level to styles seen for the first time.
func (b *textBuilder) styleLevel(style string) int {
	for i, s := range b.styles {
		if s == style {
			return i + 1
		}
	}
	b.styles = append(b.styles, style)
	return len(b.styles)
}

// openSectionAt closes any open sections at or below level and starts a
// new one titled title.
func (b *textBuilder) openSectionAt(level int, title string) {
	for len(b.stack) > 0 && b.stack[len(b.stack)-1].level >= level {
		b.stack = b.stack[:len(b.stack)-1]
	}
	sec := doctree.NewNode(doctree.KindSection, "").
		Append(doctree.NewNode(doctree.KindTitle, title))
	b.appendNode(sec)
	b.stack = append(b.stack, openSection{node: sec, level: level})
}

// parseStructuredText scans raw plan text into a document tree. The PDF
// parser reuses it on extracted page text.
func parseStructuredText(raw, source string) *doctree.Document {
	lines := strings.Split(raw, "\n")
	b := &textBuilder{doc: &doctree.Document{Source: source}}

	i := 0
	for i < len(lines) {
		line := strings.TrimRight(lines[i], " \t")

		// Overlined title: adornment, title text, matching adornment.
		// The title may be indented between its adornment lines.
		if isAdornment(line) && i+2 < len(lines) {
			title := strings.TrimSpace(lines[i+1])
			under := strings.TrimRight(lines[i+2], " \t")
			if title != "" && !isAdornment(title) && isAdornment(under) &&
				under[0] == line[0] && len(under) >= len(title) {
				b.openSectionAt(b.styleLevel("over"+string(line[0])), title)
				i += 3
				continue
			}
		}

		// Underlined title.
		if isTitleText(line) && !isAdornment(line) && i+1 < len(lines) {
			under := strings.TrimRight(lines[i+1], " \t")
			if isAdornment(under) && len(under) >= len(line) {
				b.openSectionAt(b.styleLevel("under"+string(under[0])), line)
				i += 2
				continue
			}
		}

		// Field list block.
		if m := fieldLine.FindStringSubmatch(line); m != nil {
			fl := doctree.NewNode(doctree.KindFieldList, "")
			for i < len(lines) {
				entry := strings.TrimRight(lines[i], " \t")
				if fm := fieldLine.FindStringSubmatch(entry); fm != nil {
					name := strings.TrimSpace(fm[1])
					field := doctree.NewNode(doctree.KindField, "").
						Append(doctree.NewNode(doctree.KindFieldName, name))
					fl.Append(field)
					i++
					continue
				}
				// Indented continuation of the previous field value.
				if entry != "" && (strings.HasPrefix(lines[i], " ") || strings.HasPrefix(lines[i], "\t")) {
					i++
					continue
				}
				break
			}
			b.appendNode(fl)
			continue
		}

		// Explicit topic directive (abstracts).
		if m := topicDirective.FindStringSubmatch(line); m != nil {
			b.appendNode(doctree.NewNode(doctree.KindTopic, strings.TrimSpace(m[1])))
			i++
			// Swallow the indented directive body.
			for i < len(lines) {
				l := lines[i]
				if strings.TrimSpace(l) == "" || strings.HasPrefix(l, " ") || strings.HasPrefix(l, "\t") {
					i++
					continue
				}
				break
			}
			continue
		}

		i++
	}

	promoteDocTitle(b.doc)
	promoteDocinfo(b.doc)
	return b.doc
}

// promoteDocTitle lifts a lone top-level section into the document
// title, the way reST promotes a document's single top section. Its
// children become the document's top-level nodes.
func promoteDocTitle(doc *doctree.Document) {
	if len(doc.Children) != 1 || doc.Children[0].Kind != doctree.KindSection {
		return
	}
	sec := doc.Children[0]
	title := sec.Title()
	if title == "" {
		return
	}
	children := []*doctree.Node{doctree.NewNode(doctree.KindTitle, title)}
	for _, c := range sec.Children {
		if c.Kind != doctree.KindTitle {
			children = append(children, c)
		}
	}
	doc.Children = children
}

// promoteDocinfo rewrites the first field list after the document title
// into a docinfo block: bibliographic names become typed docinfo
// children, an abstract becomes a topic node, everything else stays in a
// trailing field list.
func promoteDocinfo(doc *doctree.Document) {
	if len(doc.Children) < 2 ||
		doc.Children[0].Kind != doctree.KindTitle ||
		doc.Children[1].Kind != doctree.KindFieldList {
		return
	}
	fl := doc.Children[1]

	docinfo := doctree.NewNode(doctree.KindDocinfo, "")
	leftover := doctree.NewNode(doctree.KindFieldList, "")
	var topic *doctree.Node

	for _, field := range fl.Children {
		name := ""
		for _, c := range field.Children {
			if c.Kind == doctree.KindFieldName {
				name = c.RawText
			}
		}
		if strings.EqualFold(name, "abstract") {
			topic = doctree.NewNode(doctree.KindTopic, name)
			continue
		}
		if kind, ok := doctree.BibliographicKind(name); ok {
			docinfo.Append(doctree.NewNode(kind, name))
			continue
		}
		leftover.Append(field)
	}

	rebuilt := []*doctree.Node{doc.Children[0]}
	if len(docinfo.Children) > 0 {
		rebuilt = append(rebuilt, docinfo)
	}
	if len(leftover.Children) > 0 {
		rebuilt = append(rebuilt, leftover)
	}
	if topic != nil {
		rebuilt = append(rebuilt, topic)
	}
	doc.Children = append(rebuilt, doc.Children[2:]...)
}
