package book

import (
	"bytes"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Summary is the parsed structure of SUMMARY.md, without chapter content.
type Summary struct {
	Title string
	Items []Item
}

// rawLinkPattern matches a list line whose destination CommonMark rejects,
// typically a file name with spaces: "[My idea](./My idea.md)".
var rawLinkPattern = regexp.MustCompile(`^\[(.+)\]\((.+)\)\s*$`)

// ParseSummary parses the contents of a SUMMARY.md file.
//
// The layout follows the usual book conventions:
//   - an optional level-1 heading is the book title
//   - links in paragraphs before the first list are unnumbered prefix chapters
//   - list items are numbered chapters; nested lists become sub-chapters
//   - thematic breaks (---) are separators, later headings are part titles
//   - links in paragraphs after the numbered section are unnumbered suffix chapters
//
// A list item without a link is a draft chapter with no file.
func ParseSummary(src []byte) (*Summary, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	p := &summaryParser{src: src}
	summary := &Summary{}
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			title := strings.TrimSpace(inlineText(node, src))
			if node.Level == 1 && summary.Title == "" && len(summary.Items) == 0 {
				summary.Title = title
				continue
			}
			summary.Items = append(summary.Items, Item{Kind: KindPartTitle, Title: title})
		case *ast.Paragraph:
			summary.Items = append(summary.Items, p.unnumbered(node)...)
		case *ast.List:
			summary.Items = append(summary.Items, p.numbered(node, nil, nil)...)
		case *ast.ThematicBreak:
			summary.Items = append(summary.Items, Item{Kind: KindSeparator})
		}
	}
	return summary, nil
}

// summaryParser carries the source and the running top-level chapter
// counter, which continues across separate numbered lists.
type summaryParser struct {
	src []byte
	top uint32
}

// unnumbered returns one chapter per link in a prefix or suffix paragraph.
func (p *summaryParser) unnumbered(para *ast.Paragraph) []Item {
	var items []Item
	_ = ast.Walk(para, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		link, ok := n.(*ast.Link)
		if !ok {
			return ast.WalkContinue, nil
		}
		items = append(items, Item{Kind: KindChapter, Chapter: linkedChapter(
			inlineText(link, p.src), string(link.Destination),
		)})
		return ast.WalkSkipChildren, nil
	})
	return items
}

// numbered converts a list into numbered chapters under parent.
func (p *summaryParser) numbered(list *ast.List, parent SectionNumber, parentNames []string) []Item {
	var items []Item
	var local uint32
	for n := list.FirstChild(); n != nil; n = n.NextSibling() {
		li, ok := n.(*ast.ListItem)
		if !ok {
			continue
		}

		var number SectionNumber
		if parent == nil {
			p.top++
			number = SectionNumber{p.top}
		} else {
			local++
			number = append(append(SectionNumber{}, parent...), local)
		}

		ch := p.listItem(li)
		ch.Number = number
		ch.ParentNames = append([]string{}, parentNames...)
		for c := li.FirstChild(); c != nil; c = c.NextSibling() {
			if sub, ok := c.(*ast.List); ok {
				childParents := append(append([]string{}, parentNames...), ch.Name)
				ch.SubItems = append(ch.SubItems, p.numbered(sub, number, childParents)...)
			}
		}
		items = append(items, Item{Kind: KindChapter, Chapter: ch})
	}
	return items
}

// listItem reads the name and path from a list item's first text block.
func (p *summaryParser) listItem(li *ast.ListItem) *Chapter {
	for c := li.FirstChild(); c != nil; c = c.NextSibling() {
		if _, isList := c.(*ast.List); isList {
			continue
		}
		if link := firstLink(c); link != nil {
			return linkedChapter(inlineText(link, p.src), string(link.Destination))
		}
		raw := strings.TrimSpace(blockText(c, p.src))
		if m := rawLinkPattern.FindStringSubmatch(raw); m != nil {
			return linkedChapter(m[1], m[2])
		}
		return &Chapter{Name: strings.TrimSpace(inlineText(c, p.src))}
	}
	return &Chapter{}
}

// firstLink returns the first link inside n, or nil.
func firstLink(n ast.Node) *ast.Link {
	var found *ast.Link
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if link, ok := node.(*ast.Link); ok && entering {
			found = link
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return found
}

// inlineText concatenates the text of n's inline descendants.
func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		default:
			buf.WriteString(inlineText(c, src))
		}
	}
	return buf.String()
}

// blockText returns the raw source lines of a block node.
func blockText(n ast.Node, src []byte) string {
	if n.Type() != ast.TypeBlock {
		return ""
	}
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(src))
	}
	return buf.String()
}

// linkedChapter builds a chapter from a link name and target.
func linkedChapter(name, dest string) *Chapter {
	return &Chapter{
		Name:        strings.TrimSpace(name),
		Path:        cleanDestination(dest),
		literalPath: literalDestination(dest),
	}
}

// cleanDestination turns a link target like "./sub/My%20idea.md" into the
// relative path "sub/My idea.md".
func cleanDestination(dest string) string {
	dest = trimDestination(dest)
	if unescaped, err := url.PathUnescape(dest); err == nil {
		dest = unescaped
	}
	return relativeClean(dest)
}

// literalDestination is cleanDestination without percent-decoding. Idea
// names may contain "%XX" sequences, and AppendSummaryLine writes them
// as-is.
func literalDestination(dest string) string {
	return relativeClean(trimDestination(dest))
}

func trimDestination(dest string) string {
	dest = strings.TrimSpace(dest)
	return strings.TrimSuffix(strings.TrimPrefix(dest, "<"), ">")
}

func relativeClean(dest string) string {
	if dest == "" {
		return ""
	}
	return strings.TrimPrefix(path.Clean(dest), "/")
}
