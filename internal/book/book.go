// Package book implements the on-disk idea book: a root directory holding
// book.yaml, a source directory of Markdown chapters, and a SUMMARY.md
// table of contents that defines chapter order and numbering.
package book

import (
	"path/filepath"
	"strconv"
	"strings"
)

// SummaryFile is the name of the table of contents inside the source directory.
const SummaryFile = "SUMMARY.md"

// SectionNumber is a chapter's position in the tree, e.g. [2 1] for "2.1.".
// Prefix and suffix chapters have a nil SectionNumber.
type SectionNumber []uint32

// String renders the number the way it appears in a table of contents ("2.1.").
func (n SectionNumber) String() string {
	if len(n) == 0 {
		return ""
	}
	parts := make([]string, len(n))
	for i, v := range n {
		parts[i] = strconv.FormatUint(uint64(v), 10)
	}
	return strings.Join(parts, ".") + "."
}

// ItemKind distinguishes the entries of a book's item list.
type ItemKind int

// Item kinds.
const (
	KindChapter ItemKind = iota
	KindSeparator
	KindPartTitle
)

// Item is one entry of the tree: a chapter, a separator, or a part title.
type Item struct {
	Kind    ItemKind
	Chapter *Chapter // set when Kind is KindChapter
	Title   string   // set when Kind is KindPartTitle
}

// Chapter is one document of the book.
type Chapter struct {
	Name        string
	Content     string
	Number      SectionNumber
	Path        string // relative to the source directory; empty for draft chapters
	ParentNames []string
	SubItems    []Item

	// literalPath is Path before percent-decoding.
	literalPath string
}

// IsDraft reports whether the chapter has no backing file.
func (c *Chapter) IsDraft() bool {
	return c.Path == ""
}

// Book is a loaded idea book.
type Book struct {
	Root   string
	Config Config
	Title  string // title line of SUMMARY.md, may be empty
	Items  []Item
}

// SourceDir returns the absolute directory chapter paths are relative to.
func (b *Book) SourceDir() string {
	return filepath.Join(b.Root, b.Config.Src)
}

// SummaryPath returns the path of SUMMARY.md.
func (b *Book) SummaryPath() string {
	return filepath.Join(b.SourceDir(), SummaryFile)
}

// BuildDir returns the directory Build writes HTML to.
func (b *Book) BuildDir() string {
	return filepath.Join(b.Root, b.Config.BuildDir)
}

// Chapters returns the top-level chapters in document order, skipping
// separators and part titles.
func (b *Book) Chapters() []*Chapter {
	var out []*Chapter
	for _, item := range b.Items {
		if item.Kind == KindChapter {
			out = append(out, item.Chapter)
		}
	}
	return out
}

// Walk calls fn for every chapter in the tree, depth first in document order.
func (b *Book) Walk(fn func(*Chapter)) {
	walkItems(b.Items, fn)
}

func walkItems(items []Item, fn func(*Chapter)) {
	for _, item := range items {
		if item.Kind != KindChapter {
			continue
		}
		fn(item.Chapter)
		walkItems(item.Chapter.SubItems, fn)
	}
}

// ChapterCount returns the number of chapters at every depth.
func (b *Book) ChapterCount() int {
	count := 0
	b.Walk(func(*Chapter) { count++ })
	return count
}

// PushChapter appends ch as the newest top-level item.
func (b *Book) PushChapter(ch *Chapter) {
	b.Items = append(b.Items, Item{Kind: KindChapter, Chapter: ch})
}

// nextNumber returns one past the highest top-level section number.
func (b *Book) nextNumber() uint32 {
	var highest uint32
	for _, ch := range b.Chapters() {
		if len(ch.Number) > 0 && ch.Number[0] > highest {
			highest = ch.Number[0]
		}
	}
	return highest + 1
}
