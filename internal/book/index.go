package book

import (
	"fmt"
	"path/filepath"

	"github.com/gorewood/ideabook/internal/output"
)

// Snapshot is the part of a chapter kept in an Index.
type Snapshot struct {
	Name        string   `json:"name"`
	Path        string   `json:"path"`
	ParentNames []string `json:"parent_names"`
}

// Index maps a top-level chapter number to its chapter.
type Index map[uint32]Snapshot

// BuildIndex keys every top-level chapter by the first segment of its
// section number. Separators and part titles are skipped. Duplicate numbers
// keep the last chapter in document order. A chapter without a number is a
// lookup error.
func BuildIndex(b *Book) (Index, error) {
	idx := make(Index)
	for _, ch := range b.Chapters() {
		if len(ch.Number) == 0 {
			return nil, output.NewLookupError(fmt.Sprintf("chapter %q has no section number", ch.Name))
		}
		idx[ch.Number[0]] = Snapshot{
			Name:        ch.Name,
			Path:        ch.Path,
			ParentNames: append([]string{}, ch.ParentNames...),
		}
	}
	return idx, nil
}

// PathFor returns the on-disk path of chapter number in idx: the book's
// source directory joined with the chapter's relative path.
func (b *Book) PathFor(number uint32, idx Index) (string, error) {
	snap, ok := idx[number]
	if !ok {
		return "", output.NewLookupError(fmt.Sprintf("no chapter numbered %d", number))
	}
	return filepath.Join(b.SourceDir(), snap.Path), nil
}

// ChapterNames returns the names of the top-level chapters.
func (b *Book) ChapterNames() []string {
	chapters := b.Chapters()
	out := make([]string, 0, len(chapters))
	for _, ch := range chapters {
		out = append(out, ch.Name)
	}
	return out
}

// ChapterPaths returns the relative paths of the top-level chapters.
func (b *Book) ChapterPaths() []string {
	chapters := b.Chapters()
	out := make([]string, 0, len(chapters))
	for _, ch := range chapters {
		out = append(out, ch.Path)
	}
	return out
}

// Parents returns the parent chains of the top-level chapters.
func (b *Book) Parents() [][]string {
	chapters := b.Chapters()
	out := make([][]string, 0, len(chapters))
	for _, ch := range chapters {
		out = append(out, ch.ParentNames)
	}
	return out
}

// ChapterNumbers returns the section numbers of the top-level chapters.
func (b *Book) ChapterNumbers() []SectionNumber {
	chapters := b.Chapters()
	out := make([]SectionNumber, 0, len(chapters))
	for _, ch := range chapters {
		out = append(out, ch.Number)
	}
	return out
}
