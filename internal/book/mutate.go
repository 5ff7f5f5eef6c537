package book

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gorewood/ideabook/internal/output"
)

// AppendChapter reads the file at filePath and pushes it as the newest
// top-level chapter. The chapter's relative path is the file's base name;
// parents may be nil.
func (b *Book) AppendChapter(filePath, name string, parents []string) (*Chapter, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, output.NewIOError("failed to read "+filePath, err)
	}

	if parents == nil {
		parents = []string{}
	}
	ch := &Chapter{
		Name:        name,
		Content:     string(data),
		Number:      SectionNumber{b.nextNumber()},
		Path:        filepath.Base(filePath),
		ParentNames: parents,
	}
	b.PushChapter(ch)
	return ch, nil
}

// AppendSummaryLine appends "- [name](./fileName)" to SUMMARY.md.
// The name is written as given, without Markdown escaping. If the file does
// not end in a newline one is added first so the entry starts its own line.
func (b *Book) AppendSummaryLine(fileName, name string) error {
	path := b.SummaryPath()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		return output.NewIOError("failed to open "+path, err)
	}
	defer f.Close() //nolint:errcheck // close error is superseded by the write/sync result

	prefix := ""
	if needsNewline(path) {
		prefix = "\n"
	}
	if _, err := fmt.Fprintf(f, "%s- [%s](./%s)\n", prefix, name, fileName); err != nil {
		return output.NewIOError("failed to append to "+path, err)
	}
	if err := f.Sync(); err != nil {
		return output.NewIOError("failed to flush "+path, err)
	}
	return nil
}

// needsNewline reports whether the non-empty file at path lacks a trailing newline.
func needsNewline(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close() //nolint:errcheck // read-only

	info, err := f.Stat()
	if err != nil || info.Size() == 0 {
		return false
	}
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil {
		return false
	}
	return last[0] != '\n'
}

// ValidateName reports whether name can be used as a chapter file stem in
// the source directory.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return output.NewUserError("a chapter name cannot be empty")
	case strings.ContainsAny(name, `/\`):
		return output.NewUserError("a chapter name cannot contain path separators")
	case name == "." || name == "..":
		return output.NewUserError("a chapter name cannot be " + name)
	}
	for _, reserved := range reservedNames {
		if strings.EqualFold(name, reserved) {
			return output.NewUserError("a chapter name cannot be " + name + ": " + reserved + " is used by the book itself")
		}
	}
	return nil
}

// reservedNames are file stems the book writes itself: the table of
// contents source and the built index page.
var reservedNames = []string{"SUMMARY", "index"}
