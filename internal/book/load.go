package book

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gorewood/ideabook/internal/output"
)

// defaultSummary is written by Init when the source directory has no SUMMARY.md.
const defaultSummary = `# Summary

- [Chapter 1](./chapter_1.md)
`

// Init creates a new book at root with the given title and author, then
// loads it. Existing files (book.yaml, SUMMARY.md, .gitignore) are kept,
// so running Init on an existing book only fills in what is missing.
// Zero fields of cfg take their DefaultConfig values; a book that should
// not create missing chapters needs its book.yaml saved before Init.
func Init(root string, cfg Config) (*Book, error) {
	cfg = withDefaults(cfg)

	srcDir := filepath.Join(root, cfg.Src)
	if err := os.MkdirAll(srcDir, 0o755); err != nil {
		return nil, output.NewIOError("failed to create "+srcDir, err)
	}

	if !exists(filepath.Join(root, ConfigFile)) {
		if err := SaveConfig(root, cfg); err != nil {
			return nil, err
		}
	}

	summaryPath := filepath.Join(srcDir, SummaryFile)
	if !exists(summaryPath) {
		if err := writeNew(summaryPath, defaultSummary); err != nil {
			return nil, err
		}
		if err := writeNew(filepath.Join(srcDir, "chapter_1.md"), "# Chapter 1\n"); err != nil {
			return nil, err
		}
	}

	gitignore := filepath.Join(root, ".gitignore")
	if !exists(gitignore) {
		if err := writeNew(gitignore, cfg.BuildDir+"\n"); err != nil {
			return nil, err
		}
	}

	return Load(root)
}

// withDefaults overlays the non-zero fields of cfg on DefaultConfig.
func withDefaults(cfg Config) Config {
	out := DefaultConfig()
	out.Title = cfg.Title
	out.Authors = cfg.Authors
	if cfg.Language != "" {
		out.Language = cfg.Language
	}
	if cfg.Src != "" {
		out.Src = cfg.Src
	}
	if cfg.BuildDir != "" {
		out.BuildDir = cfg.BuildDir
	}
	return out
}

// LoadOption changes how Load treats the files it reads.
type LoadOption func(*loadOptions)

type loadOptions struct {
	readOnly bool
}

// ReadOnly makes Load leave the book untouched: chapter files that are
// missing load with empty content instead of being created, even with
// create_missing enabled.
func ReadOnly() LoadOption {
	return func(o *loadOptions) { o.readOnly = true }
}

// Load reads book.yaml and SUMMARY.md under root and the content of every
// chapter. With create_missing enabled, absent chapter files are created
// containing a heading with the chapter name.
func Load(root string, opts ...LoadOption) (*Book, error) {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}

	cfg, err := LoadConfig(root)
	if err != nil {
		return nil, err
	}

	b := &Book{Root: root, Config: cfg}

	data, err := os.ReadFile(b.SummaryPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, output.NewNotFoundError("no " + SummaryFile + " found in " + b.SourceDir())
		}
		return nil, output.NewIOError("failed to read "+b.SummaryPath(), err)
	}

	summary, err := ParseSummary(data)
	if err != nil {
		return nil, err
	}
	b.Title = summary.Title
	b.Items = summary.Items

	var loadErr error
	b.Walk(func(ch *Chapter) {
		if loadErr != nil || ch.IsDraft() {
			return
		}
		loadErr = b.loadContent(ch, o.readOnly)
	})
	if loadErr != nil {
		return nil, loadErr
	}
	return b, nil
}

// loadContent reads a chapter's file into ch.Content. A link target that
// names an existing file literally wins over its percent-decoded form.
func (b *Book) loadContent(ch *Chapter, readOnly bool) error {
	if ch.literalPath != "" && ch.literalPath != ch.Path && exists(filepath.Join(b.SourceDir(), ch.literalPath)) {
		ch.Path = ch.literalPath
	}
	path := filepath.Join(b.SourceDir(), ch.Path)
	data, err := os.ReadFile(path)
	if err == nil {
		ch.Content = string(data)
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return output.NewIOError("failed to read chapter "+path, err)
	}
	if !b.Config.CreateMissing {
		return output.NewNotFoundError(fmt.Sprintf("chapter file %s for %q does not exist", path, ch.Name))
	}
	if readOnly {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return output.NewIOError("failed to create "+filepath.Dir(path), err)
	}
	ch.Content = "# " + ch.Name + "\n"
	if err := os.WriteFile(path, []byte(ch.Content), 0o644); err != nil {
		return output.NewIOError("failed to create chapter "+path, err)
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func writeNew(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return output.NewIOError("failed to write "+path, err)
	}
	return nil
}
