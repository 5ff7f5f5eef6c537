// Package library keeps a registry of idea books in the config directory,
// so several books can be listed and kept up to date together.
package library

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/gorewood/ideabook/internal/book"
	"github.com/gorewood/ideabook/internal/output"
)

// FileName is the registry file inside the config directory.
const FileName = "library.yaml"

// DefaultName is used for a registry that has never been saved.
const DefaultName = "ideabook"

// refreshLimit bounds the number of books loaded at once by Refresh.
const refreshLimit = 4

// Member is one registered book.
type Member struct {
	Name  string `yaml:"name" json:"name"`
	Path  string `yaml:"path" json:"path"`
	Count int    `yaml:"count" json:"count"`
}

// Library is the set of registered books, stored as YAML.
type Library struct {
	Name  string   `yaml:"name" json:"name"`
	Books []Member `yaml:"books" json:"books"`

	path string
	mu   sync.Mutex
}

// RefreshResult reports the outcome of reloading one member.
type RefreshResult struct {
	Member Member
	Err    error
}

// Path returns the registry file location for a config directory.
func Path(configDir string) string {
	return filepath.Join(configDir, FileName)
}

// Load reads the registry at path. A missing file yields an empty library
// that will be written to path on Save.
func Load(path string) (*Library, error) {
	lib := &Library{Name: DefaultName, path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return lib, nil
		}
		return nil, output.NewIOError("failed to read "+path, err)
	}
	if err := yaml.Unmarshal(data, lib); err != nil {
		return nil, output.NewUserError("invalid " + path + ": " + err.Error())
	}
	if lib.Name == "" {
		lib.Name = DefaultName
	}
	return lib, nil
}

// Save writes the registry back to the file it was loaded from.
func (l *Library) Save() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o700); err != nil {
		return output.NewIOError("failed to create "+filepath.Dir(l.path), err)
	}
	data, err := yaml.Marshal(l)
	if err != nil {
		return output.NewSystemErrorWithCause("failed to encode library", err)
	}
	if err := os.WriteFile(l.path, data, 0o600); err != nil {
		return output.NewIOError("failed to write "+l.path, err)
	}
	return nil
}

// Add loads the book at root and registers it. A book already registered
// under the same path is replaced.
func (l *Library) Add(root string) (Member, error) {
	member, err := inspect(root)
	if err != nil {
		return Member{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.Books {
		if l.Books[i].Path == member.Path {
			l.Books[i] = member
			return member, nil
		}
	}
	l.Books = append(l.Books, member)
	return member, nil
}

// Remove unregisters the book at root, reporting whether it was present.
func (l *Library) Remove(root string) bool {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.Books {
		if l.Books[i].Path == abs {
			l.Books = append(l.Books[:i], l.Books[i+1:]...)
			return true
		}
	}
	return false
}

// Members returns a copy of the registered books sorted by name.
func (l *Library) Members() []Member {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Member, len(l.Books))
	copy(out, l.Books)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Refresh reloads every registered book concurrently and updates names and
// chapter counts. Books that fail to load keep their previous entry and are
// reported in the results. Loads only read their own book; the merge into
// the registry happens afterwards on the calling goroutine.
func (l *Library) Refresh(ctx context.Context) ([]RefreshResult, error) {
	l.mu.Lock()
	members := make([]Member, len(l.Books))
	copy(members, l.Books)
	l.mu.Unlock()

	results := make([]RefreshResult, len(members))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(refreshLimit)
	for i, m := range members {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fresh, err := inspect(m.Path)
			if err != nil {
				results[i] = RefreshResult{Member: m, Err: err}
				return nil
			}
			results[i] = RefreshResult{Member: fresh}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		for i := range l.Books {
			if l.Books[i].Path == r.Member.Path {
				l.Books[i] = r.Member
			}
		}
	}
	return results, nil
}

// inspect loads the book at root without modifying it and describes it
// as a Member. The name is the configured title, then the SUMMARY.md
// title, then the directory name.
func inspect(root string) (Member, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return Member{}, output.NewIOError("failed to resolve "+root, err)
	}
	b, err := book.Load(abs, book.ReadOnly())
	if err != nil {
		return Member{}, err
	}

	name := b.Config.Title
	if name == "" {
		name = b.Title
	}
	if name == "" {
		name = filepath.Base(abs)
	}
	return Member{Name: name, Path: abs, Count: b.ChapterCount()}, nil
}
