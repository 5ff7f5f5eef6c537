package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gorewood/ideabook/internal/output"
)

// Key names one of the four values required before normal operation.
type Key int

// Config keys, in the order first-run setup prompts for them.
const (
	Repo Key = iota
	Editor
	Author
	Title
)

// Keys lists every config key in prompt order.
var Keys = []Key{Repo, Editor, Author, Title}

// FileName returns the file that stores the key inside the config directory.
func (k Key) FileName() string {
	switch k {
	case Repo:
		return "repo_path"
	case Editor:
		return "editor_path"
	case Author:
		return "author_name"
	case Title:
		return "book_title"
	default:
		return ""
	}
}

// String returns a human-readable name for the key.
func (k Key) String() string {
	switch k {
	case Repo:
		return "repository path"
	case Editor:
		return "editor path"
	case Author:
		return "author"
	case Title:
		return "title"
	default:
		return "unknown"
	}
}

// Store keeps one plain-text file per key under a directory.
// Values read from disk are cached until the key is written or removed.
type Store struct {
	dir string

	mu    sync.Mutex
	cache map[Key]string
}

// NewStore creates a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir, cache: make(map[Key]string)}
}

// NewDefaultStore creates a Store rooted at Dir().
func NewDefaultStore() *Store {
	return NewStore(Dir())
}

// Dir returns the directory holding the key files.
func (s *Store) Dir() string {
	return s.dir
}

// path returns the file path for a key.
func (s *Store) path(key Key) string {
	return filepath.Join(s.dir, key.FileName())
}

// DirExists returns true if the config directory exists.
func (s *Store) DirExists() bool {
	info, err := os.Stat(s.dir)
	return err == nil && info.IsDir()
}

// CreateDir creates the config directory and any missing parents.
func (s *Store) CreateDir() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return output.NewIOError("failed to create config directory "+s.dir, err)
	}
	return nil
}

// Read returns the value stored for key.
// A missing file is reported as a not-found error; a single trailing
// newline is stripped since editors tend to add one.
func (s *Store) Read(key Key) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if value, ok := s.cache[key]; ok {
		return value, nil
	}

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", output.NewNotFoundError(key.FileName() + " is not set")
		}
		return "", output.NewIOError("failed to read "+key.FileName(), err)
	}

	value := normalize(string(data))
	s.cache[key] = value
	return value, nil
}

// Write stores value for key, replacing any previous value. The value is
// normalized the way Read normalizes file contents, so a cached read and a
// read from disk agree.
func (s *Store) Write(key Key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	value = normalize(value)
	delete(s.cache, key)
	if err := os.WriteFile(s.path(key), []byte(value), 0o600); err != nil {
		return output.NewIOError("failed to write "+key.FileName(), err)
	}
	s.cache[key] = value
	return nil
}

// normalize strips a single trailing newline, with its carriage return.
func normalize(value string) string {
	return strings.TrimSuffix(strings.TrimSuffix(value, "\n"), "\r")
}

// Remove deletes the value for key. Removing an absent key is not an error.
func (s *Store) Remove(key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.cache, key)
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return output.NewIOError("failed to remove "+key.FileName(), err)
	}
	return nil
}

// Has reports whether a value is stored for key.
func (s *Store) Has(key Key) bool {
	_, err := s.Read(key)
	return err == nil
}

// Missing returns the keys without a stored value, in prompt order.
func (s *Store) Missing() []Key {
	var missing []Key
	for _, key := range Keys {
		if !s.Has(key) {
			missing = append(missing, key)
		}
	}
	return missing
}

// IsFirstRun reports whether no key has a stored value.
func (s *Store) IsFirstRun() bool {
	return len(s.Missing()) == len(Keys)
}

// Values is a snapshot of all four config values.
type Values struct {
	Repo   string `json:"repo_path"`
	Editor string `json:"editor_path"`
	Author string `json:"author_name"`
	Title  string `json:"book_title"`
}

// Load reads all four values, failing on the first missing one.
func (s *Store) Load() (Values, error) {
	var vals Values
	targets := map[Key]*string{
		Repo:   &vals.Repo,
		Editor: &vals.Editor,
		Author: &vals.Author,
		Title:  &vals.Title,
	}
	for _, key := range Keys {
		value, err := s.Read(key)
		if err != nil {
			return Values{}, err
		}
		*targets[key] = value
	}
	return vals, nil
}
