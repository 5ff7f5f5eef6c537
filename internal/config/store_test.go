package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gorewood/ideabook/internal/output"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "ideabook"))
	if err := store.CreateDir(); err != nil {
		t.Fatalf("CreateDir() error = %v", err)
	}
	return store
}

func TestKey_FileName(t *testing.T) {
	tests := []struct {
		key  Key
		want string
	}{
		{Repo, "repo_path"},
		{Editor, "editor_path"},
		{Author, "author_name"},
		{Title, "book_title"},
		{Key(42), ""},
	}
	for _, tt := range tests {
		if got := tt.key.FileName(); got != tt.want {
			t.Errorf("Key(%d).FileName() = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestStore_ReadAfterWrite(t *testing.T) {
	store := newTestStore(t)

	values := map[Key]string{
		Repo:   "/home/me/ideas",
		Editor: "/usr/bin/vim",
		Author: "Ada",
		Title:  "Ideas, with a comma and spaces ",
	}
	for key, value := range values {
		if err := store.Write(key, value); err != nil {
			t.Fatalf("Write(%v) error = %v", key, err)
		}
	}

	// A fresh store has an empty cache and must read from disk.
	fresh := NewStore(store.Dir())
	for key, want := range values {
		got, err := fresh.Read(key)
		if err != nil {
			t.Fatalf("Read(%v) error = %v", key, err)
		}
		if got != want {
			t.Errorf("Read(%v) = %q, want %q", key, got, want)
		}
	}
}

func TestStore_ReadMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Read(Author)
	if err == nil {
		t.Fatal("Read() expected error for missing key")
	}
	if !errors.Is(err, output.ErrNotFound) {
		t.Errorf("Read() error = %v, want not-found kind", err)
	}
}

func TestStore_ReadStripsTrailingNewline(t *testing.T) {
	store := newTestStore(t)
	if err := os.WriteFile(filepath.Join(store.Dir(), "book_title"), []byte("My Book\r\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := store.Read(Title)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got != "My Book" {
		t.Errorf("Read() = %q, want %q", got, "My Book")
	}
}

func TestStore_WriteNewlineTerminated(t *testing.T) {
	store := newTestStore(t)
	if err := store.Write(Editor, "/usr/bin/vim\r\n"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	for name, s := range map[string]*Store{"cached": store, "fresh": NewStore(store.Dir())} {
		got, err := s.Read(Editor)
		if err != nil {
			t.Fatalf("%s Read() error = %v", name, err)
		}
		if got != "/usr/bin/vim" {
			t.Errorf("%s Read() = %q, want %q", name, got, "/usr/bin/vim")
		}
	}
}

func TestStore_Remove(t *testing.T) {
	store := newTestStore(t)
	if err := store.Write(Repo, "/tmp/ideas"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if err := store.Remove(Repo); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := store.Read(Repo); !errors.Is(err, output.ErrNotFound) {
		t.Errorf("Read() after Remove() error = %v, want not-found", err)
	}

	// Removing again is a no-op.
	if err := store.Remove(Repo); err != nil {
		t.Errorf("second Remove() error = %v", err)
	}
}

func TestStore_MissingAndFirstRun(t *testing.T) {
	store := newTestStore(t)

	if !store.IsFirstRun() {
		t.Error("IsFirstRun() = false on empty store")
	}
	if got := store.Missing(); len(got) != 4 {
		t.Errorf("Missing() = %v, want all four keys", got)
	}

	if err := store.Write(Editor, "/usr/bin/nano"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if store.IsFirstRun() {
		t.Error("IsFirstRun() = true after writing a key")
	}

	missing := store.Missing()
	want := []Key{Repo, Author, Title}
	if len(missing) != len(want) {
		t.Fatalf("Missing() = %v, want %v", missing, want)
	}
	for i := range want {
		if missing[i] != want[i] {
			t.Errorf("Missing()[%d] = %v, want %v", i, missing[i], want[i])
		}
	}
}

func TestStore_DirExists(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nested", "ideabook"))
	if store.DirExists() {
		t.Fatal("DirExists() = true before CreateDir()")
	}
	if err := store.CreateDir(); err != nil {
		t.Fatalf("CreateDir() error = %v", err)
	}
	if !store.DirExists() {
		t.Error("DirExists() = false after CreateDir()")
	}
}

func TestStore_Load(t *testing.T) {
	store := newTestStore(t)
	for key, value := range map[Key]string{Repo: "/r", Editor: "/e", Author: "a"} {
		if err := store.Write(key, value); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}

	if _, err := store.Load(); !errors.Is(err, output.ErrNotFound) {
		t.Fatalf("Load() with missing title error = %v, want not-found", err)
	}

	if err := store.Write(Title, "t"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	vals, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if vals != (Values{Repo: "/r", Editor: "/e", Author: "a", Title: "t"}) {
		t.Errorf("Load() = %+v", vals)
	}
}
