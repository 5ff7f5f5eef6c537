package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/gorewood/ideabook/internal/book"
	"github.com/gorewood/ideabook/internal/config"
	"github.com/gorewood/ideabook/internal/ideabook"
	"github.com/gorewood/ideabook/internal/library"
)

// execute runs the root command with args and stdin, returning everything
// written to stdout and stderr.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// isolate points the config directory at a fresh temp dir and clears the
// pager override. It returns the config directory.
func isolate(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "config")
	t.Setenv("IDEABOOK_CONFIG_HOME", dir)
	t.Setenv("IDEABOOK_PAGER", "")
	return dir
}

// configured creates a book and stores a complete configuration for it.
func configured(t *testing.T) (configDir, root string) {
	t.Helper()
	configDir = isolate(t)
	root = filepath.Join(t.TempDir(), "ideas")
	cfg := book.DefaultConfig()
	cfg.Title = "CLI ideas"
	if _, err := book.Init(root, cfg); err != nil {
		t.Fatalf("book.Init() error = %v", err)
	}
	store := config.NewStore(configDir)
	if err := store.CreateDir(); err != nil {
		t.Fatal(err)
	}
	for key, value := range map[config.Key]string{
		config.Repo:   root,
		config.Editor: "/bin/true",
		config.Author: "Ada",
		config.Title:  "CLI ideas",
	} {
		if err := store.Write(key, value); err != nil {
			t.Fatal(err)
		}
	}
	return configDir, root
}

func TestRootCommand_Version(t *testing.T) {
	// Set version for testing
	version = "1.2.3"

	out, err := execute(t, "", "--version")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, "1.2.3") {
		t.Errorf("--version output should contain version: %q", out)
	}
	if !strings.Contains(out, "ideabook") {
		t.Errorf("--version output should contain 'ideabook': %q", out)
	}
}

func TestRootCommand_Help(t *testing.T) {
	out, err := execute(t, "", "--help")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	expectations := []string{
		"ideabook",
		"Usage:",
		"--json",
		"--verbose",
		"clear-repo",
		"build-book",
		"library",
	}
	for _, expected := range expectations {
		if !strings.Contains(out, expected) {
			t.Errorf("--help output should contain %q: %q", expected, out)
		}
	}
}

func TestRootCommand_RejectsArguments(t *testing.T) {
	isolate(t)
	if _, err := execute(t, "", "unexpected"); err == nil {
		t.Error("expected error for a positional argument")
	}
}

func TestRootCommand_FirstRunSetup(t *testing.T) {
	configDir := isolate(t)
	root := filepath.Join(t.TempDir(), "ideas")

	// repo path, editor "Other", editor name, author, title
	stdin := strings.Join([]string{root, "3", "/bin/sh", "Ada", "My ideas"}, "\n") + "\n"
	out, err := execute(t, stdin)
	if err != nil {
		t.Fatalf("Execute() error = %v\n%s", err, out)
	}
	if !strings.Contains(out, ideabook.SetupComplete) {
		t.Errorf("output should contain %q: %q", ideabook.SetupComplete, out)
	}

	vals, err := config.NewStore(configDir).Load()
	if err != nil {
		t.Fatalf("config not stored: %v", err)
	}
	want := config.Values{Repo: root, Editor: "/bin/sh", Author: "Ada", Title: "My ideas"}
	if diff := cmp.Diff(want, vals); diff != "" {
		t.Errorf("stored config mismatch (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(filepath.Join(root, "src", book.SummaryFile)); err != nil {
		t.Errorf("book not initialized: %v", err)
	}

	lib, err := library.Load(library.Path(configDir))
	if err != nil {
		t.Fatal(err)
	}
	if len(lib.Books) != 1 || lib.Books[0].Path != root {
		t.Errorf("library = %+v, want the new book registered", lib.Books)
	}
}

func TestListCommand_JSON(t *testing.T) {
	configured(t)

	out, err := execute(t, "", "list", "--json")
	if err != nil {
		t.Fatalf("Execute() error = %v\n%s", err, out)
	}
	var result struct {
		Title    string `json:"title"`
		Chapters []struct {
			Number int    `json:"number"`
			Name   string `json:"name"`
		} `json:"chapters"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if result.Title != "CLI ideas" || len(result.Chapters) != 1 || result.Chapters[0].Name != "Chapter 1" {
		t.Errorf("list = %+v", result)
	}
}

func TestListCommand_NotConfigured(t *testing.T) {
	isolate(t)

	out, err := execute(t, "", "list", "--json")
	if err == nil {
		t.Fatal("expected error without configuration")
	}
	var result map[string]any
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("error output is not JSON: %v\n%s", err, out)
	}
	if _, ok := result["error"]; !ok {
		t.Errorf("JSON output should have 'error' field: %v", result)
	}
}

func TestClearCommands(t *testing.T) {
	tests := []struct {
		cmd string
		key config.Key
	}{
		{cmd: "clear-repo", key: config.Repo},
		{cmd: "clear-editor", key: config.Editor},
	}
	for _, tt := range tests {
		t.Run(tt.cmd, func(t *testing.T) {
			configDir, _ := configured(t)

			out, err := execute(t, "", tt.cmd, "--json")
			if err != nil {
				t.Fatalf("Execute() error = %v\n%s", err, out)
			}
			if config.NewStore(configDir).Has(tt.key) {
				t.Errorf("%s still set after %s", tt.key, tt.cmd)
			}
			if !strings.Contains(out, `"cleared": true`) {
				t.Errorf("output should report cleared: %q", out)
			}
		})
	}
}

func TestBuildBookCommand(t *testing.T) {
	_, root := configured(t)

	out, err := execute(t, "", "build-book")
	if err != nil {
		t.Fatalf("Execute() error = %v\n%s", err, out)
	}
	if _, err := os.Stat(filepath.Join(root, "book", "chapter_1.html")); err != nil {
		t.Errorf("chapter page not built: %v", err)
	}
	if !strings.Contains(out, "Built 2 pages") {
		t.Errorf("output = %q", out)
	}
}

func TestLibraryCommands(t *testing.T) {
	configDir, root := configured(t)

	other := filepath.Join(t.TempDir(), "other")
	cfg := book.DefaultConfig()
	cfg.Title = "Other book"
	if _, err := book.Init(other, cfg); err != nil {
		t.Fatal(err)
	}

	if out, err := execute(t, "", "library", "add"); err != nil {
		t.Fatalf("library add error = %v\n%s", err, out)
	}
	if out, err := execute(t, "", "library", "add", other); err != nil {
		t.Fatalf("library add %s error = %v\n%s", other, err, out)
	}

	out, err := execute(t, "", "library", "list", "--json")
	if err != nil {
		t.Fatalf("library list error = %v\n%s", err, out)
	}
	var result struct {
		Books []library.Member `json:"books"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	want := []library.Member{
		{Name: "CLI ideas", Path: root, Count: 1},
		{Name: "Other book", Path: other, Count: 1},
	}
	if diff := cmp.Diff(want, result.Books); diff != "" {
		t.Errorf("library mismatch (-want +got):\n%s", diff)
	}

	if out, err := execute(t, "", "library", "remove", other); err != nil {
		t.Fatalf("library remove error = %v\n%s", err, out)
	}
	lib, err := library.Load(library.Path(configDir))
	if err != nil {
		t.Fatal(err)
	}
	if len(lib.Books) != 1 {
		t.Errorf("library has %d books after remove, want 1", len(lib.Books))
	}

	if _, err := execute(t, "", "library", "remove", other); err == nil {
		t.Error("expected error removing a book that is not registered")
	}
}

func TestLoadEnvFiles_ConfigDirEnv(t *testing.T) {
	configDir := isolate(t)
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "env"), []byte("IDEABOOK_PAGER=most\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	_ = os.Unsetenv("IDEABOOK_PAGER") //nolint:errcheck
	t.Chdir(t.TempDir())

	loadEnvFiles(zap.NewNop())

	if got := os.Getenv("IDEABOOK_PAGER"); got != "most" {
		t.Errorf("IDEABOOK_PAGER = %q, want %q", got, "most")
	}
}
