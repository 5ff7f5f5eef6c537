package mcp

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/gorewood/ideabook/internal/book"
	"github.com/gorewood/ideabook/internal/git"
)

// --- Test helpers ---

// makeTestBook creates a book with the given SUMMARY.md body and chapter
// files. It does not create a git repository.
func makeTestBook(t *testing.T, summary string, chapters map[string]string) *books {
	t.Helper()
	root := t.TempDir()
	cfg := book.DefaultConfig()
	cfg.Title = "Test ideas"
	if err := book.SaveConfig(root, cfg); err != nil {
		t.Fatal(err)
	}
	src := filepath.Join(root, cfg.Src)
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, book.SummaryFile), []byte(summary), 0o644); err != nil {
		t.Fatal(err)
	}
	for name, content := range chapters {
		if err := os.WriteFile(filepath.Join(src, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return &books{root: root, log: zap.NewNop()}
}

// makeTestRepo turns the book into a git repository with one commit.
func makeTestRepo(t *testing.T, b *books) *git.Repo {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	ctx := context.Background()
	repo := git.Open(b.root)
	if err := repo.Init(ctx); err != nil {
		t.Fatal(err)
	}
	for _, args := range [][]string{
		{"config", "user.email", "test@test.com"},
		{"config", "user.name", "Test User"},
		{"config", "commit.gpgsign", "false"},
		{"add", "."},
		{"commit", "-m", "initial"},
	} {
		if _, err := repo.Run(ctx, args...); err != nil {
			t.Fatalf("git %v: %v", args, err)
		}
	}
	return repo
}

const twoChapters = "# Summary\n\n- [First](./first.md)\n- [Second](./second.md)\n"

// --- List handler tests ---

func TestHandleListChapters(t *testing.T) {
	b := makeTestBook(t, twoChapters, map[string]string{
		"first.md":  "# First\n",
		"second.md": "# Second\n",
	})

	_, out, err := handleListChapters(b)(context.Background(), &mcp.CallToolRequest{}, ListInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := ListOutput{
		Title: "Test ideas",
		Count: 2,
		Chapters: []ChapterRef{
			{Number: 1, Name: "First", Path: "first.md"},
			{Number: 2, Name: "Second", Path: "second.md"},
		},
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("list_chapters mismatch (-want +got):\n%s", diff)
	}
}

func TestHandleListChapters_UnnumberedChapter(t *testing.T) {
	b := makeTestBook(t, "# Summary\n\n[Intro](./intro.md)\n\n- [First](./first.md)\n", map[string]string{
		"intro.md": "# Intro\n",
		"first.md": "# First\n",
	})

	_, _, err := handleListChapters(b)(context.Background(), &mcp.CallToolRequest{}, ListInput{})
	if err == nil {
		t.Fatal("expected error for a chapter without a number")
	}
}

func TestHandleListChapters_NoBook(t *testing.T) {
	b := &books{root: t.TempDir(), log: zap.NewNop()}

	_, _, err := handleListChapters(b)(context.Background(), &mcp.CallToolRequest{}, ListInput{})
	if err == nil {
		t.Fatal("expected error without SUMMARY.md")
	}
}

// --- Show handler tests ---

func TestHandleShowChapter(t *testing.T) {
	b := makeTestBook(t, twoChapters, map[string]string{
		"first.md":  "# First\n",
		"second.md": "# Second\n\nbody\n",
	})

	_, out, err := handleShowChapter(b)(context.Background(), &mcp.CallToolRequest{}, ShowInput{Number: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Chapter.Name != "Second" || out.Content != "# Second\n\nbody\n" {
		t.Errorf("show_chapter = %+v", out)
	}
}

func TestHandleShowChapter_Errors(t *testing.T) {
	b := makeTestBook(t, twoChapters, map[string]string{
		"first.md":  "# First\n",
		"second.md": "# Second\n",
	})

	tests := []struct {
		name   string
		number uint32
	}{
		{name: "missing number", number: 0},
		{name: "out of range", number: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := handleShowChapter(b)(context.Background(), &mcp.CallToolRequest{}, ShowInput{Number: tt.number})
			if err == nil {
				t.Errorf("show_chapter(%d) expected error", tt.number)
			}
		})
	}
}

func TestReadTools_LeaveMissingChaptersAlone(t *testing.T) {
	b := makeTestBook(t, twoChapters, map[string]string{"first.md": "# First\n"})
	missing := filepath.Join(b.root, "src", "second.md")

	if _, _, err := handleListChapters(b)(context.Background(), &mcp.CallToolRequest{}, ListInput{}); err != nil {
		t.Fatalf("list_chapters: %v", err)
	}
	_, out, err := handleShowChapter(b)(context.Background(), &mcp.CallToolRequest{}, ShowInput{Number: 2})
	if err != nil {
		t.Fatalf("show_chapter: %v", err)
	}
	if out.Content != "" {
		t.Errorf("show_chapter content = %q, want empty", out.Content)
	}
	if _, err := os.Stat(missing); !os.IsNotExist(err) {
		t.Errorf("read-only tools created %s", missing)
	}
}

// --- Add handler tests ---

func TestHandleAddIdea_Success(t *testing.T) {
	b := makeTestBook(t, twoChapters, map[string]string{
		"first.md":  "# First\n",
		"second.md": "# Second\n",
	})
	repo := makeTestRepo(t, b)
	ctx := context.Background()

	_, out, err := handleAddIdea(b)(ctx, &mcp.CallToolRequest{}, AddInput{
		Summary: "solar kettle",
		Content: "# Solar kettle\n\nBoil water with mirrors.",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(ChapterRef{Number: 3, Name: "solar kettle", Path: "solar kettle.md"}, out.Chapter); diff != "" {
		t.Errorf("chapter mismatch (-want +got):\n%s", diff)
	}

	head, err := repo.HEAD(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if out.Commit != head {
		t.Errorf("Commit = %q, want HEAD %q", out.Commit, head)
	}
	commits, err := repo.Log(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(commits) != 1 || commits[0].Subject != "solar kettle" {
		t.Errorf("latest commit = %+v, want subject %q", commits, "solar kettle")
	}
	if repo.HasChanges(ctx) {
		t.Error("working tree has changes after add_idea")
	}

	summary, err := os.ReadFile(filepath.Join(b.root, "src", book.SummaryFile))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(string(summary), "- [solar kettle](./solar kettle.md)\n") {
		t.Errorf("SUMMARY.md = %q", summary)
	}
	content, err := os.ReadFile(filepath.Join(b.root, "src", "solar kettle.md"))
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "# Solar kettle\n\nBoil water with mirrors.\n" {
		t.Errorf("idea content = %q", content)
	}
}

func TestHandleAddIdea_DefaultContent(t *testing.T) {
	b := makeTestBook(t, twoChapters, map[string]string{
		"first.md":  "# First\n",
		"second.md": "# Second\n",
	})
	makeTestRepo(t, b)

	_, _, err := handleAddIdea(b)(context.Background(), &mcp.CallToolRequest{}, AddInput{Summary: "tidal clock"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	content, err := os.ReadFile(filepath.Join(b.root, "src", "tidal clock.md"))
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "# tidal clock\n" {
		t.Errorf("idea content = %q, want heading only", content)
	}
}

func TestHandleAddIdea_InvalidInput(t *testing.T) {
	b := makeTestBook(t, twoChapters, map[string]string{
		"first.md":  "# First\n",
		"second.md": "# Second\n",
	})

	tests := []struct {
		name    string
		summary string
	}{
		{name: "empty", summary: "   "},
		{name: "separator", summary: "a/b"},
		{name: "dot dot", summary: ".."},
		{name: "existing file", summary: "first"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := handleAddIdea(b)(context.Background(), &mcp.CallToolRequest{}, AddInput{Summary: tt.summary})
			if err == nil {
				t.Errorf("add_idea(%q) expected error", tt.summary)
			}
		})
	}

	summary, err := os.ReadFile(filepath.Join(b.root, "src", book.SummaryFile))
	if err != nil {
		t.Fatal(err)
	}
	if string(summary) != twoChapters {
		t.Errorf("SUMMARY.md changed after rejected input: %q", summary)
	}
}

// --- Server registration test ---

func TestNewServer_RegistersTools(t *testing.T) {
	// Should not panic
	server := NewServer("test-version", t.TempDir(), nil)
	if server == nil {
		t.Fatal("NewServer returned nil")
	}
}
