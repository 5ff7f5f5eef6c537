package preview

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/gorewood/ideabook/internal/book"
)

func newTestBook(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "ideas")
	cfg := book.DefaultConfig()
	cfg.Title = "Preview ideas"
	if _, err := book.Init(root, cfg); err != nil {
		t.Fatalf("book.Init() error = %v", err)
	}
	return root
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url) //nolint:noctx // test helper
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, string(body)
}

func TestServer_ServesBuiltPages(t *testing.T) {
	root := newTestBook(t)
	srv, err := NewServer(root, zap.NewNop())
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	if _, err := srv.Rebuild(); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}

	ts := httptest.NewServer(srv)
	defer ts.Close()

	status, body := get(t, ts.URL+"/")
	if status != http.StatusOK || !strings.Contains(body, "Preview ideas") {
		t.Errorf("GET / = %d %q", status, body)
	}
	status, body = get(t, ts.URL+"/chapter_1.html")
	if status != http.StatusOK || !strings.Contains(body, `<h1 id="chapter-1">Chapter 1</h1>`) {
		t.Errorf("GET /chapter_1.html = %d %q", status, body)
	}
	status, _ = get(t, ts.URL+"/missing.html")
	if status != http.StatusNotFound {
		t.Errorf("GET /missing.html = %d, want 404", status)
	}
}

func TestServer_Healthz(t *testing.T) {
	root := newTestBook(t)
	srv, err := NewServer(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := srv.Rebuild(); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "ok" || resp.Pages != 2 {
		t.Errorf("health = %+v, want ok with 2 pages", resp)
	}
}

func TestServer_HealthzReportsFailedBuild(t *testing.T) {
	root := newTestBook(t)
	srv, err := NewServer(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(root, "src", book.SummaryFile)); err != nil {
		t.Fatal(err)
	}
	if _, err := srv.Rebuild(); err == nil {
		t.Fatal("Rebuild() expected error without SUMMARY.md")
	}

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestNewServer_NotABook(t *testing.T) {
	if _, err := NewServer(t.TempDir(), nil); err == nil {
		t.Error("NewServer() expected error for a directory without a book")
	}
}

func TestWatcher_RebuildsOnceForBurst(t *testing.T) {
	dir := t.TempDir()
	rebuilt := make(chan struct{}, 10)
	w, err := NewWatcher(dir, func() error {
		rebuilt <- struct{}{}
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	w.SetDebounce(100 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	for i := 0; i < 3; i++ {
		if err := os.WriteFile(filepath.Join(dir, "idea.md"), []byte(strings.Repeat("x", i+1)), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	// Non-Markdown files do not count.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-rebuilt:
	case <-time.After(3 * time.Second):
		t.Fatal("no rebuild after writing a Markdown file")
	}
	time.Sleep(300 * time.Millisecond)
	if got := w.Rebuilds(); got != 1 {
		t.Errorf("Rebuilds() = %d, want 1 for one burst of writes", got)
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	w, err := NewWatcher(t.TempDir(), func() error { return nil }, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	w.Stop()
	w.Stop()
}

func TestWatcher_StartFailureReleasesWatcher(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	missing := filepath.Join(t.TempDir(), "gone")
	w, err := NewWatcher(missing, func() error { return nil }, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(context.Background()); err == nil {
		t.Fatal("Start() expected error for a missing directory")
	}

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() blocked after a failed Start")
	}
}
