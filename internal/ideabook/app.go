// Package ideabook ties the config store, the book, the editor and git
// together into the commands a user runs: first-time setup, recording a new
// idea, viewing and editing existing ideas, and building the book.
package ideabook

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/gorewood/ideabook/internal/book"
	"github.com/gorewood/ideabook/internal/config"
	"github.com/gorewood/ideabook/internal/git"
	"github.com/gorewood/ideabook/internal/library"
	"github.com/gorewood/ideabook/internal/output"
	"github.com/gorewood/ideabook/internal/proc"
	"github.com/gorewood/ideabook/internal/prompt"
)

// PagerEnv overrides the pager used by View.
const PagerEnv = "IDEABOOK_PAGER"

// defaultPagers are tried in order when PagerEnv is unset.
var defaultPagers = []string{"bat", "less"}

// Options configures an App. Store, Printer and Prompter are required.
type Options struct {
	Store    *config.Store
	Printer  *output.Printer
	Prompter prompt.Prompter
	Runner   proc.Runner
	LookPath proc.LookPathFunc
	Library  *library.Library
	Logger   *zap.Logger
	Pagers   []string
}

// App runs ideabook commands.
type App struct {
	store    *config.Store
	printer  *output.Printer
	prompter prompt.Prompter
	runner   proc.Runner
	lookPath proc.LookPathFunc
	library  *library.Library
	logger   *zap.Logger
	pagers   []string
}

// New creates an App, filling unset options with the process defaults.
func New(opts Options) *App {
	app := &App{
		store:    opts.Store,
		printer:  opts.Printer,
		prompter: opts.Prompter,
		runner:   opts.Runner,
		lookPath: opts.LookPath,
		library:  opts.Library,
		logger:   opts.Logger,
		pagers:   opts.Pagers,
	}
	if app.runner == nil {
		app.runner = proc.NewTerminalRunner()
	}
	if app.lookPath == nil {
		app.lookPath = exec.LookPath
	}
	if app.logger == nil {
		app.logger = zap.NewNop()
	}
	if len(app.pagers) == 0 {
		app.pagers = pagersFromEnv()
	}
	return app
}

func pagersFromEnv() []string {
	if pager := strings.TrimSpace(os.Getenv(PagerEnv)); pager != "" {
		return []string{pager}
	}
	return defaultPagers
}

// Run performs one invocation of the tool. While any config value is
// missing it runs setup and stops; otherwise it records a new idea.
func (a *App) Run(ctx context.Context) error {
	if missing := a.store.Missing(); len(missing) > 0 {
		a.logger.Debug("config incomplete, running setup", zap.Int("missing", len(missing)))
		return a.Setup(ctx)
	}
	return a.NewIdea(ctx)
}

// ClearRepo forgets the configured repository path.
func (a *App) ClearRepo() error {
	return a.clear(config.Repo, "Repository path cleared")
}

// ClearEditor forgets the configured editor.
func (a *App) ClearEditor() error {
	return a.clear(config.Editor, "Editor cleared")
}

func (a *App) clear(key config.Key, message string) error {
	if !a.store.Has(key) {
		return a.printer.Success(map[string]any{
			"message": key.String() + " was not set",
			"cleared": false,
		})
	}
	if err := a.store.Remove(key); err != nil {
		return err
	}
	return a.printer.Success(map[string]any{"message": message, "cleared": true})
}

// values returns the stored configuration, explaining how to fix a
// missing value.
func (a *App) values() (config.Values, error) {
	vals, err := a.store.Load()
	if err == nil {
		return vals, nil
	}
	if errors.Is(err, output.ErrNotFound) {
		return config.Values{}, output.NewNotFoundError("ideabook is not set up yet; run 'ideabook' to configure it")
	}
	return config.Values{}, err
}

// openBook loads the configured book.
func (a *App) openBook() (config.Values, *book.Book, error) {
	vals, err := a.values()
	if err != nil {
		return config.Values{}, nil, err
	}
	b, err := book.Load(vals.Repo)
	if err != nil {
		return config.Values{}, nil, err
	}
	a.logger.Debug("book loaded", zap.String("root", b.Root), zap.Int("chapters", b.ChapterCount()))
	return vals, b, nil
}

// selectChapter asks the user to pick a top-level chapter and returns its
// name and on-disk path. The menu position plus one is the chapter number.
func (a *App) selectChapter(b *book.Book, label string) (string, string, error) {
	idx, err := book.BuildIndex(b)
	if err != nil {
		return "", "", err
	}
	names := b.ChapterNames()
	if len(names) == 0 {
		return "", "", output.NewUserError("the book has no chapters yet")
	}
	choice, err := a.prompter.Select(label, names)
	if err != nil {
		return "", "", err
	}
	path, err := b.PathFor(uint32(choice+1), idx) //nolint:gosec // choice is bounded by len(names)
	if err != nil {
		return "", "", err
	}
	return names[choice], path, nil
}

// relToRepo makes path relative to the repository root for git.
func relToRepo(repo, path string) string {
	rel, err := filepath.Rel(repo, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

// repo returns the git repository at the configured book root.
func (a *App) repo(b *book.Book) *git.Repo {
	return git.Open(b.Root)
}
