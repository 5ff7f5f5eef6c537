package ideabook

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/gorewood/ideabook/internal/book"
	"github.com/gorewood/ideabook/internal/config"
	"github.com/gorewood/ideabook/internal/git"
	"github.com/gorewood/ideabook/internal/output"
	"github.com/gorewood/ideabook/internal/prompt"
)

// Prompt labels used during setup, in the order they are asked.
const (
	LabelRepo   = "Absolute path to your idea repo"
	LabelEditor = "Choose your editor"
	LabelAuthor = "Author name"
	LabelTitle  = "Book title"
)

// SetupComplete is printed when setup finishes.
const SetupComplete = "First time setup complete. Happy ideation!"

var editorChoices = []string{"vim", "nano", "Other (provide name, e.g. 'emacs')"}

// Setup asks for missing configuration. On a first run (nothing
// configured) it also creates the config directory and initializes the
// book at the chosen repository path. It never records an idea.
func (a *App) Setup(ctx context.Context) error {
	if a.store.IsFirstRun() {
		if !a.store.DirExists() {
			if err := a.store.CreateDir(); err != nil {
				return err
			}
		}
		a.printer.Banner("Welcome to ideabook",
			"Ideas are kept as chapters of a book in a git repository.",
			"Answer a few questions to get started.",
		)
		for _, key := range config.Keys {
			if err := a.setupKey(key); err != nil {
				return err
			}
		}
		if err := a.setupBook(ctx); err != nil {
			return err
		}
	}

	for _, key := range a.store.Missing() {
		if err := a.setupKey(key); err != nil {
			return err
		}
	}

	return a.printer.Success(map[string]any{
		"message":    SetupComplete,
		"config_dir": a.store.Dir(),
	})
}

func (a *App) setupKey(key config.Key) error {
	var (
		value string
		err   error
	)
	switch key {
	case config.Repo:
		value, err = prompt.NonEmpty(a.prompter, LabelRepo)
		if err == nil {
			value, err = absPath(value)
		}
	case config.Editor:
		value, err = a.chooseEditor()
	case config.Author:
		value, err = prompt.NonEmpty(a.prompter, LabelAuthor)
	case config.Title:
		value, err = prompt.NonEmpty(a.prompter, LabelTitle)
	}
	if err != nil {
		return err
	}
	a.logger.Debug("config value set", zap.Stringer("key", key))
	return a.store.Write(key, value)
}

// chooseEditor offers vim, nano or a typed name and resolves the choice to
// an absolute path on PATH.
func (a *App) chooseEditor() (string, error) {
	choice, err := a.prompter.Select(LabelEditor, editorChoices)
	if err != nil {
		return "", err
	}
	name := editorChoices[choice]
	if choice == len(editorChoices)-1 {
		name, err = prompt.NonEmpty(a.prompter, "")
		if err != nil {
			return "", err
		}
	}
	path, err := a.lookPath(name)
	if err != nil {
		return "", output.NewProcessLaunchError("could not find executable for "+name, err)
	}
	return path, nil
}

// setupBook creates the book from the stored values, makes the repository
// a git repository and registers it in the library.
func (a *App) setupBook(ctx context.Context) error {
	vals, err := a.store.Load()
	if err != nil {
		return err
	}
	cfg := book.DefaultConfig()
	cfg.Title = vals.Title
	cfg.Authors = []string{vals.Author}
	b, err := book.Init(vals.Repo, cfg)
	if err != nil {
		return err
	}

	repo := git.Open(b.Root)
	if !repo.IsRepo(ctx) {
		if err := repo.Init(ctx); err != nil {
			a.printer.Warn("could not initialize git in %s: %v", b.Root, err)
		}
	}

	if a.library != nil {
		if _, err := a.library.Add(b.Root); err != nil {
			a.printer.Warn("could not add %s to the library: %v", b.Root, err)
		} else if err := a.library.Save(); err != nil {
			a.printer.Warn("could not save the library: %v", err)
		}
	}
	return nil
}

func absPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", output.NewIOError("failed to resolve "+p, err)
	}
	return abs, nil
}
