package ideabook

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/gorewood/ideabook/internal/book"
	"github.com/gorewood/ideabook/internal/output"
)

// LabelSummary is the prompt for a new idea's one-line summary.
const LabelSummary = ">> Idea summary"

// NewIdea asks for an idea summary, opens the editor on
// <repo>/src/<summary>.md, then adds the file to the book and commits it
// together with SUMMARY.md using the summary as the commit message.
//
// The chapter is recorded whenever the editor ran, whatever its exit
// status; only a failure to start the editor aborts.
func (a *App) NewIdea(ctx context.Context) error {
	vals, b, err := a.openBook()
	if err != nil {
		return err
	}
	idx, err := book.BuildIndex(b)
	if err != nil {
		return err
	}
	a.logger.Debug("chapters indexed", zap.Int("count", len(idx)))

	summary, err := a.prompter.Line(LabelSummary)
	if err != nil {
		return err
	}
	if err := validateSummary(summary); err != nil {
		return err
	}

	fileName := summary + ".md"
	path := filepath.Join(b.SourceDir(), fileName)
	if _, err := os.Stat(path); err == nil {
		return output.NewConflictError(fmt.Sprintf("an idea named %q already exists; use 'ideabook edit' to change it", summary))
	}
	if err := seedIdea(path, summary); err != nil {
		return err
	}

	a.logger.Debug("launching editor", zap.String("editor", vals.Editor), zap.String("path", path))
	code, err := a.runner.Run(ctx, vals.Editor, path)
	if err != nil {
		_ = os.Remove(path)
		return err
	}
	if code != 0 {
		a.logger.Debug("editor exited with non-zero status", zap.Int("code", code))
	}

	ch, err := b.AppendChapter(path, summary, nil)
	if err != nil {
		return err
	}
	if err := b.AppendSummaryLine(fileName, summary); err != nil {
		return err
	}
	if err := a.repo(b).AddAndCommit(ctx, summary, relToRepo(b.Root, path), relToRepo(b.Root, b.SummaryPath())); err != nil {
		return err
	}

	return a.printer.Success(map[string]any{
		"message": fmt.Sprintf("Recorded %q as chapter %s", summary, ch.Number),
		"name":    summary,
		"number":  ch.Number[0],
		"path":    path,
	})
}

// EditExisting opens a chosen chapter in the editor and commits any change
// with the message "Update <name>".
func (a *App) EditExisting(ctx context.Context) error {
	vals, b, err := a.openBook()
	if err != nil {
		return err
	}
	name, path, err := a.selectChapter(b, "Select an idea to edit")
	if err != nil {
		return err
	}

	if _, err := a.runner.Run(ctx, vals.Editor, path); err != nil {
		return err
	}

	repo := a.repo(b)
	rel := relToRepo(b.Root, path)
	if !repo.HasChanges(ctx, rel) {
		return a.printer.Success(map[string]any{
			"message":   fmt.Sprintf("No changes to %q", name),
			"name":      name,
			"committed": false,
		})
	}
	if err := repo.AddAndCommit(ctx, "Update "+name, rel); err != nil {
		return err
	}
	return a.printer.Success(map[string]any{
		"message":   fmt.Sprintf("Updated %q", name),
		"name":      name,
		"committed": true,
	})
}

// validateSummary rejects summaries that cannot be used as a file name
// inside the source directory.
func validateSummary(summary string) error {
	if summary == "" {
		return output.NewUserError("an idea needs a summary")
	}
	return book.ValidateName(summary)
}

// seedIdea writes a heading into a new idea file so the chapter has content
// even if the editor is closed without saving.
func seedIdea(path, summary string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil
		}
		return output.NewIOError("failed to create "+path, err)
	}
	defer f.Close() //nolint:errcheck // write error is returned below
	if _, err := fmt.Fprintf(f, "# %s\n", summary); err != nil {
		return output.NewIOError("failed to write "+path, err)
	}
	return nil
}
