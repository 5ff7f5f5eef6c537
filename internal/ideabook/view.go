package ideabook

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"github.com/gorewood/ideabook/internal/output"
	"github.com/gorewood/ideabook/internal/proc"
)

// renderWidth is the wrap width for chapters rendered without a pager.
const renderWidth = 80

// View asks for a chapter and shows it with the pager. When no pager can
// be started the chapter is rendered to the terminal instead, after a
// warning. In JSON mode the chapter content is returned without paging.
func (a *App) View(ctx context.Context) error {
	_, b, err := a.openBook()
	if err != nil {
		return err
	}
	name, path, err := a.selectChapter(b, "Select an idea to view")
	if err != nil {
		return err
	}

	if a.printer.IsJSON() {
		content, err := os.ReadFile(path)
		if err != nil {
			return output.NewIOError("failed to read "+path, err)
		}
		return a.printer.Success(map[string]any{"name": name, "path": path, "content": string(content)})
	}

	pager, err := proc.FirstAvailable(a.lookPath, a.pagers...)
	if err != nil {
		a.printer.Warn("no pager available (%v); printing the chapter instead", err)
		return a.renderInline(path)
	}
	a.logger.Debug("launching pager", zap.String("pager", pager), zap.String("path", path))
	if _, err := a.runner.Run(ctx, pager, path); err != nil {
		a.printer.Warn("could not open %s with %s: %v", path, pager, err)
		return a.renderInline(path)
	}
	return nil
}

// renderInline prints a chapter rendered from Markdown with glamour.
func (a *App) renderInline(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return output.NewIOError("failed to read "+path, err)
	}

	opts := []glamour.TermRendererOption{glamour.WithWordWrap(renderWidth)}
	if a.printer.IsTTY() {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle("notty"))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return output.NewSystemErrorWithCause("failed to create markdown renderer", err)
	}
	rendered, err := r.Render(string(content))
	if err != nil {
		return output.NewSystemErrorWithCause("failed to render "+path, err)
	}
	a.printer.Print("%s", rendered)
	return nil
}

// BuildBook renders the book to HTML in its build directory.
func (a *App) BuildBook() error {
	_, b, err := a.openBook()
	if err != nil {
		return err
	}
	result, err := b.Build()
	if err != nil {
		return err
	}
	return a.printer.Success(map[string]any{
		"message": "Built " + strconv.Itoa(result.Pages) + " pages into " + result.Dir,
		"dir":     result.Dir,
		"pages":   result.Pages,
	})
}

// chapterRow is one line of ListChapters output.
type chapterRow struct {
	Number uint32 `json:"number"`
	Name   string `json:"name"`
	Path   string `json:"path"`
}

// ListChapters prints the top-level chapters with their numbers.
func (a *App) ListChapters() error {
	_, b, err := a.openBook()
	if err != nil {
		return err
	}

	var rows []chapterRow
	for _, ch := range b.Chapters() {
		var number uint32
		if len(ch.Number) > 0 {
			number = ch.Number[0]
		}
		rows = append(rows, chapterRow{Number: number, Name: ch.Name, Path: ch.Path})
	}

	if a.printer.IsJSON() {
		if rows == nil {
			rows = []chapterRow{}
		}
		return a.printer.WriteJSON(map[string]any{"title": b.Config.Title, "chapters": rows})
	}
	if len(rows) == 0 {
		a.printer.Println("No ideas yet.")
		return nil
	}
	table := make([][]string, 0, len(rows))
	for _, r := range rows {
		num := ""
		if r.Number > 0 {
			num = strconv.FormatUint(uint64(r.Number), 10)
		}
		table = append(table, []string{num, r.Name, a.printer.Dim(r.Path)})
	}
	a.printer.Table([]string{"#", "Idea", "File"}, table)
	return nil
}

// History prints the most recent commits of the book repository, newest
// first. A limit of zero shows every commit.
func (a *App) History(ctx context.Context, limit int) error {
	_, b, err := a.openBook()
	if err != nil {
		return err
	}
	commits, err := a.repo(b).Log(ctx, limit)
	if err != nil {
		return err
	}

	if a.printer.IsJSON() {
		return a.printer.WriteJSON(map[string]any{"commits": commits})
	}
	if len(commits) == 0 {
		a.printer.Println("No history yet.")
		return nil
	}
	rows := make([][]string, 0, len(commits))
	for _, c := range commits {
		rows = append(rows, []string{
			a.printer.Accent(c.Short),
			c.Date.Local().Format(time.DateTime),
			c.Subject,
		})
	}
	a.printer.Table([]string{"Commit", "Date", "Summary"}, rows)
	return nil
}
