package mcp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/gorewood/ideabook/internal/book"
	"github.com/gorewood/ideabook/internal/git"
)

// AddInput is the input for the add_idea tool.
type AddInput struct {
	Summary string `json:"summary"           jsonschema:"one-line idea summary, used as chapter name, file name and commit message (required)"`
	Content string `json:"content,omitempty" jsonschema:"Markdown body; defaults to a heading with the summary"`
}

// AddOutput is the output for the add_idea tool.
type AddOutput struct {
	Chapter ChapterRef `json:"chapter" jsonschema:"the recorded chapter"`
	Commit  string     `json:"commit"  jsonschema:"SHA of the commit that recorded the idea"`
}

func handleAddIdea(b *books) mcp.ToolHandlerFor[AddInput, AddOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input AddInput) (*mcp.CallToolResult, AddOutput, error) {
		summary := strings.TrimSpace(input.Summary)
		if summary == "" {
			return nil, AddOutput{}, errors.New("summary is required")
		}
		if err := book.ValidateName(summary); err != nil {
			return nil, AddOutput{}, err
		}

		bk, err := b.open()
		if err != nil {
			return nil, AddOutput{}, err
		}

		fileName := summary + ".md"
		path := filepath.Join(bk.SourceDir(), fileName)
		if err := writeIdea(path, summary, input.Content); err != nil {
			return nil, AddOutput{}, err
		}

		ch, err := bk.AppendChapter(path, summary, nil)
		if err != nil {
			return nil, AddOutput{}, err
		}
		if err := bk.AppendSummaryLine(fileName, summary); err != nil {
			return nil, AddOutput{}, err
		}

		repo := git.Open(bk.Root)
		if err := repo.AddAndCommit(ctx, summary, relTo(bk.Root, path), relTo(bk.Root, bk.SummaryPath())); err != nil {
			return nil, AddOutput{}, fmt.Errorf("committing idea: %w", err)
		}
		head, err := repo.HEAD(ctx)
		if err != nil {
			return nil, AddOutput{}, fmt.Errorf("getting HEAD: %w", err)
		}
		b.log.Info("idea recorded", zap.String("name", summary), zap.Stringer("number", ch.Number))

		return nil, AddOutput{
			Chapter: ChapterRef{Number: ch.Number[0], Name: ch.Name, Path: ch.Path},
			Commit:  head,
		}, nil
	}
}

// writeIdea creates the idea file. An existing file is never overwritten.
func writeIdea(path, summary, content string) error {
	if content == "" {
		content = "# " + summary + "\n"
	} else if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("an idea named %q already exists", summary)
		}
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// relTo returns path relative to root, or path unchanged when that fails.
func relTo(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}
