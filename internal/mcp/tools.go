package mcp

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/gorewood/ideabook/internal/book"
)

// books opens the book fresh for each call so edits made outside the
// server are always visible.
type books struct {
	root string
	log  *zap.Logger
}

func (b *books) open(opts ...book.LoadOption) (*book.Book, error) {
	bk, err := book.Load(b.root, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading book at %s: %w", b.root, err)
	}
	return bk, nil
}

// --- Shared types ---

// ChapterRef identifies a top-level chapter.
type ChapterRef struct {
	Number uint32 `json:"number" jsonschema:"top-level chapter number"`
	Name   string `json:"name"   jsonschema:"chapter name as written in SUMMARY.md"`
	Path   string `json:"path"   jsonschema:"chapter file path relative to the source directory"`
}

// --- List tool ---

// ListInput is the input for the list_chapters tool (no parameters needed).
type ListInput struct{}

// ListOutput is the output for the list_chapters tool.
type ListOutput struct {
	Title    string       `json:"title"    jsonschema:"book title"`
	Count    int          `json:"count"    jsonschema:"number of top-level chapters"`
	Chapters []ChapterRef `json:"chapters" jsonschema:"chapters in ascending number order"`
}

func handleListChapters(b *books) mcp.ToolHandlerFor[ListInput, ListOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ ListInput) (*mcp.CallToolResult, ListOutput, error) {
		bk, err := b.open(book.ReadOnly())
		if err != nil {
			return nil, ListOutput{}, err
		}
		idx, err := book.BuildIndex(bk)
		if err != nil {
			return nil, ListOutput{}, err
		}

		chapters := make([]ChapterRef, 0, len(idx))
		for _, number := range slices.Sorted(maps.Keys(idx)) {
			snap := idx[number]
			chapters = append(chapters, ChapterRef{Number: number, Name: snap.Name, Path: snap.Path})
		}
		return nil, ListOutput{Title: bk.Config.Title, Count: len(chapters), Chapters: chapters}, nil
	}
}

// --- Show tool ---

// ShowInput is the input for the show_chapter tool.
type ShowInput struct {
	Number uint32 `json:"number" jsonschema:"top-level chapter number (required)"`
}

// ShowOutput is the output for the show_chapter tool.
type ShowOutput struct {
	Chapter ChapterRef `json:"chapter" jsonschema:"the selected chapter"`
	Content string     `json:"content" jsonschema:"chapter Markdown content"`
}

func handleShowChapter(b *books) mcp.ToolHandlerFor[ShowInput, ShowOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input ShowInput) (*mcp.CallToolResult, ShowOutput, error) {
		if input.Number == 0 {
			return nil, ShowOutput{}, fmt.Errorf("number is required")
		}
		bk, err := b.open(book.ReadOnly())
		if err != nil {
			return nil, ShowOutput{}, err
		}
		idx, err := book.BuildIndex(bk)
		if err != nil {
			return nil, ShowOutput{}, err
		}
		if _, err := bk.PathFor(input.Number, idx); err != nil {
			return nil, ShowOutput{}, err
		}

		// The index keeps the last chapter for a number, so search from the end.
		chapters := bk.Chapters()
		for i := len(chapters) - 1; i >= 0; i-- {
			ch := chapters[i]
			if len(ch.Number) == 0 || ch.Number[0] != input.Number {
				continue
			}
			return nil, ShowOutput{
				Chapter: ChapterRef{Number: input.Number, Name: ch.Name, Path: ch.Path},
				Content: ch.Content,
			}, nil
		}
		return nil, ShowOutput{}, fmt.Errorf("chapter %d not found", input.Number)
	}
}
