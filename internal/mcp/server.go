// Package mcp provides a Model Context Protocol server for ideabook.
// It exposes the idea book as MCP tools that any MCP-capable agent can use.
package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// NewServer creates an MCP server with all ideabook tools registered for
// the book rooted at root.
func NewServer(version, root string, log *zap.Logger) *mcp.Server {
	if log == nil {
		log = zap.NewNop()
	}
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "ideabook",
		Version: version,
	}, nil)
	registerTools(server, &books{root: root, log: log})
	return server
}

// boolPtr returns a pointer to a bool value.
func boolPtr(b bool) *bool {
	return &b
}

// readOnlyAnnotations returns annotations for read-only tools.
func readOnlyAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		ReadOnlyHint:   true,
		IdempotentHint: true,
		OpenWorldHint:  boolPtr(false),
	}
}

// writeAnnotations returns annotations for write tools (additive, not destructive).
func writeAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		DestructiveHint: boolPtr(false),
		OpenWorldHint:   boolPtr(false),
	}
}

// registerTools adds all ideabook tools to the server.
func registerTools(server *mcp.Server, b *books) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_chapters",
		Description: "List the top-level chapters of the idea book with their numbers, names and file paths.",
		Annotations: readOnlyAnnotations(),
	}, handleListChapters(b))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "show_chapter",
		Description: "Return the Markdown content of one chapter, selected by its top-level number.",
		Annotations: readOnlyAnnotations(),
	}, handleShowChapter(b))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_idea",
		Description: "Record a new idea: writes <summary>.md, appends it to SUMMARY.md and commits both with the summary as the message.",
		Annotations: writeAnnotations(),
	}, handleAddIdea(b))
}
