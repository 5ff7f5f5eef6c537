package book

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/gorewood/ideabook/internal/output"
)

// BuildResult describes a finished HTML build.
type BuildResult struct {
	Dir   string `json:"dir"`
	Pages int    `json:"pages"`
}

// tocEntry is one line of the rendered table of contents.
type tocEntry struct {
	Number string
	Name   string
	Href   string
	Depth  int
	Kind   ItemKind
}

type page struct {
	BookTitle string
	Title     string
	Root      string
	TOC       []tocEntry
	Body      template.HTML
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{if .Title}}{{.Title}} - {{end}}{{.BookTitle}}</title>
<style>
body { display: flex; margin: 0; font-family: sans-serif; line-height: 1.5; }
nav { width: 18rem; padding: 1rem; border-right: 1px solid #ddd; min-height: 100vh; }
nav ol { list-style: none; padding-left: 0; }
nav .part { font-weight: bold; margin-top: 1rem; }
nav hr { border: 0; border-top: 1px solid #ddd; }
main { flex: 1; padding: 1rem 2rem; max-width: 50rem; }
pre { background: #f6f8fa; padding: 0.75rem; overflow-x: auto; }
</style>
</head>
<body>
<nav>
<a href="{{.Root}}index.html"><strong>{{.BookTitle}}</strong></a>
<ol>
{{- range .TOC}}
{{- if eq .Kind 1}}
<li><hr></li>
{{- else if eq .Kind 2}}
<li class="part">{{.Name}}</li>
{{- else if .Href}}
<li style="padding-left: {{.Depth}}rem"><a href="{{$.Root}}{{.Href}}">{{if .Number}}<strong>{{.Number}}</strong> {{end}}{{.Name}}</a></li>
{{- else}}
<li style="padding-left: {{.Depth}}rem">{{if .Number}}<strong>{{.Number}}</strong> {{end}}{{.Name}}</li>
{{- end}}
{{- end}}
</ol>
</nav>
<main>
{{.Body}}
</main>
</body>
</html>
`))

// newRenderer returns the goldmark instance used for chapter pages.
func newRenderer() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(util.Prioritized(mdLinkTransformer{}, 100)),
		),
	)
}

// mdLinkTransformer points relative links to other chapters at their
// rendered .html pages.
type mdLinkTransformer struct{}

func (mdLinkTransformer) Transform(doc *ast.Document, _ text.Reader, _ parser.Context) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if link, ok := n.(*ast.Link); ok {
			link.Destination = []byte(htmlTarget(string(link.Destination)))
		}
		return ast.WalkContinue, nil
	})
}

// htmlTarget rewrites "x.md" and "x.md#frag" to "x.html", leaving absolute
// URLs untouched.
func htmlTarget(dest string) string {
	if strings.Contains(dest, "://") || strings.HasPrefix(dest, "mailto:") {
		return dest
	}
	base, frag, _ := strings.Cut(dest, "#")
	if !strings.HasSuffix(base, ".md") {
		return dest
	}
	base = strings.TrimSuffix(base, ".md") + ".html"
	if frag != "" {
		return base + "#" + frag
	}
	return base
}

// pageHref escapes an output path for use in a link. File names may hold a
// literal "%", which must not be decoded back by the browser.
func pageHref(name string) string {
	return "./" + (&url.URL{Path: name}).EscapedPath()
}

// indexPage is the table of contents page at the root of the build.
const indexPage = "index.html"

// pageName maps a chapter's source path to its output path.
func pageName(chapterPath string) string {
	return strings.TrimSuffix(filepath.ToSlash(chapterPath), ".md") + ".html"
}

// Build renders every chapter to HTML under the build directory together
// with an index.html table of contents.
func (b *Book) Build() (*BuildResult, error) {
	outDir := b.BuildDir()
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, output.NewIOError("failed to create "+outDir, err)
	}

	title := b.Config.Title
	if title == "" {
		title = b.Title
	}
	toc := tocEntries(b.Items, 0)
	md := newRenderer()

	result := &BuildResult{Dir: outDir}
	var buildErr error
	b.Walk(func(ch *Chapter) {
		if buildErr != nil || ch.IsDraft() {
			return
		}
		var body bytes.Buffer
		if err := md.Convert([]byte(ch.Content), &body); err != nil {
			buildErr = output.NewSystemErrorWithCause("failed to render "+ch.Path, err)
			return
		}
		name := pageName(ch.Path)
		if name == indexPage {
			buildErr = output.NewConflictError(fmt.Sprintf("chapter %q would overwrite the %s table of contents", ch.Name, indexPage))
			return
		}
		p := page{
			BookTitle: title,
			Title:     ch.Name,
			Root:      strings.Repeat("../", strings.Count(name, "/")),
			TOC:       toc,
			Body:      template.HTML(body.String()), //nolint:gosec // rendered from the user's own chapters
		}
		if err := writePage(filepath.Join(outDir, filepath.FromSlash(name)), p); err != nil {
			buildErr = err
			return
		}
		result.Pages++
	})
	if buildErr != nil {
		return nil, buildErr
	}

	index := page{BookTitle: title, TOC: toc, Body: template.HTML(indexBody(title))} //nolint:gosec // escaped below
	if err := writePage(filepath.Join(outDir, indexPage), index); err != nil {
		return nil, err
	}
	result.Pages++
	return result, nil
}

func indexBody(title string) string {
	return "<h1>" + template.HTMLEscapeString(title) + "</h1>"
}

func writePage(path string, p page) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return output.NewIOError("failed to create "+filepath.Dir(path), err)
	}
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, p); err != nil {
		return output.NewSystemErrorWithCause("failed to render page template", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return output.NewIOError("failed to write "+path, err)
	}
	return nil
}

func tocEntries(items []Item, depth int) []tocEntry {
	var out []tocEntry
	for _, item := range items {
		switch item.Kind {
		case KindSeparator:
			out = append(out, tocEntry{Kind: KindSeparator})
		case KindPartTitle:
			out = append(out, tocEntry{Kind: KindPartTitle, Name: item.Title})
		case KindChapter:
			ch := item.Chapter
			entry := tocEntry{Kind: KindChapter, Number: ch.Number.String(), Name: ch.Name, Depth: depth}
			if !ch.IsDraft() {
				entry.Href = pageHref(pageName(ch.Path))
			}
			out = append(out, entry)
			out = append(out, tocEntries(ch.SubItems, depth+1)...)
		}
	}
	return out
}
