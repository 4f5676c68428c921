package markdown

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"

	"github.com/corbenferris/figjam-plantuml/internal/plantuml"
)

// Options configures Markdown rendering.
type Options struct {
	Server string
	Format plantuml.Format
	Style  string // code highlighting style, "github" when empty
}

// New returns a goldmark instance with GFM, code highlighting and the
// Diagrams extension.
func New(opts Options) goldmark.Markdown {
	style := opts.Style
	if style == "" {
		style = "github"
	}
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			&Diagrams{Server: opts.Server, Format: opts.Format},
			highlighting.NewHighlighting(
				highlighting.WithStyle(style),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)
}

// ToHTML converts a Markdown document to an HTML fragment.
func ToHTML(source []byte, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := New(opts).Convert(source, &buf); err != nil {
		return nil, fmt.Errorf("converting markdown: %w", err)
	}
	return buf.Bytes(), nil
}

// Extract returns the source of every PlantUML fence in document order.
func Extract(source []byte) []string {
	doc := goldmark.DefaultParser().Parse(text.NewReader(source))
	var out []string
	for _, fcb := range diagramFences(doc, source) {
		out = append(out, fenceText(fcb, source))
	}
	return out
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { max-width: 860px; margin: 2rem auto; padding: 0 1rem; font: 15px/1.6 system-ui, sans-serif; color: #1f2328; }
  pre { padding: 12px; overflow: auto; border-radius: 6px; }
  img.plantuml { display: block; max-width: 100%; margin: 1rem 0; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// Page wraps a converted fragment into a standalone HTML document.
func Page(title string, body []byte) ([]byte, error) {
	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, struct {
		Title string
		Body  template.HTML
	}{title, template.HTML(body)})
	if err != nil {
		return nil, fmt.Errorf("rendering page: %w", err)
	}
	return buf.Bytes(), nil
}
