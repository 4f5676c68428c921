// Package markdown renders PlantUML fenced code blocks in Markdown documents
// as images served by a rendering service.
package markdown

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/corbenferris/figjam-plantuml/internal/plantuml"
)

// KindDiagramBlock is the node kind of DiagramBlock.
var KindDiagramBlock = ast.NewNodeKind("DiagramBlock")

// DiagramBlock replaces a fenced code block tagged plantuml or puml.
type DiagramBlock struct {
	ast.BaseBlock
	Source string
	Index  int // position among the document's diagrams, from 0
}

// Kind implements ast.Node.
func (n *DiagramBlock) Kind() ast.NodeKind { return KindDiagramBlock }

// Dump implements ast.Node.
func (n *DiagramBlock) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Index":  strconv.Itoa(n.Index),
		"Source": n.Source,
	}, nil)
}

// IsDiagramLanguage reports whether a fence info string marks a PlantUML block.
func IsDiagramLanguage(lang string) bool {
	switch strings.ToLower(lang) {
	case "plantuml", "puml":
		return true
	}
	return false
}

type diagramTransformer struct{}

func (diagramTransformer) Transform(doc *ast.Document, reader text.Reader, _ parser.Context) {
	source := reader.Source()
	blocks := diagramFences(doc, source)
	for i, fcb := range blocks {
		parent := fcb.Parent()
		parent.ReplaceChild(parent, fcb, &DiagramBlock{Source: fenceText(fcb, source), Index: i})
	}
}

// diagramFences collects the PlantUML fences in document order. Nodes are
// replaced only after the walk.
func diagramFences(doc ast.Node, source []byte) []*ast.FencedCodeBlock {
	var blocks []*ast.FencedCodeBlock
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if fcb, ok := n.(*ast.FencedCodeBlock); ok && IsDiagramLanguage(string(fcb.Language(source))) {
			blocks = append(blocks, fcb)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return blocks
}

func fenceText(fcb *ast.FencedCodeBlock, source []byte) string {
	var b strings.Builder
	lines := fcb.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(source))
	}
	return strings.TrimRight(b.String(), "\n")
}

type diagramRenderer struct {
	server string
	format plantuml.Format
}

func (r *diagramRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindDiagramBlock, r.renderDiagram)
}

func (r *diagramRenderer) renderDiagram(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*DiagramBlock)
	url, err := plantuml.FormatURL(n.Source, r.server, r.format)
	if err != nil {
		return ast.WalkStop, fmt.Errorf("diagram %d: %w", n.Index, err)
	}
	fmt.Fprintf(w, "<img class=\"plantuml\" alt=\"diagram\" src=\"%s\">\n", util.EscapeHTML([]byte(url)))
	return ast.WalkSkipChildren, nil
}

// Diagrams is a goldmark extension rendering PlantUML fences as <img> tags
// pointing at Server. An empty Server selects the public PlantUML server
// and an empty Format selects SVG.
type Diagrams struct {
	Server string
	Format plantuml.Format
}

// Extend implements goldmark.Extender.
func (e *Diagrams) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithASTTransformers(
		util.Prioritized(diagramTransformer{}, 100),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&diagramRenderer{server: e.Server, format: e.Format}, 100),
	))
}
