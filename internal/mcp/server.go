package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/corbenferris/figjam-plantuml/internal/plantuml"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Renderer fetches rendered diagrams. *render.Client implements it.
type Renderer interface {
	Server() string
	Render(ctx context.Context, text string, format plantuml.Format) (url, body string, err error)
}

// Server wraps an MCP server that exposes the PlantUML codec and renderer.
type Server struct {
	renderer Renderer
	mcp      *server.MCPServer
}

// NewServer creates a new MCP server rendering through renderer.
func NewServer(renderer Renderer) *Server {
	s := &Server{renderer: renderer}

	s.mcp = server.NewMCPServer(
		"umlwidget",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(encodeTool, s.handleEncode)
	s.mcp.AddTool(decodeTool, s.handleDecode)
	s.mcp.AddTool(urlTool, s.handleURL)
	s.mcp.AddTool(renderTool, s.handleRender)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
