package mcp

import "github.com/mark3labs/mcp-go/mcp"

// encodeTool defines the plantuml_encode MCP tool.
var encodeTool = mcp.NewTool("plantuml_encode",
	mcp.WithDescription("Encode PlantUML source into the compact token used in PlantUML server URLs."),
	mcp.WithString("text",
		mcp.Required(),
		mcp.Description("PlantUML diagram source"),
	),
)

// decodeTool defines the plantuml_decode MCP tool.
var decodeTool = mcp.NewTool("plantuml_decode",
	mcp.WithDescription("Decode a PlantUML server URL token back into diagram source."),
	mcp.WithString("token",
		mcp.Required(),
		mcp.Description("Encoded token, the last path segment of a PlantUML server URL"),
	),
)

// urlTool defines the plantuml_url MCP tool.
var urlTool = mcp.NewTool("plantuml_url",
	mcp.WithDescription("Build the rendering URL for PlantUML source on the configured server."),
	mcp.WithString("text",
		mcp.Required(),
		mcp.Description("PlantUML diagram source"),
	),
	mcp.WithString("format",
		mcp.Description("Output format (default svg)"),
		mcp.Enum("svg", "png", "txt"),
	),
)

// renderTool defines the plantuml_render MCP tool.
var renderTool = mcp.NewTool("plantuml_render",
	mcp.WithDescription("Render PlantUML source through the configured server. Returns SVG markup, ASCII art, or a PNG image."),
	mcp.WithString("text",
		mcp.Required(),
		mcp.Description("PlantUML diagram source"),
	),
	mcp.WithString("format",
		mcp.Description("Output format (default svg)"),
		mcp.Enum("svg", "png", "txt"),
	),
)
